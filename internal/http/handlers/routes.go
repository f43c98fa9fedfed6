package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	applog "coffeeshop/internal/log"
	"coffeeshop/web"
)

type AppOptions struct {
	AccessLog   bool
	DisableCSRF bool
	// RequestsPerMinute caps requests per client; 0 means 60, negative disables.
	RequestsPerMinute int
}

// NewEngine loads the embedded templates.
func NewEngine() *html.Engine {
	engine := html.NewFileSystem(http.FS(web.Templates()), ".html")
	engine.AddFunc("money", money)
	engine.AddFunc("deref", deref)
	engine.AddFunc("derefInt", derefInt)
	return engine
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Something went wrong. Please try again."
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		code = fe.Code
		msg = "Page not found"
		if code != fiber.StatusNotFound {
			msg = "We could not process that request."
		}
	} else {
		applog.Error(c, "server.error", err, nil)
	}
	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
	// Avoid leaking internals; best-effort render
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}

// NewApp builds the storefront: middleware, HTML screens and the JSON API.
func NewApp(d *Deps, opts AppOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:                 NewEngine(),
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	app.Use(helmet.New())
	if opts.RequestsPerMinute >= 0 {
		limit := opts.RequestsPerMinute
		if limit == 0 {
			limit = 60
		}
		app.Use(limiter.New(limiter.Config{
			Max:        limit,
			Expiration: time.Minute,
			Next: func(c *fiber.Ctx) bool {
				return c.Path() == "/healthz"
			},
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.limit.hit", nil)
				return c.Status(fiber.StatusTooManyRequests).SendString("rate limit exceeded, retry soon")
			},
		}))
	}
	if !opts.DisableCSRF {
		app.Use(csrf.New(csrf.Config{
			KeyLookup:      "form:csrf",
			CookieName:     "csrf_",
			CookieSameSite: "Lax",
			CookieSecure:   false, // set true behind HTTPS
			ContextKey:     "csrf",
			Next: func(c *fiber.Ctx) bool {
				return strings.HasPrefix(c.Path(), "/api/")
			},
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				applog.Security(c, "csrf.fail", nil)
				return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
			},
		}))
	}
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		c.Locals("cartCount", d.Store.ItemCount())
		return c.Next()
	})

	// ---------- Screens ----------
	app.Get("/", d.HomeHandler.Home)
	app.Get("/product/:id", d.ProductHandler.Detail)
	app.Get("/cart", d.CartHandler.View)
	app.Post("/cart", d.CartHandler.Add)
	app.Post("/cart/update", d.CartHandler.Update)
	app.Post("/cart/remove", d.CartHandler.Remove)
	app.Post("/cart/clear", d.CartHandler.Clear)
	app.Get("/buy-now", d.CheckoutHandler.BuyNow)
	app.Get("/checkout", d.CheckoutHandler.Checkout)
	app.Post("/orders", d.CheckoutHandler.Place)
	app.Get("/order/:id", d.OrderHandler.View)

	// ---------- API ----------
	api := app.Group("/api/v1", requireJSON)
	api.Get("/catalog", d.APIHandler.ListCatalog)
	api.Get("/products/:id", d.APIHandler.ShowProduct)
	api.Get("/cart", d.APIHandler.ShowCart)
	api.Post("/cart/items", d.APIHandler.AddItem)
	api.Patch("/cart/items", d.APIHandler.UpdateItem)
	api.Delete("/cart/items", d.APIHandler.RemoveItem)
	api.Delete("/cart", d.APIHandler.ClearCart)
	api.Post("/quote", d.APIHandler.Quote)
	api.Post("/orders", d.APIHandler.PlaceOrder)
	api.Get("/orders/:id/delivery", d.APIHandler.TrackDelivery)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true, "cart": d.Store.State().String()})
	})
	app.Use(func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") {
			return apiError(c, fiber.StatusNotFound, "not found")
		}
		return notFound(c, "Page not found")
	})
	return app
}
