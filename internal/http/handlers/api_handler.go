package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"coffeeshop/internal/cart"
	"coffeeshop/internal/domain"
	applog "coffeeshop/internal/log"
	"coffeeshop/internal/services"
	"coffeeshop/internal/validate"
)

// APIHandler exposes the storefront operations as JSON under /api/v1.
type APIHandler struct {
	Cart     *cart.Store
	Catalog  *services.CatalogService
	Orders   *services.OrderService
	Delivery *services.DeliveryService
}

type lineRequest struct {
	ProductID string         `json:"product_id"`
	Product   *domain.Coffee `json:"product,omitempty"`
	Size      string         `json:"size"`
	Quantity  int            `json:"quantity"`
}

type orderRequest struct {
	Source   string `json:"source"`
	Method   string `json:"method"`
	Address  string `json:"address"`
	Note     string `json:"note"`
	Discount bool   `json:"discount"`
	lineRequest
}

func apiError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func (h *APIHandler) ListCatalog(c *fiber.Ctx) error {
	q := c.Query("q")
	if q != "" {
		var ok bool
		if q, ok = validate.Q(q); !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "q"})
			return apiError(c, fiber.StatusBadRequest, "invalid search")
		}
	}
	cat, coffees := h.Catalog.Browse(c.UserContext(), c.Query("category"), q)
	cat.Coffees = coffees
	return c.JSON(cat)
}

func (h *APIHandler) ShowProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return apiError(c, fiber.StatusNotFound, "not found")
	}
	p, err := h.Catalog.Product(c.UserContext(), id)
	if err != nil {
		return apiError(c, fiber.StatusNotFound, "not found")
	}
	return c.JSON(p)
}

func (h *APIHandler) ShowCart(c *fiber.Ctx) error {
	return c.JSON(h.Cart.Snapshot())
}

// requireJSON refuses state-changing API calls whose body is not JSON. The
// API skips CSRF tokens, so it must not accept what a cross-site HTML form
// can send.
func requireJSON(c *fiber.Ctx) error {
	switch c.Method() {
	case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch:
		if !c.Is("json") {
			applog.Security(c, "api.content_type", map[string]any{"content_type": c.Get(fiber.HeaderContentType)})
			return apiError(c, fiber.StatusUnsupportedMediaType, "content type must be application/json")
		}
	}
	return c.Next()
}

// catalogProduct looks the request's product_id up in the catalog. Cart lines
// are always priced from here.
func (h *APIHandler) catalogProduct(c *fiber.Ctx, r lineRequest) (domain.Coffee, error) {
	id, ok := validate.ID(r.ProductID)
	if !ok {
		return domain.Coffee{}, services.ErrProductNotFound
	}
	return h.Catalog.Product(c.UserContext(), id)
}

// buyNowProduct prefers the product snapshot a buy-now navigation carries.
func (h *APIHandler) buyNowProduct(c *fiber.Ctx, r lineRequest) (domain.Coffee, error) {
	if r.Product != nil && r.Product.ID != "" {
		return *r.Product, nil
	}
	return h.catalogProduct(c, r)
}

func (h *APIHandler) AddItem(c *fiber.Ctx) error {
	var r lineRequest
	if err := c.BodyParser(&r); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid body")
	}
	p, err := h.catalogProduct(c, r)
	if err != nil {
		return apiError(c, fiber.StatusNotFound, "not found")
	}
	size := r.Size
	if size == "" {
		size = p.DefaultSize()
	}
	if r.Quantity > validate.MaxQty {
		r.Quantity = validate.MaxQty
	}
	if !h.Cart.AddToCart(p, size, r.Quantity) {
		return apiError(c, fiber.StatusUnprocessableEntity, domain.ErrSizeNotFound.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(h.Cart.Snapshot())
}

func (h *APIHandler) UpdateItem(c *fiber.Ctx) error {
	var r lineRequest
	if err := c.BodyParser(&r); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid body")
	}
	id, ok := validate.ID(r.ProductID)
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid product_id")
	}
	if r.Quantity > validate.MaxQty {
		r.Quantity = validate.MaxQty
	}
	h.Cart.UpdateQuantity(id, r.Size, r.Quantity)
	return c.JSON(h.Cart.Snapshot())
}

func (h *APIHandler) RemoveItem(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Query("product_id"))
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid product_id")
	}
	h.Cart.RemoveFromCart(id, c.Query("size"))
	return c.JSON(h.Cart.Snapshot())
}

func (h *APIHandler) ClearCart(c *fiber.Ctx) error {
	h.Cart.ClearCart()
	return c.JSON(h.Cart.Snapshot())
}

func (h *APIHandler) checkout(c *fiber.Ctx) (services.Checkout, string, error) {
	var r orderRequest
	if err := c.BodyParser(&r); err != nil {
		return services.Checkout{}, "", fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	method, ok := validate.DeliveryMethod(r.Method)
	if !ok {
		return services.Checkout{}, "", fiber.NewError(fiber.StatusBadRequest, "invalid method")
	}
	addr, ok := validate.Address(r.Address)
	if !ok {
		return services.Checkout{}, "", fiber.NewError(fiber.StatusBadRequest, "invalid address")
	}
	note, _ := validate.Note(r.Note)
	in := services.Checkout{Method: method, Address: addr, Note: note, ApplyDiscount: r.Discount}

	if r.Source != sourceBuyNow {
		in.Lines = services.CartLines(h.Cart.Items())
		return in, sourceCart, nil
	}
	p, err := h.buyNowProduct(c, r.lineRequest)
	if err != nil {
		return in, sourceBuyNow, fiber.NewError(fiber.StatusNotFound, "not found")
	}
	size := r.Size
	if size == "" {
		size = p.DefaultSize()
	}
	line, err := services.BuyNowLine(p, size, r.Quantity)
	if err != nil {
		return in, sourceBuyNow, fiber.NewError(fiber.StatusUnprocessableEntity, domain.ErrSizeNotFound.Error())
	}
	in.Lines = []domain.OrderLine{line}
	return in, sourceBuyNow, nil
}

func (h *APIHandler) Quote(c *fiber.Ctx) error {
	in, _, err := h.checkout(c)
	if err != nil {
		return fiberError(c, err)
	}
	return c.JSON(h.Orders.Quote(in.Method, in.Lines, in.ApplyDiscount))
}

func (h *APIHandler) PlaceOrder(c *fiber.Ctx) error {
	in, source, err := h.checkout(c)
	if err != nil {
		return fiberError(c, err)
	}
	var o domain.Order
	if source == sourceCart {
		o, err = h.Orders.PlaceFromCart(c.UserContext(), in)
	} else {
		o, err = h.Orders.Place(c.UserContext(), in)
	}
	switch {
	case errors.Is(err, services.ErrEmptyOrder), errors.Is(err, services.ErrAddressRequired):
		return apiError(c, fiber.StatusUnprocessableEntity, err.Error())
	case err != nil:
		return err
	}
	applog.Audit(c, "order.place", map[string]any{"order_id": o.ID, "source": source, "total": o.Total})
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (h *APIHandler) TrackDelivery(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return apiError(c, fiber.StatusNotFound, "not found")
	}
	st, err := h.Delivery.Track(c.UserContext(), id)
	if errors.Is(err, services.ErrOrderNotFound) {
		return apiError(c, fiber.StatusNotFound, "not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(st)
}

func fiberError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return apiError(c, fe.Code, fe.Message)
	}
	return err
}
