package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"coffeeshop/internal/cart"
	"coffeeshop/internal/domain"
	applog "coffeeshop/internal/log"
	"coffeeshop/internal/services"
	"coffeeshop/internal/validate"
)

const (
	sourceCart   = "cart"
	sourceBuyNow = "buy_now"
)

type CheckoutHandler struct {
	Cart   *cart.Store
	Orders *services.OrderService
}

// checkoutForm is what both the buy-now and cart checkout screens carry
// between the quote view and order placement.
type checkoutForm struct {
	Source   string
	Token    string
	Size     string
	Qty      int
	Method   domain.DeliveryMethod
	Discount bool
	Address  string
	Note     string
}

func readCheckoutForm(c *fiber.Ctx, get func(string, ...string) string) (checkoutForm, bool) {
	f := checkoutForm{
		Source:   get("source"),
		Token:    get("product"),
		Size:     get("size"),
		Qty:      validate.Qty(get("qty")),
		Discount: validate.Flag(get("discount")),
	}
	m, ok := validate.DeliveryMethod(get("method"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "method"})
		return f, false
	}
	f.Method = m
	if f.Address, ok = validate.Address(get("address")); !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "address"})
		return f, false
	}
	if f.Note, ok = validate.Note(get("note")); !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "note"})
		return f, false
	}
	if f.Source != sourceBuyNow {
		f.Source = sourceCart
	}
	return f, true
}

// lines resolves the order lines; a bad product snapshot or size yields
// domain.ErrSizeNotFound or errBadProductParam.
func (h *CheckoutHandler) lines(f checkoutForm) ([]domain.OrderLine, error) {
	if f.Source == sourceCart {
		return services.CartLines(h.Cart.Items()), nil
	}
	p, err := DecodeProduct(f.Token)
	if err != nil {
		return nil, err
	}
	size := f.Size
	if size == "" {
		size = p.DefaultSize()
	}
	line, err := services.BuyNowLine(p, size, f.Qty)
	if err != nil {
		return nil, err
	}
	return []domain.OrderLine{line}, nil
}

func (h *CheckoutHandler) view(f checkoutForm, lines []domain.OrderLine, errMsg string) fiber.Map {
	action := "/checkout"
	if f.Source == sourceBuyNow {
		action = "/buy-now"
	}
	return fiber.Map{
		"Title":    "Order",
		"Action":   action,
		"Source":   f.Source,
		"Token":    f.Token,
		"Size":     domain.NormalizeSize(f.Size),
		"Qty":      strconv.Itoa(f.Qty),
		"Method":   string(f.Method),
		"Discount": f.Discount,
		"Address":  f.Address,
		"Quote":    h.Orders.Quote(f.Method, lines, f.Discount),
		"Error":    errMsg,
	}
}

func (h *CheckoutHandler) BuyNow(c *fiber.Ctx) error {
	f, ok := readCheckoutForm(c, c.Query)
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid checkout options")
	}
	f.Source = sourceBuyNow
	lines, err := h.lines(f)
	if err != nil {
		applog.Security(c, "navparam.invalid", map[string]any{"param": "product", "err": err.Error()})
		return notFound(c, "This coffee is no longer available")
	}
	return render(c, "checkout", h.view(f, lines, ""))
}

func (h *CheckoutHandler) Checkout(c *fiber.Ctx) error {
	f, ok := readCheckoutForm(c, c.Query)
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid checkout options")
	}
	f.Source = sourceCart
	lines, _ := h.lines(f)
	return render(c, "checkout", h.view(f, lines, ""))
}

func (h *CheckoutHandler) Place(c *fiber.Ctx) error {
	f, ok := readCheckoutForm(c, c.FormValue)
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid order details")
	}
	lines, err := h.lines(f)
	if err != nil {
		applog.Security(c, "navparam.invalid", map[string]any{"param": "product", "err": err.Error()})
		return notFound(c, "This coffee is no longer available")
	}

	in := services.Checkout{Method: f.Method, Lines: lines, Address: f.Address, Note: f.Note, ApplyDiscount: f.Discount}
	var o domain.Order
	if f.Source == sourceCart {
		o, err = h.Orders.PlaceFromCart(c.UserContext(), in)
	} else {
		o, err = h.Orders.Place(c.UserContext(), in)
	}
	switch {
	case errors.Is(err, services.ErrEmptyOrder):
		return renderStatus(c, fiber.StatusBadRequest, "checkout", h.view(f, lines, "There is nothing to order."))
	case errors.Is(err, services.ErrAddressRequired):
		return renderStatus(c, fiber.StatusBadRequest, "checkout", h.view(f, lines, "Please enter a delivery address."))
	case err != nil:
		return err
	}
	applog.Audit(c, "order.place", map[string]any{"order_id": o.ID, "source": f.Source, "total": o.Total})
	return c.Redirect("/order/" + o.ID)
}
