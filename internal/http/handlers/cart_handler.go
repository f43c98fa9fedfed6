package handlers

import (
	"github.com/gofiber/fiber/v2"

	"coffeeshop/internal/cart"
	"coffeeshop/internal/log"
	"coffeeshop/internal/services"
	"coffeeshop/internal/validate"
)

type CartHandler struct {
	Cart    *cart.Store
	Catalog *services.CatalogService
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	return render(c, "cart", fiber.Map{"Title": "Cart", "Cart": h.Cart.Snapshot()})
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	qty := validate.Qty(c.FormValue("qty"))

	p, err := h.Catalog.Product(c.UserContext(), productID)
	if err != nil {
		return notFound(c, "This coffee is no longer available")
	}
	size := c.FormValue("size")
	if size == "" {
		size = p.DefaultSize()
	}
	if !h.Cart.AddToCart(p, size, qty) {
		log.Security(c, "validation.fail", map[string]any{"field": "size"})
		return renderStatus(c, fiber.StatusBadRequest, "product", productView(p, "", "That size is not available for this coffee."))
	}
	log.Info(c, "cart.add", map[string]any{"product_id": productID, "size": size, "qty": qty})
	return c.Redirect("/cart")
}

func (h *CartHandler) Update(c *fiber.Ctx) error {
	productID, size, ok := lineKey(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid cart line")
	}
	qty, ok := validate.Quantity(c.FormValue("qty"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "qty"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid quantity")
	}
	h.Cart.UpdateQuantity(productID, size, qty)
	return c.Redirect("/cart")
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	productID, size, ok := lineKey(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid cart line")
	}
	h.Cart.RemoveFromCart(productID, size)
	return c.Redirect("/cart")
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	h.Cart.ClearCart()
	log.Info(c, "cart.clear", nil)
	return c.Redirect("/cart")
}

func lineKey(c *fiber.Ctx) (string, string, bool) {
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return "", "", false
	}
	size, ok := validate.Size(c.FormValue("size"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "size"})
		return "", "", false
	}
	return productID, size, true
}
