package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"coffeeshop/internal/services"
	"coffeeshop/internal/validate"
)

type OrderHandler struct {
	Orders   *services.OrderService
	Delivery *services.DeliveryService
}

// View is the delivery tracking screen.
func (h *OrderHandler) View(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, "Order not found")
	}
	st, err := h.Delivery.Track(c.UserContext(), oid)
	if errors.Is(err, services.ErrOrderNotFound) {
		return notFound(c, "Order not found")
	}
	if err != nil {
		return err
	}
	o, err := h.Orders.Get(c.UserContext(), oid)
	if err != nil {
		return err
	}
	return render(c, "order", fiber.Map{"Title": st.Headline, "Status": st, "Order": o})
}
