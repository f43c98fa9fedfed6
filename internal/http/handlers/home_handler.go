package handlers

import (
	"github.com/gofiber/fiber/v2"

	"coffeeshop/internal/catalog"
	"coffeeshop/internal/log"
	"coffeeshop/internal/services"
	"coffeeshop/internal/validate"
)

type HomeHandler struct {
	Catalog *services.CatalogService
}

func (h *HomeHandler) Home(c *fiber.Ctx) error {
	active := catalog.AllCategoryID
	if raw := c.Query("category"); raw != "" {
		id, ok := validate.ID(raw)
		if !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "category"})
			return c.Status(fiber.StatusBadRequest).SendString("invalid category")
		}
		active = id
	}
	var q string
	if raw := c.Query("q"); raw != "" {
		var ok bool
		if q, ok = validate.Q(raw); !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "q"})
			return c.Status(fiber.StatusBadRequest).SendString("invalid search")
		}
	}

	cat, coffees := h.Catalog.Browse(c.UserContext(), active, q)
	return render(c, "home", fiber.Map{
		"Categories": cat.Categories,
		"Coffees":    coffees,
		"Active":     active,
		"Q":          q,
		"Fallback":   cat.Fallback,
		"Notice":     cat.Notice,
	})
}
