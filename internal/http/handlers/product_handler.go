package handlers

import (
	"github.com/gofiber/fiber/v2"

	"coffeeshop/internal/domain"
	"coffeeshop/internal/log"
	"coffeeshop/internal/services"
	"coffeeshop/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

type sizeView struct {
	Label string
	Price float64
}

// Detail shows a product. A snapshot passed in the product query parameter
// wins over the catalog when its id matches the path.
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return notFound(c, "This coffee is no longer available")
	}
	p, err := h.lookup(c, id)
	if err != nil {
		return notFound(c, "This coffee is no longer available")
	}
	return render(c, "product", productView(p, c.Query("size"), ""))
}

func (h *ProductHandler) lookup(c *fiber.Ctx, id string) (domain.Coffee, error) {
	if tok := c.Query("product"); tok != "" {
		if p, err := DecodeProduct(tok); err == nil && p.ID == id {
			return p, nil
		}
		log.Security(c, "navparam.invalid", map[string]any{"param": "product"})
	}
	return h.Catalog.Product(c.UserContext(), id)
}

func productView(p domain.Coffee, size, errMsg string) fiber.Map {
	sizes := make([]sizeView, 0, len(p.Sizes))
	for _, o := range p.Sizes {
		sizes = append(sizes, sizeView{Label: domain.NormalizeSize(o.Size), Price: o.Price})
	}
	selected := p.DefaultSize()
	if _, ok := p.PriceFor(size); ok {
		selected = domain.NormalizeSize(size)
	}
	price, _ := p.PriceFor(selected)
	return fiber.Map{
		"Title":    p.Title,
		"P":        p,
		"Sizes":    sizes,
		"Selected": selected,
		"Price":    price,
		"Token":    EncodeProduct(p),
		"Error":    errMsg,
	}
}
