package domain

import (
	"errors"
	"strings"
	"time"
)

var ErrSizeNotFound = errors.New("size not offered for product")

type Category struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Coffee is the canonical product record. It carries no function fields or
// back references, so it can travel through persisted carts and navigation
// parameters as plain JSON.
type Coffee struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	CategoryID  string   `json:"category_id"`
	Price       float64  `json:"price"`
	Rating      *float64 `json:"rating,omitempty"`
	Reviews     *int     `json:"reviews,omitempty"`
	Sizes       Sizes    `json:"sizes"`
}

// PriceFor resolves the unit price for a size label, ignoring case.
func (c Coffee) PriceFor(size string) (float64, bool) {
	return c.Sizes.PriceFor(size)
}

// SizeOptions lists the offered size labels in catalog order.
func (c Coffee) SizeOptions() []string { return c.Sizes.Labels() }

// DefaultSize is the size preselected on the product screen.
func (c Coffee) DefaultSize() string {
	if _, ok := c.Sizes.PriceFor(DefaultSizeLabel); ok {
		return DefaultSizeLabel
	}
	if len(c.Sizes) > 0 {
		return NormalizeSize(c.Sizes[0].Size)
	}
	return ""
}

// CartItem is one cart line. Price is the unit price captured when the line
// was first added and is never re-derived from the catalog.
type CartItem struct {
	Coffee   Coffee  `json:"coffee"`
	Size     string  `json:"size"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

func (it CartItem) Matches(productID, size string) bool {
	return it.Coffee.ID == productID && it.Size == NormalizeSize(size)
}

func (it CartItem) Subtotal() float64 {
	return LineTotal(it.Price, it.Quantity)
}

type DeliveryMethod string

const (
	Deliver DeliveryMethod = "deliver"
	Pickup  DeliveryMethod = "pickup"
)

// ParseDeliveryMethod accepts the labels used by the checkout toggle
// ("Deliver", "Pick Up") as well as the canonical values.
func ParseDeliveryMethod(s string) (DeliveryMethod, bool) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "") {
	case "deliver", "delivery":
		return Deliver, true
	case "pickup":
		return Pickup, true
	}
	return "", false
}

type OrderLine struct {
	ProductID string  `json:"product_id" db:"product_id"`
	Title     string  `json:"title" db:"title"`
	Image     string  `json:"image" db:"image"`
	Size      string  `json:"size" db:"size"`
	Quantity  int     `json:"quantity" db:"qty"`
	Price     float64 `json:"price" db:"price"`
}

func (l OrderLine) Subtotal() float64 { return LineTotal(l.Price, l.Quantity) }

// Quote is the payment summary shown before an order is placed.
type Quote struct {
	Method      DeliveryMethod `json:"method"`
	Lines       []OrderLine    `json:"lines"`
	Subtotal    float64        `json:"subtotal"`
	DeliveryFee float64        `json:"delivery_fee"`
	Discount    float64        `json:"discount"`
	Total       float64        `json:"total"`
}

const (
	OrderPlaced    = "PLACED"
	OrderDelivered = "DELIVERED"
	OrderReady     = "READY"
)

type Order struct {
	ID        string    `json:"id"`
	Address   string    `json:"address,omitempty"`
	Note      string    `json:"note,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Quote
}

type Courier struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type DeliveryStep struct {
	Label string `json:"label"`
	Done  bool   `json:"done"`
}

type DeliveryStatus struct {
	OrderID     string         `json:"order_id"`
	Method      DeliveryMethod `json:"method"`
	Headline    string         `json:"headline"`
	Address     string         `json:"address,omitempty"`
	Steps       []DeliveryStep `json:"steps"`
	MinutesLeft int            `json:"minutes_left"`
	Completed   bool           `json:"completed"`
	Courier     *Courier       `json:"courier,omitempty"`
}
