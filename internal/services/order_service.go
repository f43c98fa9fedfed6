package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"coffeeshop/internal/cart"
	"coffeeshop/internal/domain"
	applog "coffeeshop/internal/log"
	"coffeeshop/internal/repos"
)

var (
	ErrEmptyOrder      = errors.New("order has no lines")
	ErrOrderNotFound   = errors.New("order not found")
	ErrAddressRequired = errors.New("delivery address required")
)

// Checkout is what the buy-now and cart checkout screens submit.
type Checkout struct {
	Method        domain.DeliveryMethod
	Lines         []domain.OrderLine
	Address       string
	Note          string
	ApplyDiscount bool
}

type OrderService struct {
	Orders      *repos.OrderRepo
	Cart        *cart.Store
	DeliveryFee float64
	Discount    float64
	Now         func() time.Time
}

func NewOrderService(orders *repos.OrderRepo, store *cart.Store, deliveryFee, discount float64) *OrderService {
	return &OrderService{Orders: orders, Cart: store, DeliveryFee: deliveryFee, Discount: discount, Now: time.Now}
}

// BuyNowLine prices a single product at size. Quantities below 1 count as 1.
func BuyNowLine(c domain.Coffee, size string, qty int) (domain.OrderLine, error) {
	price, ok := c.PriceFor(size)
	if !ok {
		return domain.OrderLine{}, fmt.Errorf("%s %q: %w", c.ID, size, domain.ErrSizeNotFound)
	}
	if qty < 1 {
		qty = 1
	}
	return domain.OrderLine{
		ProductID: c.ID, Title: c.Title, Image: c.Image,
		Size: domain.NormalizeSize(size), Quantity: qty, Price: price,
	}, nil
}

func CartLines(items []domain.CartItem) []domain.OrderLine {
	out := make([]domain.OrderLine, 0, len(items))
	for _, it := range items {
		out = append(out, domain.OrderLine{
			ProductID: it.Coffee.ID, Title: it.Coffee.Title, Image: it.Coffee.Image,
			Size: it.Size, Quantity: it.Quantity, Price: it.Price,
		})
	}
	return out
}

// Quote totals lines for a delivery method. The total never goes below zero.
func (s *OrderService) Quote(method domain.DeliveryMethod, lines []domain.OrderLine, applyDiscount bool) domain.Quote {
	sub := decimal.Zero
	for _, l := range lines {
		sub = sub.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	fee := decimal.Zero
	if method == domain.Deliver {
		fee = decimal.NewFromFloat(s.DeliveryFee)
	}
	disc := decimal.Zero
	if applyDiscount {
		disc = decimal.NewFromFloat(s.Discount)
	}
	total := sub.Add(fee).Sub(disc)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return domain.Quote{
		Method:      method,
		Lines:       append([]domain.OrderLine(nil), lines...),
		Subtotal:    sub.Round(2).InexactFloat64(),
		DeliveryFee: fee.Round(2).InexactFloat64(),
		Discount:    disc.Round(2).InexactFloat64(),
		Total:       total.Round(2).InexactFloat64(),
	}
}

// Place records the order. Payment is not taken.
func (s *OrderService) Place(ctx context.Context, in Checkout) (domain.Order, error) {
	lines := make([]domain.OrderLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		if l.ProductID != "" && l.Quantity >= 1 {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return domain.Order{}, ErrEmptyOrder
	}
	if in.Method == "" {
		in.Method = domain.Deliver
	}
	addr := strings.TrimSpace(in.Address)
	if in.Method == domain.Deliver && addr == "" {
		return domain.Order{}, ErrAddressRequired
	}
	if in.Method == domain.Pickup {
		addr = ""
	}

	o := domain.Order{
		ID:        uuid.NewString(),
		Address:   addr,
		Note:      strings.TrimSpace(in.Note),
		Status:    domain.OrderPlaced,
		CreatedAt: s.Now().UTC(),
		Quote:     s.Quote(in.Method, lines, in.ApplyDiscount),
	}
	if err := s.Orders.Create(ctx, o); err != nil {
		return domain.Order{}, fmt.Errorf("record order: %w", err)
	}
	applog.Audit(nil, "order.place", map[string]any{
		"order_id": o.ID, "method": string(o.Method), "lines": len(o.Lines), "total": o.Total,
	})
	return o, nil
}

// PlaceFromCart orders every cart line and empties the cart on success.
func (s *OrderService) PlaceFromCart(ctx context.Context, in Checkout) (domain.Order, error) {
	in.Lines = CartLines(s.Cart.Items())
	o, err := s.Place(ctx, in)
	if err != nil {
		return o, err
	}
	s.Cart.ClearCart()
	return o, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (domain.Order, error) {
	o, err := s.Orders.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, ErrOrderNotFound
	}
	return o, err
}
