package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"coffeeshop/internal/domain"
	applog "coffeeshop/internal/log"
)

type stage struct {
	label string
	at    time.Duration
}

var (
	deliverStages = []stage{
		{"Order placed", 0},
		{"Preparing", 2 * time.Minute},
		{"On the way", 5 * time.Minute},
		{"Delivered", 15 * time.Minute},
	}
	pickupStages = []stage{
		{"Order placed", 0},
		{"Preparing", 2 * time.Minute},
		{"Ready for pickup", 5 * time.Minute},
	}
	courier = domain.Courier{Name: "Brooklyn Simmons", Role: "Personal Courier"}
)

// DeliveryService simulates order progress from the time an order was placed.
type DeliveryService struct {
	Orders *OrderService
	Now    func() time.Time
}

func NewDeliveryService(orders *OrderService) *DeliveryService {
	return &DeliveryService{Orders: orders, Now: time.Now}
}

// Track returns the progress of order id and records the final status once
// the last stage is reached.
func (s *DeliveryService) Track(ctx context.Context, id string) (domain.DeliveryStatus, error) {
	o, err := s.Orders.Get(ctx, id)
	if err != nil {
		return domain.DeliveryStatus{}, err
	}
	st := Progress(o, s.Now())
	if st.Completed {
		final := domain.OrderDelivered
		if o.Method == domain.Pickup {
			final = domain.OrderReady
		}
		if o.Status != final {
			if err := s.Orders.Orders.UpdateStatus(ctx, o.ID, final); err != nil {
				applog.Error(nil, "order.status.update", err, map[string]any{"order_id": o.ID})
			}
		}
	}
	return st, nil
}

// Progress computes the delivery status of o at now.
func Progress(o domain.Order, now time.Time) domain.DeliveryStatus {
	stages := deliverStages
	if o.Method == domain.Pickup {
		stages = pickupStages
	}
	elapsed := now.Sub(o.CreatedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	end := stages[len(stages)-1].at

	st := domain.DeliveryStatus{OrderID: o.ID, Method: o.Method, Address: o.Address}
	for _, sg := range stages {
		st.Steps = append(st.Steps, domain.DeliveryStep{Label: sg.label, Done: elapsed >= sg.at})
	}
	st.MinutesLeft = int(math.Ceil((end - elapsed).Minutes()))
	if st.MinutesLeft < 0 {
		st.MinutesLeft = 0
	}
	st.Completed = elapsed >= end

	switch {
	case o.Method == domain.Pickup && st.Completed:
		st.Headline = "Ready for pickup"
	case o.Method == domain.Pickup:
		st.Headline = fmt.Sprintf("Ready in %d minutes", st.MinutesLeft)
	case st.Completed:
		st.Headline = "Delivered"
	default:
		st.Headline = fmt.Sprintf("%d minutes left", st.MinutesLeft)
		c := courier
		st.Courier = &c
	}
	return st
}
