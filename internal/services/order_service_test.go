package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"coffeeshop/internal/cart"
	"coffeeshop/internal/catalog"
	"coffeeshop/internal/domain"
	"coffeeshop/internal/repos"
	"coffeeshop/internal/services"
)

func newOrderService(t *testing.T) (*services.OrderService, *cart.Store) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	store := cart.NewStore(repos.NewSlotRepo(db), cart.Options{Key: "coffee_cart"})
	t.Cleanup(store.Close)
	store.Hydrate(context.Background())
	return services.NewOrderService(repos.NewOrderRepo(db), store, 1.0, 1.0), store
}

func mochaFromBundle(t *testing.T) domain.Coffee {
	t.Helper()
	_, coffees := catalog.Bundled()
	for _, c := range coffees {
		if c.ID == "1" {
			return c
		}
	}
	t.Fatal("bundled mocha missing")
	return domain.Coffee{}
}

func TestQuote(t *testing.T) {
	svc, _ := newOrderService(t)
	line, err := services.BuyNowLine(mochaFromBundle(t), "Medium", 1)
	if err != nil {
		t.Fatal(err)
	}

	q := svc.Quote(domain.Deliver, []domain.OrderLine{line}, false)
	if q.Subtotal != 5.53 || q.DeliveryFee != 1 || q.Discount != 0 || q.Total != 6.53 {
		t.Fatalf("deliver quote = %+v", q)
	}
	q = svc.Quote(domain.Pickup, []domain.OrderLine{line}, true)
	if q.DeliveryFee != 0 || q.Discount != 1 || q.Total != 4.53 {
		t.Fatalf("pickup quote = %+v", q)
	}

	cheap := domain.OrderLine{ProductID: "x", Quantity: 1, Price: 0.5}
	if q := svc.Quote(domain.Pickup, []domain.OrderLine{cheap}, true); q.Total != 0 {
		t.Fatalf("total must not go negative, got %v", q.Total)
	}
}

func TestBuyNowLine(t *testing.T) {
	line, err := services.BuyNowLine(mochaFromBundle(t), "LARGE", 0)
	if err != nil || line.Quantity != 1 || line.Size != "large" || line.Price != 6.53 {
		t.Fatalf("line = %+v, %v", line, err)
	}
	if _, err := services.BuyNowLine(mochaFromBundle(t), "venti", 1); !errors.Is(err, domain.ErrSizeNotFound) {
		t.Fatalf("want ErrSizeNotFound, got %v", err)
	}
}

func TestPlaceAndGet(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()
	line, _ := services.BuyNowLine(mochaFromBundle(t), "small", 2)

	o, err := svc.Place(ctx, services.Checkout{Method: domain.Deliver, Lines: []domain.OrderLine{line}, Address: "Jl. Kpg Sutoyo"})
	if err != nil {
		t.Fatal(err)
	}
	if o.ID == "" || o.Status != domain.OrderPlaced || o.Total != 10.06 {
		t.Fatalf("order = %+v", o)
	}

	got, err := svc.Get(ctx, o.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Address != "Jl. Kpg Sutoyo" || len(got.Lines) != 1 || got.Lines[0].Quantity != 2 || got.Total != 10.06 {
		t.Fatalf("stored order = %+v", got)
	}
	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, services.ErrOrderNotFound) {
		t.Fatalf("want ErrOrderNotFound, got %v", err)
	}
}

func TestPlaceRejects(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()
	if _, err := svc.Place(ctx, services.Checkout{Method: domain.Pickup}); !errors.Is(err, services.ErrEmptyOrder) {
		t.Fatalf("want ErrEmptyOrder, got %v", err)
	}
	line, _ := services.BuyNowLine(mochaFromBundle(t), "small", 1)
	if _, err := svc.Place(ctx, services.Checkout{Method: domain.Deliver, Lines: []domain.OrderLine{line}}); !errors.Is(err, services.ErrAddressRequired) {
		t.Fatalf("want ErrAddressRequired, got %v", err)
	}
	o, err := svc.Place(ctx, services.Checkout{Method: domain.Pickup, Lines: []domain.OrderLine{line}, Address: "ignored"})
	if err != nil || o.Address != "" || o.DeliveryFee != 0 {
		t.Fatalf("pickup order = %+v, %v", o, err)
	}
}

func TestPlaceFromCartClearsCart(t *testing.T) {
	svc, store := newOrderService(t)
	ctx := context.Background()
	if _, err := svc.PlaceFromCart(ctx, services.Checkout{Method: domain.Pickup}); !errors.Is(err, services.ErrEmptyOrder) {
		t.Fatalf("empty cart should be rejected, got %v", err)
	}

	store.AddToCart(mochaFromBundle(t), "medium", 3)
	o, err := svc.PlaceFromCart(ctx, services.Checkout{Method: domain.Deliver, Address: "home", ApplyDiscount: true})
	if err != nil {
		t.Fatal(err)
	}
	if o.Subtotal != 16.59 || o.Total != 16.59 {
		t.Fatalf("order totals = %+v", o.Quote)
	}
	if store.ItemCount() != 0 {
		t.Fatalf("cart should be cleared, got %+v", store.Items())
	}
}

func TestProgress(t *testing.T) {
	placed := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	o := domain.Order{ID: "o1", CreatedAt: placed, Quote: domain.Quote{Method: domain.Deliver}}

	st := services.Progress(o, placed.Add(5*time.Minute))
	if st.MinutesLeft != 10 || st.Headline != "10 minutes left" || st.Completed || st.Courier == nil {
		t.Fatalf("status at 5m = %+v", st)
	}
	done := 0
	for _, s := range st.Steps {
		if s.Done {
			done++
		}
	}
	if len(st.Steps) != 4 || done != 3 {
		t.Fatalf("steps = %+v", st.Steps)
	}

	st = services.Progress(o, placed.Add(20*time.Minute))
	if !st.Completed || st.MinutesLeft != 0 || st.Headline != "Delivered" {
		t.Fatalf("status at 20m = %+v", st)
	}

	o.Method = domain.Pickup
	st = services.Progress(o, placed.Add(time.Minute))
	if len(st.Steps) != 3 || st.MinutesLeft != 4 || st.Courier != nil {
		t.Fatalf("pickup status = %+v", st)
	}
}

func TestTrackMarksDelivered(t *testing.T) {
	svc, _ := newOrderService(t)
	ctx := context.Background()
	line, _ := services.BuyNowLine(mochaFromBundle(t), "small", 1)
	o, err := svc.Place(ctx, services.Checkout{Method: domain.Deliver, Lines: []domain.OrderLine{line}, Address: "home"})
	if err != nil {
		t.Fatal(err)
	}

	tracker := services.NewDeliveryService(svc)
	tracker.Now = func() time.Time { return o.CreatedAt.Add(16 * time.Minute) }
	st, err := tracker.Track(ctx, o.ID)
	if err != nil || !st.Completed {
		t.Fatalf("track = %+v, %v", st, err)
	}
	got, _ := svc.Get(ctx, o.ID)
	if got.Status != domain.OrderDelivered {
		t.Fatalf("status = %q, want %q", got.Status, domain.OrderDelivered)
	}
	if _, err := tracker.Track(ctx, "nope"); !errors.Is(err, services.ErrOrderNotFound) {
		t.Fatalf("want ErrOrderNotFound, got %v", err)
	}
}
