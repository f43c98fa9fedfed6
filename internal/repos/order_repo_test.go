package repos_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"coffeeshop/internal/domain"
	"coffeeshop/internal/repos"
)

func TestOrderRepoCreateGet(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	orders := repos.NewOrderRepo(db)
	ctx := context.Background()

	placed := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	o := domain.Order{
		ID:        "oid-1",
		Address:   "Jl. Kpg Sutoyo No. 620",
		Status:    domain.OrderPlaced,
		CreatedAt: placed,
		Quote: domain.Quote{
			Method: domain.Deliver,
			Lines: []domain.OrderLine{
				{ProductID: "1", Title: "Caffe Mocha", Size: "medium", Quantity: 2, Price: 5.53},
				{ProductID: "5", Title: "Espresso", Size: "small", Quantity: 1, Price: 3.5},
			},
			Subtotal: 14.56, DeliveryFee: 1, Discount: 1, Total: 14.56,
		},
	}
	if err := orders.Create(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := orders.Get(ctx, "oid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Method != domain.Deliver || got.Total != 14.56 || !got.CreatedAt.Equal(placed) {
		t.Fatalf("header mismatch: %+v", got)
	}
	if len(got.Lines) != 2 || got.Lines[0].Title != "Caffe Mocha" || got.Lines[1].Quantity != 1 {
		t.Fatalf("lines mismatch: %+v", got.Lines)
	}

	if err := orders.UpdateStatus(ctx, "oid-1", "DELIVERED"); err != nil {
		t.Fatal(err)
	}
	got, _ = orders.Get(ctx, "oid-1")
	if got.Status != "DELIVERED" {
		t.Fatalf("status = %s", got.Status)
	}

	if _, err := orders.Get(ctx, "missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("missing order: want sql.ErrNoRows, got %v", err)
	}
}
