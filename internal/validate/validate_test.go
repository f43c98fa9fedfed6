package validate_test

import (
	"testing"

	"coffeeshop/internal/domain"
	"coffeeshop/internal/validate"
)

func TestQty(t *testing.T) {
	cases := map[string]int{"": 1, "abc": 1, "0": 1, "-3": 1, "2": 2, " 7 ": 7, "999": validate.MaxQty}
	for in, want := range cases {
		if got := validate.Qty(in); got != want {
			t.Fatalf("Qty(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestQuantity(t *testing.T) {
	if n, ok := validate.Quantity("-2"); !ok || n != 0 {
		t.Fatalf("negative should map to 0, got %d %v", n, ok)
	}
	if n, ok := validate.Quantity("4"); !ok || n != 4 {
		t.Fatalf("got %d %v", n, ok)
	}
	if _, ok := validate.Quantity("x"); ok {
		t.Fatal("non-number should be rejected")
	}
}

func TestIDAndSize(t *testing.T) {
	if _, ok := validate.ID("Cold Brew"); !ok {
		t.Fatal("title-derived ids are allowed")
	}
	if _, ok := validate.ID("<script>"); ok {
		t.Fatal("markup should be rejected")
	}
	if s, ok := validate.Size(" Medium "); !ok || s != "medium" {
		t.Fatalf("Size = %q %v", s, ok)
	}
	if _, ok := validate.Size("'; drop"); ok {
		t.Fatal("bad size accepted")
	}
}

func TestDeliveryMethodAndAddress(t *testing.T) {
	if m, ok := validate.DeliveryMethod(""); !ok || m != domain.Deliver {
		t.Fatalf("empty method = %q %v", m, ok)
	}
	if m, ok := validate.DeliveryMethod("Pick Up"); !ok || m != domain.Pickup {
		t.Fatalf("Pick Up = %q %v", m, ok)
	}
	if _, ok := validate.DeliveryMethod("drone"); ok {
		t.Fatal("unknown method accepted")
	}
	if _, ok := validate.Address("line\x01"); ok {
		t.Fatal("control characters accepted")
	}
	if a, ok := validate.Address("  Jl. Kpg Sutoyo "); !ok || a != "Jl. Kpg Sutoyo" {
		t.Fatalf("Address = %q %v", a, ok)
	}
	if !validate.Flag("on") || validate.Flag("") {
		t.Fatal("Flag mismatch")
	}
}
