package repos_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"coffeeshop/internal/repos"
)

func memDB(t *testing.T) *repos.SlotRepo {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return repos.NewSlotRepo(db)
}

func exerciseKV(t *testing.T, kv repos.KV) {
	t.Helper()
	ctx := context.Background()

	v, err := kv.Get(ctx, "coffee_cart")
	if err != nil || v != "" {
		t.Fatalf("missing key: got %q, %v", v, err)
	}
	if err := kv.Set(ctx, "coffee_cart", `{"version":1}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Set(ctx, "coffee_cart", `{"version":1,"items":[]}`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, err = kv.Get(ctx, "coffee_cart")
	if err != nil || v != `{"version":1,"items":[]}` {
		t.Fatalf("get after overwrite: %q, %v", v, err)
	}
	if err := kv.Delete(ctx, "coffee_cart"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if v, _ := kv.Get(ctx, "coffee_cart"); v != "" {
		t.Fatalf("deleted key still readable: %q", v)
	}
	if err := kv.Delete(ctx, "never-set"); err != nil {
		t.Fatalf("deleting a missing key should not fail: %v", err)
	}
}

func TestSlotRepo(t *testing.T) { exerciseKV(t, memDB(t)) }

func TestMemoryKV(t *testing.T) { exerciseKV(t, repos.NewMemoryKV()) }

func TestRedisKV(t *testing.T) {
	mr := miniredis.RunT(t)
	kv, err := repos.NewRedisKV("redis://"+mr.Addr(), "coffeeshop")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer kv.Close()

	exerciseKV(t, kv)

	if err := kv.Set(context.Background(), "coffee_cart", "x"); err != nil {
		t.Fatal(err)
	}
	if got, _ := mr.Get("coffeeshop:coffee_cart"); got != "x" {
		t.Fatalf("namespaced key not written, got %q", got)
	}
}

func TestRedisKVRejectsBadURL(t *testing.T) {
	if _, err := repos.NewRedisKV("", "ns"); err == nil {
		t.Fatal("want error for empty url")
	}
	if _, err := repos.NewRedisKV("not a url", "ns"); err == nil {
		t.Fatal("want error for malformed url")
	}
}
