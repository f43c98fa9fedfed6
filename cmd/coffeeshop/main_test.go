package main

import (
	"testing"

	"github.com/alicebob/miniredis/v2"

	"coffeeshop/internal/config"
	"coffeeshop/internal/repos"
)

func TestCartBackend(t *testing.T) {
	slots := &repos.SlotRepo{}

	kv, done := cartBackend(config.Config{CartBackend: "memory"}, slots)
	done()
	if _, ok := kv.(*repos.MemoryKV); !ok {
		t.Fatalf("memory backend = %T", kv)
	}

	kv, done = cartBackend(config.Config{CartBackend: "redis", RedisURL: "redis://127.0.0.1:1/0"}, slots)
	done()
	if kv != repos.KV(slots) {
		t.Fatalf("unreachable redis should fall back to sqlite, got %T", kv)
	}

	mr := miniredis.RunT(t)
	kv, done = cartBackend(config.Config{CartBackend: "redis", RedisURL: "redis://" + mr.Addr()}, slots)
	defer done()
	if _, ok := kv.(*repos.RedisKV); !ok {
		t.Fatalf("redis backend = %T", kv)
	}

	if kv, _ := cartBackend(config.Config{}, slots); kv != repos.KV(slots) {
		t.Fatalf("default backend = %T", kv)
	}
}
