package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coffeeshop/internal/cart"
	"coffeeshop/internal/config"
	"coffeeshop/internal/http/handlers"
	"coffeeshop/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	kv, closeKV := cartBackend(cfg, repos.NewSlotRepo(db))
	defer closeKV()

	store := cart.NewStore(kv, cart.Options{
		Key:           cfg.CartKey,
		WriteTimeout:  cfg.CartWriteTimeout,
		WriteDebounce: cfg.CartWriteDebounce,
	})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		store.Hydrate(ctx)
	}()

	deps := handlers.NewDeps(db, cfg, store)
	app := handlers.NewApp(deps, handlers.AppOptions{AccessLog: true})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("[server] listen: %v", err)
		}
	}()
	log.Printf("[server] listening on :%s", cfg.Port)

	// SIGHUP drops the cached menu so the next request refetches the feed
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for range hup {
			deps.Catalog.Invalidate()
			log.Printf("[catalog] cache dropped")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Printf("[server] shutting down")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("[server] shutdown: %v", err)
	}
	store.Close()
}

// cartBackend picks the key-value store holding the cart slot. An unusable
// redis falls back to sqlite so the storefront still starts.
func cartBackend(cfg config.Config, slots *repos.SlotRepo) (repos.KV, func()) {
	switch cfg.CartBackend {
	case "memory":
		log.Printf("[cart] backend=memory (cart is not kept across restarts)")
		return repos.NewMemoryKV(), func() {}
	case "redis":
		r, err := repos.NewRedisKV(cfg.RedisURL, "coffeeshop")
		if err != nil {
			log.Printf("[warn] redis unavailable (%v), using sqlite for the cart", err)
			return slots, func() {}
		}
		log.Printf("[cart] backend=redis")
		return r, func() { _ = r.Close() }
	default:
		log.Printf("[cart] backend=sqlite")
		return slots, func() {}
	}
}
