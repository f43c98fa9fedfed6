package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"coffeeshop/internal/cart"
	"coffeeshop/internal/config"
	"coffeeshop/internal/http/handlers"
	"coffeeshop/internal/repos"
)

// newTestApp wires the full storefront on an in-memory database. The catalog
// feed has no URLs, so every screen works off the bundled menu.
func newTestApp(t *testing.T, opts handlers.AppOptions) (*fiber.App, *handlers.Deps, *sqlx.DB) {
	t.Helper()
	cfg := config.Config{
		DBDSN:          ":memory:",
		CartKey:        "coffee_cart",
		CatalogTimeout: time.Second,
		DeliveryFee:    1,
		Discount:       1,
	}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := cart.NewStore(repos.NewSlotRepo(db), cart.Options{Key: cfg.CartKey})
	t.Cleanup(store.Close)
	store.Hydrate(context.Background())

	deps := handlers.NewDeps(db, cfg, store)
	return handlers.NewApp(deps, opts), deps, db
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func csrfToken(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/cart", nil))
	if err != nil {
		t.Fatal(err)
	}
	tok := extractCookie(resp, "csrf_")
	if tok == "" {
		t.Fatal("csrf token missing")
	}
	return tok
}

func postForm(t *testing.T, app *fiber.App, path, csrfTok string, form url.Values) *http.Response {
	t.Helper()
	if csrfTok != "" {
		form.Set("csrf", csrfTok)
	}
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if csrfTok != "" {
		req.AddCookie(&http.Cookie{Name: "csrf_", Value: csrfTok})
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func get(t *testing.T, app *fiber.App, path string) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}
