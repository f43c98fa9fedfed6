package repos_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coffeeshop/internal/repos"
)

func TestFeedRepoFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/categories.json":
			_, _ = w.Write([]byte(`[{"id":1,"title":"Latte"}]`))
		default:
			http.Error(w, "gone", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	feed := repos.NewFeedRepo(srv.URL+"/categories.json", srv.URL+"/coffee_items.json", 2*time.Second)

	body, err := feed.Categories(context.Background())
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if string(body) != `[{"id":1,"title":"Latte"}]` {
		t.Fatalf("body = %s", body)
	}

	_, err = feed.Items(context.Background())
	if !errors.Is(err, repos.ErrFeedUnavailable) {
		t.Fatalf("non-200 should be ErrFeedUnavailable, got %v", err)
	}
}

func TestFeedRepoUnconfiguredAndCanceled(t *testing.T) {
	feed := repos.NewFeedRepo("", "", time.Second)
	if _, err := feed.Categories(context.Background()); !errors.Is(err, repos.ErrFeedUnavailable) {
		t.Fatalf("missing url: %v", err)
	}

	feed = repos.NewFeedRepo("http://127.0.0.1:1/categories.json", "", time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := feed.Categories(ctx); !errors.Is(err, repos.ErrFeedUnavailable) {
		t.Fatalf("canceled ctx: %v", err)
	}
}
