package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

var ErrFeedUnavailable = errors.New("catalog feed unavailable")

// FeedRepo reads the static remote catalog documents. It makes exactly one
// unauthenticated GET per document and never retries.
type FeedRepo struct {
	CategoriesURL string
	ItemsURL      string
	Timeout       time.Duration
}

func NewFeedRepo(categoriesURL, itemsURL string, timeout time.Duration) *FeedRepo {
	return &FeedRepo{CategoriesURL: categoriesURL, ItemsURL: itemsURL, Timeout: timeout}
}

func (r *FeedRepo) Categories(ctx context.Context) ([]byte, error) {
	return r.fetch(ctx, r.CategoriesURL)
}

func (r *FeedRepo) Items(ctx context.Context) ([]byte, error) {
	return r.fetch(ctx, r.ItemsURL)
}

func (r *FeedRepo) fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: no url configured", ErrFeedUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}
	timeout := r.Timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); timeout <= 0 || left < timeout {
			timeout = left
		}
	}

	a := fiber.Get(url)
	if timeout > 0 {
		a.Timeout(timeout)
	}
	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrFeedUnavailable, url, errs[0])
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("%w: GET %s: status %d", ErrFeedUnavailable, url, code)
	}
	return body, nil
}
