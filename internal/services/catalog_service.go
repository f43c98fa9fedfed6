package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"coffeeshop/internal/catalog"
	"coffeeshop/internal/domain"
	applog "coffeeshop/internal/log"
)

var ErrProductNotFound = errors.New("product not found")

// Feed supplies the raw category and product documents.
type Feed interface {
	Categories(ctx context.Context) ([]byte, error)
	Items(ctx context.Context) ([]byte, error)
}

type Catalog struct {
	Categories []domain.Category `json:"categories"`
	Coffees    []domain.Coffee   `json:"coffees"`
	Fallback   bool              `json:"fallback"`
	Notice     string            `json:"notice,omitempty"`
	LoadedAt   time.Time         `json:"loaded_at"`
}

type CatalogService struct {
	Feed Feed
	TTL  time.Duration
	Now  func() time.Time

	mu     sync.Mutex
	cached *Catalog
	loads  singleflight.Group
}

func NewCatalogService(feed Feed, ttl time.Duration) *CatalogService {
	return &CatalogService{Feed: feed, TTL: ttl, Now: time.Now}
}

// Load returns the live catalog, or the bundled one flagged as fallback when
// the feed cannot be read or parsed. Only live results are cached. Concurrent
// callers that miss the cache share one fetch, and no lock is held while it
// runs.
func (s *CatalogService) Load(ctx context.Context) Catalog {
	s.mu.Lock()
	if s.cached != nil && s.Now().Before(s.cached.LoadedAt.Add(s.TTL)) {
		cat := s.cached.clone()
		s.mu.Unlock()
		return cat
	}
	s.mu.Unlock()

	// the shared fetch outlives any single caller; the feed bounds it
	v, _, _ := s.loads.Do("catalog", func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx)), nil
	})
	cat := v.(Catalog)
	return cat.clone()
}

func (s *CatalogService) refresh(ctx context.Context) Catalog {
	cat, err := s.fetch(ctx)
	now := s.Now()
	if err != nil {
		applog.Warn(nil, "catalog.fallback", err, nil)
		cats, coffees := catalog.Bundled()
		return Catalog{Categories: cats, Coffees: coffees, Fallback: true, Notice: catalog.FallbackNotice, LoadedAt: now}
	}
	cat.LoadedAt = now
	if s.TTL > 0 {
		s.mu.Lock()
		s.cached = &cat
		s.mu.Unlock()
	}
	applog.Info(nil, "catalog.load", map[string]any{"categories": len(cat.Categories), "coffees": len(cat.Coffees)})
	return cat
}

// Invalidate drops the cached live catalog so the next Load refetches.
func (s *CatalogService) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

func (s *CatalogService) fetch(ctx context.Context) (Catalog, error) {
	if s.Feed == nil {
		return Catalog{}, errors.New("no catalog feed configured")
	}
	var (
		wg                 sync.WaitGroup
		catBody, itemsBody []byte
		catErr, itemsErr   error
	)
	wg.Add(2)
	go func() { defer wg.Done(); catBody, catErr = s.Feed.Categories(ctx) }()
	go func() { defer wg.Done(); itemsBody, itemsErr = s.Feed.Items(ctx) }()
	wg.Wait()
	if err := errors.Join(catErr, itemsErr); err != nil {
		return Catalog{}, err
	}

	cats, err := catalog.DecodeCategories(catBody)
	if err != nil {
		return Catalog{}, err
	}
	coffees, err := catalog.DecodeCoffees(itemsBody, cats)
	if err != nil {
		return Catalog{}, err
	}
	return Catalog{Categories: cats, Coffees: coffees}, nil
}

// Browse loads the catalog and filters coffees by category and by a
// case-insensitive title substring. An empty or "all" category matches all.
func (s *CatalogService) Browse(ctx context.Context, categoryID, q string) (Catalog, []domain.Coffee) {
	cat := s.Load(ctx)
	return cat, Filter(cat.Coffees, categoryID, q)
}

func Filter(coffees []domain.Coffee, categoryID, q string) []domain.Coffee {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]domain.Coffee, 0, len(coffees))
	for _, c := range coffees {
		if categoryID != "" && categoryID != catalog.AllCategoryID && c.CategoryID != categoryID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(c.Title), q) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Product looks id up in the current catalog, live or fallback.
func (s *CatalogService) Product(ctx context.Context, id string) (domain.Coffee, error) {
	for _, c := range s.Load(ctx).Coffees {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Coffee{}, ErrProductNotFound
}

func (c *Catalog) clone() Catalog {
	out := *c
	out.Categories = append([]domain.Category(nil), c.Categories...)
	out.Coffees = append([]domain.Coffee(nil), c.Coffees...)
	return out
}
