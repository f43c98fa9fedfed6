// Package cart holds the shopping cart: the single authority for cart lines
// and their derived totals, mirrored to one key-value slot.
package cart

import (
	"context"
	"sync"
	"time"

	"coffeeshop/internal/domain"
	applog "coffeeshop/internal/log"
	"coffeeshop/internal/repos"
)

type State int

const (
	// Loading: the persisted cart has not been read yet. Mutations are
	// accepted and journaled, nothing is written.
	Loading State = iota
	Ready
)

func (s State) String() string {
	if s == Ready {
		return "ready"
	}
	return "loading"
}

type Options struct {
	Key           string
	WriteTimeout  time.Duration
	WriteDebounce time.Duration
	Now           func() time.Time
}

// View is a consistent read of the cart.
type View struct {
	Items     []domain.CartItem `json:"items"`
	Total     float64           `json:"total"`
	ItemCount int               `json:"item_count"`
	Loading   bool              `json:"loading"`
}

type op func([]domain.CartItem) []domain.CartItem

type Store struct {
	kv  repos.KV
	key string
	now func() time.Time
	w   *writer

	mu      sync.Mutex
	state   State
	items   []domain.CartItem
	journal []op
}

func NewStore(kv repos.KV, opts Options) *Store {
	if opts.Key == "" {
		opts.Key = "coffee_cart"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		kv:    kv,
		key:   opts.Key,
		now:   opts.Now,
		w:     newWriter(kv, opts.Key, opts.WriteTimeout, opts.WriteDebounce),
		items: []domain.CartItem{},
	}
}

// Hydrate reads the persisted cart once. Mutations made while the store was
// loading are replayed on top of the persisted lines, so neither side is
// lost. A storage or decode failure counts as an empty persisted cart.
// It reports whether persisted lines were applied; calls after the first
// successful one are no-ops.
func (s *Store) Hydrate(ctx context.Context) bool {
	s.mu.Lock()
	if s.state == Ready {
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()

	var persisted []domain.CartItem
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		applog.Warn(nil, "cart.hydrate.read", err, map[string]any{"key": s.key})
	} else if persisted, err = decodeSnapshot([]byte(raw)); err != nil {
		applog.Warn(nil, "cart.hydrate.decode", err, map[string]any{"key": s.key})
		persisted = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Ready {
		return false
	}
	items := persisted
	if items == nil {
		items = []domain.CartItem{}
	}
	for _, o := range s.journal {
		items = o(items)
	}
	replayed := len(s.journal)
	s.items, s.journal, s.state = items, nil, Ready
	if replayed > 0 {
		s.persistLocked()
	}
	applog.Info(nil, "cart.hydrate", map[string]any{
		"persisted_lines": len(persisted),
		"replayed_ops":    replayed,
		"lines":           len(items),
	})
	return len(persisted) > 0
}

// AddToCart adds quantity units of coffee in size. The unit price is resolved
// now and kept on the line. It is a no-op returning false when the coffee
// does not offer size. Quantities below 1 count as 1.
func (s *Store) AddToCart(c domain.Coffee, size string, quantity int) bool {
	price, ok := c.PriceFor(size)
	if !ok || c.ID == "" {
		return false
	}
	if quantity < 1 {
		quantity = 1
	}
	size = domain.NormalizeSize(size)
	s.apply(func(items []domain.CartItem) []domain.CartItem {
		out := clone(items)
		if i := indexOf(out, c.ID, size); i >= 0 {
			out[i].Quantity += quantity
			return out
		}
		return append(out, domain.CartItem{Coffee: c, Size: size, Quantity: quantity, Price: price})
	})
	return true
}

// RemoveFromCart deletes the (productID, size) line if present.
func (s *Store) RemoveFromCart(productID, size string) {
	s.apply(func(items []domain.CartItem) []domain.CartItem {
		out := make([]domain.CartItem, 0, len(items))
		for _, it := range items {
			if !it.Matches(productID, size) {
				out = append(out, it)
			}
		}
		return out
	})
}

// UpdateQuantity sets the line quantity; quantity <= 0 removes the line.
func (s *Store) UpdateQuantity(productID, size string, quantity int) {
	if quantity <= 0 {
		s.RemoveFromCart(productID, size)
		return
	}
	s.apply(func(items []domain.CartItem) []domain.CartItem {
		out := clone(items)
		if i := indexOf(out, productID, size); i >= 0 {
			out[i].Quantity = quantity
		}
		return out
	})
}

func (s *Store) ClearCart() {
	s.apply(func([]domain.CartItem) []domain.CartItem { return []domain.CartItem{} })
}

func (s *Store) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	total, count := domain.SumItems(s.items)
	return View{Items: clone(s.items), Total: total, ItemCount: count, Loading: s.state == Loading}
}

func (s *Store) Items() []domain.CartItem { return s.Snapshot().Items }

func (s *Store) Total() float64 { return s.Snapshot().Total }

func (s *Store) ItemCount() int { return s.Snapshot().ItemCount }

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Flush blocks until pending writes reach storage.
func (s *Store) Flush() { s.w.flush() }

// Close writes any pending snapshot and stops the writer.
func (s *Store) Close() {
	s.w.close()
	if n := s.w.replacedCount(); n > 0 {
		applog.Info(nil, "cart.writer.closed", map[string]any{"coalesced_writes": n})
	}
}

func (s *Store) apply(o op) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = o(s.items)
	if s.state == Loading {
		s.journal = append(s.journal, o)
		return
	}
	s.persistLocked()
}

// persistLocked enqueues the current lines; the caller holds s.mu so
// snapshots reach the writer in mutation order. An empty cart frees the slot.
func (s *Store) persistLocked() {
	if len(s.items) == 0 {
		if !s.w.enqueue(nil) {
			applog.Warn(nil, "cart.persist.closed", nil, map[string]any{"key": s.key})
		}
		return
	}
	b, err := encodeSnapshot(s.items, s.now())
	if err != nil {
		applog.Error(nil, "cart.persist.encode", err, nil)
		return
	}
	if !s.w.enqueue(b) {
		applog.Warn(nil, "cart.persist.closed", nil, map[string]any{"key": s.key})
	}
}

func clone(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out
}
