package cart

import (
	"context"
	"sync"
	"time"

	applog "coffeeshop/internal/log"
	"coffeeshop/internal/repos"
)

// writer persists cart snapshots to a single KV slot from one background
// goroutine. It holds at most one unwritten snapshot: a newer snapshot
// replaces an older pending one, so a crash loses at most the pending
// snapshot and the write in flight.
type writer struct {
	kv       repos.KV
	key      string
	timeout  time.Duration
	debounce time.Duration

	mu       sync.Mutex
	cond     *sync.Cond
	next     []byte
	pending  bool
	inFlight bool
	closed   bool
	replaced int
	done     chan struct{}
}

func newWriter(kv repos.KV, key string, timeout, debounce time.Duration) *writer {
	w := &writer{kv: kv, key: key, timeout: timeout, debounce: debounce, done: make(chan struct{})}
	w.cond = sync.NewCond(&w.mu)
	go w.loop()
	return w
}

// enqueue never blocks on storage. A nil snapshot deletes the slot. It
// reports false once the writer is closed.
func (w *writer) enqueue(b []byte) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false
	}
	if w.pending {
		w.replaced++
	}
	w.next = b
	w.pending = true
	w.cond.Broadcast()
	return true
}

// flush waits until every enqueued snapshot has been written or dropped.
func (w *writer) flush() {
	w.mu.Lock()
	for w.pending || w.inFlight {
		w.cond.Wait()
	}
	w.mu.Unlock()
}

// close drains the queue and stops the goroutine.
func (w *writer) close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		w.cond.Broadcast()
	}
	w.mu.Unlock()
	<-w.done
}

func (w *writer) loop() {
	defer close(w.done)
	for {
		w.mu.Lock()
		for !w.pending && !w.closed {
			w.cond.Wait()
		}
		if !w.pending {
			w.mu.Unlock()
			return
		}
		if w.debounce > 0 && !w.closed {
			w.mu.Unlock()
			time.Sleep(w.debounce)
			w.mu.Lock()
		}
		b := w.next
		w.next, w.pending, w.inFlight = nil, false, true
		w.mu.Unlock()

		w.write(b)

		w.mu.Lock()
		w.inFlight = false
		w.cond.Broadcast()
		w.mu.Unlock()
	}
}

func (w *writer) write(b []byte) {
	ctx := context.Background()
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	if b == nil {
		if err := w.kv.Delete(ctx, w.key); err != nil {
			applog.Error(nil, "cart.persist.delete", err, map[string]any{"key": w.key})
		}
		return
	}
	if err := w.kv.Set(ctx, w.key, string(b)); err != nil {
		applog.Error(nil, "cart.persist.fail", err, map[string]any{"key": w.key, "bytes": len(b)})
	}
}

func (w *writer) replacedCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.replaced
}
