package cart

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recordingKV struct {
	mu     sync.Mutex
	writes []string
	gate   chan struct{}
}

func (r *recordingKV) Get(context.Context, string) (string, error) { return "", nil }
func (r *recordingKV) Delete(context.Context, string) error        { return nil }

func (r *recordingKV) Set(_ context.Context, _ string, v string) error {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	r.writes = append(r.writes, v)
	r.mu.Unlock()
	return nil
}

func TestWriterLatestWins(t *testing.T) {
	kv := &recordingKV{gate: make(chan struct{})}
	w := newWriter(kv, "k", time.Second, 0)

	w.enqueue([]byte("a"))
	// wait until "a" is in flight so the rest queue behind it
	for {
		w.mu.Lock()
		busy := w.inFlight
		w.mu.Unlock()
		if busy {
			break
		}
		time.Sleep(time.Millisecond)
	}
	w.enqueue([]byte("b"))
	w.enqueue([]byte("c"))
	w.enqueue([]byte("d"))
	close(kv.gate)
	w.close()

	kv.mu.Lock()
	defer kv.mu.Unlock()
	if len(kv.writes) != 2 || kv.writes[0] != "a" || kv.writes[1] != "d" {
		t.Fatalf("writes = %v, want [a d]", kv.writes)
	}
	if w.replacedCount() != 2 {
		t.Fatalf("replaced = %d, want 2", w.replacedCount())
	}
	if w.enqueue([]byte("e")) {
		t.Fatal("enqueue after close should fail")
	}
}

func TestWriterFlushWaits(t *testing.T) {
	kv := &recordingKV{}
	w := newWriter(kv, "k", 0, 5*time.Millisecond)
	defer w.close()
	w.enqueue([]byte("x"))
	w.flush()
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if len(kv.writes) != 1 || kv.writes[0] != "x" {
		t.Fatalf("writes = %v", kv.writes)
	}
}
