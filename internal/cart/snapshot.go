package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"coffeeshop/internal/domain"
)

// SnapshotVersion is the current persisted layout. Version 0 is the
// unversioned layout: a bare JSON array of lines.
const SnapshotVersion = 1

type snapshot struct {
	Version int               `json:"version"`
	SavedAt time.Time         `json:"saved_at"`
	Items   []domain.CartItem `json:"items"`
}

func encodeSnapshot(items []domain.CartItem, now time.Time) ([]byte, error) {
	if items == nil {
		items = []domain.CartItem{}
	}
	return json.Marshal(snapshot{Version: SnapshotVersion, SavedAt: now.UTC(), Items: items})
}

// decodeSnapshot reads any known layout and returns lines that satisfy the
// cart invariants: quantity >= 1, lowercased size, unique (product, size).
func decodeSnapshot(raw []byte) ([]domain.CartItem, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var items []domain.CartItem
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("cart snapshot v0: %w", err)
		}
	case '{':
		var s snapshot
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("cart snapshot: %w", err)
		}
		if s.Version > SnapshotVersion {
			return nil, fmt.Errorf("cart snapshot: unsupported version %d", s.Version)
		}
		items = s.Items
	default:
		return nil, fmt.Errorf("cart snapshot: unexpected payload")
	}
	return sanitize(items), nil
}

func sanitize(in []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(in))
	for _, it := range in {
		it.Size = domain.NormalizeSize(it.Size)
		if it.Coffee.ID == "" || it.Size == "" || it.Quantity < 1 || it.Price < 0 {
			continue
		}
		if i := indexOf(out, it.Coffee.ID, it.Size); i >= 0 {
			out[i].Quantity += it.Quantity
			continue
		}
		out = append(out, it)
	}
	return out
}

func indexOf(items []domain.CartItem, productID, size string) int {
	for i, it := range items {
		if it.Matches(productID, size) {
			return i
		}
	}
	return -1
}
