package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const DefaultSizeLabel = "medium"

// NormalizeSize is the form size labels take inside cart line keys.
func NormalizeSize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type SizeOption struct {
	Size  string  `json:"size"`
	Price float64 `json:"price"`
}

// Sizes is the canonical ordered size/price list. Feeds ship it either as a
// list of {size, price} pairs or as an object keyed by size name; both decode
// into the same list, and it always encodes as a list.
type Sizes []SizeOption

func (s Sizes) PriceFor(size string) (float64, bool) {
	want := NormalizeSize(size)
	if want == "" {
		return 0, false
	}
	for _, o := range s {
		if NormalizeSize(o.Size) == want {
			return o.Price, true
		}
	}
	return 0, false
}

// Labels returns the offered sizes, lowercased, in display order.
func (s Sizes) Labels() []string {
	out := make([]string, 0, len(s))
	for _, o := range s {
		out = append(out, NormalizeSize(o.Size))
	}
	return out
}

func (s *Sizes) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = nil
		return nil
	}
	var out Sizes
	switch b[0] {
	case '[':
		var list []struct {
			Size  *string `json:"size"`
			Price Number  `json:"price"`
		}
		if err := json.Unmarshal(b, &list); err != nil {
			return fmt.Errorf("sizes list: %w", err)
		}
		for _, o := range list {
			if o.Size == nil {
				continue
			}
			out = out.with(*o.Size, float64(o.Price))
		}
	case '{':
		// Walk the object by token so entries keep document order.
		dec := json.NewDecoder(bytes.NewReader(b))
		if _, err := dec.Token(); err != nil {
			return fmt.Errorf("sizes map: %w", err)
		}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return fmt.Errorf("sizes map: %w", err)
			}
			key, _ := tok.(string)
			var price Number
			if err := dec.Decode(&price); err != nil {
				return fmt.Errorf("sizes map %q: %w", key, err)
			}
			out = out.with(key, float64(price))
		}
	default:
		return fmt.Errorf("sizes: unsupported shape %q", b[0])
	}
	*s = out
	return nil
}

// with appends a size unless a label equal ignoring case is already present.
func (s Sizes) with(label string, price float64) Sizes {
	label = strings.TrimSpace(label)
	if label == "" {
		return s
	}
	if _, dup := s.PriceFor(label); dup {
		return s
	}
	return append(s, SizeOption{Size: label, Price: price})
}
