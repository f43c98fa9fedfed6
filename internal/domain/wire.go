package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ID decodes identifiers that feeds send either as strings or as numbers.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*id = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
	case b[0] == '{' || b[0] == '[':
		return fmt.Errorf("id: unsupported value %s", b)
	default:
		// 1, 1.0 and 1e0 name the same record
		if n, err := strconv.ParseInt(string(b), 10, 64); err == nil {
			*id = ID(strconv.FormatInt(n, 10))
			return nil
		}
		if f, err := strconv.ParseFloat(string(b), 64); err == nil && !math.IsInf(f, 0) {
			*id = ID(strconv.FormatFloat(f, 'f', -1, 64))
			return nil
		}
		*id = ID(b)
	}
	return nil
}

// Number is a lenient float: numbers and numeric strings decode to their
// value, anything else decodes to zero.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		*n = 0
		return nil
	}
	*n = Number(f)
	return nil
}

type coffeeWire struct {
	ID          ID              `json:"id"`
	Title       *string         `json:"title"`
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Image       json.RawMessage `json:"image"`
	CategoryID  *ID             `json:"category_id"`
	Category    *ID             `json:"category"`
	Price       Number          `json:"price"`
	Rating      *Number         `json:"rating"`
	Reviews     *Number         `json:"reviews"`
	Sizes       Sizes           `json:"sizes"`
}

// UnmarshalJSON folds the field-name variants found across feeds
// (title/name, category_id/category) into the canonical record.
func (c *Coffee) UnmarshalJSON(b []byte) error {
	var w coffeeWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	out := Coffee{ID: string(w.ID), Price: float64(w.Price), Sizes: w.Sizes}
	switch {
	case w.Title != nil:
		out.Title = *w.Title
	case w.Name != nil:
		out.Title = *w.Name
	}
	if w.Description != nil {
		out.Description = *w.Description
	}
	if len(w.Image) > 0 && w.Image[0] == '"' {
		if err := json.Unmarshal(w.Image, &out.Image); err != nil {
			return fmt.Errorf("image: %w", err)
		}
	}
	switch {
	case w.CategoryID != nil:
		out.CategoryID = string(*w.CategoryID)
	case w.Category != nil:
		out.CategoryID = string(*w.Category)
	}
	if w.Rating != nil {
		r := float64(*w.Rating)
		out.Rating = &r
	}
	if w.Reviews != nil {
		n := int(*w.Reviews)
		out.Reviews = &n
	}
	*c = out
	return nil
}
