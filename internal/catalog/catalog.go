// Package catalog turns category and product documents, remote or bundled,
// into the canonical shapes the storefront works with.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"coffeeshop/internal/domain"
)

const (
	AllCategoryID      = "all"
	DefaultTitle       = "Coffee"
	DefaultDescription = "Freshly brewed just for you."
	FallbackNotice     = "Live menu unreachable. Showing sample data."
)

//go:embed bundled/*.json
var bundledFS embed.FS

type rawCategory struct {
	ID       *domain.ID `json:"id"`
	Title    *string    `json:"title"`
	Name     *string    `json:"name"`
	Category *domain.ID `json:"category"`
}

// DecodeCategories parses a category document and prepends the synthetic
// "All" entry. Entries without an id, duplicates, and source-provided "All"
// entries are dropped.
func DecodeCategories(b []byte) ([]domain.Category, error) {
	var raw []rawCategory
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	out := []domain.Category{{ID: AllCategoryID, Title: "All"}}
	seen := map[string]bool{AllCategoryID: true}
	for _, r := range raw {
		var id string
		switch {
		case r.ID != nil:
			id = string(*r.ID)
		case r.Title != nil:
			id = *r.Title
		case r.Name != nil:
			id = *r.Name
		case r.Category != nil:
			id = string(*r.Category)
		}
		title := "Category"
		switch {
		case r.Title != nil:
			title = *r.Title
		case r.Name != nil:
			title = *r.Name
		}
		if id == "" || seen[id] || strings.EqualFold(strings.TrimSpace(title), "all") {
			continue
		}
		seen[id] = true
		out = append(out, domain.Category{ID: id, Title: title})
	}
	return out, nil
}

// DecodeCoffees parses a product document, fills display defaults and
// resolves each category reference against cats. A reference that is not a
// category id but matches a category title is rewritten to that id.
func DecodeCoffees(b []byte, cats []domain.Category) ([]domain.Coffee, error) {
	var items []domain.Coffee
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("coffee items: %w", err)
	}
	byID := make(map[string]bool, len(cats))
	byTitle := make(map[string]string, len(cats))
	for _, c := range cats {
		byID[c.ID] = true
		byTitle[strings.ToLower(c.Title)] = c.ID
	}
	out := make([]domain.Coffee, 0, len(items))
	for _, c := range items {
		if c.ID == "" {
			continue
		}
		if c.Title == "" {
			c.Title = DefaultTitle
		}
		if c.Description == "" {
			c.Description = DefaultDescription
		}
		if !byID[c.CategoryID] {
			if id, ok := byTitle[strings.ToLower(c.CategoryID)]; ok {
				c.CategoryID = id
			}
		}
		out = append(out, c)
	}
	return out, nil
}

var (
	bundledOnce sync.Once
	bundledCats []domain.Category
	bundledCofs []domain.Coffee
)

// Bundled returns the fallback catalog shipped with the binary. Callers get
// their own copies of the slices.
func Bundled() ([]domain.Category, []domain.Coffee) {
	bundledOnce.Do(func() {
		cb, err := bundledFS.ReadFile("bundled/categories.json")
		if err != nil {
			panic(err)
		}
		ib, err := bundledFS.ReadFile("bundled/coffee_items.json")
		if err != nil {
			panic(err)
		}
		if bundledCats, err = DecodeCategories(cb); err != nil {
			panic(err)
		}
		if bundledCofs, err = DecodeCoffees(ib, bundledCats); err != nil {
			panic(err)
		}
	})
	return append([]domain.Category(nil), bundledCats...), append([]domain.Coffee(nil), bundledCofs...)
}
