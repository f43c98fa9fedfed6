package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"

	"coffeeshop/internal/domain"
)

var errBadProductParam = errors.New("invalid product parameter")

// EncodeProduct packs a product snapshot into a URL-safe query value.
func EncodeProduct(c domain.Coffee) string {
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeProduct reads a product snapshot from a query value. Raw JSON is
// accepted alongside the base64url form. A snapshot without an id is
// rejected.
func DecodeProduct(s string) (domain.Coffee, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Coffee{}, errBadProductParam
	}
	raw := []byte(s)
	if s[0] != '{' {
		b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
		if err != nil {
			return domain.Coffee{}, errBadProductParam
		}
		raw = b
	}
	var c domain.Coffee
	if err := json.Unmarshal(raw, &c); err != nil || c.ID == "" {
		return domain.Coffee{}, errBadProductParam
	}
	return c, nil
}
