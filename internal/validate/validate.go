package validate

import (
	"regexp"
	"strconv"
	"strings"

	"coffeeshop/internal/domain"
)

const MaxQty = 50

var (
	reQ    = regexp.MustCompile(`^[A-Za-z0-9 _'\\-]{1,50}$`)
	reID   = regexp.MustCompile(`^[A-Za-z0-9 ._-]{1,64}$`)
	reSize = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9 -]{0,19}$`)
)

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

// Qty parses an amount to add. Anything unparsable or below 1 is 1.
func Qty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	if n > MaxQty {
		return MaxQty
	} // clamp to avoid abuse
	return n
}

// Quantity parses a quantity update where 0 or less means remove.
func Quantity(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	if n < 0 {
		n = 0
	}
	if n > MaxQty {
		n = MaxQty
	}
	return n, true
}

// ID validates a simple resource identifier (product/category ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Size validates a size label and returns it in cart key form.
func Size(s string) (string, bool) {
	s = domain.NormalizeSize(s)
	return s, reSize.MatchString(s)
}

func DeliveryMethod(s string) (domain.DeliveryMethod, bool) {
	if strings.TrimSpace(s) == "" {
		return domain.Deliver, true
	}
	return domain.ParseDeliveryMethod(s)
}

// Address is free text with a length cap; control characters are rejected.
func Address(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) > 200 {
		return "", false
	}
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return "", false
		}
	}
	return s, true
}

func Note(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) > 280 {
		s = s[:280]
	}
	return s, !strings.ContainsAny(s, "\x00")
}

// Flag reads a checkbox-style value.
func Flag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}
