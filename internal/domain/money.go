package domain

import "github.com/shopspring/decimal"

// LineTotal is price*qty computed in decimal and rounded to cents.
func LineTotal(price float64, qty int) float64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(qty))).Round(2).InexactFloat64()
}

// SumItems returns the cart total and item count.
func SumItems(items []CartItem) (float64, int) {
	total := decimal.Zero
	count := 0
	for _, it := range items {
		total = total.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
		count += it.Quantity
	}
	return total.Round(2).InexactFloat64(), count
}
