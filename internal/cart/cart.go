package cart

import (
	"github.com/shopspring/decimal"
)

// Item is one cart line. Code identifies the product; adding the same code
// again merges into the existing line.
type Item struct {
	Code     int     `json:"code"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL *string `json:"imageUrl"`
	Quantity int     `json:"quantity"`
}

// Subtotal is Price x Quantity rounded to cents
func (i Item) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(i.Price).Mul(decimal.NewFromInt(int64(i.Quantity))).Round(2)
}

// AddItem merges item into items by code, adding its quantity, or appends it
func AddItem(items []Item, item Item) []Item {
	out := make([]Item, 0, len(items)+1)
	merged := false
	for _, existing := range items {
		if existing.Code == item.Code {
			existing.Quantity += item.Quantity
			merged = true
		}
		out = append(out, existing)
	}
	if !merged {
		out = append(out, item)
	}
	return out
}

// RemoveItem takes one unit of code out of items and drops lines left
// without quantity. Unknown codes leave items unchanged.
func RemoveItem(items []Item, code int) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if item.Code == code {
			item.Quantity--
		}
		if item.Quantity > 0 {
			out = append(out, item)
		}
	}
	return out
}

// Count is the number of units in items
func Count(items []Item) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

// Total is the sum of every line subtotal
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total.Round(2)
}

// QuantityOf returns how many units of code are in items
func QuantityOf(items []Item, code int) int {
	for _, item := range items {
		if item.Code == code {
			return item.Quantity
		}
	}
	return 0
}
