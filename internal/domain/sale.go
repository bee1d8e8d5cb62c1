package domain

import (
	"github.com/shopspring/decimal"
)

// SaleItem is one line of a sale
type SaleItem struct {
	ProductCode  int     `json:"productCode"`
	SaleID       int     `json:"saleId,omitempty"`
	SaleQuantity int     `json:"saleQuantity"`
	SalePrice    float64 `json:"salePrice"`
	Name         string  `json:"name,omitempty"`
}

// Subtotal is SalePrice x SaleQuantity rounded to cents
func (i SaleItem) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(i.SalePrice).Mul(decimal.NewFromInt(int64(i.SaleQuantity))).Round(2)
}

// Sale is an order placed by a buyer at a stall
type Sale struct {
	ID       int        `json:"id,omitempty"`
	SaleDate LocalDate  `json:"saleDate"`
	TentCode int        `json:"tentCode"`
	UserCode string     `json:"userCode"`
	Items    []SaleItem `json:"items"`
}

// Total sums the subtotals of every item
func (s Sale) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}
