// Package catalog turns normalized backend data into the views the
// storefront renders: search results, the product grid, the rotating
// carousel, product details, checkout summary and order history.
package catalog

import (
	"strings"

	"github.com/feirinha-uesb/storefront/internal/domain"
)

// DefaultColumns is the width of the product grid
const DefaultColumns = 3

// FilterByName keeps the products whose name contains term, ignoring case.
// An empty term keeps everything.
func FilterByName(products []domain.Product, term string) []domain.Product {
	needle := strings.ToLower(strings.TrimSpace(term))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if needle == "" || strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out
}

// Columns deals products round robin into n columns
func Columns(products []domain.Product, n int) [][]domain.Product {
	if n <= 0 {
		n = DefaultColumns
	}
	columns := make([][]domain.Product, n)
	for i := range columns {
		columns[i] = make([]domain.Product, 0, len(products)/n+1)
	}
	for i, p := range products {
		columns[i%n] = append(columns[i%n], p)
	}
	return columns
}
