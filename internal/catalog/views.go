package catalog

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/feirinha-uesb/storefront/internal/cart"
	"github.com/feirinha-uesb/storefront/internal/domain"
)

// GridColumn is one column of the product grid with its carousel position
type GridColumn struct {
	Products []domain.Product `json:"products"`
	Current  int              `json:"current"`
}

// Grid is the home page product grid
type Grid struct {
	Columns            []GridColumn `json:"columns"`
	RotationIntervalMs int64        `json:"rotationIntervalMs"`
}

// BuildGrid deals products into n columns and advances the carousel by ticks
func BuildGrid(products []domain.Product, n, ticks int) Grid {
	columns := Columns(products, n)
	carousel := NewCarouselFor(columns)
	carousel.Advance(ticks)
	indices := carousel.Indices()

	grid := Grid{
		Columns:            make([]GridColumn, len(columns)),
		RotationIntervalMs: RotationInterval.Milliseconds(),
	}
	for i, column := range columns {
		grid.Columns[i] = GridColumn{Products: column, Current: indices[i]}
	}
	return grid
}

// ProductDetail is the product page
type ProductDetail struct {
	Product      domain.Product          `json:"product"`
	TentName     string                  `json:"tentName,omitempty"`
	Stock        *int                    `json:"stock,omitempty"`
	Comments     []domain.ProductComment `json:"comments"`
	CartQuantity int                     `json:"cartQuantity"`
}

// BuildProductDetail resolves the stall selling product: the first stall
// stocking it, otherwise the stall named by the product itself.
func BuildProductDetail(product domain.Product, tents []domain.TentSummary, comments []domain.ProductComment, items []cart.Item) ProductDetail {
	detail := ProductDetail{
		Product:      product,
		Comments:     comments,
		CartQuantity: cart.QuantityOf(items, product.ID),
	}
	if detail.Comments == nil {
		detail.Comments = []domain.ProductComment{}
	}

	for _, tent := range tents {
		if entry, ok := tent.StockOf(product.ID); ok {
			detail.TentName = tent.Name
			quantity := entry.Quantity
			detail.Stock = &quantity
			return detail
		}
	}
	for _, tent := range tents {
		if product.TentCode != 0 && tent.Code == product.TentCode {
			detail.TentName = tent.Name
			break
		}
	}
	return detail
}

// SummaryLine is a cart line with its subtotal
type SummaryLine struct {
	cart.Item
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CheckoutSummary is the cart as shown before paying
type CheckoutSummary struct {
	Items []SummaryLine   `json:"items"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// BuildCheckoutSummary computes line totals and the grand total
func BuildCheckoutSummary(items []cart.Item) CheckoutSummary {
	summary := CheckoutSummary{
		Items: make([]SummaryLine, 0, len(items)),
		Count: cart.Count(items),
		Total: cart.Total(items),
	}
	for _, item := range items {
		summary.Items = append(summary.Items, SummaryLine{Item: item, Subtotal: item.Subtotal()})
	}
	return summary
}

// SaleView is a past order with product names and its total
type SaleView struct {
	domain.Sale
	Total decimal.Decimal `json:"total"`
}

// BuildHistory names the items of sales from products and totals each sale.
// Items of unknown products are named "Prod #<code>".
func BuildHistory(sales []domain.Sale, products []domain.Product) []SaleView {
	names := make(map[int]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	views := make([]SaleView, 0, len(sales))
	for _, sale := range sales {
		items := make([]domain.SaleItem, len(sale.Items))
		for i, item := range sale.Items {
			if item.Name == "" {
				if name, ok := names[item.ProductCode]; ok {
					item.Name = name
				} else {
					item.Name = "Prod #" + strconv.Itoa(item.ProductCode)
				}
			}
			items[i] = item
		}
		sale.Items = items
		views = append(views, SaleView{Sale: sale, Total: sale.Total()})
	}
	return views
}
