package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feirinha-uesb/storefront/internal/cart"
	"github.com/feirinha-uesb/storefront/internal/domain"
)

func products(names ...string) []domain.Product {
	out := make([]domain.Product, len(names))
	for i, name := range names {
		out[i] = domain.Product{ID: i + 1, Name: name, Price: float64(i + 1)}
	}
	return out
}

func names(products []domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

func TestFilterByName(t *testing.T) {
	all := products("Maçã", "Banana", "Melão")

	assert.Equal(t, []string{"Maçã"}, names(FilterByName(all, "ma")))
	assert.Equal(t, []string{"Banana"}, names(FilterByName(all, "AN")))
	assert.Equal(t, []string{"Maçã", "Melão"}, names(FilterByName(all, "m")))
	assert.Equal(t, []string{"Maçã"}, names(FilterByName(all, "ÇÃ")))
	assert.Equal(t, []string{"Maçã", "Banana", "Melão"}, names(FilterByName(all, "")))
	assert.Empty(t, FilterByName(all, "uva"))
}

func TestColumnsRoundRobin(t *testing.T) {
	columns := Columns(products("a", "b", "c", "d", "e", "f", "g"), 0)

	require.Len(t, columns, DefaultColumns)
	assert.Equal(t, []string{"a", "d", "g"}, names(columns[0]))
	assert.Equal(t, []string{"b", "e"}, names(columns[1]))
	assert.Equal(t, []string{"c", "f"}, names(columns[2]))
}

func TestColumnsWithFewProducts(t *testing.T) {
	columns := Columns(products("a"), 3)

	assert.Len(t, columns[0], 1)
	assert.Empty(t, columns[1])
	assert.Empty(t, columns[2])
}

func TestCarouselWrapsAndSkipsShortColumns(t *testing.T) {
	c := NewCarousel(3, 1, 0, 2)

	c.Next()
	assert.Equal(t, []int{1, 0, 0, 1}, c.Indices())
	c.Next()
	assert.Equal(t, []int{2, 0, 0, 0}, c.Indices())
	c.Next()
	assert.Equal(t, []int{0, 0, 0, 1}, c.Indices())

	c.Advance(7)
	assert.Equal(t, []int{1, 0, 0, 0}, c.Indices())
}

func TestCarouselRunStopsWithContext(t *testing.T) {
	c := NewCarousel(2)
	ctx, cancel := context.WithCancel(context.Background())
	ticks := make(chan []int, 10)

	done := make(chan struct{})
	go func() {
		c.Run(ctx, 5*time.Millisecond, func(indices []int) { ticks <- indices })
		close(done)
	}()

	first := <-ticks
	assert.Equal(t, []int{1}, first)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("carousel did not stop")
	}
}

func TestBuildGrid(t *testing.T) {
	grid := BuildGrid(products("a", "b", "c", "d"), 3, 1)

	require.Len(t, grid.Columns, 3)
	assert.Equal(t, 1, grid.Columns[0].Current)
	assert.Equal(t, 0, grid.Columns[1].Current)
	assert.Equal(t, int64(3000), grid.RotationIntervalMs)
}

func TestBuildProductDetail(t *testing.T) {
	product := domain.Product{ID: 7, Name: "Queijo", Price: 12.5, TentCode: 2}
	tents := []domain.TentSummary{
		{Code: 1, Name: "Barraca do Zé", Stock: []domain.StockEntry{{ProductCode: 7, TentCode: 1, Quantity: 4}}},
		{Code: 2, Name: "Barraca da Ana"},
	}
	items := []cart.Item{{Code: 7, Quantity: 2}, {Code: 8, Quantity: 1}}

	detail := BuildProductDetail(product, tents, nil, items)

	assert.Equal(t, "Barraca do Zé", detail.TentName)
	require.NotNil(t, detail.Stock)
	assert.Equal(t, 4, *detail.Stock)
	assert.Equal(t, 2, detail.CartQuantity)
	assert.NotNil(t, detail.Comments)

	detail = BuildProductDetail(product, tents[1:], nil, nil)
	assert.Equal(t, "Barraca da Ana", detail.TentName)
	assert.Nil(t, detail.Stock)
	assert.Zero(t, detail.CartQuantity)
}

func TestBuildCheckoutSummary(t *testing.T) {
	summary := BuildCheckoutSummary([]cart.Item{
		{Code: 1, Name: "Queijo", Price: 12.5, Quantity: 2},
		{Code: 2, Name: "Mel", Price: 0.1, Quantity: 3},
	})

	require.Len(t, summary.Items, 2)
	assert.Equal(t, "25", summary.Items[0].Subtotal.String())
	assert.Equal(t, "0.3", summary.Items[1].Subtotal.String())
	assert.Equal(t, "25.3", summary.Total.String())
	assert.Equal(t, 5, summary.Count)
}

func TestBuildHistoryNamesItems(t *testing.T) {
	sales := []domain.Sale{{
		ID:    1,
		Items: []domain.SaleItem{{ProductCode: 1, SaleQuantity: 2, SalePrice: 3}, {ProductCode: 99, SaleQuantity: 1, SalePrice: 1.5}},
	}}

	views := BuildHistory(sales, products("Queijo"))

	require.Len(t, views, 1)
	assert.Equal(t, "Queijo", views[0].Items[0].Name)
	assert.Equal(t, "Prod #99", views[0].Items[1].Name)
	assert.Equal(t, "7.5", views[0].Total.String())
	assert.Empty(t, sales[0].Items[0].Name)
}
