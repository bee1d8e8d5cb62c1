package query

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/feirinha-uesb/storefront/internal/cart"
	"github.com/feirinha-uesb/storefront/internal/catalog"
	"github.com/feirinha-uesb/storefront/internal/domain"
	"github.com/feirinha-uesb/storefront/internal/storefront/state"
	"github.com/feirinha-uesb/storefront/internal/storefront/usecase"
)

// ListProductsQuery represents the query to search the catalog
type ListProductsQuery struct {
	Term string
}

// ListProductsHandler handles list products query
type ListProductsHandler struct {
	catalog usecase.Catalog
}

// NewListProductsHandler creates a new list products handler
func NewListProductsHandler(c usecase.Catalog) *ListProductsHandler {
	return &ListProductsHandler{catalog: c}
}

// Handle returns the products whose name contains the term
func (h *ListProductsHandler) Handle(ctx context.Context, query ListProductsQuery) ([]domain.Product, error) {
	products, err := h.catalog.FetchProducts(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.FilterByName(products, query.Term), nil
}

// ProductGridQuery represents the query for the home page grid
type ProductGridQuery struct {
	Term    string
	Columns int
	Ticks   int
}

// ProductGridHandler handles product grid query
type ProductGridHandler struct {
	catalog        usecase.Catalog
	defaultColumns int
}

// NewProductGridHandler creates a new product grid handler
func NewProductGridHandler(c usecase.Catalog, defaultColumns int) *ProductGridHandler {
	if defaultColumns <= 0 {
		defaultColumns = catalog.DefaultColumns
	}
	return &ProductGridHandler{catalog: c, defaultColumns: defaultColumns}
}

// Handle deals the filtered products into columns
func (h *ProductGridHandler) Handle(ctx context.Context, query ProductGridQuery) (*catalog.Grid, error) {
	if query.Columns <= 0 {
		query.Columns = h.defaultColumns
	}
	if query.Columns > 12 {
		return nil, usecase.Invalid("columns", "must be at most 12")
	}
	if query.Ticks < 0 {
		return nil, usecase.Invalid("ticks", "must not be negative")
	}

	products, err := h.catalog.FetchProducts(ctx)
	if err != nil {
		return nil, err
	}
	grid := catalog.BuildGrid(catalog.FilterByName(products, query.Term), query.Columns, query.Ticks)
	return &grid, nil
}

// GetProductQuery represents the query for the product page
type GetProductQuery struct {
	Session     *state.Session
	ProductCode int
}

// GetProductHandler handles get product query
type GetProductHandler struct {
	catalog usecase.Catalog
}

// NewGetProductHandler creates a new get product handler
func NewGetProductHandler(c usecase.Catalog) *GetProductHandler {
	return &GetProductHandler{catalog: c}
}

// Handle fetches the product, the stalls and the comments together; any
// failure fails the page
func (h *GetProductHandler) Handle(ctx context.Context, query GetProductQuery) (*catalog.ProductDetail, error) {
	if query.ProductCode <= 0 {
		return nil, usecase.Invalid("code", "is required")
	}

	var (
		product  *domain.Product
		tents    []domain.TentSummary
		comments []domain.ProductComment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		product, err = h.catalog.FetchProductByID(gctx, query.ProductCode)
		return err
	})
	g.Go(func() error {
		var err error
		tents, err = h.catalog.FetchTents(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = h.catalog.FetchProductComments(gctx, query.ProductCode)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var items []cart.Item
	if query.Session != nil {
		var err error
		if items, err = query.Session.Cart.Items(ctx); err != nil {
			return nil, err
		}
	}

	detail := catalog.BuildProductDetail(*product, tents, comments, items)
	return &detail, nil
}
