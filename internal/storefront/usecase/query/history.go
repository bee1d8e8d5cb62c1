package query

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/feirinha-uesb/storefront/internal/catalog"
	"github.com/feirinha-uesb/storefront/internal/domain"
	"github.com/feirinha-uesb/storefront/internal/history"
	"github.com/feirinha-uesb/storefront/internal/storefront/state"
	"github.com/feirinha-uesb/storefront/internal/storefront/usecase"
)

// OrderHistoryQuery represents the query for the purchases of the session user
type OrderHistoryQuery struct {
	Session *state.Session
}

// OrderHistoryHandler handles order history query
type OrderHistoryHandler struct {
	catalog usecase.Catalog
}

// NewOrderHistoryHandler creates a new order history handler
func NewOrderHistoryHandler(c usecase.Catalog) *OrderHistoryHandler {
	return &OrderHistoryHandler{catalog: c}
}

// Handle lists the purchases newest first with product names and totals
func (h *OrderHistoryHandler) Handle(ctx context.Context, query OrderHistoryQuery) ([]catalog.SaleView, error) {
	buyer, err := query.Session.Auth.ResolveUserID(ctx)
	if err != nil {
		return nil, err
	}
	if buyer == "" {
		return nil, usecase.ErrNotLoggedIn
	}

	var (
		sales    []domain.Sale
		products []domain.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sales, err = query.Session.History.ListByUser(gctx, buyer)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = h.catalog.FetchProducts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	history.SortNewestFirst(sales)
	return catalog.BuildHistory(sales, products), nil
}
