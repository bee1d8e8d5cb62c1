package query

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/feirinha-uesb/storefront/internal/domain"
	"github.com/feirinha-uesb/storefront/internal/storefront/state"
	"github.com/feirinha-uesb/storefront/internal/storefront/usecase"
)

// TentStockQuery represents the query for the backend stock of one owned stall
type TentStockQuery struct {
	Session  *state.Session
	TentCode int
}

// TentStockHandler handles tent stock query
type TentStockHandler struct {
	catalog usecase.Catalog
	stalls  usecase.Stalls
}

// NewTentStockHandler creates a new tent stock handler
func NewTentStockHandler(c usecase.Catalog, stalls usecase.Stalls) *TentStockHandler {
	return &TentStockHandler{catalog: c, stalls: stalls}
}

// Handle reads the stock the backend holds for a stall of the session user,
// bypassing the local snapshot
func (h *TentStockHandler) Handle(ctx context.Context, query TentStockQuery) ([]domain.StockEntry, error) {
	if query.TentCode <= 0 {
		return nil, usecase.Invalid("tent", "must be a positive code")
	}

	sess := query.Session
	if !sess.Auth.IsLogged() {
		return nil, usecase.ErrNotLoggedIn
	}
	data, err := sess.Auth.UserData(ctx)
	if err != nil {
		return nil, err
	}

	var tent *domain.TentSummary
	if data != nil {
		for i := range data.Tents {
			if data.Tents[i].Code == query.TentCode {
				tent = &data.Tents[i]
				break
			}
		}
	}
	if tent == nil {
		return nil, usecase.ErrTentNotFound
	}

	var (
		stock    []domain.StockEntry
		products []domain.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stock, err = h.stalls.FetchStock(gctx, tent.Code)
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

	enriched := enrichTents([]domain.TentSummary{{Code: tent.Code, Stock: stock}}, products)
	return enriched[0].Stock, nil
}
