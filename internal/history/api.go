package history

import (
	"context"

	"github.com/feirinha-uesb/storefront/internal/domain"
)

// APIProvider reads the history from the backend sales listing
type APIProvider struct {
	sales SalesSource
}

// NewAPIProvider creates a backend-backed provider
func NewAPIProvider(sales SalesSource) *APIProvider {
	return &APIProvider{sales: sales}
}

// Record does nothing: checkout already created the sale on the backend
func (p *APIProvider) Record(ctx context.Context, sale domain.Sale) error {
	return nil
}

// ListByUser fetches every sale and keeps the ones of userCode
func (p *APIProvider) ListByUser(ctx context.Context, userCode string) ([]domain.Sale, error) {
	sales, err := p.sales.FetchSales(ctx)
	if err != nil {
		return nil, err
	}
	mine := filterByUser(sales, userCode)
	SortNewestFirst(mine)
	return mine, nil
}
