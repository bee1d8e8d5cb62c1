package history

import (
	"context"
	"fmt"

	"github.com/feirinha-uesb/storefront/internal/domain"
	"github.com/feirinha-uesb/storefront/pkg/storage"
)

// LocalStorageKey holds the demo sales list of a session
const LocalStorageKey = "mock_db_sales"

// LocalProvider keeps sales in the session storage. It is meant for demos
// without a backend sales endpoint.
type LocalProvider struct {
	storage storage.Storage
}

// NewLocalProvider creates a provider over one session storage
func NewLocalProvider(s storage.Storage) *LocalProvider {
	return &LocalProvider{storage: s}
}

// Record appends sale to the stored list
func (p *LocalProvider) Record(ctx context.Context, sale domain.Sale) error {
	sales, err := p.load(ctx)
	if err != nil {
		return err
	}
	sales = append(sales, sale)
	if err := storage.SetJSON(ctx, p.storage, LocalStorageKey, sales); err != nil {
		return fmt.Errorf("failed to record sale: %w", err)
	}
	return nil
}

// ListByUser returns the stored sales of userCode
func (p *LocalProvider) ListByUser(ctx context.Context, userCode string) ([]domain.Sale, error) {
	sales, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	mine := filterByUser(sales, userCode)
	SortNewestFirst(mine)
	return mine, nil
}

func (p *LocalProvider) load(ctx context.Context) ([]domain.Sale, error) {
	var sales []domain.Sale
	if _, err := storage.GetJSON(ctx, p.storage, LocalStorageKey, &sales); err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}
	return sales, nil
}
