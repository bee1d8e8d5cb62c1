// Package history provides the order history of a buyer from a configurable source.
package history

import (
	"context"
	"fmt"
	"sort"

	"github.com/feirinha-uesb/storefront/internal/domain"
	"github.com/feirinha-uesb/storefront/pkg/storage"
)

// Provider kinds accepted by NewFactory
const (
	KindLocal    = "local"
	KindAPI      = "api"
	KindPostgres = "postgres"
)

// Provider records sales and lists the sales of a buyer, newest first
type Provider interface {
	Record(ctx context.Context, sale domain.Sale) error
	ListByUser(ctx context.Context, userCode string) ([]domain.Sale, error)
}

// Factory returns the provider serving one session. Session-independent
// providers ignore the storage.
type Factory func(s storage.Storage) Provider

// SalesSource is the part of the backend client the api provider needs
type SalesSource interface {
	FetchSales(ctx context.Context) ([]domain.Sale, error)
}

// NewFactory selects the provider by kind. sales is required by "api" and
// repo by "postgres".
func NewFactory(kind string, sales SalesSource, repo *PostgresProvider) (Factory, error) {
	switch kind {
	case "", KindLocal:
		return func(s storage.Storage) Provider { return WithTracing(KindLocal, NewLocalProvider(s)) }, nil
	case KindAPI:
		if sales == nil {
			return nil, fmt.Errorf("history provider %q needs a backend client", kind)
		}
		api := WithTracing(KindAPI, NewAPIProvider(sales))
		return func(storage.Storage) Provider { return api }, nil
	case KindPostgres:
		if repo == nil {
			return nil, fmt.Errorf("history provider %q needs a database", kind)
		}
		traced := WithTracing(KindPostgres, repo)
		return func(storage.Storage) Provider { return traced }, nil
	default:
		return nil, fmt.Errorf("unknown history provider %q", kind)
	}
}

// SortNewestFirst orders sales by date descending, then by id descending
func SortNewestFirst(sales []domain.Sale) {
	sort.SliceStable(sales, func(i, j int) bool {
		a, b := sales[i].SaleDate, sales[j].SaleDate
		if a != b {
			return b.Before(a)
		}
		return sales[i].ID > sales[j].ID
	})
}

func filterByUser(sales []domain.Sale, userCode string) []domain.Sale {
	out := make([]domain.Sale, 0)
	for _, sale := range sales {
		if sale.UserCode == userCode {
			out = append(out, sale)
		}
	}
	return out
}
