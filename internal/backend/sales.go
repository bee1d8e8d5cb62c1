package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/feirinha-uesb/storefront/internal/domain"
)

// CreateSale posts an order. The returned sale carries the backend id when
// the backend echoes it.
func (c *Client) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	var created domain.Sale
	if err := c.send(ctx, http.MethodPost, "/sales", sale, &created); err != nil {
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}
	if len(created.Items) == 0 {
		id := created.ID
		created = sale
		created.ID = id
	}
	return &created, nil
}

// FetchSales lists every sale
func (c *Client) FetchSales(ctx context.Context) ([]domain.Sale, error) {
	var sales []domain.Sale
	if err := c.get(ctx, "/sales", &sales); err != nil {
		return nil, fmt.Errorf("failed to fetch sales: %w", err)
	}
	return sales, nil
}
