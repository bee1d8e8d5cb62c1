package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/feirinha-uesb/storefront/internal/domain"
)

// FetchTents lists every stall
func (c *Client) FetchTents(ctx context.Context) ([]domain.TentSummary, error) {
	var tents []domain.BackendTent
	if err := c.get(ctx, "/tents", &tents); err != nil {
		return nil, fmt.Errorf("failed to fetch tents: %w", err)
	}

	out := make([]domain.TentSummary, 0, len(tents))
	for _, t := range tents {
		out = append(out, ConvertTent(t))
	}
	return out, nil
}

// FetchUserTents lists the stalls owned by cpf
func (c *Client) FetchUserTents(ctx context.Context, cpf string) ([]domain.TentSummary, error) {
	tents, err := c.FetchTents(ctx)
	if err != nil {
		return nil, err
	}

	owned := make([]domain.TentSummary, 0)
	for _, t := range tents {
		if t.OwnerCPF == cpf {
			owned = append(owned, t)
		}
	}
	return owned, nil
}

// CreateTent registers a stall and returns it with its backend code
func (c *Client) CreateTent(ctx context.Context, tent domain.BackendTent) (*domain.TentSummary, error) {
	var created domain.BackendTent
	if err := c.send(ctx, http.MethodPost, "/tents", tent, &created); err != nil {
		return nil, fmt.Errorf("failed to create tent: %w", err)
	}
	summary := ConvertTent(created)
	return &summary, nil
}

// UpdateTent replaces a stall, including its item list
func (c *Client) UpdateTent(ctx context.Context, tent domain.BackendTent) error {
	if err := c.send(ctx, http.MethodPut, fmt.Sprintf("/tents/%d", tent.Code), tent, nil); err != nil {
		return fmt.Errorf("failed to update tent %d: %w", tent.Code, err)
	}
	return nil
}

// FetchStock lists the stock of one stall
func (c *Client) FetchStock(ctx context.Context, tentCode int) ([]domain.StockEntry, error) {
	var stock []domain.BackendStock
	if err := c.get(ctx, fmt.Sprintf("/stock?tentId=%d", tentCode), &stock); err != nil {
		return nil, fmt.Errorf("failed to fetch stock of tent %d: %w", tentCode, err)
	}

	out := make([]domain.StockEntry, 0, len(stock))
	for _, s := range stock {
		out = append(out, ConvertStock(s))
	}
	return out, nil
}

// SaveStock upserts the quantity a stall holds of a product. The backend
// rejects quantities <= 0.
func (c *Client) SaveStock(ctx context.Context, tentCode, productCode, quantity int) error {
	stock := domain.BackendStock{
		ProductCode:   productCode,
		TentCode:      tentCode,
		StockQuantity: quantity,
	}
	if err := c.send(ctx, http.MethodPost, "/stock", stock, nil); err != nil {
		return fmt.Errorf("failed to save stock: %w", err)
	}
	return nil
}
