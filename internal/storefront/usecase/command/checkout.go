package command

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/feirinha-uesb/storefront/internal/domain"
	"github.com/feirinha-uesb/storefront/internal/storefront/state"
	"github.com/feirinha-uesb/storefront/internal/storefront/usecase"
	"github.com/feirinha-uesb/storefront/kafka"
	"github.com/feirinha-uesb/storefront/pkg/logger"
)

// DefaultTentCode is the stall a checkout is charged to when none is configured
const DefaultTentCode = 1

// CheckoutCommand turns the cart of a session into a sale
type CheckoutCommand struct {
	Session *state.Session
}

// CheckoutResponse is the created sale
type CheckoutResponse struct {
	Sale  domain.Sale     `json:"sale"`
	Total decimal.Decimal `json:"total"`
}

// CheckoutHandler handles checkout command
type CheckoutHandler struct {
	sales     usecase.Sales
	publisher usecase.EventPublisher
	tentCode  int
	now       func() time.Time
}

// NewCheckoutHandler creates a new checkout handler. publisher may be nil.
func NewCheckoutHandler(sales usecase.Sales, publisher usecase.EventPublisher, tentCode int) *CheckoutHandler {
	if tentCode <= 0 {
		tentCode = DefaultTentCode
	}
	return &CheckoutHandler{
		sales:     sales,
		publisher: publisher,
		tentCode:  tentCode,
		now:       time.Now,
	}
}

// Handle posts the sale and clears the cart. Recording the sale in the
// history and publishing the event are best-effort.
func (h *CheckoutHandler) Handle(ctx context.Context, cmd CheckoutCommand) (*CheckoutResponse, error) {
	buyer, err := cmd.Session.Auth.ResolveUserID(ctx)
	if err != nil {
		return nil, err
	}
	if buyer == "" {
		return nil, usecase.ErrNotLoggedIn
	}

	items, err := cmd.Session.Cart.Items(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, usecase.ErrEmptyCart
	}

	sale := domain.Sale{
		SaleDate: domain.NewLocalDate(h.now()),
		TentCode: h.tentCode,
		UserCode: buyer,
		Items:    make([]domain.SaleItem, 0, len(items)),
	}
	for _, item := range items {
		sale.Items = append(sale.Items, domain.SaleItem{
			ProductCode:  item.Code,
			SaleQuantity: item.Quantity,
			SalePrice:    item.Price,
		})
	}

	created, err := h.sales.CreateSale(ctx, sale)
	if err != nil {
		return nil, err
	}

	if err := cmd.Session.History.Record(ctx, *created); err != nil {
		logger.Warn(ctx).
			Err(err).
			Int("sale_id", created.ID).
			Msg("Failed to record sale in history")
	}

	if h.publisher != nil {
		if err := h.publisher.PublishSaleCreated(ctx, kafka.SaleCreatedEvent{Sale: *created}); err != nil {
			logger.Error(ctx).
				Err(err).
				Int("sale_id", created.ID).
				Msg("Failed to publish sale created event")
		}
	}

	if err := cmd.Session.Cart.Clear(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear cart after checkout: %w", err)
	}

	total := created.Total()
	logger.Info(ctx).
		Int("sale_id", created.ID).
		Str("user_code", buyer).
		Str("total", total.StringFixed(2)).
		Msg("Checkout completed")

	return &CheckoutResponse{Sale: *created, Total: total}, nil
}
