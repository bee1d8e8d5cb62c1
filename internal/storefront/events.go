package storefront

import (
	"context"
	"fmt"

	"github.com/feirinha-uesb/storefront/internal/domain"
	"github.com/feirinha-uesb/storefront/kafka"
	"github.com/feirinha-uesb/storefront/pkg/logger"
)

// CatalogInvalidator drops cached catalog data
type CatalogInvalidator interface {
	InvalidateCatalog(ctx context.Context) error
}

// SaleRecorder stores a sale in a history mirror
type SaleRecorder interface {
	Record(ctx context.Context, sale domain.Sale) error
}

// NewSaleEventHandler handles sale.created events: stock changed, so the
// catalog cache is dropped, and the sale is mirrored when mirror is set.
func NewSaleEventHandler(cache CatalogInvalidator, mirror SaleRecorder) kafka.EventHandler {
	return func(ctx context.Context, event kafka.SaleCreatedEvent) error {
		if cache != nil {
			if err := cache.InvalidateCatalog(ctx); err != nil {
				logger.Warn(ctx).Err(err).Str("event_id", event.EventID).Msg("Failed to invalidate catalog cache")
			}
		}

		if mirror != nil {
			if err := mirror.Record(ctx, event.Sale); err != nil {
				return fmt.Errorf("failed to mirror sale %d: %w", event.Sale.ID, err)
			}
		}

		logger.Debug(ctx).
			Str("event_id", event.EventID).
			Int("sale_id", event.Sale.ID).
			Str("user_code", event.Sale.UserCode).
			Msg("Sale event handled")
		return nil
	}
}
