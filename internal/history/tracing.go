package history

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/feirinha-uesb/storefront/internal/domain"
)

var tracer = otel.Tracer("history-provider")

// TracingProvider wraps a Provider with spans
type TracingProvider struct {
	Provider
	kind string
}

// WithTracing wraps p so every call is traced under its kind
func WithTracing(kind string, p Provider) *TracingProvider {
	return &TracingProvider{Provider: p, kind: kind}
}

// Record with tracing
func (t *TracingProvider) Record(ctx context.Context, sale domain.Sale) error {
	ctx, span := tracer.Start(ctx, "history.Record",
		trace.WithAttributes(
			attribute.String("history.provider", t.kind),
			attribute.Int("sale.id", sale.ID),
			attribute.String("sale.user_code", sale.UserCode),
			attribute.Int("sale.items", len(sale.Items)),
		),
	)
	defer span.End()

	if err := t.Provider.Record(ctx, sale); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// ListByUser with tracing
func (t *TracingProvider) ListByUser(ctx context.Context, userCode string) ([]domain.Sale, error) {
	ctx, span := tracer.Start(ctx, "history.ListByUser",
		trace.WithAttributes(
			attribute.String("history.provider", t.kind),
			attribute.String("sale.user_code", userCode),
		),
	)
	defer span.End()

	sales, err := t.Provider.ListByUser(ctx, userCode)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("history.count", len(sales)))
	return sales, nil
}
