package kafka

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/feirinha-uesb/storefront/internal/domain"
)

// SaleCreatedEvent is published after a checkout created a sale on the backend
type SaleCreatedEvent struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Sale      domain.Sale     `json:"sale"`
	Total     decimal.Decimal `json:"total"`
	Timestamp time.Time       `json:"timestamp"`
}

// Event types
const (
	EventTypeSaleCreated = "sale.created"
)

// Kafka topics
const (
	TopicSaleCreated = "sale-created"
)

const (
	headerEventType = "event_type"
	headerEventID   = "event_id"
)

// traceHeaders are the W3C propagation keys carried next to the event headers
var traceHeaders = []string{"traceparent", "tracestate"}

// eventHeaders builds the record headers of an event, including the trace
// context of ctx.
func eventHeaders(ctx context.Context, eventType, eventID string) []sarama.RecordHeader {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{Key: []byte(headerEventType), Value: []byte(eventType)},
		{Key: []byte(headerEventID), Value: []byte(eventID)},
	}
	for _, key := range traceHeaders {
		if value := carrier.Get(key); value != "" {
			headers = append(headers, sarama.RecordHeader{Key: []byte(key), Value: []byte(value)})
		}
	}
	return headers
}

// messageHeaders indexes the non-nil headers of a consumed message
func messageHeaders(message *sarama.ConsumerMessage) map[string]string {
	out := make(map[string]string, len(message.Headers))
	for _, h := range message.Headers {
		if h != nil {
			out[string(h.Key)] = string(h.Value)
		}
	}
	return out
}

// extractTrace continues the producer's trace from the message headers
func extractTrace(ctx context.Context, headers map[string]string) context.Context {
	carrier := propagation.MapCarrier{}
	for _, key := range traceHeaders {
		if value := headers[key]; value != "" {
			carrier[key] = value
		}
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}

// partitionKey keeps the sales of one buyer on one partition
func partitionKey(sale domain.Sale) sarama.Encoder {
	return sarama.StringEncoder("buyer:" + sale.UserCode)
}
