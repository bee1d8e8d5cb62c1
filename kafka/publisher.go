package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/feirinha-uesb/storefront/pkg/logger"
)

// Publisher announces storefront sales on a Kafka topic
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewPublisher connects a synchronous producer to brokers
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	p := NewPublisherWithProducer(producer, topic)
	logger.Logger.Info().
		Strs("brokers", brokers).
		Str("topic", p.topic).
		Msg("Sale publisher connected")
	return p, nil
}

// NewPublisherWithProducer wraps an existing producer. An empty topic
// selects TopicSaleCreated.
func NewPublisherWithProducer(producer sarama.SyncProducer, topic string) *Publisher {
	if topic == "" {
		topic = TopicSaleCreated
	}
	return &Publisher{producer: producer, topic: topic}
}

// PublishSaleCreated stamps the event and sends it synchronously. The
// event id is kept when the caller already set one.
func (p *Publisher) PublishSaleCreated(ctx context.Context, event SaleCreatedEvent) error {
	ctx, span := otel.Tracer("storefront-kafka").Start(ctx, "sale.created publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", p.topic),
			attribute.Int("sale.id", event.Sale.ID),
			attribute.Int("sale.tent_code", event.Sale.TentCode),
		),
	)
	defer span.End()

	msg, err := p.saleMessage(ctx, &event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "encode event")
		return err
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send event")
		logger.Error(ctx).Err(err).
			Str("topic", p.topic).
			Int("sale_id", event.Sale.ID).
			Msg("Failed to publish sale")
		return fmt.Errorf("failed to publish sale %d: %w", event.Sale.ID, err)
	}

	span.SetAttributes(
		attribute.String("messaging.message.id", event.EventID),
		attribute.Int64("messaging.kafka.message.offset", offset),
	)
	logger.Info(ctx).
		Str("event_id", event.EventID).
		Int("sale_id", event.Sale.ID).
		Int("items", len(event.Sale.Items)).
		Str("total", event.Total.StringFixed(2)).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Sale published")
	return nil
}

func (p *Publisher) saleMessage(ctx context.Context, event *SaleCreatedEvent) (*sarama.ProducerMessage, error) {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	event.EventType = EventTypeSaleCreated
	event.Total = event.Sale.Total()
	event.Timestamp = time.Now().UTC()

	value, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sale %d: %w", event.Sale.ID, err)
	}
	return &sarama.ProducerMessage{
		Topic:   p.topic,
		Key:     partitionKey(event.Sale),
		Value:   sarama.ByteEncoder(value),
		Headers: eventHeaders(ctx, event.EventType, event.EventID),
	}, nil
}

// Close flushes and closes the producer
func (p *Publisher) Close() error {
	if p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
