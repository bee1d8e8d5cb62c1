package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/feirinha-uesb/storefront/pkg/logger"
)

// EventHandler reacts to one sale event
type EventHandler func(ctx context.Context, event SaleCreatedEvent) error

var (
	errMissingEventType = errors.New("message has no event_type header")
	errNoHandler        = errors.New("no handler registered")
)

// retryDelay is the pause between failed consume sessions
const retryDelay = 2 * time.Second

// Consumer dispatches sale events from a consumer group to registered handlers.
// Messages are marked after dispatch whatever the handler returned.
type Consumer struct {
	group   sarama.ConsumerGroup
	groupID string
	topics  []string

	mu       sync.RWMutex
	handlers map[string]EventHandler
}

// NewConsumer joins groupID on brokers
func NewConsumer(brokers []string, groupID string, topics []string) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer group %s: %w", groupID, err)
	}
	return newConsumer(group, groupID, topics), nil
}

func newConsumer(group sarama.ConsumerGroup, groupID string, topics []string) *Consumer {
	return &Consumer{
		group:    group,
		groupID:  groupID,
		topics:   topics,
		handlers: make(map[string]EventHandler),
	}
}

// RegisterHandler routes eventType to handler, replacing any previous one
func (c *Consumer) RegisterHandler(eventType string, handler EventHandler) {
	c.mu.Lock()
	c.handlers[eventType] = handler
	c.mu.Unlock()
	logger.Logger.Debug().Str("event_type", eventType).Msg("Sale event handler registered")
}

// Start runs the consume loop in the background until ctx is done or the
// group is closed.
func (c *Consumer) Start(ctx context.Context) error {
	go c.consume(ctx)
	go func() {
		for err := range c.group.Errors() {
			logger.Logger.Error().Err(err).Str("group_id", c.groupID).Msg("Kafka consumer group error")
		}
	}()

	logger.Logger.Info().
		Strs("topics", c.topics).
		Str("group_id", c.groupID).
		Msg("Sale consumer started")
	return nil
}

func (c *Consumer) consume(ctx context.Context) {
	handler := groupHandler{consumer: c}
	for {
		err := c.group.Consume(ctx, c.topics, handler)
		switch {
		case errors.Is(err, sarama.ErrClosedConsumerGroup):
			return
		case err != nil:
			logger.Logger.Error().Err(err).Dur("retry_in", retryDelay).Msg("Kafka consume session failed")
			select {
			case <-ctx.Done():
			case <-time.After(retryDelay):
			}
		}
		if ctx.Err() != nil {
			logger.Logger.Info().Str("group_id", c.groupID).Msg("Sale consumer stopped")
			return
		}
	}
}

// Close leaves the consumer group
func (c *Consumer) Close() error {
	if c.group == nil {
		return nil
	}
	return c.group.Close()
}

type groupHandler struct {
	consumer *Consumer
}

func (h groupHandler) Setup(session sarama.ConsumerGroupSession) error {
	logger.Logger.Debug().Interface("claims", session.Claims()).Msg("Kafka partitions assigned")
	return nil
}

func (h groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			h.consumer.handleMessage(session.Context(), message)
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

// route picks the handler for a message and decodes its event
func (c *Consumer) route(headers map[string]string, value []byte) (EventHandler, SaleCreatedEvent, error) {
	var event SaleCreatedEvent
	eventType := headers[headerEventType]
	if eventType == "" {
		return nil, event, errMissingEventType
	}

	c.mu.RLock()
	handler, ok := c.handlers[eventType]
	c.mu.RUnlock()
	if !ok {
		return nil, event, fmt.Errorf("%w for %s", errNoHandler, eventType)
	}

	if err := json.Unmarshal(value, &event); err != nil {
		return nil, event, fmt.Errorf("failed to decode %s event: %w", eventType, err)
	}
	return handler, event, nil
}

// handleMessage dispatches one message and reports whether a handler
// accepted it.
func (c *Consumer) handleMessage(ctx context.Context, message *sarama.ConsumerMessage) bool {
	headers := messageHeaders(message)
	ctx, span := otel.Tracer("storefront-kafka").Start(extractTrace(ctx, headers), "sale.created process",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.source.name", message.Topic),
			attribute.String("messaging.kafka.consumer.group", c.groupID),
			attribute.Int("messaging.kafka.partition", int(message.Partition)),
			attribute.Int64("messaging.kafka.message.offset", message.Offset),
		),
	)
	defer span.End()

	handler, event, err := c.route(headers, message.Value)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		logger.Warn(ctx).Err(err).
			Str("event_type", headers[headerEventType]).
			Str("event_id", headers[headerEventID]).
			Msg("Skipping Kafka message")
		return false
	}
	span.SetAttributes(attribute.Int("sale.id", event.Sale.ID))

	if err := handler(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "handler failed")
		logger.Error(ctx).Err(err).
			Str("event_id", event.EventID).
			Int("sale_id", event.Sale.ID).
			Msg("Sale event handler failed")
		return false
	}

	logger.Debug(ctx).
		Str("event_id", event.EventID).
		Int("sale_id", event.Sale.ID).
		Msg("Sale event handled")
	return true
}
