package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/ministore/pkg/logger"
)

const (
	minRetryDelay = 500 * time.Millisecond
	maxRetryDelay = 30 * time.Second
)

// OrderHandler applies one placed order.
type OrderHandler func(ctx context.Context, event OrderPlacedEvent) error

// OrderConsumer feeds order.placed events from a consumer group to a single
// handler. Messages are marked consumed even when the handler fails, so a bad
// order never blocks the partition.
type OrderConsumer struct {
	group   sarama.ConsumerGroup
	groupID string
	handle  OrderHandler

	minDelay time.Duration
	maxDelay time.Duration
}

// NewOrderConsumer joins groupID on the order-placed topic.
func NewOrderConsumer(brokers []string, groupID string, handle OrderHandler) (*OrderConsumer, error) {
	group, err := sarama.NewConsumerGroup(brokers, groupID, NewConsumerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to join consumer group %q: %w", groupID, err)
	}
	return newOrderConsumer(group, groupID, handle), nil
}

func newOrderConsumer(group sarama.ConsumerGroup, groupID string, handle OrderHandler) *OrderConsumer {
	return &OrderConsumer{
		group:    group,
		groupID:  groupID,
		handle:   handle,
		minDelay: minRetryDelay,
		maxDelay: maxRetryDelay,
	}
}

// NewConsumerConfig is the consumer group configuration used by NewOrderConsumer.
func NewConsumerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Version = sarama.V2_6_0_0
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Return.Errors = true
	return config
}

// Run consumes until ctx is done or the group is closed. A failing session is
// retried with exponential backoff.
func (c *OrderConsumer) Run(ctx context.Context) error {
	go c.logErrors(ctx)

	logger.Info(ctx).
		Str("group_id", c.groupID).
		Str("topic", TopicOrderPlaced).
		Msg("Order consumer running")

	delay := c.minDelay
	for {
		err := c.group.Consume(ctx, []string{TopicOrderPlaced}, c)
		switch {
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, sarama.ErrClosedConsumerGroup):
			logger.Info(ctx).Str("group_id", c.groupID).Msg("Order consumer closed")
			return nil
		case err == nil:
			// rebalance ended the session
			delay = c.minDelay
			continue
		}

		logger.Warn(ctx).
			Err(err).
			Str("group_id", c.groupID).
			Dur("retry_in", delay).
			Msg("Order consumer session failed")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
		delay = min(delay*2, c.maxDelay)
	}
}

func (c *OrderConsumer) logErrors(ctx context.Context) {
	for err := range c.group.Errors() {
		logger.Warn(ctx).Err(err).Str("group_id", c.groupID).Msg("Order consumer error")
	}
}

// Close leaves the consumer group.
func (c *OrderConsumer) Close() error {
	return c.group.Close()
}

func (c *OrderConsumer) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (c *OrderConsumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (c *OrderConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case <-session.Context().Done():
			return nil
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			c.process(session.Context(), msg)
			session.MarkMessage(msg, "")
		}
	}
}

func headerValue(msg *sarama.ConsumerMessage, key string) string {
	for _, h := range msg.Headers {
		if h != nil && string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}

// process decodes one message and hands it to the handler. Anything that is
// not a readable order.placed event is logged and dropped.
func (c *OrderConsumer) process(ctx context.Context, msg *sarama.ConsumerMessage) {
	carrier := propagation.MapCarrier{}
	for _, key := range otel.GetTextMapPropagator().Fields() {
		if v := headerValue(msg, key); v != "" {
			carrier[key] = v
		}
	}
	ctx = otel.GetTextMapPropagator().Extract(ctx, carrier)

	ctx, span := otel.Tracer("kafka-consumer").Start(ctx, "kafka.consume.order_placed",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.source", msg.Topic),
			attribute.Int("messaging.kafka.partition", int(msg.Partition)),
			attribute.Int64("messaging.kafka.offset", msg.Offset),
		),
	)
	defer span.End()

	log := logger.WithContext(ctx).With().
		Str("topic", msg.Topic).
		Int32("partition", msg.Partition).
		Int64("offset", msg.Offset).
		Logger()

	if eventType := headerValue(msg, "event_type"); eventType != EventTypeOrderPlaced {
		span.SetStatus(codes.Error, "unexpected event type")
		log.Warn().Str("event_type", eventType).Msg("Skipping message that is not an order.placed event")
		return
	}

	var event OrderPlacedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed event")
		log.Error().Err(err).Msg("Skipping malformed order.placed event")
		return
	}
	span.SetAttributes(
		attribute.String("event.id", event.EventID),
		attribute.String("order.id", event.OrderID),
	)

	if err := c.handle(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "handler failed")
		log.Error().Err(err).Str("order_id", event.OrderID).Msg("Failed to apply placed order")
		return
	}

	span.SetStatus(codes.Ok, "")
	log.Info().
		Str("event_id", event.EventID).
		Str("order_id", event.OrderID).
		Int("lines", len(event.Lines)).
		Msg("Placed order applied")
}
