package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderMessage(t *testing.T, eventType string, payload any) *sarama.ConsumerMessage {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	msg := &sarama.ConsumerMessage{Topic: TopicOrderPlaced, Value: raw}
	if eventType != "" {
		msg.Headers = []*sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(eventType)},
			{Key: []byte("event_id"), Value: []byte("evt_1")},
		}
	}
	return msg
}

// scriptedGroup returns the scripted Consume results in order, then blocks
// until the context is done.
type scriptedGroup struct {
	sarama.ConsumerGroup
	results []error
	calls   atomic.Int32
	errs    chan error
}

func newScriptedGroup(results ...error) *scriptedGroup {
	return &scriptedGroup{results: results, errs: make(chan error)}
}

func (g *scriptedGroup) Consume(ctx context.Context, _ []string, _ sarama.ConsumerGroupHandler) error {
	n := int(g.calls.Add(1)) - 1
	if n < len(g.results) {
		return g.results[n]
	}
	<-ctx.Done()
	return ctx.Err()
}

func (g *scriptedGroup) Errors() <-chan error { return g.errs }

func (g *scriptedGroup) Close() error {
	close(g.errs)
	return nil
}

type fakeSession struct {
	sarama.ConsumerGroupSession
	ctx    context.Context
	marked []int64
}

func (s *fakeSession) Context() context.Context { return s.ctx }

func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	messages chan *sarama.ConsumerMessage
}

func (c fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func TestOrderConsumer_AppliesOrderPlaced(t *testing.T) {
	var got []OrderPlacedEvent
	c := newOrderConsumer(newScriptedGroup(), "stock", func(_ context.Context, e OrderPlacedEvent) error {
		got = append(got, e)
		return nil
	})

	c.process(context.Background(), orderMessage(t, EventTypeOrderPlaced, NewOrderPlacedEvent(sampleOrder())))

	require.Len(t, got, 1)
	assert.Equal(t, "ORD-1234abcd", got[0].OrderID)
	assert.Equal(t, 2, got[0].Quantities()["p1"])
}

func TestOrderConsumer_DropsUnusableMessages(t *testing.T) {
	calls := 0
	c := newOrderConsumer(newScriptedGroup(), "stock", func(context.Context, OrderPlacedEvent) error {
		calls++
		return errors.New("stock store down")
	})
	ctx := context.Background()

	c.process(ctx, orderMessage(t, "", map[string]string{}))
	c.process(ctx, orderMessage(t, "order.cancelled", map[string]string{}))
	bad := orderMessage(t, EventTypeOrderPlaced, nil)
	bad.Value = []byte("{")
	c.process(ctx, bad)
	assert.Zero(t, calls)

	c.process(ctx, orderMessage(t, EventTypeOrderPlaced, NewOrderPlacedEvent(sampleOrder())))
	assert.Equal(t, 1, calls)
}

func TestOrderConsumer_ConsumeClaimMarksEveryMessage(t *testing.T) {
	applied := 0
	c := newOrderConsumer(newScriptedGroup(), "stock", func(context.Context, OrderPlacedEvent) error {
		applied++
		return errors.New("handler failures do not block the partition")
	})

	messages := make(chan *sarama.ConsumerMessage, 2)
	first := orderMessage(t, EventTypeOrderPlaced, NewOrderPlacedEvent(sampleOrder()))
	first.Offset = 7
	second := orderMessage(t, "", map[string]string{})
	second.Offset = 8
	messages <- first
	messages <- second
	close(messages)

	session := &fakeSession{ctx: context.Background()}
	require.NoError(t, c.ConsumeClaim(session, fakeClaim{messages: messages}))

	assert.Equal(t, []int64{7, 8}, session.marked)
	assert.Equal(t, 1, applied)
}

func TestOrderConsumer_RunExitsWhenGroupClosed(t *testing.T) {
	group := newScriptedGroup(sarama.ErrClosedConsumerGroup)
	c := newOrderConsumer(group, "stock", nil)
	t.Cleanup(func() { _ = c.Close() })

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
		assert.Equal(t, int32(1), group.calls.Load(), "a closed group is not retried")
	case <-time.After(time.Second):
		t.Fatal("Run kept looping on a closed consumer group")
	}
}

func TestOrderConsumer_RunBacksOffOnFailures(t *testing.T) {
	group := newScriptedGroup(sarama.ErrOutOfBrokers, sarama.ErrOutOfBrokers, nil)
	c := newOrderConsumer(group, "stock", nil)
	c.minDelay = 20 * time.Millisecond
	c.maxDelay = 40 * time.Millisecond
	t.Cleanup(func() { _ = c.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	start := time.Now()
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return group.calls.Load() == 4 }, time.Second, time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond, "two failures wait 20ms then 40ms")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
