package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/shopsphere-api/internal/model"
)

type mockAcknowledger struct {
	acked, nacked, requeued bool
}

func (m *mockAcknowledger) Ack(uint64, bool) error {
	m.acked = true
	return nil
}

func (m *mockAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	m.nacked, m.requeued = true, requeue
	return nil
}

func (m *mockAcknowledger) Reject(_ uint64, requeue bool) error {
	m.nacked, m.requeued = true, requeue
	return nil
}

type mockCache struct {
	invalidated []uuid.UUID
}

func (m *mockCache) Invalidate(_ context.Context, id uuid.UUID) {
	m.invalidated = append(m.invalidated, id)
}

type mockIdempotency struct {
	seen map[uuid.UUID]bool
	err  error
}

func newMockIdempotency() *mockIdempotency {
	return &mockIdempotency{seen: make(map[uuid.UUID]bool)}
}

func (m *mockIdempotency) Seen(_ context.Context, id uuid.UUID) (bool, error) {
	return m.seen[id], m.err
}

func (m *mockIdempotency) Mark(_ context.Context, id uuid.UUID) error {
	m.seen[id] = true
	return nil
}

func newTestWorker() (*OrderWorker, *mockCache, *mockIdempotency) {
	cache, seen := &mockCache{}, newMockIdempotency()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewOrderWorker(nil, cache, seen, log), cache, seen
}

func delivery(t *testing.T, v any) (amqp.Delivery, *mockAcknowledger) {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	ack := &mockAcknowledger{}
	return amqp.Delivery{Acknowledger: ack, Body: body}, ack
}

func testEvent(t model.OrderEventType, products ...uuid.UUID) model.OrderEvent {
	order := &model.Order{ID: uuid.New(), OrderNumber: "ORD-1-00001", Status: model.OrderStatusPending}
	for _, id := range products {
		order.Items = append(order.Items, model.OrderItem{ProductID: id, Quantity: 1})
	}
	return model.NewOrderEvent(t, order)
}

func TestOrderWorker_InvalidatesItemProducts(t *testing.T) {
	w, cache, seen := newTestWorker()
	p1, p2 := uuid.New(), uuid.New()
	event := testEvent(model.OrderEventCreated, p1, p2)

	msg, ack := delivery(t, event)
	w.processMessage(context.Background(), msg)

	assert.True(t, ack.acked)
	assert.Equal(t, []uuid.UUID{p1, p2}, cache.invalidated)
	assert.True(t, seen.seen[event.ID])
}

func TestOrderWorker_SkipsDuplicates(t *testing.T) {
	w, cache, seen := newTestWorker()
	event := testEvent(model.OrderEventCancelled, uuid.New())
	seen.seen[event.ID] = true

	msg, ack := delivery(t, event)
	w.processMessage(context.Background(), msg)

	assert.True(t, ack.acked)
	assert.Empty(t, cache.invalidated)
}

func TestOrderWorker_DeadLettersBadMessages(t *testing.T) {
	w, _, _ := newTestWorker()

	ack := &mockAcknowledger{}
	w.processMessage(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte("{not json")})
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeued)

	msg, ack := delivery(t, testEvent("order.teleported", uuid.New()))
	w.processMessage(context.Background(), msg)
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeued)

	msg, ack = delivery(t, model.OrderEvent{Type: model.OrderEventCreated})
	w.processMessage(context.Background(), msg)
	assert.True(t, ack.nacked)
}

func TestOrderWorker_RequeuesWhenIdempotencyUnavailable(t *testing.T) {
	w, cache, seen := newTestWorker()
	seen.err = errors.New("redis down")

	msg, ack := delivery(t, testEvent(model.OrderEventStatusChanged, uuid.New()))
	w.processMessage(context.Background(), msg)

	assert.True(t, ack.nacked)
	assert.True(t, ack.requeued)
	assert.Empty(t, cache.invalidated)
}
