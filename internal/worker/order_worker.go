package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/flicky/shopsphere-api/internal/model"
	"github.com/flicky/shopsphere-api/internal/service"
)

const (
	eventsExchange = "orders.events"
	orderQueueName = "orders"
	dlxExchange    = "orders.dlx"
	dlqQueueName   = "orders.dlq"
	idempotencyTTL = 24 * time.Hour
)

// SetupRabbitMQ declares the event exchange, the consumer queue and its
// dead-letter exchange and queue.
func SetupRabbitMQ(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(eventsExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare events exchange: %w", err)
	}
	if err := ch.ExchangeDeclare(dlxExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLX: %w", err)
	}
	if _, err := ch.QueueDeclare(dlqQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLQ: %w", err)
	}
	if err := ch.QueueBind(dlqQueueName, orderQueueName, dlxExchange, false, nil); err != nil {
		return fmt.Errorf("bind DLQ: %w", err)
	}
	if _, err := ch.QueueDeclare(orderQueueName, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    dlxExchange,
		"x-dead-letter-routing-key": orderQueueName,
	}); err != nil {
		return fmt.Errorf("declare order queue: %w", err)
	}
	if err := ch.QueueBind(orderQueueName, "order.#", eventsExchange, false, nil); err != nil {
		return fmt.Errorf("bind order queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set QoS: %w", err)
	}
	return nil
}

// IdempotencyStore remembers which events were already handled.
type IdempotencyStore interface {
	Seen(ctx context.Context, eventID uuid.UUID) (bool, error)
	Mark(ctx context.Context, eventID uuid.UUID) error
}

type redisIdempotency struct {
	client *redis.Client
}

func NewRedisIdempotency(client *redis.Client) IdempotencyStore {
	return &redisIdempotency{client: client}
}

func idempotencyKey(eventID uuid.UUID) string {
	return "order_event_processed:" + eventID.String()
}

func (r *redisIdempotency) Seen(ctx context.Context, eventID uuid.UUID) (bool, error) {
	n, err := r.client.Exists(ctx, idempotencyKey(eventID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *redisIdempotency) Mark(ctx context.Context, eventID uuid.UUID) error {
	return r.client.Set(ctx, idempotencyKey(eventID), "1", idempotencyTTL).Err()
}

// OrderWorker consumes order lifecycle events. Every event changes stock
// or sales for its items, so their cached product entries are dropped.
type OrderWorker struct {
	channel *amqp.Channel
	cache   service.ProductCache
	seen    IdempotencyStore
	log     *slog.Logger
	done    chan struct{}
}

func NewOrderWorker(ch *amqp.Channel, cache service.ProductCache, seen IdempotencyStore, log *slog.Logger) *OrderWorker {
	return &OrderWorker{
		channel: ch,
		cache:   cache,
		seen:    seen,
		log:     log,
		done:    make(chan struct{}),
	}
}

func (w *OrderWorker) Start(ctx context.Context) error {
	msgs, err := w.channel.Consume(orderQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				w.processMessage(ctx, msg)
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	w.log.Info("order worker started")
	return nil
}

func (w *OrderWorker) Stop() { close(w.done) }

func (w *OrderWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	var event model.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		w.log.Error("unmarshal order event", "error", err)
		_ = msg.Nack(false, false)
		return
	}
	if event.ID == uuid.Nil || event.OrderID == uuid.Nil {
		w.log.Error("order event missing ids", "type", event.Type)
		_ = msg.Nack(false, false)
		return
	}

	log := w.log.With("event_id", event.ID, "order_id", event.OrderID, "type", event.Type)

	seen, err := w.seen.Seen(ctx, event.ID)
	if err != nil {
		log.Error("check idempotency key", "error", err)
		_ = msg.Nack(false, true)
		return
	}
	if seen {
		log.Info("event already processed, skipping")
		_ = msg.Ack(false)
		return
	}

	if err := w.handle(ctx, event); err != nil {
		log.Error("handle order event", "error", err)
		_ = msg.Nack(false, false)
		return
	}

	if err := w.seen.Mark(ctx, event.ID); err != nil {
		log.Error("set idempotency key", "error", err)
	}

	_ = msg.Ack(false)
	log.Info("order event processed", "items", len(event.Items))
}

func (w *OrderWorker) handle(ctx context.Context, event model.OrderEvent) error {
	switch event.Type {
	case model.OrderEventCreated, model.OrderEventCancelled, model.OrderEventStatusChanged:
	default:
		return fmt.Errorf("unknown event type %q", event.Type)
	}
	for _, it := range event.Items {
		w.cache.Invalidate(ctx, it.ProductID)
	}
	return nil
}
