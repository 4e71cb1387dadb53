package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-hr-backend/internal/domain"
	"go-hr-backend/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrMalformed marks a message that will never succeed and must not be requeued
var ErrMalformed = errors.New("queue: malformed message")

// MaxDeliveryAttempts bounds how often a failing message is handed back to the broker
const MaxDeliveryAttempts = 5

// RetryDelay is waited before a failed message is requeued
var RetryDelay = 2 * time.Second

// Handler processes one decoded message
type Handler func(ctx context.Context, msg domain.MailMessage) error

// Consume acks successful deliveries, drops malformed ones and requeues the rest
// until they reach MaxDeliveryAttempts.
// It returns when ctx is done or the delivery channel closes.
func Consume(ctx context.Context, deliveries <-chan amqp.Delivery, handle Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			Dispatch(ctx, d, handle)
		}
	}
}

// Dispatch handles a single delivery
func Dispatch(ctx context.Context, d amqp.Delivery, handle Handler) {
	var msg domain.MailMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		logger.Log.Error("Failed to decode mail message", "error", err)
		_ = d.Nack(false, false)
		return
	}

	if err := handle(ctx, msg); err != nil {
		attempt := deliveryAttempt(d)
		requeue := !errors.Is(err, ErrMalformed) && attempt < MaxDeliveryAttempts
		logger.Log.Error("Failed to handle mail message", "type", msg.Type, "attempt", attempt, "requeue", requeue, "error", err)
		if requeue {
			select {
			case <-ctx.Done():
			case <-time.After(RetryDelay):
			}
		}
		_ = d.Nack(false, requeue)
		return
	}
	_ = d.Ack(false)
}

// deliveryAttempt counts this delivery, starting at 1. Quorum queues report
// x-delivery-count and dead-letter cycles add x-death; a classic queue only
// flags redelivery, so a second failure there is final.
func deliveryAttempt(d amqp.Delivery) int {
	n := 1
	if c, ok := tableInt(d.Headers["x-delivery-count"]); ok {
		n += c
	}
	if deaths, ok := d.Headers["x-death"].([]any); ok {
		for _, death := range deaths {
			if t, ok := death.(amqp.Table); ok {
				if c, ok := tableInt(t["count"]); ok {
					n += c
				}
			}
		}
	}
	if n == 1 && d.Redelivered {
		return MaxDeliveryAttempts
	}
	return n
}

func tableInt(v any) (int, bool) {
	switch c := v.(type) {
	case int:
		return c, true
	case int32:
		return int(c), true
	case int64:
		return int(c), true
	}
	return 0, false
}
