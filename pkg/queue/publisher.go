package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-hr-backend/internal/domain"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultQueue is the notification queue name
const DefaultQueue = "email_queue"

// Channel is the subset of *amqp.Channel used for publishing
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Connection owns the broker connection and the publishing channel
type Connection struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Dial connects and declares the durable queue
func Dial(dsn, queue string) (*Connection, error) {
	conn, err := amqp.Dial(dsn)
	if err != nil {
		return nil, fmt.Errorf("queue: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("queue: channel: %w", err)
	}
	if _, err := Declare(ch, queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &Connection{conn: conn, ch: ch}, nil
}

// Declare declares queue as durable and non-exclusive
func Declare(ch *amqp.Channel, queue string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return q, fmt.Errorf("queue: declare %s: %w", queue, err)
	}
	return q, nil
}

func (c *Connection) Channel() *amqp.Channel { return c.ch }

func (c *Connection) IsClosed() bool { return c.conn == nil || c.conn.IsClosed() }

func (c *Connection) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	return c.conn.Close()
}

// Publisher puts mail messages on the queue. It implements domain.Notifier.
type Publisher struct {
	ch      Channel
	queue   string
	timeout time.Duration
}

func NewPublisher(ch Channel, queue string, timeout time.Duration) *Publisher {
	if queue == "" {
		queue = DefaultQueue
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Publisher{ch: ch, queue: queue, timeout: timeout}
}

func (p *Publisher) Publish(ctx context.Context, msg domain.MailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("queue: encode: %w", err)
	}
	// Publishing outlives the request that triggered it
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	return p.ch.PublishWithContext(ctx, "", p.queue, true, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

func (p *Publisher) NotifyStatusChanged(ctx context.Context, c *domain.Candidate, entry domain.StatusHistoryEntry) error {
	return p.Publish(ctx, StatusChangedMessage(c, entry))
}

// StatusChangedMessage builds the queue payload for a committed transition
func StatusChangedMessage(c *domain.Candidate, entry domain.StatusHistoryEntry) domain.MailMessage {
	data := domain.StatusChangedMailData{
		CandidateID: c.ID,
		FullName:    c.FullName,
		Status:      entry.Status,
		StatusLabel: entry.Status.Label(),
		ChangedAt:   entry.ChangedAt.UTC().Format(time.RFC3339),
	}
	if entry.Feedback != nil {
		data.Feedback = *entry.Feedback
	}
	return domain.MailMessage{
		Type: domain.MailTypeStatusChanged,
		To:   c.Email,
		Data: data,
	}
}
