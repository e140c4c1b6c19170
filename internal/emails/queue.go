package emails

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	queueKey      = "emails:queue"
	deadLetterKey = "emails:dead"

	maxAttempts = 3
)

var ErrInvalidMessage = errors.New("invalid email message")

// Queue pushes email jobs onto a Redis list consumed by the Worker. Producers
// return as soon as the job is stored; delivery happens out of band.
type Queue struct {
	rdb   *redis.Client
	clock func() time.Time
}

func NewQueue(rdb *redis.Client) *Queue {
	return &Queue{rdb: rdb, clock: time.Now}
}

// Enqueue stores a job for delivery and returns its id.
func (q *Queue) Enqueue(ctx context.Context, m Message) (string, error) {
	if m.To == "" || m.Template == "" {
		return "", ErrInvalidMessage
	}
	if templates.Lookup(m.Template) == nil {
		return "", ErrInvalidMessage
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.Attempts = 0
	m.EnqueuedAt = q.clock().UTC()

	payload, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	if err := q.rdb.LPush(ctx, queueKey, payload).Err(); err != nil {
		return "", err
	}
	return m.ID, nil
}

// Welcome enqueues the signup email. Best effort helpers like this keep
// call sites one-liners.
func (q *Queue) Welcome(ctx context.Context, to, name, store string) error {
	_, err := q.Enqueue(ctx, Message{
		To:       to,
		ToName:   name,
		Template: TemplateWelcome,
		Data:     map[string]string{"Name": displayName(name), "Store": store},
	})
	return err
}

// OrderConfirmation enqueues the paid-order email.
func (q *Queue) OrderConfirmation(ctx context.Context, to, name, store, orderID, total string) error {
	_, err := q.Enqueue(ctx, Message{
		To:       to,
		ToName:   name,
		Template: TemplateOrderConfirmation,
		Data: map[string]string{
			"Name":    displayName(name),
			"Store":   store,
			"OrderID": orderID,
			"Total":   total,
		},
	})
	return err
}

// OrderRefunded enqueues the refund notice.
func (q *Queue) OrderRefunded(ctx context.Context, to, name, store, orderID, total string) error {
	_, err := q.Enqueue(ctx, Message{
		To:       to,
		ToName:   name,
		Template: TemplateOrderRefunded,
		Data: map[string]string{
			"Name":    displayName(name),
			"Store":   store,
			"OrderID": orderID,
			"Total":   total,
		},
	})
	return err
}

// PasswordReset enqueues the temporary-password email.
func (q *Queue) PasswordReset(ctx context.Context, to, name, store, password string) error {
	_, err := q.Enqueue(ctx, Message{
		To:       to,
		ToName:   name,
		Template: TemplatePasswordReset,
		Data: map[string]string{
			"Name":     displayName(name),
			"Store":    store,
			"Password": password,
		},
	})
	return err
}

func displayName(name string) string {
	if name == "" {
		return "there"
	}
	return name
}
