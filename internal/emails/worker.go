package emails

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const popTimeout = 5 * time.Second

// Worker drains the email queue, rendering and sending each job. Failed
// jobs are retried up to maxAttempts, then parked on a dead-letter list for
// operator inspection.
type Worker struct {
	rdb    *redis.Client
	sender Sender
	log    *slog.Logger

	// retryDelay spaces out redelivery of a failed job.
	retryDelay time.Duration
}

func NewWorker(rdb *redis.Client, sender Sender, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{
		rdb:        rdb,
		sender:     sender,
		log:        log,
		retryDelay: 30 * time.Second,
	}
}

// Run blocks, processing jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.log.Info("email worker started")
	for {
		if err := w.ProcessOne(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				w.log.Info("email worker stopped")
				return
			}
			w.log.Error("email worker iteration failed", "error", err.Error())
			// Back off briefly so a broken redis does not spin the loop.
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}
	}
}

// ProcessOne pops and handles a single job. A pop timeout with an empty
// queue is not an error.
func (w *Worker) ProcessOne(ctx context.Context) error {
	vals, err := w.rdb.BRPop(ctx, popTimeout, queueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}
	// BRPop returns [key, value].
	if len(vals) != 2 {
		return nil
	}

	var m Message
	if err := json.Unmarshal([]byte(vals[1]), &m); err != nil {
		// Undecodable payloads go straight to the dead letter list.
		w.log.Error("email job undecodable", "error", err.Error())
		return w.rdb.LPush(ctx, deadLetterKey, vals[1]).Err()
	}

	if err := w.deliver(ctx, m); err != nil {
		return w.retry(ctx, m, err)
	}
	w.log.Info("email sent", "id", m.ID, "template", m.Template)
	return nil
}

func (w *Worker) deliver(ctx context.Context, m Message) error {
	r, err := Render(m)
	if err != nil {
		return err
	}
	return w.sender.Send(ctx, m.To, m.ToName, r)
}

func (w *Worker) retry(ctx context.Context, m Message, cause error) error {
	m.Attempts++
	if m.Attempts >= maxAttempts {
		w.log.Error("email dead-lettered",
			"id", m.ID, "template", m.Template, "attempts", m.Attempts, "error", cause.Error())
		payload, err := json.Marshal(m)
		if err != nil {
			return err
		}
		return w.rdb.LPush(ctx, deadLetterKey, payload).Err()
	}

	w.log.Warn("email delivery failed, requeueing",
		"id", m.ID, "template", m.Template, "attempts", m.Attempts, "error", cause.Error())
	if w.retryDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.retryDelay):
		}
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return w.rdb.LPush(ctx, queueKey, payload).Err()
}

// DeadLetters returns the parked jobs, newest first. Admin surface.
func DeadLetters(ctx context.Context, rdb *redis.Client, limit int64) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}
	raw, err := rdb.LRange(ctx, deadLetterKey, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Message, 0, len(raw))
	for _, v := range raw {
		var m Message
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}
