// Package emails renders and delivers transactional email through a
// Redis-backed queue, so request handlers never block on the mail provider.
package emails

import "time"

// Template names known to the renderer.
const (
	TemplateWelcome           = "welcome"
	TemplateOrderConfirmation = "order_confirmation"
	TemplateOrderRefunded     = "order_refunded"
	TemplatePasswordReset     = "password_reset"
)

// Message is one queued email job. Data feeds the named template.
type Message struct {
	ID       string            `json:"id"`
	To       string            `json:"to"`
	ToName   string            `json:"to_name,omitempty"`
	Template string            `json:"template"`
	Data     map[string]string `json:"data,omitempty"`

	// Attempts counts deliveries tried so far; the worker gives up and
	// dead-letters the job after maxAttempts.
	Attempts int `json:"attempts"`

	EnqueuedAt time.Time `json:"enqueued_at"`
}
