package audit

import "time"

// Event is an immutable, append-only audit log record for admin actions.
//
// Invariants:
// - Events are never updated or deleted.
// - Actor and ip capture are best-effort; never block business flows on
//   audit failures.
type Event struct {
	ID string `json:"id" db:"id"`

	// Type indicates the business category of the audit record.
	Type EventType `json:"type" db:"type"`

	// ActorUserID is the authenticated admin causing the event.
	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorEmail  string `json:"actor_email,omitempty" db:"actor_email"`

	// IPAddress stores the resolved client IP when available.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// Target identifiers (optional, depending on the event type).
	TargetUserID string `json:"target_user_id,omitempty" db:"target_user_id"`
	OrderID      string `json:"order_id,omitempty" db:"order_id"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventUserSuspended      EventType = "user_suspended"
	EventUserUnsuspended    EventType = "user_unsuspended"
	EventUserDeleted        EventType = "user_deleted"
	EventOrderStatusChanged EventType = "order_status_changed"
	EventOrderRefunded      EventType = "order_refunded"
)
