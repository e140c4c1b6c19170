package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
// It is append-only; no Update/Delete methods exist.
type Repository interface {
	Append(ctx context.Context, e Event) error
	List(ctx context.Context, f ListFilter) ([]Event, int, error)
}

type ListFilter struct {
	Page    int
	PerPage int

	Type         EventType
	TargetUserID string
	OrderID      string
}

// Service records internal audit information. Audit records are internal
// only; they are exposed solely through the admin API. Callers treat
// logging as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// Actor identifies who performed an admin action.
type Actor struct {
	UserID string
	Email  string
	IP     string
}

// LogUserAction records an admin action against a user account.
func (s *Service) LogUserAction(ctx context.Context, t EventType, actor Actor, targetUserID, message string) error {
	return s.Append(ctx, Event{
		Type:         t,
		ActorUserID:  actor.UserID,
		ActorEmail:   actor.Email,
		IPAddress:    actor.IP,
		TargetUserID: targetUserID,
		Message:      message,
	})
}

// LogOrderAction records an admin action against an order.
func (s *Service) LogOrderAction(ctx context.Context, t EventType, actor Actor, orderID, message, metadata string) error {
	return s.Append(ctx, Event{
		Type:        t,
		ActorUserID: actor.UserID,
		ActorEmail:  actor.Email,
		IPAddress:   actor.IP,
		OrderID:     orderID,
		Message:     message,
		Metadata:    metadata,
	})
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Event, int, error) {
	return s.repo.List(ctx, f)
}
