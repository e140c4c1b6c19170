package orders

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type ListFilter struct {
	Page    int
	PerPage int

	// UserID limits to one customer's orders; empty lists all (admin).
	UserID string

	Status OrderStatus

	// From/To bound CreatedAt (inclusive from, exclusive to).
	From time.Time
	To   time.Time
}

// Repository abstracts order persistence.
type Repository interface {
	Create(ctx context.Context, o Order) (Order, error)
	FindByID(ctx context.Context, id string) (Order, error)
	FindBySession(ctx context.Context, session string) (Order, error)

	// UpdateStatus moves the order to a new status, enforcing the lifecycle
	// inside the storage transaction. ErrInvalidTransition when the move is
	// not legal from the current status.
	UpdateStatus(ctx context.Context, id string, to OrderStatus) (Order, error)

	List(ctx context.Context, f ListFilter) ([]Order, int, error)
}
