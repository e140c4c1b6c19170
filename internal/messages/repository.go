package messages

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("message not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

type ListFilter struct {
	Page    int
	PerPage int
	Status  Status
}

type Repository interface {
	Create(ctx context.Context, m Message) (Message, error)
	FindByID(ctx context.Context, id string) (Message, error)
	SetStatus(ctx context.Context, id string, s Status) (Message, error)
	List(ctx context.Context, f ListFilter) ([]Message, int, error)
}
