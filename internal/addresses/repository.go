package addresses

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("address not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Repository scopes every operation to a user; an address id from another
// user behaves as missing.
type Repository interface {
	Create(ctx context.Context, a Address) (Address, error)
	FindByID(ctx context.Context, userID, id string) (Address, error)
	Update(ctx context.Context, a Address) (Address, error)
	Delete(ctx context.Context, userID, id string) error
	ListByUser(ctx context.Context, userID string) ([]Address, error)

	// SetDefault marks one address default and clears the flag on the
	// user's others of the same kind.
	SetDefault(ctx context.Context, userID, id string) (Address, error)
}
