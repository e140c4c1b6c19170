package profile

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("profile not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Repository stores one profile per user, keyed by user id.
type Repository interface {
	// Upsert inserts or replaces the profile for p.UserID.
	Upsert(ctx context.Context, p Profile) (Profile, error)
	FindByUserID(ctx context.Context, userID string) (Profile, error)
	// FindByUserIDs returns the profiles that exist for the given ids;
	// missing ids are simply absent from the result.
	FindByUserIDs(ctx context.Context, userIDs []string) (map[string]Profile, error)
	Delete(ctx context.Context, userID string) error
}
