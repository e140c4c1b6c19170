package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("user not found")
	ErrAlreadyExists   = errors.New("user already exists")
	ErrInvalidArgument = errors.New("invalid argument")
)

// ListFilter controls admin listing. Page is 1-based.
type ListFilter struct {
	Page    int
	PerPage int

	// Role restricts results to users carrying the role (optional).
	Role string

	// IncludeDeleted widens the result set for admin views.
	IncludeDeleted bool
}

// Repository is the persistence contract for user records.
//
// "Active" methods filter on deleted = false AND suspended = false; callers
// relying on them must not distinguish missing from ineligible accounts.
// All single-record mutations are atomic at the row level; no multi-row
// transaction is required by this contract.
type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	FindActiveByID(ctx context.Context, id string) (User, error)
	FindActiveByEmail(ctx context.Context, email string) (User, error)
	FindActiveByRefreshToken(ctx context.Context, token string) (User, error)

	// RotateRefreshToken overwrites the stored refresh token (last write
	// wins) and returns the updated record.
	RotateRefreshToken(ctx context.Context, id, token string) (User, error)

	Update(ctx context.Context, u User) (User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetSuspended(ctx context.Context, id string, suspended bool) error
	SetDeleted(ctx context.Context, id string) error

	List(ctx context.Context, f ListFilter) ([]User, int, error)
}
