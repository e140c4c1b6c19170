package auth

import (
	"context"
	"errors"

	"commerce-platform/internal/users"
)

type ctxKey int

const ctxUser ctxKey = iota

// WithUser stores the authenticated user in context.
func WithUser(ctx context.Context, u users.User) context.Context {
	return context.WithValue(ctx, ctxUser, u)
}

// CurrentUser returns the authenticated user attached by the guard.
func CurrentUser(ctx context.Context) (users.User, error) {
	if u, ok := ctx.Value(ctxUser).(users.User); ok && u.ID != "" {
		return u, nil
	}
	return users.User{}, errors.New("user not in context")
}
