package auth

import (
	"context"
	"errors"
	"time"

	"commerce-platform/internal/users"
)

// CredentialStore is the persistence the guard needs. users.Repository
// satisfies it; tests may supply an in-memory implementation.
type CredentialStore interface {
	FindActiveByID(ctx context.Context, id string) (users.User, error)
	FindActiveByRefreshToken(ctx context.Context, token string) (users.User, error)
	RotateRefreshToken(ctx context.Context, id, token string) (users.User, error)
}

// Credentials is a freshly issued token set for the client.
// SessionToken is a client-visible session marker (the user id); it carries
// no cryptographic meaning.
type Credentials struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	SessionToken string `json:"sessionToken"`
}

// Outcome is the guard's decision for one request. The transport layer
// applies it: set new credentials, clear stale ones, attach the user, or
// respond unauthorized. The guard itself never touches the response.
type Outcome struct {
	Accept bool
	User   users.User

	// SetCredentials is non-nil only when rotation happened.
	SetCredentials *Credentials

	// ClearCredentials asks the transport to drop all session cookies so a
	// client cannot retry with a half-valid credential set.
	ClearCredentials bool

	// Reason is the internal failure cause. Log it; never send it.
	Reason error
}

// Guard gates access to protected operations. Per request it decides to
// proceed, fail, or transparently re-authenticate by rotating the refresh
// token when the access token has merely expired.
//
// The guard holds no mutable state; the user record's refresh-token field is
// the only shared resource it touches, read-then-written with last-write-wins
// semantics. Two concurrent rotations with the same refresh token may both
// succeed, but only the later write survives; the loser's issued pair is
// immediately stale. That race is accepted rather than hidden behind a CAS.
type Guard struct {
	codec        *Codec
	store        CredentialStore
	refreshBytes int
	clock        func() time.Time
}

func NewGuard(codec *Codec, store CredentialStore, refreshBytes int) *Guard {
	if refreshBytes <= 0 {
		refreshBytes = 32
	}
	return &Guard{codec: codec, store: store, refreshBytes: refreshBytes, clock: time.Now}
}

// Authenticate runs the per-request decision flow.
//
//	no access token                  -> reject (ErrTokenMissing)
//	valid token, eligible user       -> accept, read-only
//	valid token, missing/ineligible  -> reject (ErrUserNotEligible)
//	expired token, no refresh token  -> reject (ErrRefreshMissing)
//	expired token, unknown refresh   -> reject (ErrRefreshNotFound)
//	expired token, current refresh   -> rotate both tokens, accept
//	any other verification failure   -> reject (ErrTokenInvalid)
func (g *Guard) Authenticate(ctx context.Context, access, refresh string) Outcome {
	if access == "" {
		return reject(ErrTokenMissing)
	}

	now := g.clock().UTC()
	claims, err := g.codec.Verify(access, now)
	switch {
	case err == nil:
		return g.lookup(ctx, claims)
	case errors.Is(err, ErrTokenExpired):
		return g.rotate(ctx, refresh, now)
	default:
		return reject(ErrTokenInvalid)
	}
}

func (g *Guard) lookup(ctx context.Context, claims Claims) Outcome {
	u, err := g.store.FindActiveByID(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return reject(ErrUserNotEligible)
		}
		return reject(err)
	}
	// Plain-valid-token success mutates nothing.
	return Outcome{Accept: true, User: u}
}

func (g *Guard) rotate(ctx context.Context, refresh string, now time.Time) Outcome {
	if refresh == "" {
		return reject(ErrRefreshMissing)
	}

	u, err := g.store.FindActiveByRefreshToken(ctx, refresh)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			// Already rotated, forged, or revoked. Rejecting here is what
			// makes a replayed stale refresh token useless.
			return reject(ErrRefreshNotFound)
		}
		return reject(err)
	}

	next, err := NewRefreshToken(g.refreshBytes)
	if err != nil {
		return reject(err)
	}
	rotated, err := g.store.RotateRefreshToken(ctx, u.ID, next)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return reject(ErrUserNotEligible)
		}
		return reject(err)
	}

	accessToken, err := g.codec.Sign(now, rotated)
	if err != nil {
		return reject(err)
	}

	return Outcome{
		Accept: true,
		User:   rotated,
		SetCredentials: &Credentials{
			AccessToken:  accessToken,
			RefreshToken: rotated.RefreshToken,
			SessionToken: rotated.ID,
		},
	}
}

func reject(reason error) Outcome {
	return Outcome{ClearCredentials: true, Reason: reason}
}
