package auth

import (
	"context"
	"errors"
	"time"

	"commerce-platform/internal/users"

	"golang.org/x/crypto/bcrypt"
)

// Service implements the login flows: password login, guest checkout login,
// Google sign-in, and logout. Every successful password or Google login
// rotates the stored refresh token, invalidating prior sessions' refresh
// capability (access tokens already issued remain valid until expiry).
type Service struct {
	repo         users.Repository
	codec        *Codec
	refreshBytes int
	google       *GoogleAuthenticator
	clock        func() time.Time
}

func NewService(repo users.Repository, codec *Codec, refreshBytes int, google *GoogleAuthenticator) *Service {
	if refreshBytes <= 0 {
		refreshBytes = 32
	}
	return &Service{
		repo:         repo,
		codec:        codec,
		refreshBytes: refreshBytes,
		google:       google,
		clock:        time.Now,
	}
}

// Login authenticates an email/password pair for customer or admin accounts.
func (s *Service) Login(ctx context.Context, email, password string) (Credentials, users.User, error) {
	u, err := s.repo.FindActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return Credentials{}, users.User{}, ErrInvalidCredentials
		}
		return Credentials{}, users.User{}, err
	}
	if !u.HasRole(users.RoleCustomer) && !u.HasRole(users.RoleAdmin) {
		return Credentials{}, users.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return Credentials{}, users.User{}, ErrInvalidCredentials
	}
	return s.issue(ctx, u)
}

// GuestLogin creates (or reuses) a guest account identified by email and
// issues an access token only. Guests get no refresh token: their sessions
// end when the access token expires.
func (s *Service) GuestLogin(ctx context.Context, email string) (string, users.User, error) {
	u, err := s.repo.FindActiveByEmail(ctx, email)
	if errors.Is(err, users.ErrNotFound) {
		u, err = s.createShadowUser(ctx, email, "", []string{users.RoleGuest})
	}
	if err != nil {
		return "", users.User{}, err
	}

	access, err := s.codec.Sign(s.clock().UTC(), u)
	if err != nil {
		return "", users.User{}, err
	}
	return access, u, nil
}

// GoogleAuthURL returns the consent-screen URL to redirect the browser to.
func (s *Service) GoogleAuthURL(state string) (string, error) {
	if s.google == nil {
		return "", errors.New("google sign-in not configured")
	}
	return s.google.AuthURL(state), nil
}

// GoogleLogin exchanges the OAuth code, provisions or updates the matching
// user, and issues a fresh credential pair.
func (s *Service) GoogleLogin(ctx context.Context, code string) (Credentials, users.User, error) {
	if s.google == nil {
		return Credentials{}, users.User{}, errors.New("google sign-in not configured")
	}
	info, err := s.google.Exchange(ctx, code)
	if err != nil {
		return Credentials{}, users.User{}, err
	}

	u, err := s.repo.FindActiveByEmail(ctx, info.Email)
	switch {
	case errors.Is(err, users.ErrNotFound):
		u, err = s.createShadowUser(ctx, info.Email, info.Picture, []string{users.RoleCustomer})
		if err != nil {
			return Credentials{}, users.User{}, err
		}
	case err != nil:
		return Credentials{}, users.User{}, err
	default:
		// Existing account keeps its admin role if it has one.
		u.Avatar = info.Picture
		if u, err = s.repo.Update(ctx, u); err != nil {
			return Credentials{}, users.User{}, err
		}
	}

	return s.issue(ctx, u)
}

// Logout invalidates the stored refresh token. Outstanding access tokens
// stay valid until expiry, but no rotation is possible afterwards.
func (s *Service) Logout(ctx context.Context, userID string) error {
	_, err := s.repo.RotateRefreshToken(ctx, userID, "")
	if errors.Is(err, users.ErrNotFound) {
		return nil
	}
	return err
}

func (s *Service) issue(ctx context.Context, u users.User) (Credentials, users.User, error) {
	refresh, err := NewRefreshToken(s.refreshBytes)
	if err != nil {
		return Credentials{}, users.User{}, err
	}
	rotated, err := s.repo.RotateRefreshToken(ctx, u.ID, refresh)
	if err != nil {
		return Credentials{}, users.User{}, err
	}
	access, err := s.codec.Sign(s.clock().UTC(), rotated)
	if err != nil {
		return Credentials{}, users.User{}, err
	}
	return Credentials{
		AccessToken:  access,
		RefreshToken: rotated.RefreshToken,
		SessionToken: rotated.ID,
	}, rotated, nil
}

// createShadowUser provisions an account without a caller-chosen password
// (guest and external-identity logins). The password slot is filled with a
// hash of random bytes so it can never be matched.
func (s *Service) createShadowUser(ctx context.Context, email, avatar string, roles []string) (users.User, error) {
	random, err := NewRefreshToken(16)
	if err != nil {
		return users.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(random), bcrypt.DefaultCost)
	if err != nil {
		return users.User{}, err
	}
	now := s.clock().UTC()
	return s.repo.Create(ctx, users.User{
		ID:           newID(),
		Email:        email,
		PasswordHash: string(hash),
		Avatar:       avatar,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}
