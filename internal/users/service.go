package users

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrWeakPassword = errors.New("password should be at least 8 characters long and should contain a digit, uppercase and lowercase letters")
	ErrBadPassword  = errors.New("current password does not match")
)

// Service implements user management on top of a Repository.
type Service struct {
	repo       Repository
	bcryptCost int
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, bcryptCost: bcrypt.DefaultCost, clock: time.Now}
}

type RegisterRequest struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Avatar   string   `json:"avatar,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return User{}, ErrInvalidArgument
	}
	if err := ValidatePassword(req.Password); err != nil {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return User{}, err
	}

	roles := req.Roles
	if len(roles) == 0 {
		roles = []string{RoleCustomer}
	}

	now := s.clock().UTC()
	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Avatar:       req.Avatar,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return s.repo.Create(ctx, u)
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	if id == "" {
		return User{}, ErrInvalidArgument
	}
	return s.repo.FindActiveByID(ctx, id)
}

type UpdateRequest struct {
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (User, error) {
	u, err := s.repo.FindActiveByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if req.Email != "" {
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if !strings.Contains(email, "@") {
			return User{}, ErrInvalidArgument
		}
		u.Email = email
	}
	if req.Avatar != "" {
		u.Avatar = req.Avatar
	}
	return s.repo.Update(ctx, u)
}

// ChangePassword verifies the current password before setting a new one.
func (s *Service) ChangePassword(ctx context.Context, id, current, next string) error {
	u, err := s.repo.FindActiveByID(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return ErrBadPassword
	}
	if err := ValidatePassword(next); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.bcryptCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, id, string(hash))
}

// ResetPassword sets a new password without verifying the old one.
// Callers must have authenticated the reset some other way (admin action or
// a verified reset flow).
func (s *Service) ResetPassword(ctx context.Context, id, next string) error {
	if err := ValidatePassword(next); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.bcryptCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, id, string(hash))
}

func (s *Service) Suspend(ctx context.Context, id string) error {
	return s.repo.SetSuspended(ctx, id, true)
}

func (s *Service) Unsuspend(ctx context.Context, id string) error {
	return s.repo.SetSuspended(ctx, id, false)
}

// Delete soft-deletes the account. The stored refresh token is cleared so
// in-flight sessions cannot rotate back in.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.SetDeleted(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]User, int, error) {
	return s.repo.List(ctx, f)
}

// ValidatePassword enforces the signup password policy: at least 8
// characters containing a digit, an uppercase and a lowercase letter.
func ValidatePassword(pw string) error {
	if len(pw) < 8 {
		return ErrWeakPassword
	}
	var hasDigit, hasUpper, hasLower bool
	for _, r := range pw {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}
	if !hasDigit || !hasUpper || !hasLower {
		return ErrWeakPassword
	}
	return nil
}
