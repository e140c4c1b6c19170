package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Service maintains user profiles. Reads for a user with no saved profile
// return an empty profile rather than an error so the transport can always
// render something.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

type UpdateRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
}

const maxNameLen = 100

func (s *Service) Save(ctx context.Context, userID string, req UpdateRequest) (Profile, error) {
	if userID == "" {
		return Profile{}, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Company = strings.TrimSpace(req.Company)
	if req.FirstName == "" {
		return Profile{}, fmt.Errorf("%w: first_name is required", ErrInvalidArgument)
	}
	if len(req.FirstName) > maxNameLen || len(req.LastName) > maxNameLen {
		return Profile{}, fmt.Errorf("%w: name too long", ErrInvalidArgument)
	}

	return s.repo.Upsert(ctx, Profile{
		UserID:    userID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Company:   req.Company,
		UpdatedAt: s.clock().UTC(),
	})
}

// Get returns the stored profile, or an empty one when none exists yet.
func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	p, err := s.repo.FindByUserID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return Profile{UserID: userID}, nil
	}
	return p, err
}

// GetMany fetches profiles for a batch of user ids; ids without a saved
// profile are missing from the map.
func (s *Service) GetMany(ctx context.Context, userIDs []string) (map[string]Profile, error) {
	return s.repo.FindByUserIDs(ctx, userIDs)
}

// Remove deletes the profile; removing a nonexistent profile is not an error.
func (s *Service) Remove(ctx context.Context, userID string) error {
	err := s.repo.Delete(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
