package addresses

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service owns address book rules for a single user's addresses.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

type CreateRequest struct {
	Kind     Kind   `json:"kind"`
	FullName string `json:"full_name"`
	Line1    string `json:"line1"`
	Line2    string `json:"line2"`
	City     string `json:"city"`
	State    string `json:"state"`
	PostCode string `json:"post_code"`
	Country  string `json:"country"`
	Phone    string `json:"phone"`
	Default  bool   `json:"default"`
}

func (req *CreateRequest) normalize() error {
	if req.Kind == "" {
		req.Kind = KindShipping
	}
	if req.Kind != KindShipping && req.Kind != KindBilling {
		return fmt.Errorf("%w: kind %q", ErrInvalidArgument, req.Kind)
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Line1 = strings.TrimSpace(req.Line1)
	req.Line2 = strings.TrimSpace(req.Line2)
	req.City = strings.TrimSpace(req.City)
	req.State = strings.TrimSpace(req.State)
	req.PostCode = strings.TrimSpace(req.PostCode)
	req.Country = strings.ToUpper(strings.TrimSpace(req.Country))
	req.Phone = strings.TrimSpace(req.Phone)

	switch {
	case req.FullName == "":
		return fmt.Errorf("%w: full_name is required", ErrInvalidArgument)
	case req.Line1 == "":
		return fmt.Errorf("%w: line1 is required", ErrInvalidArgument)
	case req.City == "":
		return fmt.Errorf("%w: city is required", ErrInvalidArgument)
	case req.PostCode == "":
		return fmt.Errorf("%w: post_code is required", ErrInvalidArgument)
	case req.Country == "":
		return fmt.Errorf("%w: country is required", ErrInvalidArgument)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (Address, error) {
	if userID == "" {
		return Address{}, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}
	if err := req.normalize(); err != nil {
		return Address{}, err
	}

	now := s.clock().UTC()
	a, err := s.repo.Create(ctx, Address{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      req.Kind,
		FullName:  req.FullName,
		Line1:     req.Line1,
		Line2:     req.Line2,
		City:      req.City,
		State:     req.State,
		PostCode:  req.PostCode,
		Country:   req.Country,
		Phone:     req.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Address{}, err
	}
	// First address of its kind, or an explicit request, becomes the default.
	if req.Default || s.onlyOfKind(ctx, userID, a) {
		return s.repo.SetDefault(ctx, userID, a.ID)
	}
	return a, nil
}

func (s *Service) onlyOfKind(ctx context.Context, userID string, a Address) bool {
	existing, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return false
	}
	for _, e := range existing {
		if e.Kind == a.Kind && e.ID != a.ID {
			return false
		}
	}
	return true
}

func (s *Service) Update(ctx context.Context, userID, id string, req CreateRequest) (Address, error) {
	if err := req.normalize(); err != nil {
		return Address{}, err
	}
	return s.repo.Update(ctx, Address{
		ID:       id,
		UserID:   userID,
		Kind:     req.Kind,
		FullName: req.FullName,
		Line1:    req.Line1,
		Line2:    req.Line2,
		City:     req.City,
		State:    req.State,
		PostCode: req.PostCode,
		Country:  req.Country,
		Phone:    req.Phone,
	})
}

func (s *Service) Get(ctx context.Context, userID, id string) (Address, error) {
	return s.repo.FindByID(ctx, userID, id)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID string) ([]Address, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) SetDefault(ctx context.Context, userID, id string) (Address, error) {
	return s.repo.SetDefault(ctx, userID, id)
}

// DefaultFor returns the user's default address of the given kind, or the
// most recent one when none is flagged.
func (s *Service) DefaultFor(ctx context.Context, userID string, kind Kind) (Address, error) {
	all, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return Address{}, err
	}
	var fallback *Address
	for i := range all {
		a := all[i]
		if a.Kind != kind {
			continue
		}
		if a.Default {
			return a, nil
		}
		if fallback == nil {
			fallback = &a
		}
	}
	if fallback != nil {
		return *fallback, nil
	}
	return Address{}, ErrNotFound
}
