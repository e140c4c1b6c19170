package messages

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service implements contact message intake and the admin workflow.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

type CreateRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Comment string `json:"comment"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Message, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	comment := strings.TrimSpace(req.Comment)
	if name == "" || comment == "" || !strings.Contains(email, "@") {
		return Message{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	return s.repo.Create(ctx, Message{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Phone:     strings.TrimSpace(req.Phone),
		Comment:   comment,
		Status:    StatusUnread,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *Service) Get(ctx context.Context, id string) (Message, error) {
	if id == "" {
		return Message{}, ErrInvalidArgument
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) SetStatus(ctx context.Context, id string, st Status) (Message, error) {
	switch st {
	case StatusUnread, StatusRead, StatusReplied:
	default:
		return Message{}, ErrInvalidArgument
	}
	return s.repo.SetStatus(ctx, id, st)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Message, int, error) {
	return s.repo.List(ctx, f)
}
