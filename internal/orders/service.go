package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"commerce-platform/internal/catalog"

	"github.com/google/uuid"
)

// Service implements order tracking: creation from checkout, lifecycle
// transitions, and listing. Stock moves with the lifecycle: reserved on
// creation, returned on cancellation or refund.
type Service struct {
	repo    Repository
	catalog *catalog.Service
	clock   func() time.Time
}

func NewService(repo Repository, cat *catalog.Service) *Service {
	return &Service{repo: repo, catalog: cat, clock: time.Now}
}

type ItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CreateRequest struct {
	UserID   string
	Session  string
	TaxMinor int64
	Items    []ItemRequest
}

// Create builds an order from the requested items. Prices come from the
// catalog, never from the caller; stock is reserved line by line and rolled
// back if a later line fails.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Order, error) {
	if req.UserID == "" || req.Session == "" || len(req.Items) == 0 {
		return Order{}, ErrInvalidArgument
	}

	var lines []LineItem
	var currency string
	var reserved []ItemRequest
	rollback := func() {
		for _, it := range reserved {
			_, _ = s.catalog.RestockReturn(ctx, it.ProductID, it.Quantity)
		}
	}

	for _, it := range req.Items {
		if it.Quantity <= 0 {
			rollback()
			return Order{}, ErrInvalidArgument
		}
		p, err := s.catalog.ReserveStock(ctx, it.ProductID, it.Quantity)
		if err != nil {
			rollback()
			return Order{}, fmt.Errorf("reserve %s: %w", it.ProductID, err)
		}
		reserved = append(reserved, it)
		if currency == "" {
			currency = p.Currency
		}
		lines = append(lines, LineItem{
			ProductID:      p.ID,
			Name:           p.Name,
			Icon:           p.Icon,
			UnitPriceMinor: p.EffectivePriceMinor(),
			Quantity:       it.Quantity,
			Dimensions:     p.Dimensions,
		})
	}

	now := s.clock().UTC()
	o, err := s.repo.Create(ctx, Order{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Session:   req.Session,
		Status:    StatusPending,
		LineItems: lines,
		Currency:  currency,
		TaxMinor:  req.TaxMinor,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		rollback()
		return Order{}, err
	}
	return o, nil
}

func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	if id == "" {
		return Order{}, ErrInvalidArgument
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) GetBySession(ctx context.Context, session string) (Order, error) {
	if session == "" {
		return Order{}, ErrInvalidArgument
	}
	return s.repo.FindBySession(ctx, session)
}

// UpdateStatus transitions the order. Cancel and refund return the reserved
// units to stock.
func (s *Service) UpdateStatus(ctx context.Context, id string, to OrderStatus) (Order, error) {
	o, err := s.repo.UpdateStatus(ctx, id, to)
	if err != nil {
		return Order{}, err
	}
	if to == StatusCancelled || to == StatusRefunded {
		for _, li := range o.LineItems {
			if _, err := s.catalog.RestockReturn(ctx, li.ProductID, li.Quantity); err != nil {
				// Archived products are restocked best effort; the order
				// transition itself already committed.
				if !errors.Is(err, catalog.ErrNotFound) {
					return o, err
				}
			}
		}
	}
	return o, nil
}

// MarkPaid is the webhook entry point: session resolved, order moved to
// processing. Already-processed sessions are a no-op so webhook retries
// stay idempotent.
func (s *Service) MarkPaid(ctx context.Context, session string) (Order, error) {
	o, err := s.repo.FindBySession(ctx, session)
	if err != nil {
		return Order{}, err
	}
	if o.Status != StatusPending {
		return o, nil
	}
	return s.repo.UpdateStatus(ctx, o.ID, StatusProcessing)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Order, int, error) {
	return s.repo.List(ctx, f)
}
