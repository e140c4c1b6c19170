// Package customers builds the admin customer directory by joining account
// records with profiles and order history rollups.
package customers

import (
	"context"
	"errors"
	"time"

	"commerce-platform/internal/orders"
	"commerce-platform/internal/profile"
	"commerce-platform/internal/users"
)

var ErrNotFound = errors.New("customer not found")

// Customer is the directory projection: the account, its profile and what
// the customer has spent.
type Customer struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone,omitempty"`
	Roles     []string  `json:"roles"`
	Suspended bool      `json:"suspended"`
	JoinedAt  time.Time `json:"joined_at"`

	OrderCount      int   `json:"order_count"`
	TotalSpentMinor int64 `json:"total_spent_minor"`
}

type ListFilter struct {
	Page    int
	PerPage int
}

type Service struct {
	users    users.Repository
	profiles *profile.Service
	orders   orders.Repository
}

func NewService(u users.Repository, p *profile.Service, o orders.Repository) *Service {
	return &Service{users: u, profiles: p, orders: o}
}

// List returns one directory page of customers with their rollups, plus the
// total customer count for pagination.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Customer, int, error) {
	accounts, total, err := s.users.List(ctx, users.ListFilter{
		Page:    f.Page,
		PerPage: f.PerPage,
		Role:    users.RoleCustomer,
	})
	if err != nil {
		return nil, 0, err
	}
	if len(accounts) == 0 {
		return nil, total, nil
	}

	ids := make([]string, len(accounts))
	for i, u := range accounts {
		ids[i] = u.ID
	}
	profiles, err := s.profiles.GetMany(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]Customer, 0, len(accounts))
	for _, u := range accounts {
		c := project(u, profiles[u.ID])
		if err := s.fillRollup(ctx, &c); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, nil
}

// Get returns one customer with order history attached.
func (s *Service) Get(ctx context.Context, id string) (Customer, []orders.Order, error) {
	u, err := s.users.FindActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return Customer{}, nil, ErrNotFound
		}
		return Customer{}, nil, err
	}

	p, err := s.profiles.Get(ctx, u.ID)
	if err != nil {
		return Customer{}, nil, err
	}
	c := project(u, p)

	history, err := s.allOrders(ctx, u.ID)
	if err != nil {
		return Customer{}, nil, err
	}
	c.OrderCount = len(history)
	for _, o := range history {
		if countsTowardSpend(o) {
			c.TotalSpentMinor += o.TotalMinor()
		}
	}
	return c, history, nil
}

func (s *Service) fillRollup(ctx context.Context, c *Customer) error {
	history, err := s.allOrders(ctx, c.ID)
	if err != nil {
		return err
	}
	c.OrderCount = len(history)
	for _, o := range history {
		if countsTowardSpend(o) {
			c.TotalSpentMinor += o.TotalMinor()
		}
	}
	return nil
}

// allOrders walks every page of a customer's order history. Rollups need the
// full set, not one page.
func (s *Service) allOrders(ctx context.Context, userID string) ([]orders.Order, error) {
	var all []orders.Order
	for page := 1; ; page++ {
		batch, total, err := s.orders.List(ctx, orders.ListFilter{
			UserID:  userID,
			Page:    page,
			PerPage: 200,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) == 0 || len(all) >= total {
			return all, nil
		}
	}
}

// countsTowardSpend excludes orders that were never paid or were refunded.
func countsTowardSpend(o orders.Order) bool {
	switch o.Status {
	case orders.StatusPending, orders.StatusCancelled, orders.StatusRefunded:
		return false
	}
	return !o.Refunded
}

func project(u users.User, p profile.Profile) Customer {
	return Customer{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  p.FullName(),
		Phone:     p.Phone,
		Roles:     u.Roles,
		Suspended: u.Suspended,
		JoinedAt:  u.CreatedAt,
	}
}
