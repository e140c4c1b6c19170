package orders

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo mirrors the Postgres repo's semantics in memory, including
// transition validation under the mutex.
type MemoryRepo struct {
	mu     sync.Mutex
	orders map[string]Order
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{orders: make(map[string]Order)}
}

var _ Repository = (*MemoryRepo)(nil)

func (r *MemoryRepo) Create(ctx context.Context, o Order) (Order, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	return o, nil
}

func (r *MemoryRepo) FindByID(ctx context.Context, id string) (Order, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (r *MemoryRepo) FindBySession(ctx context.Context, session string) (Order, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.Session == session {
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, id string, to OrderStatus) (Order, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	if !CanTransition(o.Status, to) {
		return Order{}, ErrInvalidTransition
	}
	o.Status = to
	if to == StatusRefunded {
		o.Refunded = true
	}
	o.UpdatedAt = time.Now().UTC()
	r.orders[id] = o
	return o, nil
}

func (r *MemoryRepo) List(ctx context.Context, f ListFilter) ([]Order, int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []Order
	for _, o := range r.orders {
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if !f.From.IsZero() && o.CreatedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !o.CreatedAt.Before(f.To) {
			continue
		}
		all = append(all, o)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}
	start := (page - 1) * perPage
	if start >= total {
		return nil, total, nil
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return append([]Order(nil), all[start:end]...), total, nil
}
