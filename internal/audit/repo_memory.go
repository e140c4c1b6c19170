package audit

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory append-only repository useful for tests.
type MemoryRepo struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

var _ Repository = (*MemoryRepo)(nil)

func (r *MemoryRepo) Append(ctx context.Context, e Event) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, f ListFilter) ([]Event, int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []Event
	// Newest first.
	for i := len(r.events) - 1; i >= 0; i-- {
		e := r.events[i]
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		if f.TargetUserID != "" && e.TargetUserID != f.TargetUserID {
			continue
		}
		if f.OrderID != "" && e.OrderID != f.OrderID {
			continue
		}
		all = append(all, e)
	}

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
	return append([]Event(nil), all[start:end]...), total, nil
}

// Events returns a copy of everything appended, oldest first.
func (r *MemoryRepo) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
