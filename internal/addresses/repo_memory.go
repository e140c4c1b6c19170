package addresses

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo mirrors the Postgres repo's user scoping in memory.
type MemoryRepo struct {
	mu        sync.Mutex
	addresses map[string]Address
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{addresses: make(map[string]Address)}
}

var _ Repository = (*MemoryRepo)(nil)

func (r *MemoryRepo) Create(ctx context.Context, a Address) (Address, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addresses[a.ID] = a
	return a, nil
}

func (r *MemoryRepo) FindByID(ctx context.Context, userID, id string) (Address, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.addresses[id]
	if !ok || a.UserID != userID {
		return Address{}, ErrNotFound
	}
	return a, nil
}

func (r *MemoryRepo) Update(ctx context.Context, in Address) (Address, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.addresses[in.ID]
	if !ok || a.UserID != in.UserID {
		return Address{}, ErrNotFound
	}
	in.Default = a.Default
	in.CreatedAt = a.CreatedAt
	in.UpdatedAt = time.Now().UTC()
	r.addresses[in.ID] = in
	return in, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, id string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.addresses[id]
	if !ok || a.UserID != userID {
		return ErrNotFound
	}
	delete(r.addresses, id)
	return nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Address, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Address
	for _, a := range r.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Default != out[j].Default {
			return out[i].Default
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) SetDefault(ctx context.Context, userID, id string) (Address, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.addresses[id]
	if !ok || target.UserID != userID {
		return Address{}, ErrNotFound
	}
	for k, a := range r.addresses {
		if a.UserID == userID && a.Kind == target.Kind && a.Default {
			a.Default = false
			r.addresses[k] = a
		}
	}
	target.Default = true
	target.UpdatedAt = time.Now().UTC()
	r.addresses[id] = target
	return target, nil
}
