package profile

import (
	"context"
	"sync"
)

// MemoryRepo keeps profiles in a map keyed by user id.
type MemoryRepo struct {
	mu       sync.Mutex
	profiles map[string]Profile
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{profiles: make(map[string]Profile)}
}

var _ Repository = (*MemoryRepo)(nil)

func (r *MemoryRepo) Upsert(ctx context.Context, p Profile) (Profile, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.profiles[p.UserID]; ok {
		p.CreatedAt = existing.CreatedAt
	} else {
		p.CreatedAt = p.UpdatedAt
	}
	r.profiles[p.UserID] = p
	return p, nil
}

func (r *MemoryRepo) FindByUserID(ctx context.Context, userID string) (Profile, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryRepo) FindByUserIDs(ctx context.Context, userIDs []string) (map[string]Profile, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]Profile, len(userIDs))
	for _, id := range userIDs {
		if p, ok := r.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[userID]; !ok {
		return ErrNotFound
	}
	delete(r.profiles, userID)
	return nil
}
