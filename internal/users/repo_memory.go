package users

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory repository useful for tests and early
// development. It mirrors the Postgres repo's filtering semantics,
// including last-write-wins refresh token rotation.
type MemoryRepo struct {
	mu    sync.Mutex
	users map[string]User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]User)}
}

var _ Repository = (*MemoryRepo)(nil)

func (r *MemoryRepo) Create(ctx context.Context, u User) (User, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email && !existing.Deleted {
			return User{}, ErrAlreadyExists
		}
	}
	r.users[u.ID] = u
	return u, nil
}

func (r *MemoryRepo) FindActiveByID(ctx context.Context, id string) (User, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || !u.Eligible() {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryRepo) FindActiveByEmail(ctx context.Context, email string) (User, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email && u.Eligible() {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *MemoryRepo) FindActiveByRefreshToken(ctx context.Context, token string) (User, error) {
	_ = ctx
	if token == "" {
		return User{}, ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.RefreshToken == token && u.Eligible() {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *MemoryRepo) RotateRefreshToken(ctx context.Context, id, token string) (User, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || !u.Eligible() {
		return User{}, ErrNotFound
	}
	u.RefreshToken = token
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return u, nil
}

func (r *MemoryRepo) Update(ctx context.Context, in User) (User, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[in.ID]
	if !ok || u.Deleted {
		return User{}, ErrNotFound
	}
	u.Email = in.Email
	u.Avatar = in.Avatar
	u.Roles = append([]string(nil), in.Roles...)
	u.UpdatedAt = time.Now().UTC()
	r.users[in.ID] = u
	return u, nil
}

func (r *MemoryRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.Deleted {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *MemoryRepo) SetSuspended(ctx context.Context, id string, suspended bool) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.Deleted {
		return ErrNotFound
	}
	u.Suspended = suspended
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *MemoryRepo) SetDeleted(ctx context.Context, id string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Deleted = true
	u.RefreshToken = ""
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, f ListFilter) ([]User, int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []User
	for _, u := range r.users {
		if u.Deleted && !f.IncludeDeleted {
			continue
		}
		if f.Role != "" && !u.HasRole(f.Role) {
			continue
		}
		all = append(all, u)
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
	return append([]User(nil), all[start:end]...), total, nil
}
