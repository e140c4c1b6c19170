package messages

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory repository for tests.
type MemoryRepo struct {
	mu       sync.Mutex
	messages map[string]Message
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{messages: make(map[string]Message)}
}

var _ Repository = (*MemoryRepo)(nil)

func (r *MemoryRepo) Create(ctx context.Context, m Message) (Message, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[m.ID] = m
	return m, nil
}

func (r *MemoryRepo) FindByID(ctx context.Context, id string) (Message, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return Message{}, ErrNotFound
	}
	return m, nil
}

func (r *MemoryRepo) SetStatus(ctx context.Context, id string, s Status) (Message, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return Message{}, ErrNotFound
	}
	m.Status = s
	m.UpdatedAt = time.Now().UTC()
	r.messages[id] = m
	return m, nil
}

func (r *MemoryRepo) List(ctx context.Context, f ListFilter) ([]Message, int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []Message
	for _, m := range r.messages {
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		all = append(all, m)
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
	return append([]Message(nil), all[start:end]...), total, nil
}
