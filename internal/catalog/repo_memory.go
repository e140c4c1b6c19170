package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepo is an in-memory repository for tests and early development.
// It mirrors the Postgres repo's filtering and stock-floor semantics.
type MemoryRepo struct {
	mu       sync.Mutex
	products map[string]Product
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{products: make(map[string]Product)}
}

var _ Repository = (*MemoryRepo)(nil)

func (r *MemoryRepo) Create(ctx context.Context, p Product) (Product, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.products {
		if existing.SKU == p.SKU || existing.Slug == p.Slug {
			return Product{}, ErrAlreadyExists
		}
	}
	r.products[p.ID] = p
	return p, nil
}

func (r *MemoryRepo) FindByID(ctx context.Context, id string) (Product, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryRepo) FindBySlug(ctx context.Context, slug string) (Product, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *MemoryRepo) FindByIDs(ctx context.Context, ids []string) ([]Product, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *MemoryRepo) Update(ctx context.Context, in Product) (Product, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[in.ID]; !ok {
		return Product{}, ErrNotFound
	}
	for _, existing := range r.products {
		if existing.ID != in.ID && (existing.SKU == in.SKU || existing.Slug == in.Slug) {
			return Product{}, ErrAlreadyExists
		}
	}
	in.UpdatedAt = time.Now().UTC()
	r.products[in.ID] = in
	return in, nil
}

func (r *MemoryRepo) Archive(ctx context.Context, id string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = ProductStatusArchived
	p.UpdatedAt = time.Now().UTC()
	r.products[id] = p
	return nil
}

func (r *MemoryRepo) AdjustStock(ctx context.Context, id string, delta int) (Product, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	next := p.Stock + delta
	if next < 0 && !p.AllowBackorders {
		return Product{}, ErrOutOfStock
	}
	p.Stock = next
	p.UpdatedAt = time.Now().UTC()
	r.products[id] = p
	return p, nil
}

func (r *MemoryRepo) List(ctx context.Context, f ListFilter) ([]Product, int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	status := f.Status
	if status == "" {
		status = ProductStatusPublished
	}
	search := strings.ToLower(f.Search)

	var all []Product
	for _, p := range r.products {
		if p.Status != status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.SKU), search) {
			continue
		}
		all = append(all, p)
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
	return append([]Product(nil), all[start:end]...), total, nil
}
