package catalog

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("product not found")
	ErrAlreadyExists   = errors.New("product already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrOutOfStock      = errors.New("insufficient stock")
)

type ListFilter struct {
	Page    int
	PerPage int

	// Status filters by product status; empty means published only.
	Status ProductStatus

	// Search matches name or SKU substrings.
	Search string
}

// Repository abstracts product persistence.
type Repository interface {
	Create(ctx context.Context, p Product) (Product, error)
	FindByID(ctx context.Context, id string) (Product, error)
	FindBySlug(ctx context.Context, slug string) (Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]Product, error)
	Update(ctx context.Context, p Product) (Product, error)
	Archive(ctx context.Context, id string) error
	List(ctx context.Context, f ListFilter) ([]Product, int, error)

	// AdjustStock applies a delta to the stock level. A negative delta that
	// would take stock below zero fails with ErrOutOfStock unless the product
	// allows backorders.
	AdjustStock(ctx context.Context, id string, delta int) (Product, error)
}
