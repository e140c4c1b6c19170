package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service implements product management on top of a Repository.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

type CreateRequest struct {
	SKU         string        `json:"sku"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Icon        string        `json:"icon"`
	Images      []string      `json:"images"`
	Status      ProductStatus `json:"status"`

	PriceMinor int64  `json:"price_minor"`
	Currency   string `json:"currency"`

	DiscountType       DiscountType `json:"discount_type"`
	PercentDiscount    int          `json:"percent_discount"`
	FixedDiscountMinor int64        `json:"fixed_discount_minor"`

	Stock           int        `json:"stock"`
	AllowBackorders bool       `json:"allow_backorders"`
	Dimensions      Dimensions `json:"dimensions"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Product, error) {
	name := strings.TrimSpace(req.Name)
	sku := strings.TrimSpace(req.SKU)
	if name == "" || sku == "" || req.PriceMinor < 0 {
		return Product{}, ErrInvalidArgument
	}
	if err := validateDiscount(req.DiscountType, req.PercentDiscount, req.FixedDiscountMinor, req.PriceMinor); err != nil {
		return Product{}, err
	}

	status := req.Status
	if status == "" {
		status = ProductStatusDraft
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}
	discount := req.DiscountType
	if discount == "" {
		discount = DiscountNone
	}

	now := s.clock().UTC()
	return s.repo.Create(ctx, Product{
		ID:                 uuid.NewString(),
		SKU:                sku,
		Name:               name,
		Slug:               Slugify(name),
		Description:        req.Description,
		Icon:               req.Icon,
		Images:             req.Images,
		Status:             status,
		PriceMinor:         req.PriceMinor,
		Currency:           currency,
		DiscountType:       discount,
		PercentDiscount:    req.PercentDiscount,
		FixedDiscountMinor: req.FixedDiscountMinor,
		Stock:              req.Stock,
		AllowBackorders:    req.AllowBackorders,
		Dimensions:         req.Dimensions,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
}

type UpdateRequest struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Icon        *string        `json:"icon"`
	Images      []string       `json:"images"`
	Status      *ProductStatus `json:"status"`

	PriceMinor *int64 `json:"price_minor"`

	DiscountType       *DiscountType `json:"discount_type"`
	PercentDiscount    *int          `json:"percent_discount"`
	FixedDiscountMinor *int64        `json:"fixed_discount_minor"`

	Stock           *int        `json:"stock"`
	AllowBackorders *bool       `json:"allow_backorders"`
	Dimensions      *Dimensions `json:"dimensions"`
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Product{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return Product{}, ErrInvalidArgument
		}
		p.Name = name
		p.Slug = Slugify(name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Icon != nil {
		p.Icon = *req.Icon
	}
	if req.Images != nil {
		p.Images = req.Images
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.PriceMinor != nil {
		if *req.PriceMinor < 0 {
			return Product{}, ErrInvalidArgument
		}
		p.PriceMinor = *req.PriceMinor
	}
	if req.DiscountType != nil {
		p.DiscountType = *req.DiscountType
	}
	if req.PercentDiscount != nil {
		p.PercentDiscount = *req.PercentDiscount
	}
	if req.FixedDiscountMinor != nil {
		p.FixedDiscountMinor = *req.FixedDiscountMinor
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.AllowBackorders != nil {
		p.AllowBackorders = *req.AllowBackorders
	}
	if req.Dimensions != nil {
		p.Dimensions = *req.Dimensions
	}

	if err := validateDiscount(p.DiscountType, p.PercentDiscount, p.FixedDiscountMinor, p.PriceMinor); err != nil {
		return Product{}, err
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	if id == "" {
		return Product{}, ErrInvalidArgument
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (Product, error) {
	if slug == "" {
		return Product{}, ErrInvalidArgument
	}
	return s.repo.FindBySlug(ctx, slug)
}

func (s *Service) GetMany(ctx context.Context, ids []string) ([]Product, error) {
	return s.repo.FindByIDs(ctx, ids)
}

func (s *Service) Archive(ctx context.Context, id string) error {
	return s.repo.Archive(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Product, int, error) {
	return s.repo.List(ctx, f)
}

// ReserveStock decrements stock for a purchase. ErrOutOfStock when the
// product cannot cover the quantity and disallows backorders.
func (s *Service) ReserveStock(ctx context.Context, id string, qty int) (Product, error) {
	if qty <= 0 {
		return Product{}, ErrInvalidArgument
	}
	return s.repo.AdjustStock(ctx, id, -qty)
}

// RestockReturn puts returned units back.
func (s *Service) RestockReturn(ctx context.Context, id string, qty int) (Product, error) {
	if qty <= 0 {
		return Product{}, ErrInvalidArgument
	}
	return s.repo.AdjustStock(ctx, id, qty)
}

func validateDiscount(dt DiscountType, percent int, fixedMinor, priceMinor int64) error {
	switch dt {
	case "", DiscountNone:
		return nil
	case DiscountPercentage:
		if percent < 0 || percent > 100 {
			return ErrInvalidArgument
		}
		return nil
	case DiscountFixed:
		if fixedMinor < 0 || fixedMinor > priceMinor {
			return ErrInvalidArgument
		}
		return nil
	default:
		return ErrInvalidArgument
	}
}
