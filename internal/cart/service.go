package cart

import (
	"context"
	"errors"

	"commerce-platform/internal/catalog"
)

// Line is a cart line enriched with current catalog data. Prices reflect the
// catalog at read time, not at the moment the line was added.
type Line struct {
	ProductID       string  `json:"product_id"`
	Name            string  `json:"name"`
	Slug            string  `json:"slug"`
	Icon            string  `json:"icon,omitempty"`
	Quantity        int     `json:"quantity"`
	UnitPriceMinor  int64   `json:"unit_price_minor"`
	LineTotalMinor  int64   `json:"line_total_minor"`
	Currency        string  `json:"currency"`
	Purchasable     bool    `json:"purchasable"`
}

type Cart struct {
	Session       string `json:"session"`
	Lines         []Line `json:"lines"`
	SubtotalMinor int64  `json:"subtotal_minor"`
}

// Service validates cart mutations against the catalog and resolves carts
// into priced lines.
type Service struct {
	store   *Store
	catalog *catalog.Service
}

func NewService(store *Store, cat *catalog.Service) *Service {
	return &Service{store: store, catalog: cat}
}

// Add puts qty more units of a product into the session cart. The resulting
// total quantity must be purchasable.
func (s *Service) Add(ctx context.Context, session, productID string, qty int) (Cart, error) {
	p, err := s.catalog.Get(ctx, productID)
	if err != nil {
		return Cart{}, err
	}

	current, err := s.store.Quantities(ctx, session)
	if err != nil {
		return Cart{}, err
	}
	if !p.Purchasable(current[productID] + qty) {
		return Cart{}, ErrNotPurchasable
	}

	if _, err := s.store.Add(ctx, session, productID, qty); err != nil {
		return Cart{}, err
	}
	return s.Get(ctx, session)
}

// SetQuantity pins a line to an exact quantity; zero removes it.
func (s *Service) SetQuantity(ctx context.Context, session, productID string, qty int) (Cart, error) {
	if qty > 0 {
		p, err := s.catalog.Get(ctx, productID)
		if err != nil {
			return Cart{}, err
		}
		if !p.Purchasable(qty) {
			return Cart{}, ErrNotPurchasable
		}
	}
	if err := s.store.SetQuantity(ctx, session, productID, qty); err != nil {
		return Cart{}, err
	}
	return s.Get(ctx, session)
}

func (s *Service) Remove(ctx context.Context, session, productID string) (Cart, error) {
	if err := s.store.Remove(ctx, session, productID); err != nil {
		return Cart{}, err
	}
	return s.Get(ctx, session)
}

func (s *Service) Clear(ctx context.Context, session string) error {
	return s.store.Clear(ctx, session)
}

// Get resolves the stored quantities against the catalog. Lines whose
// product vanished are dropped silently.
func (s *Service) Get(ctx context.Context, session string) (Cart, error) {
	quantities, err := s.store.Quantities(ctx, session)
	if err != nil {
		return Cart{}, err
	}

	ids := make([]string, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	products, err := s.catalog.GetMany(ctx, ids)
	if err != nil {
		return Cart{}, err
	}

	out := Cart{Session: session}
	for _, p := range products {
		qty := quantities[p.ID]
		if qty <= 0 {
			continue
		}
		unit := p.EffectivePriceMinor()
		line := Line{
			ProductID:      p.ID,
			Name:           p.Name,
			Slug:           p.Slug,
			Icon:           p.Icon,
			Quantity:       qty,
			UnitPriceMinor: unit,
			LineTotalMinor: unit * int64(qty),
			Currency:       p.Currency,
			Purchasable:    p.Purchasable(qty),
		}
		out.Lines = append(out.Lines, line)
		out.SubtotalMinor += line.LineTotalMinor
	}
	return out, nil
}

// IsNotPurchasable reports whether err is a stock/eligibility rejection.
func IsNotPurchasable(err error) bool {
	return errors.Is(err, ErrNotPurchasable)
}
