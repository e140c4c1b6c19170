package catalog

import (
	"strings"
	"time"
	"unicode"
)

// Amounts are expressed in minor units (cents) using int64.

type ProductStatus string

const (
	ProductStatusDraft     ProductStatus = "draft"
	ProductStatusPublished ProductStatus = "published"
	ProductStatusArchived  ProductStatus = "archived"
)

// DiscountType selects how a product discount is applied to the base price.
type DiscountType string

const (
	DiscountNone       DiscountType = "none"
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Dimensions are shipping dimensions, carried onto order line items.
type Dimensions struct {
	WidthCM  float64 `json:"width_cm"`
	HeightCM float64 `json:"height_cm"`
	DepthCM  float64 `json:"depth_cm"`
	WeightKG float64 `json:"weight_kg"`
}

type Product struct {
	ID          string        `json:"id" db:"id"`
	SKU         string        `json:"sku" db:"sku"`
	Name        string        `json:"name" db:"name"`
	Slug        string        `json:"slug" db:"slug"`
	Description string        `json:"description,omitempty" db:"description"`
	Icon        string        `json:"icon,omitempty" db:"icon"`
	Images      []string      `json:"images,omitempty" db:"images"`
	Status      ProductStatus `json:"status" db:"status"`

	PriceMinor int64  `json:"price_minor" db:"price_minor"`
	Currency   string `json:"currency" db:"currency"`

	DiscountType       DiscountType `json:"discount_type" db:"discount_type"`
	PercentDiscount    int          `json:"percent_discount,omitempty" db:"percent_discount"`
	FixedDiscountMinor int64        `json:"fixed_discount_minor,omitempty" db:"fixed_discount_minor"`

	Stock           int  `json:"stock" db:"stock"`
	AllowBackorders bool `json:"allow_backorders" db:"allow_backorders"`

	Dimensions Dimensions `json:"dimensions" db:"dimensions"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EffectivePriceMinor applies the product discount to the base price.
// Percentage discounts truncate toward zero; the result never goes negative.
func (p Product) EffectivePriceMinor() int64 {
	switch p.DiscountType {
	case DiscountPercentage:
		if p.PercentDiscount <= 0 {
			return p.PriceMinor
		}
		pct := p.PercentDiscount
		if pct > 100 {
			pct = 100
		}
		return p.PriceMinor - p.PriceMinor*int64(pct)/100
	case DiscountFixed:
		out := p.PriceMinor - p.FixedDiscountMinor
		if out < 0 {
			return 0
		}
		return out
	default:
		return p.PriceMinor
	}
}

// Purchasable reports whether the requested quantity can be sold now.
func (p Product) Purchasable(qty int) bool {
	if p.Status != ProductStatusPublished || qty <= 0 {
		return false
	}
	return p.AllowBackorders || p.Stock >= qty
}

// Slugify derives the URL slug from a product name: lowercase,
// non-alphanumerics collapsed to single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	prevHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
