// Package reports aggregates order history into the admin dashboards:
// daily sales, returns, and per-product / per-customer breakdowns.
package reports

import (
	"context"
	"errors"
	"sort"
	"time"

	"commerce-platform/internal/orders"
)

var ErrInvalidRequest = errors.New("reports: invalid request")

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (r TimeRange) valid() bool {
	return !r.From.IsZero() && !r.To.IsZero() && r.To.After(r.From)
}

// DayBucket is one day of sales activity. Day is a UTC calendar date in
// YYYY-MM-DD form.
type DayBucket struct {
	Day    string `json:"day"`
	Orders int    `json:"orders"`
	Units  int    `json:"units"`

	GrossMinor int64 `json:"gross_minor"`
	TaxMinor   int64 `json:"tax_minor"`
}

type SalesSummary struct {
	Range TimeRange   `json:"range"`
	Days  []DayBucket `json:"days"`

	TotalOrders     int   `json:"total_orders"`
	TotalUnits      int   `json:"total_units"`
	TotalGrossMinor int64 `json:"total_gross_minor"`
	TotalTaxMinor   int64 `json:"total_tax_minor"`
}

// ReturnBucket is one day of refunds.
type ReturnBucket struct {
	Day           string `json:"day"`
	Orders        int    `json:"orders"`
	RefundedMinor int64  `json:"refunded_minor"`
}

type ReturnsSummary struct {
	Range TimeRange      `json:"range"`
	Days  []ReturnBucket `json:"days"`

	TotalOrders        int   `json:"total_orders"`
	TotalRefundedMinor int64 `json:"total_refunded_minor"`
}

// ProductSales is one product's performance across paid orders.
type ProductSales struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	Orders     int    `json:"orders"`
	Units      int    `json:"units"`
	GrossMinor int64  `json:"gross_minor"`
}

// CustomerSales is one customer's purchase rollup.
type CustomerSales struct {
	UserID        string `json:"user_id"`
	Orders        int    `json:"orders"`
	Units         int    `json:"units"`
	GrossMinor    int64  `json:"gross_minor"`
	RefundedMinor int64  `json:"refunded_minor"`
}

type Service struct {
	orders orders.Repository
}

func NewService(o orders.Repository) *Service { return &Service{orders: o} }

// paid reports whether an order's money was actually collected. Pending and
// cancelled orders never count; refunded ones count only for return reports.
func paid(o orders.Order) bool {
	switch o.Status {
	case orders.StatusPending, orders.StatusCancelled, orders.StatusRefunded:
		return false
	}
	return true
}

func dayOf(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Sales aggregates paid orders per calendar day across the range.
func (s *Service) Sales(ctx context.Context, r TimeRange) (SalesSummary, error) {
	if !r.valid() {
		return SalesSummary{}, ErrInvalidRequest
	}
	all, err := s.allOrders(ctx, r)
	if err != nil {
		return SalesSummary{}, err
	}

	buckets := map[string]*DayBucket{}
	out := SalesSummary{Range: r}
	for _, o := range all {
		if !paid(o) {
			continue
		}
		day := dayOf(o.CreatedAt)
		b, ok := buckets[day]
		if !ok {
			b = &DayBucket{Day: day}
			buckets[day] = b
		}
		b.Orders++
		b.Units += o.Units()
		b.GrossMinor += o.TotalMinor()
		b.TaxMinor += o.TaxMinor

		out.TotalOrders++
		out.TotalUnits += o.Units()
		out.TotalGrossMinor += o.TotalMinor()
		out.TotalTaxMinor += o.TaxMinor
	}

	out.Days = make([]DayBucket, 0, len(buckets))
	for _, b := range buckets {
		out.Days = append(out.Days, *b)
	}
	sort.Slice(out.Days, func(i, j int) bool { return out.Days[i].Day < out.Days[j].Day })
	return out, nil
}

// Returns aggregates refunded orders per calendar day across the range.
// Orders are bucketed by the day the refund landed, not the purchase day.
func (s *Service) Returns(ctx context.Context, r TimeRange) (ReturnsSummary, error) {
	if !r.valid() {
		return ReturnsSummary{}, ErrInvalidRequest
	}
	all, err := s.allOrders(ctx, TimeRange{})
	if err != nil {
		return ReturnsSummary{}, err
	}

	buckets := map[string]*ReturnBucket{}
	out := ReturnsSummary{Range: r}
	for _, o := range all {
		if !o.Refunded {
			continue
		}
		refundedAt := o.UpdatedAt
		if refundedAt.Before(r.From) || !refundedAt.Before(r.To) {
			continue
		}
		day := dayOf(refundedAt)
		b, ok := buckets[day]
		if !ok {
			b = &ReturnBucket{Day: day}
			buckets[day] = b
		}
		b.Orders++
		b.RefundedMinor += o.TotalMinor()

		out.TotalOrders++
		out.TotalRefundedMinor += o.TotalMinor()
	}

	out.Days = make([]ReturnBucket, 0, len(buckets))
	for _, b := range buckets {
		out.Days = append(out.Days, *b)
	}
	sort.Slice(out.Days, func(i, j int) bool { return out.Days[i].Day < out.Days[j].Day })
	return out, nil
}

// TopProducts breaks paid sales down per product, best sellers first.
func (s *Service) TopProducts(ctx context.Context, r TimeRange, limit int) ([]ProductSales, error) {
	if !r.valid() {
		return nil, ErrInvalidRequest
	}
	if limit <= 0 {
		limit = 10
	}
	all, err := s.allOrders(ctx, r)
	if err != nil {
		return nil, err
	}

	byProduct := map[string]*ProductSales{}
	for _, o := range all {
		if !paid(o) {
			continue
		}
		for _, li := range o.LineItems {
			p, ok := byProduct[li.ProductID]
			if !ok {
				p = &ProductSales{ProductID: li.ProductID, Name: li.Name}
				byProduct[li.ProductID] = p
			}
			p.Orders++
			p.Units += li.Quantity
			p.GrossMinor += li.UnitPriceMinor * int64(li.Quantity)
		}
	}

	out := make([]ProductSales, 0, len(byProduct))
	for _, p := range byProduct {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GrossMinor != out[j].GrossMinor {
			return out[i].GrossMinor > out[j].GrossMinor
		}
		return out[i].ProductID < out[j].ProductID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// TopCustomers breaks activity down per customer, biggest spenders first.
func (s *Service) TopCustomers(ctx context.Context, r TimeRange, limit int) ([]CustomerSales, error) {
	if !r.valid() {
		return nil, ErrInvalidRequest
	}
	if limit <= 0 {
		limit = 10
	}
	all, err := s.allOrders(ctx, r)
	if err != nil {
		return nil, err
	}

	byUser := map[string]*CustomerSales{}
	for _, o := range all {
		c, ok := byUser[o.UserID]
		if !ok {
			c = &CustomerSales{UserID: o.UserID}
			byUser[o.UserID] = c
		}
		if o.Refunded {
			c.RefundedMinor += o.TotalMinor()
			continue
		}
		if !paid(o) {
			continue
		}
		c.Orders++
		c.Units += o.Units()
		c.GrossMinor += o.TotalMinor()
	}

	out := make([]CustomerSales, 0, len(byUser))
	for _, c := range byUser {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GrossMinor != out[j].GrossMinor {
			return out[i].GrossMinor > out[j].GrossMinor
		}
		return out[i].UserID < out[j].UserID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// allOrders walks every page of orders inside the range.
func (s *Service) allOrders(ctx context.Context, r TimeRange) ([]orders.Order, error) {
	var all []orders.Order
	for page := 1; ; page++ {
		batch, total, err := s.orders.List(ctx, orders.ListFilter{
			Page:    page,
			PerPage: 200,
			From:    r.From,
			To:      r.To,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) == 0 || len(all) >= total {
			return all, nil
		}
	}
}
