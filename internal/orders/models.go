package orders

import (
	"time"

	"commerce-platform/internal/catalog"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusCompleted  OrderStatus = "completed"
	StatusDelivering OrderStatus = "delivering"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusRefunded   OrderStatus = "refunded"
)

// allowedTransitions is the order lifecycle. Cancelled and Refunded are
// terminal; refunds are possible from any paid state.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusCancelled, StatusRefunded},
	StatusCompleted:  {StatusDelivering, StatusRefunded},
	StatusDelivering: {StatusDelivered, StatusRefunded},
	StatusDelivered:  {StatusRefunded},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// LineItem snapshots a product at purchase time. Prices are frozen here;
// later catalog changes never alter an existing order.
type LineItem struct {
	ProductID      string             `json:"product_id"`
	Name           string             `json:"name"`
	Icon           string             `json:"icon,omitempty"`
	UnitPriceMinor int64              `json:"unit_price_minor"`
	Quantity       int                `json:"quantity"`
	Dimensions     catalog.Dimensions `json:"dimensions"`
}

type Order struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`

	// Session ties the order to the checkout session embedded in the
	// payment intent metadata; the payment webhook resolves orders by it.
	Session string `json:"session" db:"session"`

	Status    OrderStatus `json:"status" db:"status"`
	LineItems []LineItem  `json:"line_items" db:"line_items"`
	Currency  string      `json:"currency" db:"currency"`
	TaxMinor  int64       `json:"tax_minor" db:"tax_minor"`

	Refunded bool `json:"refunded" db:"refunded"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SubtotalMinor is the sum of line totals, before tax.
func (o Order) SubtotalMinor() int64 {
	var total int64
	for _, li := range o.LineItems {
		total += li.UnitPriceMinor * int64(li.Quantity)
	}
	return total
}

// TotalMinor is the amount charged: subtotal plus tax.
func (o Order) TotalMinor() int64 {
	return o.SubtotalMinor() + o.TaxMinor
}

// Units is the total item count across all lines.
func (o Order) Units() int {
	var n int
	for _, li := range o.LineItems {
		n += li.Quantity
	}
	return n
}
