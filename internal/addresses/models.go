package addresses

import "time"

type Kind string

const (
	KindShipping Kind = "shipping"
	KindBilling  Kind = "billing"
)

// Address is a per-user shipping or billing address.
type Address struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`
	Kind   Kind   `json:"kind" db:"kind"`

	FullName string `json:"full_name" db:"full_name"`
	Line1    string `json:"line1" db:"line1"`
	Line2    string `json:"line2,omitempty" db:"line2"`
	City     string `json:"city" db:"city"`
	State    string `json:"state,omitempty" db:"state"`
	PostCode string `json:"post_code" db:"post_code"`
	Country  string `json:"country" db:"country"`
	Phone    string `json:"phone,omitempty" db:"phone"`

	// Default marks the address used when checkout does not pick one.
	Default bool `json:"default" db:"is_default"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
