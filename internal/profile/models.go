package profile

import (
	"strings"
	"time"
)

// Profile holds the personal details a user maintains alongside their
// account record. One row per user.
type Profile struct {
	UserID    string `json:"user_id" db:"user_id"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
	Phone     string `json:"phone,omitempty" db:"phone"`
	Company   string `json:"company,omitempty" db:"company"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FullName joins the name parts, tolerating either being empty.
func (p Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
