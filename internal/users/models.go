package users

import "time"

// Role tags. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleAdmin    = "Admin"
	RoleCustomer = "Customer"
	RoleGuest    = "Guest"
	RoleVisitor  = "Visitor" // restricted checkout-only role
)

// User is the account record backing both authentication and the customer
// directory.
//
// Invariants:
// - At most one refresh token value is valid per user at any time. Rotation
//   overwrites the stored value; the previous value becomes unusable.
// - Deleted or suspended users must never authenticate, even with a
//   structurally valid token.
type User struct {
	ID    string `json:"id" db:"id"`
	Email string `json:"email" db:"email"`

	// PasswordHash is a bcrypt hash. Never serialized.
	PasswordHash string `json:"-" db:"password_hash"`

	Avatar string   `json:"avatar,omitempty" db:"avatar"`
	Roles  []string `json:"roles" db:"roles"`

	// RefreshToken is the single currently-valid opaque refresh token.
	// Never serialized.
	RefreshToken string `json:"-" db:"refresh_token"`

	Deleted   bool `json:"deleted" db:"deleted"`
	Suspended bool `json:"suspended" db:"suspended"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasRole reports whether the user carries the given role tag.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Eligible reports whether the account may authenticate at all.
func (u User) Eligible() bool {
	return !u.Deleted && !u.Suspended
}
