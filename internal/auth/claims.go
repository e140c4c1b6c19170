package auth

import "github.com/golang-jwt/jwt/v5"

// Claims is the only supported access-token claims shape for this service.
// The user id travels in the registered Subject claim.
type Claims struct {
	jwt.RegisteredClaims

	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// UserID returns the subject claim.
func (c Claims) UserID() string { return c.Subject }
