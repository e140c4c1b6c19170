package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewRefreshToken returns a new opaque refresh token: n random bytes,
// hex-encoded. The value carries no structure; its only property is that it
// matches the single stored value for exactly one user.
func NewRefreshToken(n int) (string, error) {
	if n <= 0 {
		n = 32
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
