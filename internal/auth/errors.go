package auth

import "errors"

// Failure taxonomy for the request guard. Every terminal failure maps to the
// same external unauthorized response; these reasons are for server-side
// logging and tests only.
var (
	// ErrTokenMissing: no access token presented.
	ErrTokenMissing = errors.New("auth: access token missing")

	// ErrTokenExpired: access token structurally valid but past expiry.
	// Recoverable via refresh rotation.
	ErrTokenExpired = errors.New("auth: access token expired")

	// ErrTokenInvalid: malformed or bad-signature token. Terminal.
	ErrTokenInvalid = errors.New("auth: access token invalid")

	// ErrRefreshMissing: expired access token but no refresh token presented.
	ErrRefreshMissing = errors.New("auth: refresh token missing")

	// ErrRefreshNotFound: refresh token does not match any current user
	// record (already rotated, forged, or revoked).
	ErrRefreshNotFound = errors.New("auth: refresh token not recognized")

	// ErrUserNotEligible: user missing, deleted or suspended. Reported
	// identically to not-found so account status never leaks.
	ErrUserNotEligible = errors.New("auth: user not eligible")

	// ErrInvalidCredentials: login email/password mismatch.
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
)
