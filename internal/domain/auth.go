package domain

import (
	"errors"
	"time"
)

// ErrInvalidServiceSecret is returned when a caller presents a wrong shared
// secret while requesting a service token.
var ErrInvalidServiceSecret = errors.New("invalid service secret")

// TokenIssuer issues bearer tokens for an authenticated service principal
// (e.g. the chat gateway).
type TokenIssuer interface {
	Issue(principal string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a bearer token and returns the service principal it
// was issued to.
type TokenVerifier interface {
	Verify(token string) (principal string, err error)
}
