package domain

import "time"

// TokenClaims is the verified content of a bearer token.
type TokenClaims struct {
	UserID    int64
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
