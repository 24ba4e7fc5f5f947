package models

import (
	"time"
)

// TokenTTL is the fixed lifetime of an auth token. A token older than
// this never authenticates another request.
const TokenTTL = 15 * time.Minute

// Token is an opaque credential tied to exactly one user. At most one
// live token per user is an application-level invariant, not a schema
// constraint.
type Token struct {
	Key       string    `json:"key" db:"key"`
	UserID    string    `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsExpired reports whether the token has aged past TokenTTL at the
// given instant. The boundary is inclusive: a token exactly TokenTTL
// old is expired.
func (t *Token) IsExpired(now time.Time) bool {
	return !t.CreatedAt.After(now.Add(-TokenTTL))
}
