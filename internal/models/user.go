package models

import (
	"time"
)

// User represents an account in the system. Users are created
// out-of-band (bootstrap seeding or operator tooling), never through
// the public API.
type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	IsAdmin      bool      `json:"is_admin" db:"is_admin"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
