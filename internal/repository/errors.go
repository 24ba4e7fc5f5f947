package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Sentinel errors shared by repositories and services. Only the
// specific "record absent" condition maps to ErrNotFound; any other
// storage failure propagates unwrapped into a 500 at the boundary.
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateTitle = errors.New("article title already exists")
	ErrDuplicateSlug  = errors.New("article slug already exists")
)

// uniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const uniqueViolation = "23505"

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == uniqueViolation && pqErr.Constraint == constraint
}
