// Package id provides time-ordered UUID generation for ledger entities.
package id

import (
	"github.com/google/uuid"
)

// ID identifies every persisted entity (inventory records, lots,
// serialized units, journal entries).
type ID = uuid.UUID

// New returns a UUIDv7. The embedded timestamp keeps B-tree inserts
// append-mostly and makes journal IDs sort chronologically.
func New() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails if the entropy source does; fall back to V4.
		return uuid.New()
	}
	return id
}

// Parse validates and converts a string to an ID.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse panics on invalid input. For constants and tests only.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// Nil returns the zero ID.
func Nil() ID {
	return uuid.Nil
}

// IsNil reports whether id is the zero ID.
func IsNil(id ID) bool {
	return id == uuid.Nil
}
