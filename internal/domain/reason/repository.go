// Package reason exposes adjustment reason lookups for the ledger.
// Reason CRUD is a collaborator concern; the ledger only verifies that
// a referenced reason exists and enforces deletion protection.
package reason

import (
	"context"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
)

// Repository defines reason persistence operations.
type Repository interface {
	// GetByID returns a reason, or a NotFound error.
	GetByID(ctx context.Context, reasonID id.ID) (*entity.AdjustmentReason, error)

	// Delete removes a reason. Returns a Conflict error while any
	// journal entry still references it.
	Delete(ctx context.Context, reasonID id.ID) error
}
