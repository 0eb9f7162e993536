// Package ledger implements the quantity ledger: the single sanctioned
// mutation path for inventory bucket counters.
package ledger

import (
	"context"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
)

// Repository defines inventory record persistence. Writers must use the
// ForUpdate variants so that concurrent adjustments to the same record
// serialize on the row lock; different records proceed in parallel.
type Repository interface {
	// GetByID returns a record, or a NotFound error.
	GetByID(ctx context.Context, inventoryID id.ID) (*entity.InventoryRecord, error)

	// GetForUpdate returns a record with an exclusive row lock held
	// for the rest of the transaction.
	GetForUpdate(ctx context.Context, inventoryID id.ID) (*entity.InventoryRecord, error)

	// GetOrCreateForUpdate returns the locked record for a (product,
	// location) pair, creating an empty one on the first stock event.
	GetOrCreateForUpdate(ctx context.Context, productID, locationID id.ID) (*entity.InventoryRecord, error)

	// Update persists the bucket counters of a previously locked record.
	Update(ctx context.Context, record *entity.InventoryRecord) error
}
