// Package journal provides the append-only adjustment history.
package journal

import (
	"context"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
)

// Repository defines journal persistence. Append-only: there are no
// update or delete operations.
type Repository interface {
	// Append inserts one journal entry.
	Append(ctx context.Context, record *entity.AdjustmentRecord) error

	// ListByInventory returns entries for an inventory record,
	// newest first.
	ListByInventory(ctx context.Context, inventoryID id.ID, filter ListFilter) ([]entity.AdjustmentRecord, error)

	// ListByReason returns entries referencing a reason, newest first.
	ListByReason(ctx context.Context, reasonID id.ID, filter ListFilter) ([]entity.AdjustmentRecord, error)

	// CountByReason reports how many entries reference a reason.
	// Used to protect reasons from deletion.
	CountByReason(ctx context.Context, reasonID id.ID) (int64, error)
}

// ListFilter bounds history queries.
type ListFilter struct {
	Limit  int
	Offset int
}
