// Package serial implements the serialized sub-ledger: one tracked row
// per physical unit of a serialized product.
package serial

import (
	"context"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
)

// Repository defines serialized unit persistence.
type Repository interface {
	// GetByID returns a unit, or a NotFound error.
	GetByID(ctx context.Context, unitID id.ID) (*entity.SerializedUnit, error)

	// GetForUpdate returns a unit with its row locked for the rest of
	// the transaction.
	GetForUpdate(ctx context.Context, unitID id.ID) (*entity.SerializedUnit, error)

	// GetBySerial returns the unit for a (product, serial_number) key,
	// or a NotFound error.
	GetBySerial(ctx context.Context, productID id.ID, serialNumber string) (*entity.SerializedUnit, error)

	// ListBySerials returns the units of a product matching the given
	// serial numbers, in the given order. Missing serials are skipped.
	ListBySerials(ctx context.Context, productID id.ID, serialNumbers []string) ([]entity.SerializedUnit, error)

	// ListByStatus returns up to limit units of an inventory record in
	// one status, oldest received first. limit <= 0 means no limit.
	ListByStatus(ctx context.Context, inventoryID id.ID, status entity.SerialStatus, limit int) ([]entity.SerializedUnit, error)

	Create(ctx context.Context, unit *entity.SerializedUnit) error

	// CreateBatch bulk-inserts units for batch receipt.
	CreateBatch(ctx context.Context, units []*entity.SerializedUnit) error

	Update(ctx context.Context, unit *entity.SerializedUnit) error
}
