// Package lot implements the lot sub-ledger for lot-tracked products.
package lot

import (
	"context"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
)

// Repository defines lot persistence. Bucket-coupled lot mutations run
// under the owning inventory record's row lock, so plain reads suffice
// there; lot-only mutations lock the lot row itself.
type Repository interface {
	// GetByID returns a lot, or a NotFound error.
	GetByID(ctx context.Context, lotID id.ID) (*entity.Lot, error)

	// GetForUpdate returns a lot with its row locked for the rest of
	// the transaction.
	GetForUpdate(ctx context.Context, lotID id.ID) (*entity.Lot, error)

	// GetByNumber returns the lot for a (product, location, lot_number)
	// key, or a NotFound error.
	GetByNumber(ctx context.Context, productID, locationID id.ID, lotNumber string) (*entity.Lot, error)

	// ListByInventory returns all lots of an inventory record, oldest
	// received first.
	ListByInventory(ctx context.Context, inventoryID id.ID) ([]entity.Lot, error)

	Create(ctx context.Context, lot *entity.Lot) error
	Update(ctx context.Context, lot *entity.Lot) error
}
