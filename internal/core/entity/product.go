package entity

import (
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
)

// Product carries the catalog fields the ledger needs: the tracking
// mode flags. Catalog metadata (attributes, categories) lives outside
// the ledger.
type Product struct {
	ID           id.ID     `db:"id" json:"id"`
	SKU          string    `db:"sku" json:"sku"`
	Name         string    `db:"name" json:"name"`
	IsLotted     bool      `db:"is_lotted" json:"isLotted"`
	IsSerialized bool      `db:"is_serialized" json:"isSerialized"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// Tracking is the product capability the ledger consumes. The two
// flags are mutually exclusive.
type Tracking struct {
	IsLotted     bool
	IsSerialized bool
}

// Validate rejects the impossible configuration.
func (t Tracking) Validate() error {
	if t.IsLotted && t.IsSerialized {
		return apperror.NewProductConfiguration("product cannot be both lot-tracked and serialized")
	}
	return nil
}

// RequireLotted fails unless the product is lot-tracked.
func (t Tracking) RequireLotted() error {
	if !t.IsLotted {
		return apperror.NewProductConfiguration("product is not configured for lot tracking")
	}
	return nil
}

// RequireSerialized fails unless the product is serialized.
func (t Tracking) RequireSerialized() error {
	if !t.IsSerialized {
		return apperror.NewProductConfiguration("product is not configured for serial tracking")
	}
	return nil
}
