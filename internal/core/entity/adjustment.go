package entity

import (
	"time"

	"stockledger/internal/core/id"
)

// AdjustmentRecord is one append-only journal entry. Created exactly
// once per successful ledger mutation; never updated or deleted.
//
// QuantityChange is the signed delta applied to the stock bucket
// (negative for units leaving it; for SHIP_ORDER it is the negated
// shipped quantity, since those units leave the promisable pool).
// NewStockQuantity snapshots the stock bucket after the mutation.
type AdjustmentRecord struct {
	ID          id.ID `db:"id" json:"id"`
	InventoryID id.ID `db:"inventory_id" json:"inventoryId"`

	AdjustmentType   AdjustmentType `db:"adjustment_type" json:"adjustmentType"`
	QuantityChange   int64          `db:"quantity_change" json:"quantityChange"`
	NewStockQuantity int64          `db:"new_stock_quantity" json:"newStockQuantity"`

	ReasonID id.ID   `db:"reason_id" json:"reasonId"`
	ActorID  *id.ID  `db:"actor_id" json:"actorId,omitempty"`
	Notes    *string `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// AdjustmentReason is a configured reason code. Referenced by journal
// entries and protected from deletion while referenced.
type AdjustmentReason struct {
	ID          id.ID     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
