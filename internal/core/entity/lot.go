package entity

import (
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// LotStatus describes the state of a lot row.
//
// Reserved units are kept on the same row in ReservedQuantity; the
// status is derived from the two counters after every mutation.
// EXPIRED, QUARANTINE and DAMAGED are set explicitly and stick until
// changed explicitly.
type LotStatus string

const (
	LotAvailable         LotStatus = "AVAILABLE"
	LotPartiallyReserved LotStatus = "PARTIALLY_RESERVED"
	LotReserved          LotStatus = "RESERVED"
	LotConsumed          LotStatus = "CONSUMED"
	LotExpired           LotStatus = "EXPIRED"
	LotQuarantine        LotStatus = "QUARANTINE"
	LotDamaged           LotStatus = "DAMAGED"
)

// Lot is a batch of units of one product at one location, keyed by
// (product, location, lot_number). Quantity is the unreserved portion;
// ReservedQuantity is earmarked but still physically on hand. A lot
// that reaches zero stays as a historical record.
type Lot struct {
	ID          id.ID `db:"id" json:"id"`
	ProductID   id.ID `db:"product_id" json:"productId"`
	LocationID  id.ID `db:"location_id" json:"locationId"`
	InventoryID id.ID `db:"inventory_id" json:"inventoryId"`

	LotNumber        string    `db:"lot_number" json:"lotNumber"`
	Quantity         int64     `db:"quantity" json:"quantity"`
	ReservedQuantity int64     `db:"reserved_quantity" json:"reservedQuantity"`
	Status           LotStatus `db:"status" json:"status"`

	ExpiryDate        *time.Time   `db:"expiry_date" json:"expiryDate,omitempty"`
	ManufacturingDate *time.Time   `db:"manufacturing_date" json:"manufacturingDate,omitempty"`
	ReceivedDate      time.Time    `db:"received_date" json:"receivedDate"`
	CostPricePerUnit  *types.Money `db:"cost_price_per_unit" json:"costPricePerUnit,omitempty"`
	Notes             *string      `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewLot creates an empty lot row for a (product, location, lot_number)
// key. Quantity is added separately so creation and increment share one
// code path.
func NewLot(inv *InventoryRecord, lotNumber string) *Lot {
	now := time.Now().UTC()
	return &Lot{
		ID:           id.New(),
		ProductID:    inv.ProductID,
		LocationID:   inv.LocationID,
		InventoryID:  inv.ID,
		LotNumber:    lotNumber,
		Status:       LotAvailable,
		ReceivedDate: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate checks lot invariants.
func (l *Lot) Validate() error {
	if l.Quantity < 0 {
		return apperror.NewValidation("lot quantity cannot be negative").
			WithDetail("lot_number", l.LotNumber)
	}
	if l.ReservedQuantity < 0 {
		return apperror.NewValidation("lot reserved quantity cannot be negative").
			WithDetail("lot_number", l.LotNumber)
	}
	if l.ExpiryDate != nil && l.ManufacturingDate != nil && !l.ManufacturingDate.Before(*l.ExpiryDate) {
		return apperror.NewValidation("expiry date must be after manufacturing date").
			WithDetail("lot_number", l.LotNumber)
	}
	return nil
}

// IsExpired reports whether the expiry date has passed as of now.
func (l *Lot) IsExpired(now time.Time) bool {
	return l.ExpiryDate != nil && l.ExpiryDate.Before(now)
}

// IsBlocked reports whether the lot is in a state that refuses
// consumption and reservation.
func (l *Lot) IsBlocked() bool {
	switch l.Status {
	case LotExpired, LotQuarantine, LotDamaged:
		return true
	}
	return false
}

// RefreshStatus derives the status from the counters. Explicitly set
// blocking states stick; an expired date always wins.
func (l *Lot) RefreshStatus(now time.Time) {
	l.UpdatedAt = now
	if l.IsExpired(now) {
		l.Status = LotExpired
		return
	}
	if l.IsBlocked() {
		return
	}
	switch {
	case l.ReservedQuantity > 0 && l.Quantity == 0:
		l.Status = LotReserved
	case l.ReservedQuantity > 0:
		l.Status = LotPartiallyReserved
	case l.Quantity == 0:
		l.Status = LotConsumed
	default:
		l.Status = LotAvailable
	}
}
