package entity

import (
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
)

// SerialStatus describes the state of a single serialized unit.
type SerialStatus string

const (
	SerialAvailable SerialStatus = "AVAILABLE"
	SerialReserved  SerialStatus = "RESERVED"
	SerialSold      SerialStatus = "SOLD"
	SerialInTransit SerialStatus = "IN_TRANSIT"
	SerialReturned  SerialStatus = "RETURNED"
	SerialDamaged   SerialStatus = "DAMAGED"
)

// serialTransitions is the allowed status graph for general status
// updates. RESERVED->SOLD is deliberately absent: selling happens only
// through Ship, which also settles the reserved bucket. DAMAGED must
// pass inspection (RETURNED) before it can become AVAILABLE again, and
// SOLD never returns to AVAILABLE directly.
var serialTransitions = map[SerialStatus][]SerialStatus{
	SerialAvailable: {SerialReserved, SerialDamaged, SerialInTransit},
	SerialReserved:  {SerialAvailable, SerialInTransit},
	SerialInTransit: {SerialAvailable, SerialReturned, SerialDamaged},
	SerialReturned:  {SerialAvailable, SerialDamaged},
	SerialDamaged:   {SerialReturned},
	SerialSold:      {SerialReturned},
}

// CanTransition reports whether a general status update from one state
// to another is allowed.
func CanTransition(from, to SerialStatus) bool {
	for _, allowed := range serialTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// SerializedUnit is one physical unit of a serialized product, keyed by
// (product, serial_number). Units are never deleted, only transitioned.
type SerializedUnit struct {
	ID          id.ID `db:"id" json:"id"`
	ProductID   id.ID `db:"product_id" json:"productId"`
	LocationID  id.ID `db:"location_id" json:"locationId"`
	InventoryID id.ID `db:"inventory_id" json:"inventoryId"`

	SerialNumber string       `db:"serial_number" json:"serialNumber"`
	Status       SerialStatus `db:"status" json:"status"`
	Notes        *string      `db:"notes" json:"notes,omitempty"`

	ReceivedAt time.Time `db:"received_at" json:"receivedAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// NewSerializedUnit creates an AVAILABLE unit on receipt.
func NewSerializedUnit(inv *InventoryRecord, serialNumber string, notes *string) *SerializedUnit {
	now := time.Now().UTC()
	return &SerializedUnit{
		ID:           id.New(),
		ProductID:    inv.ProductID,
		LocationID:   inv.LocationID,
		InventoryID:  inv.ID,
		SerialNumber: serialNumber,
		Status:       SerialAvailable,
		Notes:        notes,
		ReceivedAt:   now,
		UpdatedAt:    now,
	}
}

// Transition moves the unit to a new status, rejecting disallowed
// edges of the status graph.
func (u *SerializedUnit) Transition(to SerialStatus) error {
	if u.Status == to {
		return nil
	}
	if !CanTransition(u.Status, to) {
		return apperror.NewInvalidStatusTransition(u.SerialNumber, string(u.Status), string(to))
	}
	u.Status = to
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// forceTransition is used by Ship for the RESERVED->SOLD edge, which is
// not part of the general update graph.
func (u *SerializedUnit) forceTransition(to SerialStatus) {
	u.Status = to
	u.UpdatedAt = time.Now().UTC()
}

// Sell marks a reserved unit as SOLD. Only valid from RESERVED.
func (u *SerializedUnit) Sell() error {
	if u.Status != SerialReserved {
		return apperror.NewInvalidStatusTransition(u.SerialNumber, string(u.Status), string(SerialSold))
	}
	u.forceTransition(SerialSold)
	return nil
}

// ParseSerialStatus validates a string status.
func ParseSerialStatus(s string) (SerialStatus, error) {
	switch SerialStatus(s) {
	case SerialAvailable, SerialReserved, SerialSold, SerialInTransit, SerialReturned, SerialDamaged:
		return SerialStatus(s), nil
	}
	return "", apperror.NewValidation("unknown serial status").WithDetail("status", s)
}
