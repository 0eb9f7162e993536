// Package entity defines the persisted entities of the inventory
// ledger: inventory records with their quantity buckets, lots,
// serialized units and the append-only adjustment journal.
package entity

import (
	"fmt"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
)

// AdjustmentType is the closed set of bucket transitions the ledger
// supports. Quantities are always supplied as positive magnitudes; the
// direction of each bucket move is derived from the type.
type AdjustmentType string

const (
	Addition           AdjustmentType = "ADDITION"
	Subtraction        AdjustmentType = "SUBTRACTION"
	Reservation        AdjustmentType = "RESERVATION"
	ReleaseReservation AdjustmentType = "RELEASE_RESERVATION"
	NonSaleable        AdjustmentType = "NON_SALEABLE"
	ReturnToStock      AdjustmentType = "RETURN_TO_STOCK"
	Hold               AdjustmentType = "HOLD"
	ReleaseHold        AdjustmentType = "RELEASE_HOLD"

	// ShipOrder releases a reserved unit out of the ledger permanently
	// (sales order shipped). Used by the serialized sub-ledger.
	ShipOrder AdjustmentType = "SHIP_ORDER"
)

var adjustmentTypes = map[AdjustmentType]struct{}{
	Addition:           {},
	Subtraction:        {},
	Reservation:        {},
	ReleaseReservation: {},
	NonSaleable:        {},
	ReturnToStock:      {},
	Hold:               {},
	ReleaseHold:        {},
	ShipOrder:          {},
}

// ParseAdjustmentType validates a string adjustment type.
func ParseAdjustmentType(s string) (AdjustmentType, error) {
	t := AdjustmentType(s)
	if _, ok := adjustmentTypes[t]; !ok {
		return "", apperror.NewValidation("unknown adjustment type").
			WithDetail("adjustment_type", s)
	}
	return t, nil
}

// StockDelta returns the signed change applied to the stock bucket (or
// to the promisable pool, for ShipOrder) by this adjustment type at the
// given magnitude. This is the value recorded in the journal.
func (t AdjustmentType) StockDelta(qty int64) int64 {
	switch t {
	case Addition, ReleaseReservation, ReturnToStock, ReleaseHold:
		return qty
	case Subtraction, Reservation, NonSaleable, Hold, ShipOrder:
		return -qty
	default:
		return 0
	}
}

// InventoryRecord tracks the quantity buckets for one (product,
// location) pair. It is the unique owner of its bucket values; every
// bucket stays >= 0 at all times. All mutations go through Apply under
// a row lock held by the quantity ledger service.
type InventoryRecord struct {
	ID         id.ID `db:"id" json:"id"`
	ProductID  id.ID `db:"product_id" json:"productId"`
	LocationID id.ID `db:"location_id" json:"locationId"`

	StockQuantity       int64 `db:"stock_quantity" json:"stockQuantity"`
	ReservedQuantity    int64 `db:"reserved_quantity" json:"reservedQuantity"`
	NonSaleableQuantity int64 `db:"non_saleable_quantity" json:"nonSaleableQuantity"`
	OnOrderQuantity     int64 `db:"on_order_quantity" json:"onOrderQuantity"`
	InTransitQuantity   int64 `db:"in_transit_quantity" json:"inTransitQuantity"`
	ReturnedQuantity    int64 `db:"returned_quantity" json:"returnedQuantity"`
	HoldQuantity        int64 `db:"hold_quantity" json:"holdQuantity"`
	BackorderQuantity   int64 `db:"backorder_quantity" json:"backorderQuantity"`

	LowStockThreshold *int64 `db:"low_stock_threshold" json:"lowStockThreshold,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewInventoryRecord creates an empty record for a (product, location)
// pair. Records come into existence on the first stock event.
func NewInventoryRecord(productID, locationID id.ID) *InventoryRecord {
	now := time.Now().UTC()
	return &InventoryRecord{
		ID:         id.New(),
		ProductID:  productID,
		LocationID: locationID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// AvailableToPromise is the quantity that can still be promised to new
// orders. Reserving moves units out of the stock bucket, so stock
// already excludes everything earmarked and is itself the promisable
// pool. Lot/serial detail does not participate.
func (r *InventoryRecord) AvailableToPromise() int64 {
	return r.StockQuantity
}

// IsLowStock reports whether stock has fallen to or below the
// configured threshold.
func (r *InventoryRecord) IsLowStock() bool {
	return r.LowStockThreshold != nil && r.StockQuantity <= *r.LowStockThreshold
}

// Apply performs the bucket transition for the given adjustment type
// and magnitude. On a violated precondition it returns a
// PreconditionViolation error and leaves the record untouched; the
// buckets mutate only when every check passes.
func (r *InventoryRecord) Apply(adjType AdjustmentType, qty int64) error {
	if qty <= 0 {
		return apperror.NewPrecondition("quantity must be positive").
			WithDetail("adjustment_type", string(adjType)).
			WithDetail("quantity", qty)
	}

	stock := r.StockQuantity
	reserved := r.ReservedQuantity
	nonSaleable := r.NonSaleableQuantity
	hold := r.HoldQuantity

	switch adjType {
	case Addition:
		stock += qty

	case Subtraction:
		if stock < qty {
			return r.shortfall(adjType, "insufficient stock for subtraction", qty, stock)
		}
		stock -= qty

	case Reservation:
		if stock < qty {
			return r.shortfall(adjType, "insufficient stock for reservation", qty, stock)
		}
		stock -= qty
		reserved += qty

	case ReleaseReservation:
		if reserved < qty {
			return r.shortfall(adjType, "cannot release more than reserved quantity", qty, reserved)
		}
		stock += qty
		reserved -= qty

	case NonSaleable:
		if stock < qty {
			return r.shortfall(adjType, "insufficient stock to mark non-saleable", qty, stock)
		}
		stock -= qty
		nonSaleable += qty

	case ReturnToStock:
		if nonSaleable < qty {
			return r.shortfall(adjType, "cannot return more than non-saleable quantity", qty, nonSaleable)
		}
		stock += qty
		nonSaleable -= qty

	case Hold:
		if stock < qty {
			return r.shortfall(adjType, "insufficient stock to place on hold", qty, stock)
		}
		stock -= qty
		hold += qty

	case ReleaseHold:
		if hold < qty {
			return r.shortfall(adjType, "cannot release more than held quantity", qty, hold)
		}
		stock += qty
		hold -= qty

	case ShipOrder:
		if reserved < qty {
			return r.shortfall(adjType, "cannot ship more than reserved quantity", qty, reserved)
		}
		reserved -= qty

	default:
		return apperror.NewValidation(fmt.Sprintf("unknown adjustment type %q", adjType))
	}

	r.StockQuantity = stock
	r.ReservedQuantity = reserved
	r.NonSaleableQuantity = nonSaleable
	r.HoldQuantity = hold
	r.UpdatedAt = time.Now().UTC()

	return nil
}

func (r *InventoryRecord) shortfall(adjType AdjustmentType, msg string, requested, available int64) error {
	return apperror.NewPrecondition(msg).
		WithDetail("adjustment_type", string(adjType)).
		WithDetail("requested", requested).
		WithDetail("available", available)
}
