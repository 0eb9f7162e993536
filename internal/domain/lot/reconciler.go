package lot

import (
	"context"
	"fmt"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/domain/allocation"
	"stockledger/internal/domain/ledger"
)

// Reconciler applies the lot-level counterpart of a ledger bucket
// adjustment. It runs inside the ledger's transaction, under the
// inventory record's row lock, and mutates lot rows only.
type Reconciler struct {
	repo Repository
}

// NewReconciler creates the lot reconciler wired into the ledger.
func NewReconciler(repo Repository) *Reconciler {
	return &Reconciler{repo: repo}
}

var _ ledger.LotReconciler = (*Reconciler)(nil)

// Reconcile dispatches on the adjustment type. Only the four types with
// a physical lot counterpart accept lot hints.
func (r *Reconciler) Reconcile(ctx context.Context, inv *entity.InventoryRecord, adjType entity.AdjustmentType, qty int64, hints ledger.LotHints) error {
	switch adjType {
	case entity.Addition:
		return r.add(ctx, inv, qty, hints)
	case entity.Subtraction:
		return r.consume(ctx, inv, qty, hints)
	case entity.Reservation:
		return r.reserve(ctx, inv, qty, hints)
	case entity.ReleaseReservation:
		return r.release(ctx, inv, qty, hints)
	}
	return apperror.NewValidation(fmt.Sprintf("adjustment type %s does not take lot hints", adjType))
}

func (r *Reconciler) add(ctx context.Context, inv *entity.InventoryRecord, qty int64, hints ledger.LotHints) error {
	if hints.LotNumber == nil || *hints.LotNumber == "" {
		return apperror.NewValidation("lot number is required for lot additions")
	}

	now := time.Now().UTC()

	l, err := r.repo.GetByNumber(ctx, inv.ProductID, inv.LocationID, *hints.LotNumber)
	if err != nil {
		if !apperror.IsNotFound(err) {
			return err
		}
		l = entity.NewLot(inv, *hints.LotNumber)
		l.Quantity = qty
		l.ExpiryDate = hints.ExpiryDate
		l.ManufacturingDate = hints.ManufacturingDate
		l.CostPricePerUnit = hints.CostPricePerUnit
		if err := l.Validate(); err != nil {
			return err
		}
		// Expired-on-arrival: the lot lands as EXPIRED immediately.
		l.RefreshStatus(now)
		return r.repo.Create(ctx, l)
	}

	if l.IsBlocked() {
		return apperror.NewInvalidLotState(l.LotNumber, string(l.Status))
	}
	l.Quantity += qty
	l.RefreshStatus(now)
	return r.repo.Update(ctx, l)
}

func (r *Reconciler) consume(ctx context.Context, inv *entity.InventoryRecord, qty int64, hints ledger.LotHints) error {
	if hints.LotNumber != nil {
		l, err := r.repo.GetByNumber(ctx, inv.ProductID, inv.LocationID, *hints.LotNumber)
		if err != nil {
			return err
		}
		return r.consumeLot(ctx, l, qty)
	}

	picks, err := r.plan(ctx, inv, qty, hints.Strategy)
	if err != nil {
		return err
	}
	for _, p := range picks {
		if err := r.consumeLot(ctx, p.Lot, p.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reconciler) consumeLot(ctx context.Context, l *entity.Lot, qty int64) error {
	now := time.Now().UTC()
	// The persisted status can lag the expiry date: a lot that expired
	// while dormant still carries AVAILABLE until the next mutation.
	if l.IsBlocked() || l.IsExpired(now) {
		l.RefreshStatus(now)
		return apperror.NewInvalidLotState(l.LotNumber, string(l.Status))
	}
	if qty > l.Quantity {
		return apperror.NewInsufficientLot(qty, l.Quantity).
			WithDetail("lot_number", l.LotNumber)
	}
	l.Quantity -= qty
	l.RefreshStatus(now)
	return r.repo.Update(ctx, l)
}

func (r *Reconciler) reserve(ctx context.Context, inv *entity.InventoryRecord, qty int64, hints ledger.LotHints) error {
	if hints.LotNumber != nil {
		l, err := r.repo.GetByNumber(ctx, inv.ProductID, inv.LocationID, *hints.LotNumber)
		if err != nil {
			return err
		}
		return r.reserveLot(ctx, l, qty)
	}

	picks, err := r.plan(ctx, inv, qty, hints.Strategy)
	if err != nil {
		return err
	}
	for _, p := range picks {
		if err := r.reserveLot(ctx, p.Lot, p.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reconciler) reserveLot(ctx context.Context, l *entity.Lot, qty int64) error {
	now := time.Now().UTC()
	if l.IsBlocked() || l.IsExpired(now) {
		l.RefreshStatus(now)
		return apperror.NewInvalidLotState(l.LotNumber, string(l.Status))
	}
	if qty > l.Quantity {
		return apperror.NewInsufficientLot(qty, l.Quantity).
			WithDetail("lot_number", l.LotNumber)
	}
	l.Quantity -= qty
	l.ReservedQuantity += qty
	l.RefreshStatus(now)
	return r.repo.Update(ctx, l)
}

func (r *Reconciler) release(ctx context.Context, inv *entity.InventoryRecord, qty int64, hints ledger.LotHints) error {
	if hints.LotNumber == nil {
		return apperror.NewValidation("lot number is required to release a lot reservation")
	}
	l, err := r.repo.GetByNumber(ctx, inv.ProductID, inv.LocationID, *hints.LotNumber)
	if err != nil {
		return err
	}
	if qty > l.ReservedQuantity {
		return apperror.NewInsufficientLot(qty, l.ReservedQuantity).
			WithDetail("lot_number", l.LotNumber).
			WithDetail("counter", "reserved_quantity")
	}
	l.ReservedQuantity -= qty
	l.Quantity += qty
	l.RefreshStatus(time.Now().UTC())
	return r.repo.Update(ctx, l)
}

// plan allocates a quantity across the record's lots without mutating
// them. A shortfall fails the whole operation.
func (r *Reconciler) plan(ctx context.Context, inv *entity.InventoryRecord, qty int64, strategy allocation.Policy) ([]Allocation, error) {
	lots, err := r.repo.ListByInventory(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	return planAllocation(lots, qty, strategy, time.Now().UTC())
}
