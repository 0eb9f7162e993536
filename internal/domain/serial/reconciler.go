package serial

import (
	"context"
	"fmt"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/domain/ledger"
)

// Reconciler applies the unit-level counterpart of a ledger bucket
// adjustment. It runs inside the ledger's transaction, under the
// inventory record's row lock.
type Reconciler struct {
	repo Repository
}

// NewReconciler creates the serialized reconciler wired into the ledger.
func NewReconciler(repo Repository) *Reconciler {
	return &Reconciler{repo: repo}
}

var _ ledger.SerialReconciler = (*Reconciler)(nil)

// Reconcile dispatches on the adjustment type. ADDITION receives units,
// RESERVATION/RELEASE_RESERVATION move them between AVAILABLE and
// RESERVED, SHIP_ORDER sells them, NON_SALEABLE marks them DAMAGED.
func (r *Reconciler) Reconcile(ctx context.Context, inv *entity.InventoryRecord, adjType entity.AdjustmentType, qty int64, hints ledger.SerialHints) error {
	switch adjType {
	case entity.Addition:
		return r.receive(ctx, inv, qty, hints)
	case entity.Reservation:
		return r.transition(ctx, inv, qty, hints, entity.SerialAvailable, entity.SerialReserved)
	case entity.ReleaseReservation:
		return r.transition(ctx, inv, qty, hints, entity.SerialReserved, entity.SerialAvailable)
	case entity.ShipOrder:
		return r.ship(ctx, inv, qty, hints)
	case entity.NonSaleable:
		return r.transition(ctx, inv, qty, hints, entity.SerialAvailable, entity.SerialDamaged)
	}
	return apperror.NewValidation(fmt.Sprintf("adjustment type %s does not take serial hints", adjType))
}

func (r *Reconciler) receive(ctx context.Context, inv *entity.InventoryRecord, qty int64, hints ledger.SerialHints) error {
	if int64(len(hints.SerialNumbers)) != qty {
		return apperror.NewValidation("serial count must match the received quantity").
			WithDetail("quantity", qty).
			WithDetail("serials", len(hints.SerialNumbers))
	}

	units := make([]*entity.SerializedUnit, 0, len(hints.SerialNumbers))
	seen := make(map[string]struct{}, len(hints.SerialNumbers))
	for _, sn := range hints.SerialNumbers {
		if sn == "" {
			return apperror.NewValidation("serial number cannot be empty")
		}
		if _, dup := seen[sn]; dup {
			return apperror.NewDuplicateSerial(inv.ProductID.String(), sn)
		}
		seen[sn] = struct{}{}

		if _, err := r.repo.GetBySerial(ctx, inv.ProductID, sn); err == nil {
			return apperror.NewDuplicateSerial(inv.ProductID.String(), sn)
		} else if !apperror.IsNotFound(err) {
			return err
		}
		units = append(units, entity.NewSerializedUnit(inv, sn, hints.Notes))
	}

	if len(units) == 1 {
		return r.repo.Create(ctx, units[0])
	}
	return r.repo.CreateBatch(ctx, units)
}

func (r *Reconciler) transition(ctx context.Context, inv *entity.InventoryRecord, qty int64, hints ledger.SerialHints, from, to entity.SerialStatus) error {
	units, err := r.resolveUnits(ctx, inv, qty, hints.SerialNumbers, from)
	if err != nil {
		return err
	}
	for _, u := range units {
		// A named unit must actually be in the status the bucket move
		// assumes, or buckets and physical units drift apart.
		if u.Status != from {
			return apperror.NewInvalidStatusTransition(u.SerialNumber, string(u.Status), string(to))
		}
		if err := u.Transition(to); err != nil {
			return err
		}
		if err := r.repo.Update(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reconciler) ship(ctx context.Context, inv *entity.InventoryRecord, qty int64, hints ledger.SerialHints) error {
	units, err := r.resolveUnits(ctx, inv, qty, hints.SerialNumbers, entity.SerialReserved)
	if err != nil {
		return err
	}
	for _, u := range units {
		if err := u.Sell(); err != nil {
			return err
		}
		if err := r.repo.Update(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

// resolveUnits picks the units an adjustment operates on: the named
// serials when given, otherwise the oldest units in the expected
// status.
func (r *Reconciler) resolveUnits(ctx context.Context, inv *entity.InventoryRecord, qty int64, serials []string, status entity.SerialStatus) ([]*entity.SerializedUnit, error) {
	if len(serials) > 0 {
		if int64(len(serials)) != qty {
			return nil, apperror.NewValidation("serial count must match the adjustment quantity").
				WithDetail("quantity", qty).
				WithDetail("serials", len(serials))
		}
		units := make([]*entity.SerializedUnit, 0, len(serials))
		for _, sn := range serials {
			u, err := r.repo.GetBySerial(ctx, inv.ProductID, sn)
			if err != nil {
				return nil, err
			}
			if u.InventoryID != inv.ID {
				return nil, apperror.NewValidation("serialized unit belongs to a different inventory record").
					WithDetail("serial_number", sn)
			}
			units = append(units, u)
		}
		return units, nil
	}

	listed, err := r.repo.ListByStatus(ctx, inv.ID, status, int(qty))
	if err != nil {
		return nil, err
	}
	if int64(len(listed)) < qty {
		return nil, apperror.NewInsufficientSerialized(inv.ProductID.String(), qty, int64(len(listed)))
	}
	units := make([]*entity.SerializedUnit, 0, len(listed))
	for i := range listed {
		units = append(units, &listed[i])
	}
	return units, nil
}
