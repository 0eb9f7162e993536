package serial

import (
	"context"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/tx"
	"stockledger/internal/domain/ledger"
	"stockledger/pkg/logger"
)

// Service exposes the serialized sub-ledger operations. Operations
// that move a unit between the promisable buckets delegate to the
// quantity ledger; pure status moves run in their own transaction and
// write no journal entry.
type Service struct {
	repo      Repository
	ledger    *ledger.Service
	txManager tx.Manager
}

// NewService creates a serialized unit service.
func NewService(repo Repository, ledgerSvc *ledger.Service, txManager tx.Manager) *Service {
	return &Service{repo: repo, ledger: ledgerSvc, txManager: txManager}
}

// ReceiveRequest describes receipt of one or more serialized units at
// a location.
type ReceiveRequest struct {
	ProductID     id.ID
	LocationID    id.ID
	SerialNumbers []string
	ReasonID      id.ID
	ActorID       id.ID
	Notes         *string
}

// Receive registers one serialized unit and increments stock by one.
// A serial already known for the product fails with
// DuplicateSerialNumber.
func (s *Service) Receive(ctx context.Context, req ReceiveRequest) (*entity.SerializedUnit, error) {
	if len(req.SerialNumbers) != 1 {
		return nil, apperror.NewValidation("receive takes exactly one serial number")
	}
	units, err := s.receive(ctx, req)
	if err != nil {
		return nil, err
	}
	return &units[0], nil
}

// ReceiveBatch registers many units in one adjustment, bulk-inserted.
func (s *Service) ReceiveBatch(ctx context.Context, req ReceiveRequest) ([]entity.SerializedUnit, error) {
	if len(req.SerialNumbers) == 0 {
		return nil, apperror.NewValidation("at least one serial number is required")
	}
	return s.receive(ctx, req)
}

func (s *Service) receive(ctx context.Context, req ReceiveRequest) ([]entity.SerializedUnit, error) {
	_, err := s.ledger.ApplyAdjustment(ctx, ledger.ApplyRequest{
		ProductID:      req.ProductID,
		LocationID:     req.LocationID,
		AdjustmentType: entity.Addition,
		Quantity:       int64(len(req.SerialNumbers)),
		ReasonID:       req.ReasonID,
		ActorID:        req.ActorID,
		Notes:          req.Notes,
		SerialHints: &ledger.SerialHints{
			SerialNumbers: req.SerialNumbers,
			Notes:         req.Notes,
		},
	})
	if err != nil {
		return nil, err
	}
	return s.repo.ListBySerials(ctx, req.ProductID, req.SerialNumbers)
}

// UnitRequest addresses one unit for a bucket-coupled operation.
type UnitRequest struct {
	UnitID   id.ID
	ReasonID id.ID
	ActorID  id.ID
	Notes    *string
}

// Reserve earmarks an AVAILABLE unit: one unit of stock moves to the
// reserved bucket.
func (s *Service) Reserve(ctx context.Context, req UnitRequest) (*entity.SerializedUnit, error) {
	return s.moveUnit(ctx, req, entity.Reservation)
}

// Release returns a RESERVED unit to AVAILABLE.
func (s *Service) Release(ctx context.Context, req UnitRequest) (*entity.SerializedUnit, error) {
	return s.moveUnit(ctx, req, entity.ReleaseReservation)
}

// Ship sells a RESERVED unit: the unit goes SOLD and leaves the
// promisable pool permanently.
func (s *Service) Ship(ctx context.Context, req UnitRequest) (*entity.SerializedUnit, error) {
	return s.moveUnit(ctx, req, entity.ShipOrder)
}

func (s *Service) moveUnit(ctx context.Context, req UnitRequest, adjType entity.AdjustmentType) (*entity.SerializedUnit, error) {
	u, err := s.repo.GetByID(ctx, req.UnitID)
	if err != nil {
		return nil, err
	}

	_, err = s.ledger.ApplyAdjustment(ctx, ledger.ApplyRequest{
		InventoryID:    u.InventoryID,
		AdjustmentType: adjType,
		Quantity:       1,
		ReasonID:       req.ReasonID,
		ActorID:        req.ActorID,
		Notes:          req.Notes,
		SerialHints:    &ledger.SerialHints{SerialNumbers: []string{u.SerialNumber}},
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, req.UnitID)
}

// StatusRequest describes a general status update.
type StatusRequest struct {
	UnitID    id.ID
	NewStatus entity.SerialStatus
	ReasonID  id.ID
	ActorID   id.ID
	Notes     *string
}

// UpdateStatus performs a general transition on the status graph.
// Transitions that change the promisable pool (AVAILABLE<->RESERVED,
// AVAILABLE->DAMAGED) run through the ledger and require a reason;
// all other allowed transitions are status-only and write no journal
// entry.
func (s *Service) UpdateStatus(ctx context.Context, req StatusRequest) (*entity.SerializedUnit, error) {
	u, err := s.repo.GetByID(ctx, req.UnitID)
	if err != nil {
		return nil, err
	}
	if u.Status == req.NewStatus {
		return u, nil
	}
	if !entity.CanTransition(u.Status, req.NewStatus) {
		return nil, apperror.NewInvalidStatusTransition(u.SerialNumber, string(u.Status), string(req.NewStatus))
	}

	if adjType, ok := bucketEffect(u.Status, req.NewStatus); ok {
		if id.IsNil(req.ReasonID) {
			return nil, apperror.NewValidation("a reason is required for transitions that change stock buckets").
				WithDetail("from", u.Status).
				WithDetail("to", req.NewStatus)
		}
		return s.moveUnit(ctx, UnitRequest{
			UnitID:   req.UnitID,
			ReasonID: req.ReasonID,
			ActorID:  req.ActorID,
			Notes:    req.Notes,
		}, adjType)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		locked, err := s.repo.GetForUpdate(ctx, req.UnitID)
		if err != nil {
			return err
		}
		if err := locked.Transition(req.NewStatus); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, locked); err != nil {
			return err
		}
		u = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "serialized unit status updated",
		"unit_id", req.UnitID,
		"serial_number", u.SerialNumber,
		"status", u.Status,
	)
	return u, nil
}

// bucketEffect maps the status transitions that move a unit between
// stock buckets onto their adjustment type.
func bucketEffect(from, to entity.SerialStatus) (entity.AdjustmentType, bool) {
	switch {
	case from == entity.SerialAvailable && to == entity.SerialReserved:
		return entity.Reservation, true
	case from == entity.SerialReserved && to == entity.SerialAvailable:
		return entity.ReleaseReservation, true
	case from == entity.SerialAvailable && to == entity.SerialDamaged:
		return entity.NonSaleable, true
	}
	return "", false
}

// FindAvailable returns the oldest AVAILABLE unit of an inventory
// record, or a NotFound error when none remain.
func (s *Service) FindAvailable(ctx context.Context, inventoryID id.ID) (*entity.SerializedUnit, error) {
	units, err := s.repo.ListByStatus(ctx, inventoryID, entity.SerialAvailable, 1)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, apperror.NewNotFound("available serialized unit", inventoryID)
	}
	return &units[0], nil
}

// GetUnit returns one unit.
func (s *Service) GetUnit(ctx context.Context, unitID id.ID) (*entity.SerializedUnit, error) {
	return s.repo.GetByID(ctx, unitID)
}

// ListByStatus returns units of an inventory record filtered by status.
func (s *Service) ListByStatus(ctx context.Context, inventoryID id.ID, status entity.SerialStatus, limit int) ([]entity.SerializedUnit, error) {
	return s.repo.ListByStatus(ctx, inventoryID, status, limit)
}
