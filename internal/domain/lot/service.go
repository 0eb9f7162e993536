package lot

import (
	"context"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/tx"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/allocation"
	"stockledger/internal/domain/ledger"
	"stockledger/pkg/logger"
)

// Allocation is one step of a consumption or reservation plan: take
// Quantity units from Lot.
type Allocation struct {
	Lot      *entity.Lot
	Quantity int64
}

// Service exposes the lot sub-ledger operations. Every bucket-coupled
// operation delegates to the quantity ledger so the bucket move, the
// lot mutation and the journal entry share one transaction.
type Service struct {
	repo      Repository
	ledger    *ledger.Service
	txManager tx.Manager
}

// NewService creates a lot service.
func NewService(repo Repository, ledgerSvc *ledger.Service, txManager tx.Manager) *Service {
	return &Service{repo: repo, ledger: ledgerSvc, txManager: txManager}
}

// AddRequest describes a lot receipt.
type AddRequest struct {
	InventoryID       id.ID
	ProductID         id.ID
	LocationID        id.ID
	LotNumber         string
	Quantity          int64
	ExpiryDate        *time.Time
	ManufacturingDate *time.Time
	CostPricePerUnit  *types.Money
	ReasonID          id.ID
	ActorID           id.ID
	Notes             *string
}

// AddQuantity receives quantity into a lot, creating the lot (and the
// inventory record, when addressed by product and location) on first
// receipt. Stock increases by the same amount.
func (s *Service) AddQuantity(ctx context.Context, req AddRequest) (*entity.Lot, error) {
	if req.LotNumber == "" {
		return nil, apperror.NewValidation("lot number is required")
	}

	rec, err := s.ledger.ApplyAdjustment(ctx, ledger.ApplyRequest{
		InventoryID:    req.InventoryID,
		ProductID:      req.ProductID,
		LocationID:     req.LocationID,
		AdjustmentType: entity.Addition,
		Quantity:       req.Quantity,
		ReasonID:       req.ReasonID,
		ActorID:        req.ActorID,
		Notes:          req.Notes,
		LotHints: &ledger.LotHints{
			LotNumber:         &req.LotNumber,
			ExpiryDate:        req.ExpiryDate,
			ManufacturingDate: req.ManufacturingDate,
			CostPricePerUnit:  req.CostPricePerUnit,
		},
	})
	if err != nil {
		return nil, err
	}

	inv, err := s.ledger.GetRecord(ctx, rec.InventoryID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByNumber(ctx, inv.ProductID, inv.LocationID, req.LotNumber)
}

// MoveRequest describes a consume, reserve or release against either a
// specific lot or the record's pool.
type MoveRequest struct {
	LotID    id.ID
	Quantity int64
	ReasonID id.ID
	ActorID  id.ID
	Notes    *string
}

// Consume draws down a specific lot and the stock bucket together.
func (s *Service) Consume(ctx context.Context, req MoveRequest) (*entity.Lot, error) {
	return s.moveLot(ctx, req, entity.Subtraction)
}

// Reserve earmarks quantity on a specific lot: lot quantity moves to
// the lot's reserved counter, stock moves to the reserved bucket.
func (s *Service) Reserve(ctx context.Context, req MoveRequest) (*entity.Lot, error) {
	return s.moveLot(ctx, req, entity.Reservation)
}

// ReleaseReservation is the inverse of Reserve.
func (s *Service) ReleaseReservation(ctx context.Context, req MoveRequest) (*entity.Lot, error) {
	return s.moveLot(ctx, req, entity.ReleaseReservation)
}

func (s *Service) moveLot(ctx context.Context, req MoveRequest, adjType entity.AdjustmentType) (*entity.Lot, error) {
	l, err := s.repo.GetByID(ctx, req.LotID)
	if err != nil {
		return nil, err
	}

	_, err = s.ledger.ApplyAdjustment(ctx, ledger.ApplyRequest{
		InventoryID:    l.InventoryID,
		AdjustmentType: adjType,
		Quantity:       req.Quantity,
		ReasonID:       req.ReasonID,
		ActorID:        req.ActorID,
		Notes:          req.Notes,
		LotHints:       &ledger.LotHints{LotNumber: &l.LotNumber},
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, req.LotID)
}

// DrawRequest draws quantity from an inventory record's lot pool,
// letting the allocation strategy choose the lots.
type DrawRequest struct {
	InventoryID id.ID
	Quantity    int64
	Strategy    allocation.Policy
	ReasonID    id.ID
	ActorID     id.ID
	Notes       *string
}

// ConsumeFromInventory consumes across the record's lots, FEFO unless
// requested otherwise. Fails without side effect when the pool cannot
// cover the quantity.
func (s *Service) ConsumeFromInventory(ctx context.Context, req DrawRequest) (*entity.AdjustmentRecord, error) {
	return s.drawFromInventory(ctx, req, entity.Subtraction)
}

// ReserveFromInventory reserves across the record's lots by strategy.
func (s *Service) ReserveFromInventory(ctx context.Context, req DrawRequest) (*entity.AdjustmentRecord, error) {
	return s.drawFromInventory(ctx, req, entity.Reservation)
}

func (s *Service) drawFromInventory(ctx context.Context, req DrawRequest, adjType entity.AdjustmentType) (*entity.AdjustmentRecord, error) {
	return s.ledger.ApplyAdjustment(ctx, ledger.ApplyRequest{
		InventoryID:    req.InventoryID,
		AdjustmentType: adjType,
		Quantity:       req.Quantity,
		ReasonID:       req.ReasonID,
		ActorID:        req.ActorID,
		Notes:          req.Notes,
		LotHints:       &ledger.LotHints{Strategy: req.Strategy},
	})
}

// MarkExpired sets a lot EXPIRED unconditionally. Buckets are not
// touched and no journal entry is written; the quantity stays on hand
// until consumed or written off through the ledger.
func (s *Service) MarkExpired(ctx context.Context, lotID id.ID) (*entity.Lot, error) {
	var out *entity.Lot
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		l, err := s.repo.GetForUpdate(ctx, lotID)
		if err != nil {
			return err
		}
		l.Status = entity.LotExpired
		if err := s.repo.Update(ctx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "lot marked expired", "lot_id", lotID, "lot_number", out.LotNumber)
	return out, nil
}

// FindForConsumption plans which lots would satisfy a consumption of
// the given quantity under the strategy, without mutating anything.
func (s *Service) FindForConsumption(ctx context.Context, inventoryID id.ID, quantityNeeded int64, strategy allocation.Policy) ([]Allocation, error) {
	lots, err := s.repo.ListByInventory(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	return planAllocation(lots, quantityNeeded, strategy, time.Now().UTC())
}

// GetLot returns one lot.
func (s *Service) GetLot(ctx context.Context, lotID id.ID) (*entity.Lot, error) {
	return s.repo.GetByID(ctx, lotID)
}

// ListByInventory returns all lots of an inventory record.
func (s *Service) ListByInventory(ctx context.Context, inventoryID id.ID) ([]entity.Lot, error) {
	return s.repo.ListByInventory(ctx, inventoryID)
}

// planAllocation filters the pool down to consumable lots and runs the
// selector. A shortfall is an error carrying requested and available
// quantities.
func planAllocation(lots []entity.Lot, quantityNeeded int64, strategy allocation.Policy, now time.Time) ([]Allocation, error) {
	if strategy == "" {
		strategy = allocation.FEFO
	}

	candidates := make([]allocation.Candidate[*entity.Lot], 0, len(lots))
	var available int64
	for i := range lots {
		l := &lots[i]
		if l.IsBlocked() || l.IsExpired(now) || l.Quantity <= 0 {
			continue
		}
		candidates = append(candidates, allocation.Candidate[*entity.Lot]{
			Item:         l,
			Quantity:     l.Quantity,
			ExpiryDate:   l.ExpiryDate,
			ReceivedDate: l.ReceivedDate,
		})
		available += l.Quantity
	}

	result, err := allocation.Select(candidates, quantityNeeded, strategy)
	if err != nil {
		return nil, err
	}
	if result.Shortfall > 0 {
		return nil, apperror.NewInsufficientLot(quantityNeeded, available)
	}

	picks := make([]Allocation, 0, len(result.Picks))
	for _, p := range result.Picks {
		picks = append(picks, Allocation{Lot: p.Item, Quantity: p.Quantity})
	}
	return picks, nil
}
