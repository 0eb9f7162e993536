package ledger

import (
	"context"
	"fmt"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/tx"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/allocation"
	"stockledger/internal/domain/journal"
	"stockledger/internal/domain/product"
	"stockledger/internal/domain/reason"
	"stockledger/pkg/logger"
)

// LotHints direct the lot sub-ledger when a ledger adjustment targets a
// lot-tracked product. With a LotNumber the adjustment hits that lot;
// without one, consumption-style adjustments allocate across lots by
// Strategy.
type LotHints struct {
	LotNumber         *string
	ExpiryDate        *time.Time
	ManufacturingDate *time.Time
	CostPricePerUnit  *types.Money
	Strategy          allocation.Policy
}

// SerialHints direct the serialized sub-ledger. SerialNumbers names the
// exact units; when empty, units are picked automatically in received
// order.
type SerialHints struct {
	SerialNumbers []string
	Notes         *string
}

// LotReconciler applies the physical lot-level counterpart of a bucket
// adjustment inside the caller's transaction. It mutates lot rows only;
// the ledger owns the bucket arithmetic.
type LotReconciler interface {
	Reconcile(ctx context.Context, inv *entity.InventoryRecord, adjType entity.AdjustmentType, qty int64, hints LotHints) error
}

// SerialReconciler is the serialized-unit counterpart of LotReconciler.
type SerialReconciler interface {
	Reconcile(ctx context.Context, inv *entity.InventoryRecord, adjType entity.AdjustmentType, qty int64, hints SerialHints) error
}

// Service is the quantity ledger. Every bucket mutation runs through
// ApplyAdjustment: one transaction, one row lock, one journal entry.
type Service struct {
	repo      Repository
	journal   *journal.Service
	products  product.Resolver
	reasons   reason.Repository
	txManager tx.Manager
	lots      LotReconciler
	serials   SerialReconciler
}

// NewService creates the quantity ledger service. The reconcilers may
// be nil when the deployment tracks neither lots nor serials.
func NewService(
	repo Repository,
	journalSvc *journal.Service,
	products product.Resolver,
	reasons reason.Repository,
	txManager tx.Manager,
	lots LotReconciler,
	serials SerialReconciler,
) *Service {
	return &Service{
		repo:      repo,
		journal:   journalSvc,
		products:  products,
		reasons:   reasons,
		txManager: txManager,
		lots:      lots,
		serials:   serials,
	}
}

// ApplyRequest describes one bucket adjustment. Quantity is a positive
// magnitude; the direction comes from AdjustmentType.
type ApplyRequest struct {
	// InventoryID targets an existing record. When nil, ProductID and
	// LocationID must be set and the record is created lazily on its
	// first stock event.
	InventoryID id.ID
	ProductID   id.ID
	LocationID  id.ID

	AdjustmentType entity.AdjustmentType
	Quantity       int64
	ReasonID       id.ID
	ActorID        id.ID
	Notes          *string

	// LotHints / SerialHints drive the matching sub-ledger within the
	// same transaction. Supplying hints for a product not configured
	// for that tracking mode fails with ProductConfigurationError.
	LotHints    *LotHints
	SerialHints *SerialHints
}

// ApplyAdjustment validates and applies one bucket transition under a
// record-scoped lock, drives the sub-ledger when hints are present, and
// appends exactly one journal entry. On any error nothing persists.
func (s *Service) ApplyAdjustment(ctx context.Context, req ApplyRequest) (*entity.AdjustmentRecord, error) {
	if req.Quantity <= 0 {
		return nil, apperror.NewPrecondition("quantity must be positive").
			WithDetail("quantity", req.Quantity)
	}
	if req.LotHints != nil && req.SerialHints != nil {
		return nil, apperror.NewValidation("lot and serial hints are mutually exclusive")
	}
	if id.IsNil(req.InventoryID) && (id.IsNil(req.ProductID) || id.IsNil(req.LocationID)) {
		return nil, apperror.NewValidation("either inventory id or product and location ids are required")
	}
	if _, err := s.reasons.GetByID(ctx, req.ReasonID); err != nil {
		return nil, err
	}

	var record *entity.AdjustmentRecord

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var inv *entity.InventoryRecord
		var err error
		if !id.IsNil(req.InventoryID) {
			inv, err = s.repo.GetForUpdate(ctx, req.InventoryID)
		} else {
			inv, err = s.repo.GetOrCreateForUpdate(ctx, req.ProductID, req.LocationID)
		}
		if err != nil {
			return err
		}

		tracking, err := s.products.ResolveTracking(ctx, inv.ProductID)
		if err != nil {
			return err
		}
		if err := tracking.Validate(); err != nil {
			return err
		}

		if err := inv.Apply(req.AdjustmentType, req.Quantity); err != nil {
			return err
		}

		switch {
		case req.LotHints != nil:
			if err := tracking.RequireLotted(); err != nil {
				return err
			}
			if s.lots == nil {
				return apperror.NewInternal(fmt.Errorf("lot reconciler not configured"))
			}
			if err := s.lots.Reconcile(ctx, inv, req.AdjustmentType, req.Quantity, *req.LotHints); err != nil {
				return err
			}
		case req.SerialHints != nil:
			if err := tracking.RequireSerialized(); err != nil {
				return err
			}
			if s.serials == nil {
				return apperror.NewInternal(fmt.Errorf("serial reconciler not configured"))
			}
			if err := s.serials.Reconcile(ctx, inv, req.AdjustmentType, req.Quantity, *req.SerialHints); err != nil {
				return err
			}
		}

		if err := s.repo.Update(ctx, inv); err != nil {
			return fmt.Errorf("update inventory record: %w", err)
		}

		record, err = s.journal.Record(ctx, journal.Entry{
			Inventory:      inv,
			AdjustmentType: req.AdjustmentType,
			QuantityChange: req.AdjustmentType.StockDelta(req.Quantity),
			ReasonID:       req.ReasonID,
			ActorID:        req.ActorID,
			Notes:          req.Notes,
		})
		if err != nil {
			return err
		}

		if inv.IsLowStock() {
			logger.Warn(ctx, "stock at or below threshold",
				"inventory_id", inv.ID,
				"stock_quantity", inv.StockQuantity,
				"threshold", *inv.LowStockThreshold,
			)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "adjustment applied",
		"inventory_id", req.InventoryID,
		"adjustment_type", req.AdjustmentType,
		"quantity", req.Quantity,
	)

	return record, nil
}

// GetRecord returns an inventory record without locking it.
func (s *Service) GetRecord(ctx context.Context, inventoryID id.ID) (*entity.InventoryRecord, error) {
	return s.repo.GetByID(ctx, inventoryID)
}
