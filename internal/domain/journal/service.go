package journal

import (
	"context"
	"fmt"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
)

// Service writes and queries the adjustment journal. History is
// immutable once written; the only mutation is Record, called from
// inside a ledger transaction.
type Service struct {
	repo Repository
}

// NewService creates a journal service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Entry describes one mutation to journal.
type Entry struct {
	Inventory      *entity.InventoryRecord
	AdjustmentType entity.AdjustmentType
	QuantityChange int64
	ReasonID       id.ID
	ActorID        id.ID
	Notes          *string
}

// Record appends one journal entry snapshotting the post-mutation
// stock quantity. Must be called within the same transaction as the
// bucket mutation it describes.
func (s *Service) Record(ctx context.Context, e Entry) (*entity.AdjustmentRecord, error) {
	if e.Inventory == nil {
		return nil, apperror.NewValidation("journal entry requires an inventory record")
	}
	if id.IsNil(e.ReasonID) {
		return nil, apperror.NewValidation("journal entry requires a reason")
	}

	record := &entity.AdjustmentRecord{
		ID:               id.New(),
		InventoryID:      e.Inventory.ID,
		AdjustmentType:   e.AdjustmentType,
		QuantityChange:   e.QuantityChange,
		NewStockQuantity: e.Inventory.StockQuantity,
		ReasonID:         e.ReasonID,
		Notes:            e.Notes,
		CreatedAt:        time.Now().UTC(),
	}
	if !id.IsNil(e.ActorID) {
		actorID := e.ActorID
		record.ActorID = &actorID
	}

	if err := s.repo.Append(ctx, record); err != nil {
		return nil, fmt.Errorf("append journal entry: %w", err)
	}

	return record, nil
}

// HistoryByInventory returns the adjustment history for one inventory
// record, newest first.
func (s *Service) HistoryByInventory(ctx context.Context, inventoryID id.ID, filter ListFilter) ([]entity.AdjustmentRecord, error) {
	return s.repo.ListByInventory(ctx, inventoryID, filter)
}

// HistoryByReason returns all adjustments recorded under a reason.
func (s *Service) HistoryByReason(ctx context.Context, reasonID id.ID, filter ListFilter) ([]entity.AdjustmentRecord, error) {
	return s.repo.ListByReason(ctx, reasonID, filter)
}
