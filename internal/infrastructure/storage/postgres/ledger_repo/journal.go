package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/journal"
	"stockledger/internal/infrastructure/storage/postgres"
)

const adjustmentsTable = "inventory_adjustments"

var adjustmentColumns = []string{
	"id", "inventory_id", "adjustment_type",
	"quantity_change", "new_stock_quantity",
	"reason_id", "actor_id", "notes", "created_at",
}

// JournalRepo implements journal.Repository. Append-only: the table has
// no update path here.
type JournalRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewJournalRepo creates an adjustment journal repository.
func NewJournalRepo(txManager *postgres.TxManager) *JournalRepo {
	return &JournalRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ journal.Repository = (*JournalRepo)(nil)

// Append inserts one journal entry.
func (r *JournalRepo) Append(ctx context.Context, record *entity.AdjustmentRecord) error {
	q := r.builder.Insert(adjustmentsTable).
		Columns(adjustmentColumns...).
		Values(
			record.ID, record.InventoryID, record.AdjustmentType,
			record.QuantityChange, record.NewStockQuantity,
			record.ReasonID, record.ActorID, record.Notes, record.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert adjustment: %w", err)
	}

	return nil
}

// ListByInventory returns entries for an inventory record, newest first.
func (r *JournalRepo) ListByInventory(ctx context.Context, inventoryID id.ID, filter journal.ListFilter) ([]entity.AdjustmentRecord, error) {
	return r.list(ctx, squirrel.Eq{"inventory_id": inventoryID}, filter)
}

// ListByReason returns entries referencing a reason, newest first.
func (r *JournalRepo) ListByReason(ctx context.Context, reasonID id.ID, filter journal.ListFilter) ([]entity.AdjustmentRecord, error) {
	return r.list(ctx, squirrel.Eq{"reason_id": reasonID}, filter)
}

func (r *JournalRepo) list(ctx context.Context, where squirrel.Eq, filter journal.ListFilter) ([]entity.AdjustmentRecord, error) {
	q := r.builder.Select(adjustmentColumns...).
		From(adjustmentsTable).
		Where(where).
		OrderBy("created_at DESC", "id DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var records []entity.AdjustmentRecord
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &records, sql, args...); err != nil {
		return nil, fmt.Errorf("select adjustments: %w", err)
	}

	return records, nil
}

// CountByReason reports how many entries reference a reason.
func (r *JournalRepo) CountByReason(ctx context.Context, reasonID id.ID) (int64, error) {
	q := r.builder.Select("COUNT(*)").
		From(adjustmentsTable).
		Where(squirrel.Eq{"reason_id": reasonID})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var count int64
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count adjustments: %w", err)
	}

	return count, nil
}
