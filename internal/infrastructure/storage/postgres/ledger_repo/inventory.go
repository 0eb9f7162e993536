// Package ledger_repo provides the PostgreSQL implementations of the
// ledger-side repositories: inventory records, lots, serialized units
// and the adjustment journal.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/infrastructure/storage/postgres"
)

const inventoryTable = "inventory_records"

var inventoryColumns = []string{
	"id", "product_id", "location_id",
	"stock_quantity", "reserved_quantity", "non_saleable_quantity",
	"on_order_quantity", "in_transit_quantity", "returned_quantity",
	"hold_quantity", "backorder_quantity",
	"low_stock_threshold", "created_at", "updated_at",
}

// InventoryRepo implements ledger.Repository.
type InventoryRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewInventoryRepo creates an inventory record repository.
func NewInventoryRepo(txManager *postgres.TxManager) *InventoryRepo {
	return &InventoryRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ ledger.Repository = (*InventoryRepo)(nil)

// GetByID returns a record without locking it.
func (r *InventoryRepo) GetByID(ctx context.Context, inventoryID id.ID) (*entity.InventoryRecord, error) {
	q := r.builder.Select(inventoryColumns...).
		From(inventoryTable).
		Where(squirrel.Eq{"id": inventoryID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var record entity.InventoryRecord
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &record, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("inventory record", inventoryID)
		}
		return nil, fmt.Errorf("get inventory record: %w", err)
	}

	return &record, nil
}

// GetForUpdate returns a record with its row locked until the enclosing
// transaction ends. This is the lock that serializes writers per record.
func (r *InventoryRepo) GetForUpdate(ctx context.Context, inventoryID id.ID) (*entity.InventoryRecord, error) {
	sql := `
		SELECT id, product_id, location_id,
		       stock_quantity, reserved_quantity, non_saleable_quantity,
		       on_order_quantity, in_transit_quantity, returned_quantity,
		       hold_quantity, backorder_quantity,
		       low_stock_threshold, created_at, updated_at
		FROM inventory_records
		WHERE id = $1
		FOR UPDATE
	`

	var record entity.InventoryRecord
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &record, sql, inventoryID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("inventory record", inventoryID)
		}
		return nil, fmt.Errorf("get inventory record for update: %w", err)
	}

	return &record, nil
}

// GetOrCreateForUpdate returns the locked record for a (product,
// location) pair, inserting an empty one on the first stock event. The
// insert uses ON CONFLICT DO NOTHING so two concurrent first events
// converge on the same row.
func (r *InventoryRepo) GetOrCreateForUpdate(ctx context.Context, productID, locationID id.ID) (*entity.InventoryRecord, error) {
	record, err := r.getByKeyForUpdate(ctx, productID, locationID)
	if err == nil {
		return record, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, err
	}

	fresh := entity.NewInventoryRecord(productID, locationID)
	q := r.builder.Insert(inventoryTable).
		Columns("id", "product_id", "location_id", "created_at", "updated_at").
		Values(fresh.ID, fresh.ProductID, fresh.LocationID, fresh.CreatedAt, fresh.UpdatedAt).
		Suffix("ON CONFLICT (product_id, location_id) DO NOTHING")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return nil, fmt.Errorf("create inventory record: %w", err)
	}

	return r.getByKeyForUpdate(ctx, productID, locationID)
}

func (r *InventoryRepo) getByKeyForUpdate(ctx context.Context, productID, locationID id.ID) (*entity.InventoryRecord, error) {
	sql := `
		SELECT id, product_id, location_id,
		       stock_quantity, reserved_quantity, non_saleable_quantity,
		       on_order_quantity, in_transit_quantity, returned_quantity,
		       hold_quantity, backorder_quantity,
		       low_stock_threshold, created_at, updated_at
		FROM inventory_records
		WHERE product_id = $1 AND location_id = $2
		FOR UPDATE
	`

	var record entity.InventoryRecord
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &record, sql, productID, locationID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("inventory record", fmt.Sprintf("%s@%s", productID, locationID))
		}
		return nil, fmt.Errorf("get inventory record by key: %w", err)
	}

	return &record, nil
}

// Update persists the bucket counters of a previously locked record.
func (r *InventoryRepo) Update(ctx context.Context, record *entity.InventoryRecord) error {
	q := r.builder.Update(inventoryTable).
		Set("stock_quantity", record.StockQuantity).
		Set("reserved_quantity", record.ReservedQuantity).
		Set("non_saleable_quantity", record.NonSaleableQuantity).
		Set("on_order_quantity", record.OnOrderQuantity).
		Set("in_transit_quantity", record.InTransitQuantity).
		Set("returned_quantity", record.ReturnedQuantity).
		Set("hold_quantity", record.HoldQuantity).
		Set("backorder_quantity", record.BackorderQuantity).
		Set("low_stock_threshold", record.LowStockThreshold).
		Set("updated_at", record.UpdatedAt).
		Where(squirrel.Eq{"id": record.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update inventory record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("inventory record", record.ID)
	}

	return nil
}
