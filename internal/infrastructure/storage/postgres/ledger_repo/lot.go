package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/lot"
	"stockledger/internal/infrastructure/storage/postgres"
)

const lotsTable = "lots"

var lotColumns = []string{
	"id", "product_id", "location_id", "inventory_id",
	"lot_number", "quantity", "reserved_quantity", "status",
	"expiry_date", "manufacturing_date", "received_date",
	"cost_price_per_unit", "notes", "created_at", "updated_at",
}

// LotRepo implements lot.Repository.
type LotRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewLotRepo creates a lot repository.
func NewLotRepo(txManager *postgres.TxManager) *LotRepo {
	return &LotRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ lot.Repository = (*LotRepo)(nil)

// GetByID returns one lot.
func (r *LotRepo) GetByID(ctx context.Context, lotID id.ID) (*entity.Lot, error) {
	q := r.builder.Select(lotColumns...).
		From(lotsTable).
		Where(squirrel.Eq{"id": lotID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var l entity.Lot
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &l, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("lot", lotID)
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}

	return &l, nil
}

// GetForUpdate returns one lot with its row locked. Used by lot-only
// mutations that run outside an inventory record lock.
func (r *LotRepo) GetForUpdate(ctx context.Context, lotID id.ID) (*entity.Lot, error) {
	sql := `
		SELECT id, product_id, location_id, inventory_id,
		       lot_number, quantity, reserved_quantity, status,
		       expiry_date, manufacturing_date, received_date,
		       cost_price_per_unit, notes, created_at, updated_at
		FROM lots
		WHERE id = $1
		FOR UPDATE
	`

	var l entity.Lot
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &l, sql, lotID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("lot", lotID)
		}
		return nil, fmt.Errorf("get lot for update: %w", err)
	}

	return &l, nil
}

// GetByNumber returns the lot for a (product, location, lot_number) key.
func (r *LotRepo) GetByNumber(ctx context.Context, productID, locationID id.ID, lotNumber string) (*entity.Lot, error) {
	q := r.builder.Select(lotColumns...).
		From(lotsTable).
		Where(squirrel.Eq{
			"product_id":  productID,
			"location_id": locationID,
			"lot_number":  lotNumber,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var l entity.Lot
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &l, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("lot", lotNumber)
		}
		return nil, fmt.Errorf("get lot by number: %w", err)
	}

	return &l, nil
}

// ListByInventory returns all lots of an inventory record, oldest
// received first.
func (r *LotRepo) ListByInventory(ctx context.Context, inventoryID id.ID) ([]entity.Lot, error) {
	q := r.builder.Select(lotColumns...).
		From(lotsTable).
		Where(squirrel.Eq{"inventory_id": inventoryID}).
		OrderBy("received_date", "created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lots []entity.Lot
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lots, sql, args...); err != nil {
		return nil, fmt.Errorf("select lots: %w", err)
	}

	return lots, nil
}

// Create inserts a new lot row.
func (r *LotRepo) Create(ctx context.Context, l *entity.Lot) error {
	q := r.builder.Insert(lotsTable).
		Columns(lotColumns...).
		Values(
			l.ID, l.ProductID, l.LocationID, l.InventoryID,
			l.LotNumber, l.Quantity, l.ReservedQuantity, l.Status,
			l.ExpiryDate, l.ManufacturingDate, l.ReceivedDate,
			l.CostPricePerUnit, l.Notes, l.CreatedAt, l.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lot: %w", err)
	}

	return nil
}

// Update persists lot counters and status.
func (r *LotRepo) Update(ctx context.Context, l *entity.Lot) error {
	q := r.builder.Update(lotsTable).
		Set("quantity", l.Quantity).
		Set("reserved_quantity", l.ReservedQuantity).
		Set("status", l.Status).
		Set("expiry_date", l.ExpiryDate).
		Set("manufacturing_date", l.ManufacturingDate).
		Set("cost_price_per_unit", l.CostPricePerUnit).
		Set("notes", l.Notes).
		Set("updated_at", l.UpdatedAt).
		Where(squirrel.Eq{"id": l.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update lot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("lot", l.ID)
	}

	return nil
}
