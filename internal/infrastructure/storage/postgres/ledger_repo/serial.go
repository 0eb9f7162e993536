package ledger_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/serial"
	"stockledger/internal/infrastructure/storage/postgres"
)

const serializedTable = "serialized_units"

// uniqueViolation is the PostgreSQL error code for unique constraint
// violations, the backstop behind the application-level duplicate check.
const uniqueViolation = "23505"

var serializedColumns = []string{
	"id", "product_id", "location_id", "inventory_id",
	"serial_number", "status", "notes",
	"received_at", "updated_at",
}

// SerialRepo implements serial.Repository.
type SerialRepo struct {
	txManager *postgres.TxManager
	inserter  *postgres.BatchInserter
	builder   squirrel.StatementBuilderType
}

// NewSerialRepo creates a serialized unit repository.
func NewSerialRepo(txManager *postgres.TxManager) *SerialRepo {
	return &SerialRepo{
		txManager: txManager,
		inserter:  postgres.NewBatchInserter(txManager),
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ serial.Repository = (*SerialRepo)(nil)

// GetByID returns one unit.
func (r *SerialRepo) GetByID(ctx context.Context, unitID id.ID) (*entity.SerializedUnit, error) {
	q := r.builder.Select(serializedColumns...).
		From(serializedTable).
		Where(squirrel.Eq{"id": unitID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var u entity.SerializedUnit
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &u, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("serialized unit", unitID)
		}
		return nil, fmt.Errorf("get serialized unit: %w", err)
	}

	return &u, nil
}

// GetForUpdate returns one unit with its row locked.
func (r *SerialRepo) GetForUpdate(ctx context.Context, unitID id.ID) (*entity.SerializedUnit, error) {
	sql := `
		SELECT id, product_id, location_id, inventory_id,
		       serial_number, status, notes, received_at, updated_at
		FROM serialized_units
		WHERE id = $1
		FOR UPDATE
	`

	var u entity.SerializedUnit
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &u, sql, unitID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("serialized unit", unitID)
		}
		return nil, fmt.Errorf("get serialized unit for update: %w", err)
	}

	return &u, nil
}

// GetBySerial returns the unit for a (product, serial_number) key.
func (r *SerialRepo) GetBySerial(ctx context.Context, productID id.ID, serialNumber string) (*entity.SerializedUnit, error) {
	q := r.builder.Select(serializedColumns...).
		From(serializedTable).
		Where(squirrel.Eq{
			"product_id":    productID,
			"serial_number": serialNumber,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var u entity.SerializedUnit
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &u, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("serialized unit", serialNumber)
		}
		return nil, fmt.Errorf("get serialized unit by serial: %w", err)
	}

	return &u, nil
}

// ListBySerials returns a product's units matching the given serial
// numbers, preserving input order.
func (r *SerialRepo) ListBySerials(ctx context.Context, productID id.ID, serialNumbers []string) ([]entity.SerializedUnit, error) {
	if len(serialNumbers) == 0 {
		return nil, nil
	}

	q := r.builder.Select(serializedColumns...).
		From(serializedTable).
		Where(squirrel.Eq{
			"product_id":    productID,
			"serial_number": serialNumbers,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var units []entity.SerializedUnit
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &units, sql, args...); err != nil {
		return nil, fmt.Errorf("select serialized units: %w", err)
	}

	bySerial := make(map[string]entity.SerializedUnit, len(units))
	for _, u := range units {
		bySerial[u.SerialNumber] = u
	}
	ordered := make([]entity.SerializedUnit, 0, len(units))
	for _, sn := range serialNumbers {
		if u, ok := bySerial[sn]; ok {
			ordered = append(ordered, u)
		}
	}

	return ordered, nil
}

// ListByStatus returns up to limit units of an inventory record in one
// status, oldest received first.
func (r *SerialRepo) ListByStatus(ctx context.Context, inventoryID id.ID, status entity.SerialStatus, limit int) ([]entity.SerializedUnit, error) {
	q := r.builder.Select(serializedColumns...).
		From(serializedTable).
		Where(squirrel.Eq{
			"inventory_id": inventoryID,
			"status":       status,
		}).
		OrderBy("received_at", "serial_number")

	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var units []entity.SerializedUnit
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &units, sql, args...); err != nil {
		return nil, fmt.Errorf("select serialized units: %w", err)
	}

	return units, nil
}

// Create inserts one unit.
func (r *SerialRepo) Create(ctx context.Context, u *entity.SerializedUnit) error {
	q := r.builder.Insert(serializedTable).
		Columns(serializedColumns...).
		Values(
			u.ID, u.ProductID, u.LocationID, u.InventoryID,
			u.SerialNumber, u.Status, u.Notes,
			u.ReceivedAt, u.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicateSerial(u.ProductID.String(), u.SerialNumber)
		}
		return fmt.Errorf("insert serialized unit: %w", err)
	}

	return nil
}

// CreateBatch bulk-inserts units using the COPY protocol. Requires an
// active transaction, which batch receipts always run inside.
func (r *SerialRepo) CreateBatch(ctx context.Context, units []*entity.SerializedUnit) error {
	if len(units) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(units))
	for _, u := range units {
		rows = append(rows, []any{
			u.ID, u.ProductID, u.LocationID, u.InventoryID,
			u.SerialNumber, u.Status, u.Notes,
			u.ReceivedAt, u.UpdatedAt,
		})
	}

	if _, err := r.inserter.CopyFromSlice(ctx, serializedTable, serializedColumns, rows); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicateSerial(units[0].ProductID.String(), "")
		}
		return fmt.Errorf("copy serialized units: %w", err)
	}

	return nil
}

// Update persists status and notes of a unit.
func (r *SerialRepo) Update(ctx context.Context, u *entity.SerializedUnit) error {
	q := r.builder.Update(serializedTable).
		Set("status", u.Status).
		Set("notes", u.Notes).
		Set("updated_at", u.UpdatedAt).
		Where(squirrel.Eq{"id": u.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update serialized unit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("serialized unit", u.ID)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
