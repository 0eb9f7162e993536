package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/reason"
	"stockledger/internal/infrastructure/storage/postgres"
)

const (
	reasonsTable     = "adjustment_reasons"
	adjustmentsTable = "inventory_adjustments"
)

// ReasonRepo implements reason.Repository.
type ReasonRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewReasonRepo creates an adjustment reason repository.
func NewReasonRepo(txManager *postgres.TxManager) *ReasonRepo {
	return &ReasonRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ reason.Repository = (*ReasonRepo)(nil)

// GetByID returns one reason.
func (r *ReasonRepo) GetByID(ctx context.Context, reasonID id.ID) (*entity.AdjustmentReason, error) {
	q := r.builder.Select(
		"id", "name", "description", "is_active", "created_at",
	).From(reasonsTable).
		Where(squirrel.Eq{"id": reasonID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var res entity.AdjustmentReason
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &res, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("adjustment reason", reasonID)
		}
		return nil, fmt.Errorf("get reason: %w", err)
	}

	return &res, nil
}

// Delete removes a reason unless journal entries still reference it.
// The FK is also ON DELETE RESTRICT; this check turns the constraint
// error into a typed conflict.
func (r *ReasonRepo) Delete(ctx context.Context, reasonID id.ID) error {
	countQ := r.builder.Select("COUNT(*)").
		From(adjustmentsTable).
		Where(squirrel.Eq{"reason_id": reasonID})

	sql, args, err := countQ.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	var count int64
	if err := querier.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return fmt.Errorf("count references: %w", err)
	}
	if count > 0 {
		return apperror.NewConflict("reason is referenced by adjustment history").
			WithDetail("reason_id", reasonID).
			WithDetail("references", count)
	}

	delQ := r.builder.Delete(reasonsTable).
		Where(squirrel.Eq{"id": reasonID})

	sql, args, err = delQ.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete reason: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("adjustment reason", reasonID)
	}

	return nil
}
