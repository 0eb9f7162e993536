// Package catalog_repo provides PostgreSQL implementations for the
// catalog-side collaborators the ledger consumes: products (tracking
// flags) and adjustment reasons.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/product"
	"stockledger/internal/infrastructure/storage/postgres"
)

const productsTable = "products"

// ProductRepo implements product.Resolver against the products table.
type ProductRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewProductRepo creates a product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ product.Resolver = (*ProductRepo)(nil)

// GetByID returns one product.
func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*entity.Product, error) {
	q := r.builder.Select(
		"id", "sku", "name", "is_lotted", "is_serialized", "is_active", "created_at",
	).From(productsTable).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p entity.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", productID)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return &p, nil
}

// ResolveTracking returns the tracking mode flags of a product.
func (r *ProductRepo) ResolveTracking(ctx context.Context, productID id.ID) (entity.Tracking, error) {
	p, err := r.GetByID(ctx, productID)
	if err != nil {
		return entity.Tracking{}, err
	}
	return entity.Tracking{IsLotted: p.IsLotted, IsSerialized: p.IsSerialized}, nil
}
