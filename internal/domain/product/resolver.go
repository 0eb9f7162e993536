// Package product exposes the product capability the ledger consumes.
// The catalog itself (attributes, categories, pricing) is an external
// collaborator; the ledger only needs the tracking mode of a product.
package product

import (
	"context"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
)

// Resolver resolves the tracking configuration for a product.
type Resolver interface {
	// ResolveTracking returns the tracking flags for a product, or a
	// NotFound error if the product does not exist.
	ResolveTracking(ctx context.Context, productID id.ID) (entity.Tracking, error)
}

// StaticResolver serves tracking flags from a fixed map. Used in tests
// and tooling.
type StaticResolver map[id.ID]entity.Tracking

// ResolveTracking implements Resolver.
func (r StaticResolver) ResolveTracking(_ context.Context, productID id.ID) (entity.Tracking, error) {
	t, ok := r[productID]
	if !ok {
		return entity.Tracking{}, apperror.NewNotFound("product", productID)
	}
	return t, nil
}
