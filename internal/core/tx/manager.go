// Package tx defines the transaction boundary used by ledger services.
// Domain code depends on this interface only; the Postgres
// implementation lives in infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager runs a function inside a database transaction.
//
// A ledger operation is one Manager call: lock, validate, mutate,
// journal. If fn returns an error the transaction rolls back and no
// partial state persists. Nested calls join the transaction already in
// the context, which is how sub-ledger reconciliation commits or aborts
// together with the bucket mutation that drove it.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager for query-only work.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
