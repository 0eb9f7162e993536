package tx

import (
	"context"
)

// MockManager executes functions directly without a database. It still
// provides the all-or-nothing contract shape for unit tests: callers
// observe errors exactly as they would from a rolled-back transaction.
type MockManager struct {
	// Calls counts RunInTransaction invocations.
	Calls int
}

// RunInTransaction executes fn in-process.
func (m *MockManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	return fn(ctx)
}

// ReadOnly executes fn in-process.
func (m *MockManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var _ ReadOnlyManager = (*MockManager)(nil)
