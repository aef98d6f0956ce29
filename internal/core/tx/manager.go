// Package tx provides transaction management abstractions.
// This package defines interfaces that decouple domain logic from specific
// database implementations, following the Dependency Inversion Principle.
package tx

import (
	"context"
)

// Manager defines the contract for transaction management.
// Implementations handle BEGIN, COMMIT, ROLLBACK, and nested transaction support.
//
// Domain services depend on this interface, not concrete implementations.
// The actual implementation lives in infrastructure/storage/postgres.
type Manager interface {
	// RunInTransaction executes fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	//
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with consistent read support.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction at repeatable-read
	// isolation, so every query inside fn observes one database snapshot.
	// The resolver depends on this: the anchor lookup and the movement scan
	// must not see different states of the world.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
