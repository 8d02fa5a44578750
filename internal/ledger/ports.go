// Package ledger defines the storage port every front-end talks to.
package ledger

import (
	"context"

	"finanzas/internal/core"
)

// Store persists transactions. Failures never surface as errors: they are
// logged by the implementation and collapse to false, an empty list or the
// zero summary.
type Store interface {
	// Initialize creates the schema if missing. Safe to call repeatedly.
	Initialize(ctx context.Context) bool
	// Insert normalises the sign of in.Magnitude by in.Type and appends one row.
	Insert(ctx context.Context, in core.TransactionInput) (core.Transaction, bool)
	// List returns every row ordered by date DESC, id DESC. Never nil.
	List(ctx context.Context) []core.Transaction
	// Delete reports whether a row with id existed and was removed.
	Delete(ctx context.Context, id int64) bool
	Summarize(ctx context.Context) core.Summary
	// Ping reports whether the store can serve requests. Unlike the other
	// operations it returns the failure, for readiness checks.
	Ping(ctx context.Context) error
	Close() error
}
