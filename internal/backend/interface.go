package backend

import (
	"context"
	"time"

	"finanzas/internal/services"
)

// CleanupFunc releases resources held by a backend
type CleanupFunc func() error

// Result contains the ready service and its cleanup function
type Result struct {
	Service *services.LedgerService
	Cleanup CleanupFunc
}

// Factory creates ledger backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	DBPath      string
	BusyTimeout time.Duration

	// Ledger events, optional for every backend
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
