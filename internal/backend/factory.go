package backend

import (
	"context"
	"fmt"
	"log/slog"

	"finanzas/internal/amqp"
	"finanzas/internal/ledger"
	"finanzas/internal/ledger/memory"
	"finanzas/internal/log"
	"finanzas/internal/services"
	"finanzas/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend opens the store, runs Initialize and attaches the optional
// event publisher. A failed Initialize is logged and the service is still
// returned: ledger operations then degrade instead of stopping the caller.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var store ledger.Store
	switch config.Type {
	case SQLiteBackend:
		s, err := storage.NewLedgerStore(config.DBPath, config.BusyTimeout,
			f.logger.With(log.FieldComponent, log.ComponentStorage))
		if err != nil {
			return nil, fmt.Errorf("failed to open ledger database: %w", err)
		}
		store = s
	case MemoryBackend:
		store = memory.New(f.logger.With(log.FieldComponent, log.ComponentStorage))
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	var publisher services.EventPublisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue,
			f.logger.With(log.FieldComponent, log.ComponentAMQP))
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without ledger events",
				log.FieldError, err)
		} else {
			publisher = client
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	svc := services.NewLedgerService(store, publisher,
		f.logger.With(log.FieldComponent, log.ComponentLedger))
	svc.Initialize(ctx)

	f.logger.InfoContext(ctx, "Initialized ledger backend",
		"backend", config.Type.String(),
		log.FieldDBPath, config.DBPath,
		"events_enabled", publisher != nil)

	return &Result{
		Service: svc,
		Cleanup: svc.Close,
	}, nil
}
