package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/ledger"
	"finanzas/internal/log"
)

// ErrSaveFailed is returned when the store could not persist a valid entry.
// The cause is in the storage log; callers show a generic message.
var ErrSaveFailed = errors.New("the transaction could not be saved")

// EventPublisher announces ledger changes. *amqp.Client implements it.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error
	Close() error
}

// Overview is everything a dashboard renders in one read.
type Overview struct {
	Summary      core.Summary
	Breakdown    core.Breakdown
	Transactions []core.Transaction
}

// LedgerService is the single entry point front-ends use. It validates user
// input, delegates to the store and publishes change events best-effort.
type LedgerService struct {
	store     ledger.Store
	publisher EventPublisher
	logger    *slog.Logger
}

// NewLedgerService wires a store with an optional publisher (nil disables events).
func NewLedgerService(store ledger.Store, publisher EventPublisher, logger *slog.Logger) *LedgerService {
	if logger == nil {
		logger = log.Discard()
	}
	return &LedgerService{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// Initialize ensures the store schema exists.
func (s *LedgerService) Initialize(ctx context.Context) bool {
	ok := s.store.Initialize(ctx)
	if !ok {
		s.logger.ErrorContext(ctx, "Ledger initialization failed; operations will degrade",
			log.FieldOperation, log.OpInitialize)
	}
	return ok
}

// Record trims and validates in, then stores it. Validation problems come
// back as *core.ValidationError; a store refusal is ErrSaveFailed.
func (s *LedgerService) Record(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	in = in.Normalized()
	if err := in.ValidateForEntry(); err != nil {
		s.logger.InfoContext(ctx, "Transaction rejected",
			log.NewFields().WithOperation(log.OpInsert).WithError(err, log.ErrorTypeValidation).ToSlice()...)
		return core.Transaction{}, err
	}

	tx, ok := s.store.Insert(ctx, in)
	if !ok {
		return core.Transaction{}, ErrSaveFailed
	}

	s.publish(ctx, amqp.NewRecordedEvent(tx))
	return tx, nil
}

// Remove deletes a transaction by id and reports whether a row was removed.
func (s *LedgerService) Remove(ctx context.Context, id int64) bool {
	if !s.store.Delete(ctx, id) {
		return false
	}
	s.publish(ctx, amqp.NewDeletedEvent(id))
	return true
}

func (s *LedgerService) Transactions(ctx context.Context) []core.Transaction {
	return s.store.List(ctx)
}

func (s *LedgerService) Summary(ctx context.Context) core.Summary {
	return s.store.Summarize(ctx)
}

func (s *LedgerService) Overview(ctx context.Context) Overview {
	sum := s.store.Summarize(ctx)
	return Overview{
		Summary:      sum,
		Breakdown:    sum.Breakdown(),
		Transactions: s.store.List(ctx),
	}
}

// Ready reports whether the store can serve requests. It does not touch
// the schema; Initialize runs once at startup.
func (s *LedgerService) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// EventsEnabled reports whether a publisher is attached.
func (s *LedgerService) EventsEnabled() bool {
	return s.publisher != nil
}

func (s *LedgerService) publish(ctx context.Context, ev *amqp.LedgerEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, ev); err != nil {
		// The ledger change already happened; losing the event is acceptable
		s.logger.WarnContext(ctx, "Failed to publish ledger event",
			log.NewFields().
				WithOperation(log.OpPublish).
				WithError(err, log.ErrorTypeNetwork).
				WithTransactionID(ev.TransactionID).
				With("kind", ev.Kind).
				ToSlice()...)
	}
}

// Close closes the store and the publisher.
func (s *LedgerService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}

	return nil
}
