package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"finanzas/internal/amqp"
	"finanzas/internal/log"
)

// Stats is a running tally of the events an EventWorker has seen since it
// started. Net is the sum of recorded amounts; deletes carry no amount and
// do not change it.
type Stats struct {
	Recorded int
	Deleted  int
	Net      decimal.Decimal
}

// EventWorker follows the ledger event stream and logs each change.
type EventWorker struct {
	logger *slog.Logger

	mu    sync.Mutex
	stats Stats
}

func NewEventWorker(logger *slog.Logger) *EventWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &EventWorker{
		logger: logger.With(log.FieldComponent, log.ComponentEvents),
		stats:  Stats{Net: decimal.Zero},
	}
}

// HandleLedgerEvent is the consumer callback. A returned error requeues the
// message, so only events that could succeed on retry should fail.
func (w *EventWorker) HandleLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	switch ev.Kind {
	case amqp.KindRecorded:
		return w.handleRecorded(ctx, ev)
	case amqp.KindDeleted:
		w.handleDeleted(ctx, ev)
		return nil
	default:
		w.logger.WarnContext(ctx, "Skipping unknown ledger event", "kind", string(ev.Kind), "event_id", ev.EventID)
		return nil
	}
}

func (w *EventWorker) handleRecorded(ctx context.Context, ev *amqp.LedgerEvent) error {
	amount, err := decimal.NewFromString(ev.Amount)
	if err != nil {
		// The payload will not parse on redelivery either.
		w.logger.ErrorContext(ctx, "Dropping recorded event with bad amount",
			log.NewFields().
				WithOperation(log.OpConsume).
				WithError(fmt.Errorf("parse amount %q: %w", ev.Amount, err), log.ErrorTypeValidation).
				WithTransactionID(ev.TransactionID).
				ToSlice()...)
		return nil
	}

	w.mu.Lock()
	w.stats.Recorded++
	w.stats.Net = w.stats.Net.Add(amount)
	net := w.stats.Net
	w.mu.Unlock()

	w.logger.InfoContext(ctx, "Transaction recorded",
		log.NewFields().
			WithTransactionID(ev.TransactionID).
			With(log.FieldDate, ev.Date).
			With(log.FieldType, ev.Type).
			With(log.FieldAmount, amount.StringFixed(2)).
			With("net_since_start", net.StringFixed(2)).
			ToSlice()...)
	return nil
}

func (w *EventWorker) handleDeleted(ctx context.Context, ev *amqp.LedgerEvent) {
	w.mu.Lock()
	w.stats.Deleted++
	w.mu.Unlock()

	w.logger.InfoContext(ctx, "Transaction deleted", log.FieldTransactionID, ev.TransactionID)
}

// Stats returns a snapshot of the tally.
func (w *EventWorker) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}
