package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
	"finanzas/internal/log"
)

// Store is an in-process ledger used by tests and DATA_BACKEND=memory.
type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Transaction
	logger *slog.Logger
}

func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	return &Store{logger: logger}
}

// Initialize is a no-op; the store is always ready.
func (s *Store) Initialize(_ context.Context) bool {
	return true
}

func (s *Store) Ping(_ context.Context) error {
	return nil
}

func (s *Store) Insert(_ context.Context, in core.TransactionInput) (core.Transaction, bool) {
	if err := in.Validate(); err != nil {
		s.logger.Warn("Rejected ledger entry",
			log.NewFields().WithOperation(log.OpInsert).WithError(err, log.ErrorTypeValidation).ToSlice()...)
		return core.Transaction{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	tx := core.Transaction{
		ID:          s.nextID,
		Date:        in.Date,
		Description: in.Description,
		Amount:      core.SignedAmount(in.Magnitude, in.Type),
		Type:        in.Type,
	}
	s.items = append(s.items, tx)
	return tx, true
}

func (s *Store) List(_ context.Context) []core.Transaction {
	s.mu.Lock()
	out := append(make([]core.Transaction, 0, len(s.items)), s.items...)
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *Store) Delete(_ context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tx := range s.items {
		if tx.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) Summarize(_ context.Context) core.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	income, expense := decimal.Zero, decimal.Zero
	for _, tx := range s.items {
		if tx.Type == core.Income {
			income = income.Add(tx.Amount)
		} else {
			expense = expense.Add(tx.Amount)
		}
	}
	return core.NewSummary(income, expense)
}

func (s *Store) Close() error {
	return nil
}
