package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
	"finanzas/internal/log"

	_ "modernc.org/sqlite"
)

const (
	insertTransaction = `INSERT INTO transactions (date, description, amount, type) VALUES (?, ?, ?, ?)`
	listTransactions  = `SELECT id, date, description, amount, type FROM transactions ORDER BY date DESC, id DESC`
	deleteTransaction = `DELETE FROM transactions WHERE id = ?`
	// Each row is cast to integer cents before summing so balance =
	// income - expense holds exactly, and an overflowing total makes SUM
	// fail with "integer overflow" instead of saturating.
	summarizeTransactions = `SELECT
    COALESCE(SUM(CASE WHEN type = 'INCOME'  THEN CAST(ROUND(amount * 100) AS INTEGER) END), 0),
    COALESCE(SUM(CASE WHEN type = 'EXPENSE' THEN CAST(ROUND(amount * 100) AS INTEGER) END), 0)
FROM transactions`
)

// LedgerStore keeps transactions in a single SQLite file. Every operation
// checks out its own connection and returns it before reporting, so several
// processes can share the file through SQLite's own locking.
type LedgerStore struct {
	db     *sql.DB
	dsn    string
	path   string
	logger *slog.Logger
}

// DSN builds the modernc connection string with the busy timeout pragma.
func DSN(path string, busyTimeout time.Duration) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", path, busyTimeout.Milliseconds())
}

// NewLedgerStore opens (creating if needed) the database file. The schema is
// created by Initialize.
func NewLedgerStore(path string, busyTimeout time.Duration, logger *slog.Logger) (*LedgerStore, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	dsn := DSN(path, busyTimeout)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &LedgerStore{
		db:     db,
		dsn:    dsn,
		path:   path,
		logger: logger.With(log.FieldDBPath, path),
	}, nil
}

func (s *LedgerStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path is the database file backing the store.
func (s *LedgerStore) Path() string {
	return s.path
}

func (s *LedgerStore) fail(ctx context.Context, op string, err error, extra ...any) {
	fields := log.NewFields().WithOperation(op).WithError(err, log.ErrorTypeDatabase).ToSlice()
	s.logger.ErrorContext(ctx, "Ledger storage operation failed", append(fields, extra...)...)
}

// Ping checks that the database file is reachable and the schema exists.
func (s *LedgerStore) Ping(ctx context.Context) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	var n int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'transactions'`).Scan(&n); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	if n == 0 {
		return errors.New("transactions table missing")
	}
	return nil
}

// Initialize applies the embedded migrations.
func (s *LedgerStore) Initialize(ctx context.Context) bool {
	if err := s.db.PingContext(ctx); err != nil {
		s.fail(ctx, log.OpInitialize, fmt.Errorf("ping database: %w", err))
		return false
	}
	if err := RunMigrations(s.dsn); err != nil {
		s.fail(ctx, log.OpInitialize, err)
		return false
	}
	s.logger.DebugContext(ctx, "Ledger schema ready")
	return true
}

func (s *LedgerStore) Insert(ctx context.Context, in core.TransactionInput) (core.Transaction, bool) {
	if err := in.Validate(); err != nil {
		s.logger.WarnContext(ctx, "Rejected ledger entry",
			log.NewFields().WithOperation(log.OpInsert).WithError(err, log.ErrorTypeValidation).ToSlice()...)
		return core.Transaction{}, false
	}

	tx := core.Transaction{
		Date:        in.Date,
		Description: in.Description,
		Amount:      core.SignedAmount(in.Magnitude, in.Type),
		Type:        in.Type,
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		s.fail(ctx, log.OpInsert, fmt.Errorf("acquire connection: %w", err))
		return core.Transaction{}, false
	}
	defer conn.Close()

	res, err := conn.ExecContext(ctx, insertTransaction,
		tx.Date, tx.Description, tx.Amount.InexactFloat64(), string(tx.Type))
	if err != nil {
		s.fail(ctx, log.OpInsert, fmt.Errorf("insert transaction: %w", err))
		return core.Transaction{}, false
	}
	id, err := res.LastInsertId()
	if err != nil {
		s.fail(ctx, log.OpInsert, fmt.Errorf("read inserted id: %w", err))
		return core.Transaction{}, false
	}
	tx.ID = id

	s.logger.InfoContext(ctx, "Transaction saved to SQLite",
		log.NewFields().
			WithTransactionID(tx.ID).
			WithEntry(tx.Date, tx.Description, tx.Amount.StringFixed(2), tx.Type.String()).
			ToSlice()...)

	return tx, true
}

func (s *LedgerStore) List(ctx context.Context) []core.Transaction {
	out := []core.Transaction{}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		s.fail(ctx, log.OpList, fmt.Errorf("acquire connection: %w", err))
		return out
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, listTransactions)
	if err != nil {
		s.fail(ctx, log.OpList, fmt.Errorf("query transactions: %w", err))
		return out
	}
	defer rows.Close()

	for rows.Next() {
		var (
			tx     core.Transaction
			amount float64
			typ    string
		)
		if err := rows.Scan(&tx.ID, &tx.Date, &tx.Description, &amount, &typ); err != nil {
			s.fail(ctx, log.OpList, fmt.Errorf("scan transaction: %w", err))
			return []core.Transaction{}
		}
		tx.Amount = decimal.NewFromFloat(amount).Round(2)
		tx.Type = core.Type(typ)
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		s.fail(ctx, log.OpList, fmt.Errorf("iterate transactions: %w", err))
		return []core.Transaction{}
	}

	return out
}

func (s *LedgerStore) Delete(ctx context.Context, id int64) bool {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		s.fail(ctx, log.OpDelete, fmt.Errorf("acquire connection: %w", err), log.FieldTransactionID, id)
		return false
	}
	defer conn.Close()

	res, err := conn.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		s.fail(ctx, log.OpDelete, fmt.Errorf("delete transaction: %w", err), log.FieldTransactionID, id)
		return false
	}
	n, err := res.RowsAffected()
	if err != nil {
		s.fail(ctx, log.OpDelete, fmt.Errorf("rows affected: %w", err), log.FieldTransactionID, id)
		return false
	}
	if n == 0 {
		s.logger.DebugContext(ctx, "No transaction matched delete", log.FieldTransactionID, id)
		return false
	}

	s.logger.InfoContext(ctx, "Transaction deleted from SQLite", log.FieldTransactionID, id)
	return true
}

func (s *LedgerStore) Summarize(ctx context.Context) core.Summary {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		s.fail(ctx, log.OpSummarize, fmt.Errorf("acquire connection: %w", err))
		return core.NewSummary(decimal.Zero, decimal.Zero)
	}
	defer conn.Close()

	var incomeCents, expenseCents int64
	if err := conn.QueryRowContext(ctx, summarizeTransactions).Scan(&incomeCents, &expenseCents); err != nil {
		s.fail(ctx, log.OpSummarize, fmt.Errorf("summarize transactions: %w", err))
		return core.NewSummary(decimal.Zero, decimal.Zero)
	}

	return core.NewSummary(decimal.New(incomeCents, -2), decimal.New(expenseCents, -2))
}
