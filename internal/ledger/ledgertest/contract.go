// Package ledgertest holds the behaviour every ledger.Store must share.
package ledgertest

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/core"
	"finanzas/internal/ledger"
)

// Factory returns a fresh, initialized store. Cleanup is the factory's job.
type Factory func(t *testing.T) ledger.Store

func entry(date, desc, magnitude string, typ core.Type) core.TransactionInput {
	return core.TransactionInput{
		Date:        date,
		Description: desc,
		Magnitude:   decimal.RequireFromString(magnitude),
		Type:        typ,
	}
}

// MustInsert inserts and fails the test if the store refuses.
func MustInsert(t *testing.T, s ledger.Store, date, desc, magnitude string, typ core.Type) core.Transaction {
	t.Helper()
	tx, ok := s.Insert(context.Background(), entry(date, desc, magnitude, typ))
	require.True(t, ok, "insert %s %s %s", date, desc, magnitude)
	return tx
}

func ids(txs []core.Transaction) []int64 {
	out := make([]int64, len(txs))
	for i, tx := range txs {
		out[i] = tx.ID
	}
	return out
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "amount: want %s, got %s", want, got)
}

// RunStoreContract exercises the full ledger.Store contract.
func RunStoreContract(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		s := newStore(t)
		list := s.List(ctx)
		require.NotNil(t, list)
		assert.Empty(t, list)

		sum := s.Summarize(ctx)
		assert.True(t, sum.Balance.IsZero())
		assert.True(t, sum.TotalIncome.IsZero())
		assert.True(t, sum.TotalExpense.IsZero())
	})

	t.Run("initialized store is ready", func(t *testing.T) {
		assert.NoError(t, newStore(t).Ping(ctx))
	})

	t.Run("expense magnitude is stored negative", func(t *testing.T) {
		s := newStore(t)
		tx := MustInsert(t, s, "2025-01-01", "Rent", "500", core.Expense)
		assertAmount(t, "-500", tx.Amount)

		list := s.List(ctx)
		require.Len(t, list, 1)
		assertAmount(t, "-500", list[0].Amount)
		assert.Equal(t, core.Expense, list[0].Type)
		assert.Equal(t, "Rent", list[0].Description)
		assert.Equal(t, "2025-01-01", list[0].Date)
	})

	t.Run("caller sign is ignored", func(t *testing.T) {
		s := newStore(t)
		exp := MustInsert(t, s, "2025-01-01", "Rent", "-500", core.Expense)
		inc := MustInsert(t, s, "2025-01-01", "Refund", "-30.5", core.Income)
		assertAmount(t, "-500", exp.Amount)
		assertAmount(t, "30.5", inc.Amount)

		for _, tx := range s.List(ctx) {
			if tx.Type == core.Income {
				assert.True(t, tx.Amount.IsPositive(), "income %d stored as %s", tx.ID, tx.Amount)
			} else {
				assert.True(t, tx.Amount.IsNegative(), "expense %d stored as %s", tx.ID, tx.Amount)
			}
		}
	})

	t.Run("amounts are rounded to cents", func(t *testing.T) {
		s := newStore(t)
		MustInsert(t, s, "2025-01-01", "Coffee", "3.456", core.Expense)
		list := s.List(ctx)
		require.Len(t, list, 1)
		assertAmount(t, "-3.46", list[0].Amount)
	})

	t.Run("ordered by date then id descending", func(t *testing.T) {
		s := newStore(t)
		a := MustInsert(t, s, "2025-01-01", "A", "1", core.Income)
		b := MustInsert(t, s, "2025-01-03", "B", "1", core.Income)
		c := MustInsert(t, s, "2025-01-02", "C", "1", core.Expense)
		assert.Equal(t, []int64{b.ID, c.ID, a.ID}, ids(s.List(ctx)))

		d := MustInsert(t, s, "2025-01-03", "D", "1", core.Expense)
		assert.Greater(t, d.ID, b.ID)
		assert.Equal(t, []int64{d.ID, b.ID, c.ID, a.ID}, ids(s.List(ctx)))
	})

	t.Run("ids strictly increase and are not reused", func(t *testing.T) {
		s := newStore(t)
		first := MustInsert(t, s, "2025-02-01", "first", "1", core.Income)
		second := MustInsert(t, s, "2025-02-01", "second", "1", core.Income)
		require.True(t, s.Delete(ctx, second.ID))
		third := MustInsert(t, s, "2025-02-01", "third", "1", core.Income)
		assert.Greater(t, second.ID, first.ID)
		assert.Greater(t, third.ID, second.ID)
	})

	t.Run("summary identity", func(t *testing.T) {
		s := newStore(t)
		MustInsert(t, s, "2025-03-01", "Salary", "1234.56", core.Income)
		MustInsert(t, s, "2025-03-02", "Bonus", "0.1", core.Income)
		MustInsert(t, s, "2025-03-02", "Bus", "0.2", core.Expense)
		MustInsert(t, s, "2025-03-03", "Rent", "999.99", core.Expense)

		sum := s.Summarize(ctx)
		assert.True(t, sum.Balance.Equal(sum.TotalIncome.Sub(sum.TotalExpense)))

		raw := decimal.Zero
		for _, tx := range s.List(ctx) {
			raw = raw.Add(tx.Amount)
		}
		assert.True(t, sum.Balance.Equal(raw), "balance %s != raw sum %s", sum.Balance, raw)
		assertAmount(t, "1234.66", sum.TotalIncome)
		assertAmount(t, "1000.19", sum.TotalExpense)
		assertAmount(t, "234.47", sum.Balance)
	})

	t.Run("delete removes exactly one row", func(t *testing.T) {
		s := newStore(t)
		keep1 := MustInsert(t, s, "2025-04-01", "keep", "10", core.Income)
		drop := MustInsert(t, s, "2025-04-02", "drop", "20", core.Expense)
		keep2 := MustInsert(t, s, "2025-04-03", "keep", "30", core.Income)

		require.True(t, s.Delete(ctx, drop.ID))
		list := s.List(ctx)
		assert.Equal(t, []int64{keep2.ID, keep1.ID}, ids(list))
		assertAmount(t, "30", list[0].Amount)
		assertAmount(t, "10", list[1].Amount)

		assert.False(t, s.Delete(ctx, drop.ID), "second delete of same id")
		assert.False(t, s.Delete(ctx, 999999), "unknown id")
		assert.Len(t, s.List(ctx), 2)
	})

	t.Run("repeated initialize keeps rows", func(t *testing.T) {
		s := newStore(t)
		tx := MustInsert(t, s, "2025-05-01", "persist", "5", core.Income)
		require.True(t, s.Initialize(ctx))
		require.True(t, s.Initialize(ctx))
		assert.Equal(t, []int64{tx.ID}, ids(s.List(ctx)))
	})

	t.Run("invalid input is rejected", func(t *testing.T) {
		s := newStore(t)
		for name, in := range map[string]core.TransactionInput{
			"empty date":        entry("", "x", "1", core.Income),
			"empty description": entry("2025-01-01", "  ", "1", core.Income),
			"unknown type":      entry("2025-01-01", "x", "1", core.Type("LOAN")),
		} {
			_, ok := s.Insert(ctx, in)
			assert.False(t, ok, name)
		}
		assert.Empty(t, s.List(ctx))
	})

	t.Run("salary and groceries", func(t *testing.T) {
		s := newStore(t)
		salary := MustInsert(t, s, "2025-06-01", "Salary", "2000", core.Income)
		groceries := MustInsert(t, s, "2025-06-02", "Groceries", "150", core.Expense)

		sum := s.Summarize(ctx)
		assertAmount(t, "1850", sum.Balance)
		assertAmount(t, "2000", sum.TotalIncome)
		assertAmount(t, "150", sum.TotalExpense)

		list := s.List(ctx)
		require.Len(t, list, 2)
		assert.Equal(t, groceries.ID, list[0].ID)
		assertAmount(t, "-150", list[0].Amount)
		assert.Equal(t, salary.ID, list[1].ID)
		assertAmount(t, "2000", list[1].Amount)
	})
}
