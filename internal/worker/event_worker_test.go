package worker

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
)

func TestEventWorker_TalliesEvents(t *testing.T) {
	var buf bytes.Buffer
	w := NewEventWorker(slog.New(slog.NewJSONHandler(&buf, nil)))
	ctx := context.Background()

	salary := amqp.NewRecordedEvent(core.Transaction{ID: 1, Date: "2025-06-01", Description: "Salary",
		Amount: decimal.RequireFromString("2000"), Type: core.Income})
	groceries := amqp.NewRecordedEvent(core.Transaction{ID: 2, Date: "2025-06-02", Description: "Groceries",
		Amount: decimal.RequireFromString("-150"), Type: core.Expense})

	require.NoError(t, w.HandleLedgerEvent(ctx, salary))
	require.NoError(t, w.HandleLedgerEvent(ctx, groceries))
	require.NoError(t, w.HandleLedgerEvent(ctx, amqp.NewDeletedEvent(2)))

	st := w.Stats()
	assert.Equal(t, 2, st.Recorded)
	assert.Equal(t, 1, st.Deleted)
	assert.True(t, st.Net.Equal(decimal.RequireFromString("1850")), st.Net.String())

	logs := buf.String()
	assert.Contains(t, logs, `"msg":"Transaction recorded"`)
	assert.Contains(t, logs, `"net_since_start":"1850.00"`)
	assert.Contains(t, logs, `"msg":"Transaction deleted"`)
	assert.Contains(t, logs, `"component":"events"`)
}

func TestEventWorker_BadPayloadsAreNotRetried(t *testing.T) {
	w := NewEventWorker(nil)
	ctx := context.Background()

	assert.NoError(t, w.HandleLedgerEvent(ctx, &amqp.LedgerEvent{Kind: amqp.KindRecorded, TransactionID: 1, Amount: "lots"}))
	assert.NoError(t, w.HandleLedgerEvent(ctx, &amqp.LedgerEvent{Kind: "transaction.updated"}))

	st := w.Stats()
	assert.Zero(t, st.Recorded)
	assert.Zero(t, st.Deleted)
	assert.True(t, st.Net.IsZero())
}
