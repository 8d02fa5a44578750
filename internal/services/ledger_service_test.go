package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/ledger/memory"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []*amqp.LedgerEvent
	err    error
	closed bool
}

func (p *fakePublisher) PublishLedgerEvent(_ context.Context, ev *amqp.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) Close() error {
	p.closed = true
	return nil
}

// refusingStore accepts nothing, like a store whose database is gone.
type refusingStore struct{ *memory.Store }

func (refusingStore) Insert(context.Context, core.TransactionInput) (core.Transaction, bool) {
	return core.Transaction{}, false
}

func input(date, desc, amount string, typ core.Type) core.TransactionInput {
	return core.TransactionInput{
		Date:        date,
		Description: desc,
		Magnitude:   decimal.RequireFromString(amount),
		Type:        typ,
	}
}

func TestLedgerService_RecordPublishes(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewLedgerService(memory.New(nil), pub, nil)
	ctx := context.Background()
	require.True(t, svc.Initialize(ctx))

	tx, err := svc.Record(ctx, input("2025-06-02", "Groceries", "150", core.Expense))
	require.NoError(t, err)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(-150)))

	require.Len(t, pub.events, 1)
	assert.Equal(t, amqp.KindRecorded, pub.events[0].Kind)
	assert.Equal(t, tx.ID, pub.events[0].TransactionID)
	assert.Equal(t, "-150.00", pub.events[0].Amount)
}

func TestLedgerService_RecordValidation(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewLedgerService(memory.New(nil), pub, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    core.TransactionInput
		field string
		want  error
	}{
		{"bad date", input("2025-13-40", "x", "1", core.Income), "date", core.ErrInvalidDate},
		{"empty date", input("", "x", "1", core.Income), "date", core.ErrEmptyDate},
		{"empty description", input("2025-01-01", "", "1", core.Income), "description", core.ErrEmptyDescription},
		{"zero amount", input("2025-01-01", "x", "0", core.Income), "amount", core.ErrZeroAmount},
		{"bad type", input("2025-01-01", "x", "1", core.Type("X")), "type", core.ErrInvalidType},
		{"amount too large", input("2025-01-01", "x", "60000000000000000", core.Income), "amount", core.ErrAmountTooLarge},
		{"blank description", input("2025-01-01", "   ", "1", core.Income), "description", core.ErrEmptyDescription},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Record(ctx, tt.in)
			var verr *core.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, svc.Transactions(ctx))
	assert.Empty(t, pub.events)
}

func TestLedgerService_RecordTrimsInput(t *testing.T) {
	svc := NewLedgerService(memory.New(nil), nil, nil)
	ctx := context.Background()

	early, err := svc.Record(ctx, input("2025-06-01", "Early", "1", core.Income))
	require.NoError(t, err)
	late, err := svc.Record(ctx, input(" 2025-06-09 ", "  Late  ", "1", core.Income))
	require.NoError(t, err)
	assert.Equal(t, "2025-06-09", late.Date)
	assert.Equal(t, "Late", late.Description)

	list := svc.Transactions(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, []int64{late.ID, early.ID}, []int64{list[0].ID, list[1].ID})
}

func TestLedgerService_Ready(t *testing.T) {
	svc := NewLedgerService(memory.New(nil), nil, nil)
	assert.NoError(t, svc.Ready(context.Background()))
}

func TestLedgerService_RecordSaveFailed(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewLedgerService(refusingStore{memory.New(nil)}, pub, nil)

	_, err := svc.Record(context.Background(), input("2025-01-01", "Rent", "500", core.Expense))
	assert.ErrorIs(t, err, ErrSaveFailed)
	assert.Empty(t, pub.events)
}

func TestLedgerService_PublishFailureDoesNotFail(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewLedgerService(memory.New(nil), pub, nil)
	ctx := context.Background()

	tx, err := svc.Record(ctx, input("2025-01-01", "Salary", "2000", core.Income))
	require.NoError(t, err)
	assert.True(t, svc.Remove(ctx, tx.ID))
	assert.Empty(t, svc.Transactions(ctx))
}

func TestLedgerService_Remove(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewLedgerService(memory.New(nil), pub, nil)
	ctx := context.Background()

	tx, err := svc.Record(ctx, input("2025-01-01", "Salary", "2000", core.Income))
	require.NoError(t, err)

	assert.False(t, svc.Remove(ctx, tx.ID+100))
	assert.True(t, svc.Remove(ctx, tx.ID))
	assert.False(t, svc.Remove(ctx, tx.ID))

	require.Len(t, pub.events, 2)
	assert.Equal(t, amqp.KindDeleted, pub.events[1].Kind)
	assert.Equal(t, tx.ID, pub.events[1].TransactionID)
}

func TestLedgerService_Overview(t *testing.T) {
	svc := NewLedgerService(memory.New(nil), nil, nil)
	ctx := context.Background()
	assert.False(t, svc.EventsEnabled())

	_, err := svc.Record(ctx, input("2025-06-01", "Salary", "2000", core.Income))
	require.NoError(t, err)
	_, err = svc.Record(ctx, input("2025-06-02", "Groceries", "150", core.Expense))
	require.NoError(t, err)

	ov := svc.Overview(ctx)
	assert.True(t, ov.Summary.Balance.Equal(decimal.NewFromInt(1850)))
	require.Len(t, ov.Transactions, 2)
	assert.Equal(t, "Groceries", ov.Transactions[0].Description)
	require.Len(t, ov.Breakdown.Slices, 2)
	assert.Equal(t, core.Income, ov.Breakdown.Slices[0].Type)
	assert.True(t, svc.Summary(ctx).TotalExpense.Equal(decimal.NewFromInt(150)))
}

func TestLedgerService_Close(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewLedgerService(memory.New(nil), pub, nil)
	require.NoError(t, svc.Close())
	assert.True(t, pub.closed)

	assert.NoError(t, NewLedgerService(nil, nil, nil).Close())
}
