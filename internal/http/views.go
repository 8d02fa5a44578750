package http

import (
	"github.com/shopspring/decimal"

	"finanzas/internal/core"
	"finanzas/internal/services"
)

type transactionRow struct {
	ID          int64
	Date        string
	Description string
	Amount      string
	AmountClass string
	TypeLabel   string
}

type summaryView struct {
	Balance      string
	BalanceClass string
	TotalIncome  string
	TotalExpense string
	Empty        bool
}

type breakdownSlice struct {
	Label string
	Class string
	Total string
	Share string
	// Width is the bar length relative to the largest slice, 0-100.
	Width string
}

type ledgerView struct {
	Summary      summaryView
	Transactions []transactionRow
	Breakdown    []breakdownSlice
}

type pageData struct {
	Title  string
	Today  string
	Notice *noticeView
	Ledger ledgerView
}

func newSummaryView(s core.Summary) summaryView {
	return summaryView{
		Balance:      core.FormatAmount(s.Balance),
		BalanceClass: core.AmountClass(s.Balance),
		TotalIncome:  core.FormatAmount(s.TotalIncome),
		TotalExpense: core.FormatAmount(s.TotalExpense),
		Empty:        s.IsEmpty(),
	}
}

func newTransactionRows(txs []core.Transaction) []transactionRow {
	rows := make([]transactionRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, transactionRow{
			ID:          tx.ID,
			Date:        tx.Date,
			Description: tx.Description,
			Amount:      core.FormatAmount(tx.Amount),
			AmountClass: core.AmountClass(tx.Amount),
			TypeLabel:   tx.Type.Label(),
		})
	}
	return rows
}

func newBreakdownSlices(b core.Breakdown) []breakdownSlice {
	max := b.Max()
	out := make([]breakdownSlice, 0, len(b.Slices))
	for _, s := range b.Slices {
		width := "0"
		if !max.IsZero() {
			width = s.Total.Mul(hundred).DivRound(max, 1).String()
		}
		out = append(out, breakdownSlice{
			Label: s.Type.Label(),
			Class: typeClass(s.Type),
			Total: core.FormatAmount(s.Total),
			Share: s.Share.StringFixed(1),
			Width: width,
		})
	}
	return out
}

func typeClass(t core.Type) string {
	if t == core.Expense {
		return "expense"
	}
	return "income"
}

func newLedgerView(ov services.Overview) ledgerView {
	return ledgerView{
		Summary:      newSummaryView(ov.Summary),
		Transactions: newTransactionRows(ov.Transactions),
		Breakdown:    newBreakdownSlices(ov.Breakdown),
	}
}

var hundred = decimal.NewFromInt(100)
