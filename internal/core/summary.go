package core

import "github.com/shopspring/decimal"

// Summary holds the ledger totals. TotalIncome and TotalExpense are both
// non-negative; Balance is their difference.
type Summary struct {
	Balance      decimal.Decimal
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
}

// NewSummary builds a Summary from the two per-type sums as stored
// (expense sum negative or zero).
func NewSummary(incomeSum, expenseSum decimal.Decimal) Summary {
	income := incomeSum
	expense := expenseSum.Abs()
	return Summary{
		Balance:      income.Sub(expense),
		TotalIncome:  income,
		TotalExpense: expense,
	}
}

// IsEmpty reports whether nothing has been recorded.
func (s Summary) IsEmpty() bool {
	return s.TotalIncome.IsZero() && s.TotalExpense.IsZero()
}

// Slice is one segment of the income/expense breakdown chart.
type Slice struct {
	Type  Type
	Total decimal.Decimal
	// Share is the percentage of all movement (income + expense), 0-100.
	Share decimal.Decimal
}

// Breakdown splits total movement by type for charts.
type Breakdown struct {
	Slices []Slice
}

// Breakdown returns the per-type share of all recorded movement. An empty
// ledger yields no slices.
func (s Summary) Breakdown() Breakdown {
	movement := s.TotalIncome.Add(s.TotalExpense)
	if movement.IsZero() {
		return Breakdown{}
	}
	hundred := decimal.NewFromInt(100)
	var out Breakdown
	for _, seg := range []struct {
		t     Type
		total decimal.Decimal
	}{
		{Income, s.TotalIncome},
		{Expense, s.TotalExpense},
	} {
		if seg.total.IsZero() {
			continue
		}
		out.Slices = append(out.Slices, Slice{
			Type:  seg.t,
			Total: seg.total,
			Share: seg.total.Mul(hundred).DivRound(movement, 1),
		})
	}
	return out
}

// Max returns the largest slice total, zero when empty.
func (b Breakdown) Max() decimal.Decimal {
	max := decimal.Zero
	for _, s := range b.Slices {
		if s.Total.GreaterThan(max) {
			max = s.Total
		}
	}
	return max
}
