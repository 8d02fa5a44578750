package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"finanzas/internal/core"
)

// barWidth is the length of the longest bar in the report chart.
const barWidth = 40

func newSummaryCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show balance, total income and total expenses",
		Args:  cobra.NoArgs,
		RunE: s.run(func(cmd *cobra.Command, args []string) error {
			sum := s.ledger.Summary(cmd.Context())
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintf(w, "Balance\t%s\t\n", core.FormatAmount(sum.Balance))
			fmt.Fprintf(w, "Income\t%s\t\n", core.FormatAmount(sum.TotalIncome))
			fmt.Fprintf(w, "Expenses\t%s\t\n", core.FormatAmount(sum.TotalExpense))
			return w.Flush()
		}),
	}
}

func newReportCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Chart income against expenses",
		Args:  cobra.NoArgs,
		RunE: s.run(func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), renderReport(s.ledger.Summary(cmd.Context())))
			return nil
		}),
	}
}

// renderReport draws one horizontal bar per type, scaled to the larger total.
func renderReport(sum core.Summary) string {
	b := sum.Breakdown()
	if len(b.Slices) == 0 {
		return "Nothing to chart yet.\n"
	}

	max := b.Max()
	var sb strings.Builder
	sb.WriteString("Income vs expenses\n\n")
	for _, sl := range b.Slices {
		n := int(sl.Total.Mul(decimal.NewFromInt(barWidth)).DivRound(max, 0).IntPart())
		if n == 0 {
			n = 1
		}
		fmt.Fprintf(&sb, "%-8s %-*s %s (%s%%)\n",
			sl.Type.Label(), barWidth, strings.Repeat("#", n), core.FormatAmount(sl.Total), sl.Share.StringFixed(1))
	}
	fmt.Fprintf(&sb, "\nBalance: %s\n", core.FormatAmount(sum.Balance))
	return sb.String()
}
