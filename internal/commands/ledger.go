package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"finanzas/internal/core"
	"finanzas/internal/services"
)

func newAddCommand(s *session) *cobra.Command {
	var date, typ, amount, description string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an income or an expense",
		Args:  cobra.NoArgs,
		RunE: s.run(func(cmd *cobra.Command, args []string) error {
			day, err := core.ParseDate(date)
			if err != nil {
				return fmt.Errorf("invalid date %q: %w", date, errors.Unwrap(err))
			}
			t, err := core.ParseType(typ)
			if err != nil {
				return fmt.Errorf("invalid type %q: %w", typ, err)
			}
			magnitude, err := core.ParseAmount(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, errors.Unwrap(err))
			}

			tx, err := s.ledger.Record(cmd.Context(), core.TransactionInput{
				Date:        day,
				Description: strings.TrimSpace(description),
				Magnitude:   magnitude,
				Type:        t,
			})
			var verr *core.ValidationError
			switch {
			case errors.As(err, &verr):
				return fmt.Errorf("invalid %s: %w", verr.Field, verr.Err)
			case errors.Is(err, services.ErrSaveFailed):
				return fmt.Errorf("%w; check the log for details", err)
			case err != nil:
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Recorded #%d  %s  %s  %s\n",
				tx.ID, tx.Date, core.FormatAmount(tx.Amount), tx.Description)
			return nil
		}),
	}

	cmd.Flags().StringVar(&date, "date", core.Today(), "transaction date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&typ, "type", "", "INCOME or EXPENSE (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "amount, sign is ignored (required)")
	cmd.Flags().StringVar(&description, "description", "", "what the money was for (required)")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func newListCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: s.run(func(cmd *cobra.Command, args []string) error {
			txs := s.ledger.Transactions(cmd.Context())
			out := cmd.OutOrStdout()
			if len(txs) == 0 {
				fmt.Fprintln(out, "No transactions yet.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(w, "ID\tDATE\tTYPE\tAMOUNT\t  DESCRIPTION")
			for _, tx := range txs {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t  %s\n",
					tx.ID, tx.Date, tx.Type.Label(), core.FormatAmount(tx.Amount), tx.Description)
			}
			return w.Flush()
		}),
	}
}

func newDeleteCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction by id",
		Args:  cobra.ExactArgs(1),
		RunE: s.run(func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid transaction id %q", args[0])
			}
			if s.ledger.Remove(cmd.Context(), id) {
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%d\n", id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing deleted: no transaction #%d\n", id)
			}
			return nil
		}),
	}
}
