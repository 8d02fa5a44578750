// Package commands implements the finanzas terminal client.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"finanzas/internal/cli"
	"finanzas/internal/config"
	"finanzas/internal/log"
	"finanzas/internal/services"
)

// session holds the ledger opened for the running command.
type session struct {
	cfg     *config.Config
	logger  *slog.Logger
	ledger  *services.LedgerService
	cleanup func() error
}

func (s *session) open(ctx context.Context) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	res, err := cli.OpenBackend(ctx, s.logger, s.cfg)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	s.ledger = res.Service
	s.cleanup = res.Cleanup
	return nil
}

func (s *session) close() error {
	if s.cleanup == nil {
		return nil
	}
	err := s.cleanup()
	s.cleanup = nil
	return err
}

// run opens the ledger around a command body and always releases it.
func (s *session) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		if err := s.open(cmd.Context()); err != nil {
			return err
		}
		defer func() {
			if cerr := s.close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing ledger: %w", cerr)
			}
		}()
		return fn(cmd, args)
	}
}

// NewRootCommand creates the root CLI command with all subcommands registered.
// cfg is read from the environment by the caller; --db overrides its
// database path and selects the sqlite backend.
func NewRootCommand(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	if logger == nil {
		logger = log.Discard()
	}
	s := &session{cfg: cfg, logger: logger.With(log.FieldComponent, log.ComponentCLI)}
	var dbPath string

	rootCmd := &cobra.Command{
		Use:   "finanzas",
		Short: "Personal income and expense ledger",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("db") {
				s.cfg.LedgerDBPath = dbPath
				s.cfg.DataBackend = "sqlite"
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", cfg.LedgerDBPath, "path to the ledger database file")

	rootCmd.AddCommand(
		newAddCommand(s),
		newListCommand(s),
		newDeleteCommand(s),
		newSummaryCommand(s),
		newReportCommand(s),
	)

	return rootCmd
}
