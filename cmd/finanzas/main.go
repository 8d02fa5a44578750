package main

import (
	"os"

	"finanzas/internal/cli"
	"finanzas/internal/commands"
	"finanzas/internal/config"
	"finanzas/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()

	// stdout belongs to command output
	lc := log.DefaultConfig()
	lc.Component = ""
	lc.Level = log.ParseLevel(envOr("LOG_LEVEL", "warn"))
	lc.Format = cfg.LogFormat
	lc.Output = os.Stderr
	logger := log.New(lc)

	ctx, stop := cli.SignalContext()
	defer stop()

	if err := commands.NewRootCommand(cfg, logger).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
