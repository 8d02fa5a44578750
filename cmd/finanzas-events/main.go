package main

import (
	"context"
	"errors"
	"os"

	"finanzas/internal/amqp"
	"finanzas/internal/cli"
	"finanzas/internal/log"
	"finanzas/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(nil)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg)

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is not set; there are no ledger events to follow",
			log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
		logger.With(log.FieldComponent, log.ComponentAMQP))
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeNetwork)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := cli.SignalContext()
	defer stop()

	logger.Info("Following ledger events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)

	w := worker.NewEventWorker(logger)
	err = client.ConsumeLedgerEvents(ctx, w.HandleLedgerEvent)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}
	st := w.Stats()
	logger.Info("Event follower stopped", "recorded", st.Recorded, "deleted", st.Deleted)
}
