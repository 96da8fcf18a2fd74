package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"solde/internal/amqp"
	"solde/internal/cli"
	"solde/internal/core"
	"solde/internal/export/sheets"
	"solde/internal/log"
	"solde/internal/metrics"
	"solde/internal/natsbus"
	"solde/internal/worker"
)

type consumeFunc func(ctx context.Context, handler func(context.Context, core.TransactionCreated) error) error

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentWorker)

	if err := cfg.ValidateExport(); err != nil {
		logger.Error("Export configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := cli.GracefulShutdown(logger)
	defer cancel()

	appender, err := sheets.New(ctx, sheets.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets appender", "error", err)
		os.Exit(1)
	}
	exporter := worker.NewExportWorker(appender, logger)

	var consume consumeFunc
	switch cfg.EventsBackend {
	case "amqp":
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		consume = client.ConsumeTransactionCreated
	case "nats":
		bus, err := natsbus.Connect(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			logger.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer bus.Close()
		consume = bus.Consume
	}

	metricsPort := cfg.WorkerMetricsPort
	if metricsPort == "" {
		metricsPort = "9091"
	}
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metrics.Handler())
	metricsSrv := &http.Server{Addr: ":" + metricsPort, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting solde-worker",
			"events", cfg.EventsBackend,
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleSheetName,
			log.FieldOperation, log.OpStartup)
		err := consume(gctx, exporter.HandleTransactionCreated)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return metricsSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped", "exported", exporter.Exported())
}
