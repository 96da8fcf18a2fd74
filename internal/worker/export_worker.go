package worker

import (
	"context"
	"fmt"
	"time"

	"solde/internal/cache"
	"solde/internal/core"
	"solde/internal/log"
	"solde/internal/metrics"
)

const (
	seenTTL     = 24 * time.Hour
	seenEntries = 10000
)

// Appender writes one transaction to the export destination and returns a
// reference to what it wrote.
type Appender interface {
	AppendTransaction(ctx context.Context, t core.Transaction) (string, error)
}

// ExportWorker copies created transactions to the export sheet. Brokers
// redeliver, so rows already exported by this process are skipped.
type ExportWorker struct {
	appender Appender
	logger   *log.Logger
	seen     *cache.LRUCache[string]
}

func NewExportWorker(appender Appender, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExportWorker{
		appender: appender,
		logger:   logger.WithComponent(log.ComponentWorker),
		seen:     cache.NewLRUCache[string](seenEntries, seenTTL),
	}
}

// HandleTransactionCreated exports the transaction carried by ev. A returned
// error asks the broker to redeliver.
func (w *ExportWorker) HandleTransactionCreated(ctx context.Context, ev core.TransactionCreated) error {
	if ref, ok := w.seen.Get(ev.ID); ok {
		metrics.ExportedRows.WithLabelValues("duplicate").Inc()
		w.logger.DebugContext(ctx, "Transaction already exported",
			"id", ev.ID, "range", ref, log.FieldOperation, log.OpExport)
		return nil
	}

	start := time.Now()
	ref, err := w.appender.AppendTransaction(ctx, ev.Transaction())
	metrics.ExportDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ExportedRows.WithLabelValues("error").Inc()
		w.logger.ErrorContext(ctx, "Failed to export transaction",
			"id", ev.ID, "error", err, log.FieldOperation, log.OpExport)
		return fmt.Errorf("export transaction %s: %w", ev.ID, err)
	}

	w.seen.Set(ev.ID, ref)
	metrics.ExportedRows.WithLabelValues("ok").Inc()
	w.logger.InfoContext(ctx, "Transaction exported",
		"id", ev.ID,
		"amount", ev.Amount.StringFixed(2),
		"range", ref,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Exported reports how many transactions are remembered as exported.
func (w *ExportWorker) Exported() int { return w.seen.Size() }
