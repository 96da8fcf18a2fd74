package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"solde/internal/core"
	"solde/internal/metrics"
	"solde/internal/transactions"
)

// EventPublisher announces persisted transactions to downstream consumers.
type EventPublisher interface {
	PublishTransactionCreated(ctx context.Context, ev core.TransactionCreated) error
}

// TransactionService orchestrates transaction writes across the store and
// the event bus.
type TransactionService struct {
	store     transactions.Store
	publisher EventPublisher
	busName   string
	closers   []io.Closer
}

// NewTransactionService wires store and publisher. A nil publisher disables
// events. closers are released by Close in order.
func NewTransactionService(store transactions.Store, publisher EventPublisher, busName string, closers ...io.Closer) *TransactionService {
	if busName == "" {
		busName = "none"
	}
	return &TransactionService{
		store:     store,
		publisher: publisher,
		busName:   busName,
		closers:   closers,
	}
}

// List returns all stored transactions, newest first.
func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return list, nil
}

// Create validates n, persists it and then publishes a TransactionCreated
// event. A publish failure is logged and does not fail the call.
func (s *TransactionService) Create(ctx context.Context, n core.NewTransaction) (core.Transaction, error) {
	if err := n.Validate(); err != nil {
		metrics.ValidationFailures.Inc()
		return core.Transaction{}, err
	}

	t, err := s.store.Create(ctx, n)
	if err != nil {
		if errors.Is(err, core.ErrValidation) {
			metrics.ValidationFailures.Inc()
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	metrics.TransactionsCreated.Inc()

	s.publish(ctx, t)
	return t, nil
}

// Totals computes the summary over every stored transaction.
func (s *TransactionService) Totals(ctx context.Context) (core.Totals, error) {
	list, err := s.List(ctx)
	if err != nil {
		return core.Totals{}, err
	}
	return core.ComputeTotals(list), nil
}

// Ping reports store reachability when the store supports it.
func (s *TransactionService) Ping(ctx context.Context) error {
	if p, ok := s.store.(transactions.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *TransactionService) publish(ctx context.Context, t core.Transaction) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No event bus configured, skipping transaction event", "id", t.ID)
		return
	}
	if err := s.publisher.PublishTransactionCreated(ctx, core.NewTransactionCreated(t)); err != nil {
		metrics.EventsPublished.WithLabelValues(s.busName, "error").Inc()
		slog.ErrorContext(ctx, "Failed to publish transaction event", "id", t.ID, "bus", s.busName, "error", err)
		return
	}
	metrics.EventsPublished.WithLabelValues(s.busName, "ok").Inc()
}

// Close releases the store and bus connections.
func (s *TransactionService) Close() error {
	var errs []error
	for _, c := range s.closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close transaction service: %w", err)
	}
	return nil
}
