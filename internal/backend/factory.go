package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"solde/internal/amqp"
	"solde/internal/log"
	"solde/internal/natsbus"
	"solde/internal/services"
	"solde/internal/storage"
	"solde/internal/storage/postgres"
	"solde/internal/transactions"
	"solde/internal/transactions/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger.With(log.FieldComponent, log.ComponentBackend)}
}

// CreateBackend opens the configured store and event bus and wraps them in a
// TransactionService.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, storeCloser, err := f.createStore(ctx, config)
	if err != nil {
		return nil, err
	}

	publisher, busCloser := f.createPublisher(config)

	svc := services.NewTransactionService(store, publisher, string(config.Events), busCloser, storeCloser)
	return &BackendResult{
		Backend: svc,
		Cleanup: svc.Close,
	}, nil
}

func (f *DefaultFactory) createStore(ctx context.Context, config Config) (transactions.Store, io.Closer, error) {
	switch config.Type {
	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		return memory.New(), nil, nil

	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return repo, repo, nil

	case PostgresBackend:
		db, err := postgres.New(ctx, config.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Postgres: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to migrate Postgres: %w", err)
		}
		f.logger.Info("Initialized Postgres backend")
		return postgres.NewRepository(db), db, nil

	default:
		return nil, nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// createPublisher connects the event bus. A bus that cannot be reached is
// logged and events are disabled; transactions are still stored.
func (f *DefaultFactory) createPublisher(config Config) (services.EventPublisher, io.Closer) {
	switch config.Events {
	case AMQPEvents:
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
			return nil, nil
		}
		f.logger.Info("Initialized AMQP client",
			"exchange", config.AMQPExchange,
			"queue", config.AMQPQueue)
		return client, client

	case NATSEvents:
		bus, err := natsbus.Connect(config.NATSURL, config.NATSSubject)
		if err != nil {
			f.logger.Warn("Failed to connect to NATS, continuing without events", "error", err)
			return nil, nil
		}
		f.logger.Info("Initialized NATS publisher", "subject", bus.Subject())
		return bus, bus

	default:
		return nil, nil
	}
}
