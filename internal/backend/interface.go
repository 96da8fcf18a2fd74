package backend

import (
	"context"

	"solde/internal/core"
	"solde/internal/transactions"
)

// Backend is everything the HTTP layer needs from the data side.
type Backend interface {
	transactions.Store
	transactions.Pinger
	Totals(ctx context.Context) (core.Totals, error)
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Postgres specific
	DatabaseURL string

	// Event bus
	Events       EventsType
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	NATSURL      string
	NATSSubject  string
}

// BackendType represents the type of storage backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}

// EventsType selects the bus TransactionCreated events go to.
type EventsType string

const (
	NoEvents   EventsType = "none"
	AMQPEvents EventsType = "amqp"
	NATSEvents EventsType = "nats"
)

func (et EventsType) IsValid() bool {
	switch et {
	case NoEvents, AMQPEvents, NATSEvents:
		return true
	default:
		return false
	}
}
