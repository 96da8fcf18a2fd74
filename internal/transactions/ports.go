package transactions

import (
	"context"

	"solde/internal/core"
)

// Ports implemented by every transaction store.
type (
	Lister interface {
		// List returns all transactions, newest first.
		List(ctx context.Context) ([]core.Transaction, error)
	}

	Creator interface {
		// Create validates and persists n, assigning its id and creation time.
		Create(ctx context.Context, n core.NewTransaction) (core.Transaction, error)
	}

	// Pinger reports whether the store can serve requests.
	Pinger interface {
		Ping(ctx context.Context) error
	}

	Store interface {
		Lister
		Creator
	}
)
