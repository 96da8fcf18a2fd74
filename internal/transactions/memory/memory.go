package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"solde/internal/core"
)

type Store struct {
	mu    sync.Mutex
	now   func() time.Time
	items []core.Transaction // insertion order
}

func New(seed ...core.Transaction) *Store {
	s := &Store{now: func() time.Time { return time.Now().UTC() }}
	s.items = append(s.items, seed...)
	return s
}

// Create stores the transaction with a fresh UUID and timestamp.
func (s *Store) Create(_ context.Context, n core.NewTransaction) (core.Transaction, error) {
	if err := n.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := core.Transaction{
		ID:        uuid.NewString(),
		Text:      n.Text,
		Amount:    n.Amount,
		CreatedAt: s.now(),
	}
	s.items = append(s.items, t)
	return t, nil
}

// List returns a copy of the stored transactions, newest first.
func (s *Store) List(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.items))
	for i := len(s.items) - 1; i >= 0; i-- {
		out = append(out, s.items[i])
	}
	core.SortNewestFirst(out)
	return out, nil
}

func (s *Store) Ping(context.Context) error { return nil }
