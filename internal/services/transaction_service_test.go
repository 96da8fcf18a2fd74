package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"solde/internal/core"
	"solde/internal/transactions/memory"
)

type fakePublisher struct {
	events []core.TransactionCreated
	err    error
}

func (f *fakePublisher) PublishTransactionCreated(_ context.Context, ev core.TransactionCreated) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

type fakeStore struct {
	err error
}

func (f fakeStore) List(context.Context) ([]core.Transaction, error) { return nil, f.err }
func (f fakeStore) Create(context.Context, core.NewTransaction) (core.Transaction, error) {
	return core.Transaction{}, f.err
}

type fakeCloser struct {
	closed bool
	err    error
}

func (f *fakeCloser) Close() error {
	f.closed = true
	return f.err
}

func TestTransactionService_CreatePublishesAfterSave(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewTransactionService(memory.New(), pub, "test")

	tx, err := svc.Create(context.Background(), core.NewTransaction{Text: "Salaire", Amount: decimal.NewFromInt(2500)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pub.events) != 1 || pub.events[0].ID != tx.ID {
		t.Fatalf("expected one event for %s, got %+v", tx.ID, pub.events)
	}

	list, _ := svc.List(context.Background())
	if len(list) != 1 {
		t.Fatalf("expected stored transaction, got %d", len(list))
	}
}

func TestTransactionService_PublishFailureIsNotFatal(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewTransactionService(memory.New(), pub, "test")

	if _, err := svc.Create(context.Background(), core.NewTransaction{Text: "Café", Amount: decimal.RequireFromString("-2.20")}); err != nil {
		t.Fatalf("publish failure must not fail create: %v", err)
	}
	list, _ := svc.List(context.Background())
	if len(list) != 1 {
		t.Fatalf("transaction should be stored despite publish failure")
	}
}

func TestTransactionService_ValidationSkipsStoreAndBus(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewTransactionService(memory.New(), pub, "")

	_, err := svc.Create(context.Background(), core.NewTransaction{Text: "  ", Amount: decimal.NewFromInt(1)})
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("no event expected on validation failure")
	}
}

func TestTransactionService_StoreErrorIsWrapped(t *testing.T) {
	boom := errors.New("disk full")
	svc := NewTransactionService(fakeStore{err: boom}, nil, "")

	_, err := svc.Create(context.Background(), core.NewTransaction{Text: "x", Amount: decimal.NewFromInt(1)})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if _, err := svc.Totals(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped list error, got %v", err)
	}
}

func TestTransactionService_Totals(t *testing.T) {
	svc := NewTransactionService(memory.New(), nil, "")
	for _, a := range []string{"1000", "-300"} {
		if _, err := svc.Create(context.Background(), core.NewTransaction{Text: a, Amount: decimal.RequireFromString(a)}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	totals, err := svc.Totals(context.Background())
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals.RatioText() != "30%" || totals.BalanceText() != "700.00 €" {
		t.Fatalf("unexpected totals: %+v", totals)
	}
}

func TestTransactionService_Close(t *testing.T) {
	t.Run("nil closers", func(t *testing.T) {
		svc := NewTransactionService(memory.New(), nil, "", nil)
		if err := svc.Close(); err != nil {
			t.Fatalf("Close should ignore nil closers: %v", err)
		}
	})

	t.Run("closes everything and joins errors", func(t *testing.T) {
		a := &fakeCloser{err: errors.New("a failed")}
		b := &fakeCloser{}
		svc := NewTransactionService(memory.New(), nil, "", a, b)
		if err := svc.Close(); err == nil {
			t.Fatal("expected error from failing closer")
		}
		if !a.closed || !b.closed {
			t.Fatal("every closer should be called")
		}
	})
}
