package core

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewTransactionCreated(t *testing.T) {
	tx := Transaction{
		ID:        "6f1c0f9e-1d2b-4a8e-9a53-7b1f0c7e2d11",
		Text:      "Restaurant",
		Amount:    decimal.RequireFromString("-45.50"),
		CreatedAt: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	}
	ev := NewTransactionCreated(tx)
	if ev.ID != tx.ID || ev.Text != tx.Text || !ev.Amount.Equal(tx.Amount) {
		t.Fatalf("event does not carry the transaction: %+v", ev)
	}
	if time.Since(ev.Timestamp) > time.Second {
		t.Fatalf("timestamp should be recent, got %v", ev.Timestamp)
	}
	if got := ev.Transaction(); got.ID != tx.ID || !got.CreatedAt.Equal(tx.CreatedAt) || !got.Amount.Equal(tx.Amount) {
		t.Fatalf("unexpected transaction back: %+v", got)
	}
}

func TestTransactionCreatedFromJSON(t *testing.T) {
	body := `{"id":"abc","text":"Café","amount":"150.75","created_at":"2024-01-15T10:00:00Z","timestamp":"2024-01-15T10:00:01Z"}`
	ev, err := TransactionCreatedFromJSON([]byte(body))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Amount.String() != "150.75" || ev.Text != "Café" {
		t.Fatalf("unexpected event: %+v", ev)
	}

	out, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(out), `"amount":"150.75"`) {
		t.Fatalf("amount should be encoded as a decimal string: %s", out)
	}

	for _, bad := range []string{`{"id": 12}`, `not json`, `{"text":"no id","amount":"1"}`} {
		if _, err := TransactionCreatedFromJSON([]byte(bad)); err == nil {
			t.Fatalf("expected error for %s", bad)
		}
	}
}
