package core

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionCreated is published after a transaction is persisted.
type TransactionCreated struct {
	ID        string          `json:"id"`
	Text      string          `json:"text"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewTransactionCreated(t Transaction) TransactionCreated {
	return TransactionCreated{
		ID:        t.ID,
		Text:      t.Text,
		Amount:    t.Amount,
		CreatedAt: t.CreatedAt,
		Timestamp: time.Now().UTC(),
	}
}

func (e TransactionCreated) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionCreatedFromJSON decodes an event and rejects one without an id.
func TransactionCreatedFromJSON(data []byte) (TransactionCreated, error) {
	var e TransactionCreated
	if err := json.Unmarshal(data, &e); err != nil {
		return TransactionCreated{}, err
	}
	if e.ID == "" {
		return TransactionCreated{}, errors.New("event has no transaction id")
	}
	return e, nil
}

// Transaction returns the persisted transaction carried by the event.
func (e TransactionCreated) Transaction() Transaction {
	return Transaction{ID: e.ID, Text: e.Text, Amount: e.Amount, CreatedAt: e.CreatedAt}
}
