package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseInput(t *testing.T) {
	n, err := ParseInput("  Restaurant ", "-50")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if n.Text != "Restaurant" || !n.Amount.Equal(decimal.NewFromInt(-50)) {
		t.Fatalf("unexpected input: %+v", n)
	}

	bads := []struct {
		text, amount string
		fields       []string
	}{
		{"", "", []string{"text", "amount"}},
		{"   ", "10", []string{"text"}},
		{"ok", "abc", []string{"amount"}},
		{"ok", "0", []string{"amount"}},
		{"ok", "0.00", []string{"amount"}},
		{"", "abc", []string{"text", "amount"}},
	}
	for i, b := range bads {
		_, err := ParseInput(b.text, b.amount)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d expected validation error, got %v", i, err)
		}
		var fe FieldErrors
		if !errors.As(err, &fe) {
			t.Fatalf("case %d expected FieldErrors, got %T", i, err)
		}
		if len(fe) != len(b.fields) {
			t.Fatalf("case %d expected fields %v, got %v", i, b.fields, fe)
		}
		for _, f := range b.fields {
			if len(fe[f]) == 0 {
				t.Fatalf("case %d missing error for %s: %v", i, f, fe)
			}
		}
	}
}

func TestNewTransactionValidate(t *testing.T) {
	good := []NewTransaction{
		{Text: "Café", Amount: decimal.RequireFromString("-0.50")},
		{Text: "Restaurant à Paris 🍽️", Amount: decimal.RequireFromString("150.75")},
		{Text: strings.Repeat("é", MaxTextLength), Amount: decimal.NewFromInt(1)},
	}
	for i, n := range good {
		if err := n.Validate(); err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
	}

	bads := []struct {
		n    NewTransaction
		want error
	}{
		{NewTransaction{Text: "", Amount: decimal.NewFromInt(1)}, ErrEmptyText},
		{NewTransaction{Text: strings.Repeat("A", 300), Amount: decimal.NewFromInt(1)}, ErrTextTooLong},
		{NewTransaction{Text: "ok", Amount: decimal.Zero}, ErrZeroAmount},
		{NewTransaction{Text: "ok", Amount: decimal.RequireFromString("1.005")}, ErrAmountPlaces},
	}
	for i, b := range bads {
		err := b.n.Validate()
		if !errors.Is(err, b.want) {
			t.Fatalf("case %d expected %v, got %v", i, b.want, err)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d should match ErrValidation", i)
		}
	}
}

func TestNewTransactionProblems(t *testing.T) {
	fe := NewTransaction{Text: "  ", Amount: decimal.Zero}.Problems()
	if len(fe["text"]) != 1 || len(fe["amount"]) != 1 {
		t.Fatalf("expected one error per field, got %v", fe)
	}
	if fe["amount"][0] != ErrZeroAmount.Message {
		t.Fatalf("amount message = %q", fe["amount"][0])
	}

	ok := NewTransaction{Text: "Salaire", Amount: decimal.NewFromInt(2500)}.Problems()
	if len(ok) != 0 {
		t.Fatalf("expected no problems, got %v", ok)
	}
}

func TestSortNewestFirst(t *testing.T) {
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	list := []Transaction{
		{ID: "a", CreatedAt: base},
		{ID: "b", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "c", CreatedAt: base.Add(time.Minute)},
	}
	SortNewestFirst(list)
	if list[0].ID != "b" || list[1].ID != "c" || list[2].ID != "a" {
		t.Fatalf("unexpected order: %v %v %v", list[0].ID, list[1].ID, list[2].ID)
	}
}

func TestFieldErrorsError(t *testing.T) {
	fe := FieldErrors{}
	fe.Add(ErrEmptyText)
	fe.Add(ErrInvalidAmount)
	fe.Add(errors.New("boom"))
	msg := fe.Error()
	if !strings.Contains(msg, "amount: A valid number is required.") || !strings.Contains(msg, "non_field_errors: boom") {
		t.Fatalf("unexpected message: %s", msg)
	}
	if (FieldErrors{}).OrNil() != nil {
		t.Fatalf("empty FieldErrors should be nil")
	}
}
