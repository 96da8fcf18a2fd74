package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func txs(amounts ...string) []Transaction {
	out := make([]Transaction, len(amounts))
	for i, a := range amounts {
		out[i] = Transaction{ID: a, Text: "t", Amount: decimal.RequireFromString(a)}
	}
	return out
}

func TestComputeTotals(t *testing.T) {
	cases := []struct {
		name    string
		in      []Transaction
		balance string
		income  string
		expense string
		ratio   int
	}{
		{"empty", nil, "0", "0", "0", 0},
		{"mixed", txs("3000", "-800", "-150.50", "-49.50"), "2000", "3000", "1000", 33},
		{"page example", txs("3000", "-800", "-150.50", "500"), "2549.50", "3500", "950.50", 27},
		{"thirty percent", txs("1000", "-300"), "700", "1000", "300", 30},
		{"only expenses", txs("-10", "-5.25"), "-15.25", "0", "15.25", 0},
		{"expense above income is capped", txs("100", "-250"), "-150", "100", "250", 100},
		{"only income", txs("2500", "800"), "3300", "3300", "0", 0},
		{"rounding half up", txs("200", "-1"), "199", "200", "1", 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeTotals(tc.in)
			if !got.Balance.Equal(decimal.RequireFromString(tc.balance)) {
				t.Fatalf("balance = %s, want %s", got.Balance, tc.balance)
			}
			if !got.Income.Equal(decimal.RequireFromString(tc.income)) {
				t.Fatalf("income = %s, want %s", got.Income, tc.income)
			}
			if !got.Expense.Equal(decimal.RequireFromString(tc.expense)) {
				t.Fatalf("expense = %s, want %s", got.Expense, tc.expense)
			}
			if got.Ratio != tc.ratio {
				t.Fatalf("ratio = %d, want %d", got.Ratio, tc.ratio)
			}
		})
	}
}

func TestComputeTotalsInvariants(t *testing.T) {
	lists := [][]Transaction{
		txs("0.01", "-0.02"),
		txs("1", "-1000000"),
		txs("99.99", "-33.33", "-33.33", "-33.33"),
		txs("-0.50"),
		txs("150.75", "-150.74"),
	}
	for i, l := range lists {
		got := ComputeTotals(l)
		if !got.Balance.Equal(got.Income.Sub(got.Expense)) {
			t.Fatalf("case %d: balance %s != income %s - expense %s", i, got.Balance, got.Income, got.Expense)
		}
		if got.Ratio < 0 || got.Ratio > 100 {
			t.Fatalf("case %d: ratio %d out of range", i, got.Ratio)
		}
	}
}

func TestTotalsDisplay(t *testing.T) {
	got := ComputeTotals(txs("3000", "-800", "-150.50", "500"))
	if got.BalanceText() != "2549.50 €" {
		t.Fatalf("balance text = %q", got.BalanceText())
	}
	if got.IncomeText() != "3500.00 €" {
		t.Fatalf("income text = %q", got.IncomeText())
	}
	if got.ExpenseText() != "-950.50 €" {
		t.Fatalf("expense text = %q", got.ExpenseText())
	}
	if got.RatioText() != "27%" {
		t.Fatalf("ratio text = %q", got.RatioText())
	}

	empty := ComputeTotals(nil)
	for _, s := range []string{empty.BalanceText(), empty.IncomeText(), empty.ExpenseText()} {
		if s != "0.00 €" {
			t.Fatalf("empty totals should display 0.00 €, got %q", s)
		}
	}
}
