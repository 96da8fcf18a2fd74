package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"solde/internal/core"
)

// transactionResponse is the wire form of a transaction. The amount is a
// string with two decimals so that no client parses it as a float by accident.
type transactionResponse struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Amount    string    `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:        t.ID,
		Text:      t.Text,
		Amount:    t.Amount.StringFixed(2),
		CreatedAt: t.CreatedAt.UTC(),
	}
}

type summaryResponse struct {
	Balance string `json:"balance"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Ratio   int    `json:"ratio"`
}

func toSummaryResponse(t core.Totals) summaryResponse {
	return summaryResponse{
		Balance: t.Balance.StringFixed(2),
		Income:  t.Income.StringFixed(2),
		Expense: t.Expense.StringFixed(2),
		Ratio:   t.Ratio,
	}
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// View models for the HTML page.
type (
	rowView struct {
		Text         string
		Amount       string
		Income       bool
		CreatedAt    string
		CreatedAtISO string
	}

	totalsView struct {
		Balance string
		Income  string
		Expense string
		Ratio   string
	}

	ledgerView struct {
		Rows   []rowView
		Totals totalsView
	}
)

func newLedgerView(list []core.Transaction) ledgerView {
	v := ledgerView{Rows: make([]rowView, 0, len(list))}
	for _, t := range list {
		v.Rows = append(v.Rows, rowView{
			Text:         t.Text,
			Amount:       core.FormatSigned(t.Amount),
			Income:       t.IsIncome(),
			CreatedAt:    t.CreatedAt.Local().Format("02/01/2006 15:04"),
			CreatedAtISO: t.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	totals := core.ComputeTotals(list)
	v.Totals = totalsView{
		Balance: totals.BalanceText(),
		Income:  totals.IncomeText(),
		Expense: totals.ExpenseText(),
		Ratio:   totals.RatioText(),
	}
	return v
}
