package core

import (
	"strconv"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Totals is the derived view of a transaction list.
type Totals struct {
	Balance decimal.Decimal // income minus expense
	Income  decimal.Decimal // sum of positive amounts
	Expense decimal.Decimal // absolute sum of negative amounts
	Ratio   int             // expense as a percent of income, 0..100
}

// ComputeTotals derives balance, income, expense and the expense ratio.
// Money values are rounded to two decimals. The ratio is capped at 100 and is
// zero when there is no income.
func ComputeTotals(txs []Transaction) Totals {
	income := decimal.Zero
	spent := decimal.Zero
	for _, t := range txs {
		switch t.Amount.Sign() {
		case 1:
			income = income.Add(t.Amount)
		case -1:
			spent = spent.Add(t.Amount)
		}
	}

	totals := Totals{
		Balance: income.Add(spent).Round(2),
		Income:  income.Round(2),
		Expense: spent.Abs().Round(2),
	}
	if totals.Income.IsPositive() {
		ratio := totals.Expense.Div(totals.Income)
		if ratio.GreaterThan(decimal.NewFromInt(1)) {
			ratio = decimal.NewFromInt(1)
		}
		totals.Ratio = int(ratio.Mul(hundred).Round(0).IntPart())
	}
	return totals
}

// BalanceText, IncomeText, ExpenseText and RatioText are the display forms.
func (t Totals) BalanceText() string { return FormatMoney(t.Balance) }
func (t Totals) IncomeText() string  { return FormatMoney(t.Income) }
func (t Totals) ExpenseText() string { return FormatMoney(t.Expense.Neg()) }
func (t Totals) RatioText() string   { return strconv.Itoa(t.Ratio) + "%" }
