package core

import (
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// MaxTextLength is the longest description a store accepts, in characters.
const MaxTextLength = 255

type (
	// Transaction is a single income (positive amount) or expense (negative
	// amount) record as returned by the store.
	Transaction struct {
		ID        string          `json:"id"`
		Text      string          `json:"text"`
		Amount    decimal.Decimal `json:"amount"`
		CreatedAt time.Time       `json:"created_at"`
	}

	// NewTransaction is the payload used to create a transaction. ID and
	// creation time are always assigned by the store.
	NewTransaction struct {
		Text   string
		Amount decimal.Decimal
	}
)

// ErrValidation is matched (errors.Is) by every validation failure.
var ErrValidation = errors.New("missing or invalid fields")

// ValidationError describes a single rejected field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

var (
	ErrMissingText   = &ValidationError{Field: "text", Message: "This field is required."}
	ErrEmptyText     = &ValidationError{Field: "text", Message: "This field may not be blank."}
	ErrTextTooLong   = &ValidationError{Field: "text", Message: "Ensure this field has no more than 255 characters."}
	ErrMissingAmount = &ValidationError{Field: "amount", Message: "This field is required."}
	ErrInvalidAmount = &ValidationError{Field: "amount", Message: "A valid number is required."}
	ErrZeroAmount    = &ValidationError{Field: "amount", Message: "Amount must not be zero."}
	ErrAmountPlaces  = &ValidationError{Field: "amount", Message: "Ensure that there are no more than 2 decimal places."}
)

// FieldErrors collects validation failures keyed by field name.
type FieldErrors map[string][]string

// Add records err under its field. Errors that are not ValidationErrors are
// recorded under "non_field_errors".
func (fe FieldErrors) Add(err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		fe[ve.Field] = append(fe[ve.Field], ve.Message)
		return
	}
	fe["non_field_errors"] = append(fe["non_field_errors"], err.Error())
}

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(fe[f], " "))
	}
	return "invalid fields: " + strings.Join(parts, "; ")
}

func (fe FieldErrors) Is(target error) bool {
	return target == ErrValidation
}

// OrNil returns nil when no field failed, so callers can return it directly.
func (fe FieldErrors) OrNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// Validate applies the rules a store enforces before persisting.
func (n NewTransaction) Validate() error {
	if err := validateText(n.Text); err != nil {
		return err
	}
	return validateAmount(n.Amount)
}

// Problems applies the same rules as Validate but reports every failing
// field instead of the first one.
func (n NewTransaction) Problems() FieldErrors {
	fe := FieldErrors{}
	if err := validateText(n.Text); err != nil {
		fe.Add(err)
	}
	if err := validateAmount(n.Amount); err != nil {
		fe.Add(err)
	}
	return fe
}

func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return ErrTextTooLong
	}
	return nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.IsZero() {
		return ErrZeroAmount
	}
	if !amount.Equal(amount.Round(2)) {
		return ErrAmountPlaces
	}
	return nil
}

// ParseInput builds a NewTransaction from raw form values: the text must not
// be blank and the amount must parse as a non-zero number. Every failing field
// is reported in the returned FieldErrors. Store-side rules (length, decimal
// places) are left to Validate.
func ParseInput(text, amount string) (NewTransaction, error) {
	fe := FieldErrors{}
	n := NewTransaction{Text: strings.TrimSpace(text)}

	if n.Text == "" {
		fe.Add(ErrEmptyText)
	}
	if strings.TrimSpace(amount) == "" {
		fe.Add(ErrMissingAmount)
	} else if d, err := ParseAmount(amount); err != nil {
		fe.Add(err)
	} else if d.IsZero() {
		fe.Add(ErrZeroAmount)
	} else {
		n.Amount = d
	}
	return n, fe.OrNil()
}

// IsIncome reports whether the transaction adds to the balance.
func (t Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// SortNewestFirst orders transactions by creation time, most recent first.
// Equal timestamps keep their relative order.
func SortNewestFirst(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
}
