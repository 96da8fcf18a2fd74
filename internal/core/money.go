// Package core provides money parsing and formatting utilities.
//
// Amounts are shopspring decimals so that values such as 150.75 or -0.50
// never go through a binary float.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencySuffix is appended to formatted totals.
const CurrencySuffix = " €"

// maxExponentDigits bounds exponent notation so "1e999999" cannot build a
// huge decimal.
const maxExponentDigits = 2

// ParseAmount converts a user supplied string to a signed decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators, an
// optional leading sign and a short exponent (1e3, 1.5E-1) as JSON numbers
// may carry one. NaN, infinities and embedded spaces are rejected with
// ErrInvalidAmount. Zero is returned as is; callers decide whether it is
// acceptable.
//
// Examples:
//
//	ParseAmount("-45.50") -> -45.5, nil
//	ParseAmount("12,34")  -> 12.34, nil
//	ParseAmount("1e3")    -> 1000, nil
//	ParseAmount("abc")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	body := s
	if body[0] == '+' || body[0] == '-' {
		body = body[1:]
	}
	mantissa, exponent, hasExp := strings.Cut(strings.ToLower(body), "e")
	if !validMantissa(mantissa) || (hasExp && !validExponent(exponent)) {
		return decimal.Zero, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

func validMantissa(m string) bool {
	if m == "" || m == "." || strings.Count(m, ".") > 1 {
		return false
	}
	for _, r := range m {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

func validExponent(e string) bool {
	if e != "" && (e[0] == '+' || e[0] == '-') {
		e = e[1:]
	}
	if e == "" || len(e) > maxExponentDigits {
		return false
	}
	for _, r := range e {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatMoney renders a value with two decimals and the currency suffix,
// e.g. "2549.50 €" or "-950.50 €".
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2) + CurrencySuffix
}

// FormatSigned renders a row amount with an explicit sign and no trailing
// zeros: "+2500", "-45.5".
func FormatSigned(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.String()
	}
	return d.String()
}
