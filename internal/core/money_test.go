package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"-50", "-50", true},
		{"+12.5", "12.5", true},
		{"150.75", "150.75", true},
		{"-0.50", "-0.5", true},
		{"1,23", "1.23", true},
		{" 2.50 ", "2.5", true},
		{".5", "0.5", true},
		{"0", "0", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"1e3", "1000", true},
		{"1.5E-1", "0.15", true},
		{"-2e+2", "-200", true},
		{"1e", "", false},
		{"e3", "", false},
		{"1e999", "", false},
		{"1e3.5", "", false},
		{"NaN", "", false},
		{"Inf", "", false},
		{"1 000", "", false},
		{"-", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
		}
	}
}

func TestFormatSigned(t *testing.T) {
	cases := map[string]string{
		"2500":   "+2500",
		"-45.50": "-45.5",
		"800.00": "+800",
		"-0.50":  "-0.5",
	}
	for in, want := range cases {
		if got := FormatSigned(decimal.RequireFromString(in)); got != want {
			t.Fatalf("FormatSigned(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	if got := FormatMoney(decimal.RequireFromString("1950")); got != "1950.00 €" {
		t.Fatalf("got %q", got)
	}
	if got := FormatMoney(decimal.RequireFromString("-0.5")); got != "-0.50 €" {
		t.Fatalf("got %q", got)
	}
}
