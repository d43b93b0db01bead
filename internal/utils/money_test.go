package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatRupees(t *testing.T) {
	cases := map[string]string{
		"0":           "Rs. 0.00",
		"900":         "Rs. 900.00",
		"1234.5":      "Rs. 1,234.50",
		"1234567.891": "Rs. 1,234,567.89",
	}
	for in, want := range cases {
		if got := FormatRupees(decimal.RequireFromString(in)); got != want {
			t.Fatalf("FormatRupees(%s) = %q, want %q", in, got, want)
		}
	}
}
