// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing amounts typed by users and for
// formatting stored amounts the same way in every front-end.
package core

import (
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every formatted amount.
const CurrencySymbol = "$"

// ParseAmount converts user input into a decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional leading sign. The sign is kept; the store discards it anyway.
// Thousands separators, exponents and anything non-numeric are rejected.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,34")  -> 12.34, nil
//	ParseAmount("-500")   -> -500, nil
//	ParseAmount("1,000.5") -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, invalid("amount", ErrInvalidAmount)
	}
	digits := strings.TrimLeft(s, "+-")
	if len(s)-len(digits) > 1 {
		return decimal.Zero, invalid("amount", ErrInvalidAmount)
	}
	if strings.Count(digits, ".")+strings.Count(digits, ",") > 1 {
		return decimal.Zero, invalid("amount", ErrInvalidAmount)
	}
	digits = strings.ReplaceAll(digits, ",", ".")
	if digits == "" || digits == "." {
		return decimal.Zero, invalid("amount", ErrInvalidAmount)
	}
	for _, r := range digits {
		if r != '.' && !unicode.IsDigit(r) {
			return decimal.Zero, invalid("amount", ErrInvalidAmount)
		}
	}
	d, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero, invalid("amount", ErrInvalidAmount)
	}
	if strings.HasPrefix(s, "-") {
		d = d.Neg()
	}
	return d, nil
}

// FormatAmount renders an amount as "$1,850.00", or "-$150.00" for
// negative values.
func FormatAmount(amount decimal.Decimal) string {
	f, _ := amount.Abs().Round(2).Float64()
	s := CurrencySymbol + humanize.FormatFloat("#,###.##", f)
	if amount.Round(2).IsNegative() {
		return "-" + s
	}
	return s
}
