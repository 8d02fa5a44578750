package core

import (
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
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{" 2.50 ", "2.5", true},
		{"-500", "-500", true},
		{"+7", "7", true},
		{".5", "0.5", true},
		{"0", "0", true},
		{"--1", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"1,000.50", "", false},
		{"1e3", "", false},
		{".", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error, got %s", tc.in, got)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[string]string{
		"1850":      "$1,850.00",
		"-150":      "-$150.00",
		"0":         "$0.00",
		"12.3":      "$12.30",
		"-0.001":    "$0.00",
		"1234567.8": "$1,234,567.80",
	}
	for in, want := range cases {
		if got := FormatAmount(decimal.RequireFromString(in)); got != want {
			t.Fatalf("FormatAmount(%s) = %q, want %q", in, got, want)
		}
	}
}
