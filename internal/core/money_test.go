package core

import (
	"errors"
	"testing"
)

func TestFormatBRL(t *testing.T) {
	cases := []struct {
		in  int64
		out string
	}{
		{0, "R$ 0,00"},
		{-5, "R$ 0,00"},
		{1, "R$ 0,01"},
		{1234, "R$ 12,34"},
		{150000, "R$ 1.500,00"},
		{123456, "R$ 1.234,56"},
		{123456789, "R$ 1.234.567,89"},
	}
	for _, tc := range cases {
		if got := FormatBRL(tc.in); got != tc.out {
			t.Fatalf("FormatBRL(%d) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestMaskedToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
	}{
		{"1234", 1234},
		{"R$ 12,34", 1234},
		{"R$ 1.234,56", 123456},
		{"", 0},
		{"abc", 0},
		{"0005", 5},
		{"R$ 12.345.678.901.234.567,89", 1234567890123456789},
	}
	for _, tc := range cases {
		got, err := MaskedToCents(tc.in)
		if err != nil || got != tc.out {
			t.Fatalf("MaskedToCents(%q) = %d, %v; want %d", tc.in, got, err, tc.out)
		}
	}
}

func TestMaskedToCentsOverflow(t *testing.T) {
	for _, in := range []string{"9999999999999999999", "R$ 123.456.789.012.345.678.901,23"} {
		if got, err := MaskedToCents(in); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("MaskedToCents(%q) = %d, %v; want ErrInvalidAmount", in, got, err)
		}
	}
}

func TestCurrencyRoundTrip(t *testing.T) {
	for _, in := range []string{"R$ 1.234,56", "R$ 0,01", "R$ 0,00", "R$ 99.999,99"} {
		once := FloatToCurrency(mustFloat(t, in))
		if once != in {
			t.Fatalf("round trip of %q = %q", in, once)
		}
		if twice := FloatToCurrency(mustFloat(t, once)); twice != once {
			t.Fatalf("round trip not idempotent: %q -> %q", once, twice)
		}
	}
}

func TestFloatToCents(t *testing.T) {
	cases := []struct {
		in  float64
		out int64
	}{
		{12.34, 1234},
		{0.015, 2},
		{1234.565, 123457},
		{-1.005, -101},
	}
	for _, tc := range cases {
		if got := FloatToCents(tc.in); got != tc.out {
			t.Fatalf("FloatToCents(%v) = %d, want %d", tc.in, got, tc.out)
		}
	}
}

func TestParseCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1234", 1234, true},
		{" 50 ", 50, true},
		{"-3", -3, true},
		{"12.5", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func mustFloat(t *testing.T, s string) float64 {
	t.Helper()
	f, err := CurrencyToFloat(s)
	if err != nil {
		t.Fatalf("CurrencyToFloat(%q): %v", s, err)
	}
	return f
}
