// Package core provides money parsing and handling utilities.
//
// Amounts travel as int64 minor units (centavos). Conversion to major units
// only happens when text is rendered for a person to read.
package core

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Digits strips everything but ASCII digits.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MaskedToCents interprets the digits of s as a fixed-point minor-unit integer.
// Digits that do not fit in an int64 are ErrInvalidAmount, never truncated.
//
// Examples:
//
//	MaskedToCents("1234")       -> 1234
//	MaskedToCents("R$ 12,34")   -> 1234
//	MaskedToCents("")           -> 0
func MaskedToCents(s string) (int64, error) {
	d := strings.TrimLeft(Digits(s), "0")
	if d == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(d, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatBRL renders cents as Brazilian real text ("R$ 1.234,56").
// Non-positive values render as "R$ 0,00".
func FormatBRL(cents int64) string {
	if cents <= 0 {
		return "R$ 0,00"
	}
	return formatCents(cents)
}

// formatCents renders any value, keeping the sign.
func formatCents(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	reais := strconv.FormatInt(cents/100, 10)
	rem := cents % 100
	s := "R$ " + groupThousands(reais) + "," + strconv.FormatInt(rem/10, 10) + strconv.FormatInt(rem%10, 10)
	if neg {
		return "-" + s
	}
	return s
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// CurrencyToFloat converts masked currency text to major units:
// non-digits are dropped and the remaining integer is divided by 100.
func CurrencyToFloat(s string) (float64, error) {
	cents, err := MaskedToCents(s)
	if err != nil {
		return 0, err
	}
	f, _ := decimal.NewFromInt(cents).Shift(-2).Float64()
	return f, nil
}

// FloatToCurrency rounds a major-unit value to minor units (half away from
// zero) and formats it. FloatToCurrency(CurrencyToFloat(s)) is stable.
func FloatToCurrency(v float64) string {
	return formatCents(FloatToCents(v))
}

// FloatToCents rounds a major-unit value to minor units.
func FloatToCents(v float64) int64 {
	return decimal.NewFromFloat(v).Round(2).Shift(2).IntPart()
}

// ParseCents parses an integer count of minor units.
func ParseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	for i, r := range s {
		if !unicode.IsDigit(r) && !(i == 0 && r == '-') {
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}
