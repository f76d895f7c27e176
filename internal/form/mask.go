package form

import "financas/internal/core"

// CurrencyMask turns whatever was typed into the amount input into its minor
// unit value and the text the input should show. Only digits count, read as
// cents: "1234" and "R$ 12,34" both give (1234, "R$ 12,34"); no digits give
// (0, "R$ 0,00"). More digits than an int64 holds is core.ErrInvalidAmount.
func CurrencyMask(raw string) (int64, string, error) {
	cents, err := core.MaskedToCents(raw)
	if err != nil {
		return 0, core.FormatBRL(0), err
	}
	return cents, core.FormatBRL(cents), nil
}
