package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"financas/internal/core"
)

// amount is a minor-unit value in a dashboard payload. Aggregates computed by
// SQL SUM may arrive as JSON numbers, fractional numbers or numeric strings.
type amount int64

func (a *amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = 0
		return nil
	}
	text := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &text); err != nil {
			return err
		}
		if text == "" {
			*a = 0
			return nil
		}
	}
	if v, err := strconv.ParseInt(text, 10, 64); err == nil {
		*a = amount(v)
		return nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("%w: %s", core.ErrInvalidAmount, b)
	}
	// Fractional minor units are rounded to the nearest whole unit.
	*a = amount(core.FloatToCents(f/100))
	return nil
}
