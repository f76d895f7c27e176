package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income   Movement = "income"
	Outgoing Movement = "outgoing"
)

type (
	// Movement is the direction of a transaction.
	Movement string

	// Date is a calendar date exchanged with the finance API.
	// It accepts both "2006-01-02" and RFC 3339 on input.
	Date struct {
		time.Time
	}

	Category struct {
		ID          *int64 `json:"id,omitempty"`
		Title       string `json:"title" validate:"required"`
		Description string `json:"description,omitempty"`
	}

	Transaction struct {
		ID           *int64    `json:"id,omitempty"`
		CategoryID   int64     `json:"categoryId" validate:"required,gt=0"`
		Category     *Category `json:"category,omitempty"` // denormalized, read-only
		Title        string    `json:"title" validate:"required"`
		Movement     Movement  `json:"movement" validate:"required,oneof=income outgoing"`
		ValueInCents int64     `json:"valueInCents" validate:"gte=0"`
		Date         *Date     `json:"date,omitempty"`
		DueDate      *Date     `json:"dueDate,omitempty"`
		IsFixed      bool      `json:"isFixed"`
		IsPaid       bool      `json:"isPaid"`
	}

	// CategorySpend is one bar of the spend-by-category chart.
	CategorySpend struct {
		Category string
		Spent    int64
	}

	// Dashboard holds the aggregate figures computed by the finance API.
	Dashboard struct {
		FixedExpenses     int64
		MonthlyExpenses   int64
		NextMonthExpenses int64
		SpentsByCategory  []CategorySpend
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidMovement = errors.New("invalid movement")
	ErrInvalidDate     = errors.New("invalid date")
)

// ParseMovement accepts the two wire values, case-insensitively.
func ParseMovement(s string) (Movement, error) {
	switch m := Movement(strings.ToLower(strings.TrimSpace(s))); m {
	case Income, Outgoing:
		return m, nil
	default:
		return "", ErrInvalidMovement
	}
}

// Label returns the pt-BR label shown in tables and selects.
func (m Movement) Label() string {
	switch m {
	case Income:
		return "Entrada"
	case Outgoing:
		return "Saída"
	default:
		return string(m)
	}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses "2006-01-02" or an RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return Date{Time: t}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Date{Time: t.UTC()}, nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// ISO returns the value used by <input type="date">.
func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// Display returns the pt-BR dd/mm/yyyy rendering.
func (d Date) Display() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("02/01/2006")
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, b)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// CategoryTitle returns the denormalized category title, if any.
func (t Transaction) CategoryTitle() string {
	if t.Category == nil {
		return ""
	}
	return t.Category.Title
}

// Int64 returns a pointer to v; handy for optional ids.
func Int64(v int64) *int64 { return &v }
