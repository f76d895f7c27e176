package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"financas/internal/core"
)

const (
	categoriesPath   = "/categories"
	transactionsPath = "/transactions"
	dashboardPath    = "/dashboard_data"
)

// ListCategories returns every category.
func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	data, err := c.do(ctx, http.MethodGet, categoriesPath, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[core.Category](data, "categories")
}

// CreateCategory posts a new category and returns what the API stored.
func (c *Client) CreateCategory(ctx context.Context, cat core.Category) (core.Category, error) {
	data, err := c.do(ctx, http.MethodPost, categoriesPath, cat)
	if err != nil {
		return core.Category{}, err
	}
	return decodeOne(data, "category", cat)
}

// UpdateCategory replaces the category identified by cat.ID.
func (c *Client) UpdateCategory(ctx context.Context, cat core.Category) (core.Category, error) {
	path, err := idPath("categories", cat.ID)
	if err != nil {
		return core.Category{}, err
	}
	data, err := c.do(ctx, http.MethodPut, path, cat)
	if err != nil {
		return core.Category{}, err
	}
	return decodeOne(data, "category", cat)
}

// ListTransactions returns every transaction.
func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	data, err := c.do(ctx, http.MethodGet, transactionsPath, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[core.Transaction](data, "transactions")
}

func (c *Client) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	data, err := c.do(ctx, http.MethodPost, transactionsPath, t)
	if err != nil {
		return core.Transaction{}, err
	}
	return decodeOne(data, "transaction", t)
}

func (c *Client) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	path, err := idPath("transactions", t.ID)
	if err != nil {
		return core.Transaction{}, err
	}
	data, err := c.do(ctx, http.MethodPut, path, t)
	if err != nil {
		return core.Transaction{}, err
	}
	return decodeOne(data, "transaction", t)
}

// GetDashboard returns the aggregate figures shown on the home page.
func (c *Client) GetDashboard(ctx context.Context) (core.Dashboard, error) {
	data, err := c.do(ctx, http.MethodGet, dashboardPath, nil)
	if err != nil {
		return core.Dashboard{}, err
	}
	return decodeDashboard(data)
}

// decodeList accepts both a bare array and an object enveloping the array
// under envelope. An object without the envelope key is an error.
func decodeList[T any](data []byte, envelope string) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode %s: %w", envelope, err)
		}
		return items, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("decode %s: %w", envelope, err)
	}
	raw, ok := wrapped[envelope]
	if !ok {
		return nil, fmt.Errorf("decode %s: %w: missing %q key", envelope, ErrUnexpectedShape, envelope)
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", envelope, err)
	}
	return items, nil
}

// decodeOne decodes a create/update response. The API may answer with the
// entity, the entity under envelope, or nothing; in the last case sent is
// returned as is.
func decodeOne[T any](data []byte, envelope string, sent T) (T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return sent, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return sent, fmt.Errorf("decode %s: %w", envelope, err)
	}
	if raw, ok := wrapped[envelope]; ok && len(raw) > 0 && raw[0] == '{' {
		trimmed = raw
	}

	var out T
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return sent, fmt.Errorf("decode %s: %w", envelope, err)
	}
	return out, nil
}

type dashboardDTO struct {
	FixedExpenses     amount `json:"fixed_expenses"`
	MonthlyExpenses   amount `json:"monthly_expenses"`
	NextMonthExpenses amount `json:"next_month_expenses"`
	Charts            struct {
		SpentsByCategory []struct {
			Category string `json:"category"`
			Spent    amount `json:"spent"`
		} `json:"spents_by_category"`
	} `json:"charts"`
}

var dashboardKeys = []string{"fixed_expenses", "monthly_expenses", "next_month_expenses", "charts"}

// decodeDashboard reads the totals either from the dashboard_data envelope or
// from the top-level object.
func decodeDashboard(data []byte) (core.Dashboard, error) {
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return core.Dashboard{}, fmt.Errorf("decode dashboard: %w", err)
	}
	if wrapped == nil {
		return core.Dashboard{}, fmt.Errorf("decode dashboard: %w: null body", ErrUnexpectedShape)
	}

	body := json.RawMessage(data)
	if raw, ok := wrapped["dashboard_data"]; ok {
		body = bytes.TrimSpace(raw)
		if len(body) == 0 || body[0] != '{' {
			return core.Dashboard{}, fmt.Errorf("decode dashboard: %w: dashboard_data is %s", ErrUnexpectedShape, body)
		}
	} else if !hasAnyKey(wrapped, dashboardKeys) {
		return core.Dashboard{}, fmt.Errorf("decode dashboard: %w: no dashboard fields", ErrUnexpectedShape)
	}

	var dto dashboardDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return core.Dashboard{}, fmt.Errorf("decode dashboard: %w", err)
	}

	d := core.Dashboard{
		FixedExpenses:     int64(dto.FixedExpenses),
		MonthlyExpenses:   int64(dto.MonthlyExpenses),
		NextMonthExpenses: int64(dto.NextMonthExpenses),
		SpentsByCategory:  make([]core.CategorySpend, 0, len(dto.Charts.SpentsByCategory)),
	}
	for _, s := range dto.Charts.SpentsByCategory {
		d.SpentsByCategory = append(d.SpentsByCategory, core.CategorySpend{
			Category: s.Category,
			Spent:    int64(s.Spent),
		})
	}
	return d, nil
}

func hasAnyKey(m map[string]json.RawMessage, keys []string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}
