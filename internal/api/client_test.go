package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"financas/internal/core"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", srv.Client(), nil)
}

func TestListCategoriesEnvelopes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"bare array", `[{"id":1,"title":"Food"},{"id":2,"title":"Casa"}]`, 2},
		{"enveloped", `{"categories":[{"id":1,"title":"Food"}]}`, 1},
		{"empty envelope", `{"categories":null}`, 0},
		{"empty body", ``, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet || r.URL.Path != "/categories" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				io.WriteString(w, tt.body)
			})
			got, err := c.ListCategories(context.Background())
			if err != nil {
				t.Fatalf("ListCategories: %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("len = %d, want %d", len(got), tt.want)
			}
			if tt.want > 0 && (got[0].ID == nil || *got[0].ID != 1 || got[0].Title != "Food") {
				t.Fatalf("first = %+v", got[0])
			}
		})
	}
}

func TestListRejectsObjectWithoutEnvelope(t *testing.T) {
	for _, body := range []string{`{"data":[{"id":1,"title":"Food"}]}`, `{}`} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, body)
		})
		got, err := c.ListCategories(context.Background())
		if !errors.Is(err, ErrUnexpectedShape) {
			t.Errorf("ListCategories(%s) = %v, %v; want ErrUnexpectedShape", body, got, err)
		}
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"items":[]}`)
	})
	if _, err := c.ListTransactions(context.Background()); !errors.Is(err, ErrUnexpectedShape) {
		t.Errorf("ListTransactions = %v, want ErrUnexpectedShape", err)
	}
}

func TestListTransactionsEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"transactions":[{"id":5,"categoryId":1,"title":"Mercado","movement":"outgoing",
			"valueInCents":1234,"date":"2024-05-10T00:00:00.000Z","dueDate":null,"isFixed":false,"isPaid":true,
			"category":{"id":1,"title":"Food"}}]}`)
	})
	got, err := c.ListTransactions(context.Background())
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d", len(got))
	}
	tx := got[0]
	if tx.ValueInCents != 1234 || tx.Movement != core.Outgoing || !tx.IsPaid {
		t.Fatalf("unexpected transaction %+v", tx)
	}
	if tx.Date == nil || tx.Date.Display() != "10/05/2024" {
		t.Fatalf("date = %v", tx.Date)
	}
	if tx.DueDate != nil && !tx.DueDate.IsZero() {
		t.Fatalf("dueDate should be empty, got %v", tx.DueDate)
	}
	if tx.CategoryTitle() != "Food" {
		t.Fatalf("category = %+v", tx.Category)
	}
}

func TestCreateCategorySendsJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/categories" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["title"] != "Food" {
			t.Errorf("title = %v", body["title"])
		}
		if _, ok := body["id"]; ok {
			t.Errorf("id should be omitted on create")
		}
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":9,"title":"Food"}`)
	})
	got, err := c.CreateCategory(context.Background(), core.Category{Title: "Food"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if got.ID == nil || *got.ID != 9 {
		t.Fatalf("id = %v", got.ID)
	}
}

func TestUpdateTransactionUsesPUT(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/transactions/7" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	in := core.Transaction{ID: core.Int64(7), CategoryID: 1, Title: "Luz", Movement: core.Outgoing}
	got, err := c.UpdateTransaction(context.Background(), in)
	if err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	if got.Title != "Luz" {
		t.Fatalf("empty response should echo the sent entity, got %+v", got)
	}
}

func TestUpdateWithoutID(t *testing.T) {
	c := New("http://127.0.0.1:0", nil, nil)
	if _, err := c.UpdateCategory(context.Background(), core.Category{Title: "x"}); !errors.Is(err, ErrMissingID) {
		t.Fatalf("err = %v, want ErrMissingID", err)
	}
	if _, err := c.UpdateTransaction(context.Background(), core.Transaction{}); !errors.Is(err, ErrMissingID) {
		t.Fatalf("err = %v, want ErrMissingID", err)
	}
}

func TestStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	_, err := c.ListCategories(context.Background())
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.StatusCode != http.StatusInternalServerError || se.Body != "boom" {
		t.Fatalf("unexpected %+v", se)
	}
}

func TestTransportErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(url, nil, nil)
	if _, err := c.GetDashboard(context.Background()); err == nil {
		t.Fatal("expected error from closed server")
	}
}

func TestGetDashboard(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"wrapped", `{"dashboard_data":{"fixed_expenses":150000,"monthly_expenses":"2500","next_month_expenses":null,
			"charts":{"spents_by_category":[{"category":"Food","spent":1234},{"category":"Casa","spent":99.6}]}}}`},
		{"bare", `{"fixed_expenses":150000,"monthly_expenses":2500,
			"charts":{"spents_by_category":[{"category":"Food","spent":1234},{"category":"Casa","spent":"100"}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/dashboard_data" {
					t.Errorf("path = %s", r.URL.Path)
				}
				io.WriteString(w, tt.body)
			})
			d, err := c.GetDashboard(context.Background())
			if err != nil {
				t.Fatalf("GetDashboard: %v", err)
			}
			if d.FixedExpenses != 150000 || d.MonthlyExpenses != 2500 || d.NextMonthExpenses != 0 {
				t.Fatalf("totals = %+v", d)
			}
			if len(d.SpentsByCategory) != 2 || d.SpentsByCategory[1].Spent != 100 {
				t.Fatalf("chart = %+v", d.SpentsByCategory)
			}
		})
	}
}

func TestGetDashboardRejectsUnexpectedShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"null envelope", `{"dashboard_data":null}`},
		{"array envelope", `{"dashboard_data":[]}`},
		{"unrelated object", `{"status":"ok"}`},
		{"null body", `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			})
			d, err := c.GetDashboard(context.Background())
			if !errors.Is(err, ErrUnexpectedShape) {
				t.Fatalf("GetDashboard = %+v, %v; want ErrUnexpectedShape", d, err)
			}
		})
	}
}

func TestPing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("404 should count as reachable: %v", err)
	}

	down := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	if err := down.Ping(context.Background()); err == nil {
		t.Fatal("expected error on 502")
	}
}
