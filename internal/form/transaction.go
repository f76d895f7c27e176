package form

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"financas/internal/cache"
	"financas/internal/core"
	"financas/internal/schema"
)

var transactionFields = []string{
	"categoryId", "title", "movement", "valueInCents", "date", "dueDate", "isFixed", "isPaid",
}

// TransactionForm is the state of the transaction create/edit form.
type TransactionForm struct {
	Mode   Mode
	Values map[string]string
	Errors schema.FieldErrors
	// Categories fill the category select.
	Categories []core.Category
	editing    string
}

func transactionDefaults() map[string]string {
	return map[string]string{
		"categoryId":   "",
		"title":        "",
		"movement":     string(core.Outgoing),
		"valueInCents": "0",
		"date":         "",
		"dueDate":      "",
		"isFixed":      "",
		"isPaid":       "",
	}
}

// NewTransactionForm opens the form for t, or a create form with defaults
// (movement outgoing, value 0, flags off) when t is nil.
func NewTransactionForm(t *core.Transaction, categories []core.Category) *TransactionForm {
	f := &TransactionForm{
		Mode:       Create{},
		Values:     transactionDefaults(),
		Errors:     schema.FieldErrors{},
		Categories: categories,
	}
	if t == nil {
		return f
	}

	f.Mode = ModeFor(t.ID)
	f.editing = t.Title
	if t.CategoryID > 0 {
		f.Values["categoryId"] = strconv.FormatInt(t.CategoryID, 10)
	}
	f.Values["title"] = t.Title
	f.Values["movement"] = string(t.Movement)
	f.Values["valueInCents"] = strconv.FormatInt(t.ValueInCents, 10)
	if t.Date != nil {
		f.Values["date"] = t.Date.ISO()
	}
	if t.DueDate != nil {
		f.Values["dueDate"] = t.DueDate.ISO()
	}
	f.Values["isFixed"] = checkbox(t.IsFixed)
	f.Values["isPaid"] = checkbox(t.IsPaid)
	return f
}

func checkbox(b bool) string {
	if b {
		return "on"
	}
	return ""
}

func (f *TransactionForm) IsEdit() bool {
	_, ok := editID(f.Mode)
	return ok
}

func (f *TransactionForm) Heading() string {
	if f.IsEdit() {
		return "Editando: " + f.editing
	}
	return "Nova transação"
}

func (f *TransactionForm) SubmitLabel() string {
	if f.IsEdit() {
		return "Salvar alterações"
	}
	return "Criar transação"
}

func (f *TransactionForm) Action() string { return actionURL("/transactions", f.Mode) }

func (f *TransactionForm) Method() string {
	if f.IsEdit() {
		return "put"
	}
	return "post"
}

func (f *TransactionForm) Value(field string) string { return f.Values[field] }

func (f *TransactionForm) Error(field string) string { return f.Errors.Get(field) }

// Checked reports whether a checkbox field is on.
func (f *TransactionForm) Checked(field string) bool {
	switch f.Values[field] {
	case "on", "true", "1", "yes", "sim":
		return true
	}
	return false
}

// Selected reports whether option is the current value of field.
func (f *TransactionForm) Selected(field, option string) bool {
	return f.Values[field] == option
}

// TransactionAPI is the part of the API client the transaction form needs.
type TransactionAPI interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
}

// TransactionSubmitter sends transaction forms to the API.
type TransactionSubmitter struct {
	API      TransactionAPI
	Cache    Invalidator
	Recorder Recorder
	Now      func() time.Time
}

// Submit validates in and creates or updates the transaction. In edit mode the
// validated payload keeps the id of the entity being edited. After a
// successful submit the form is reset to its create defaults, keeping the
// category options.
func (s *TransactionSubmitter) Submit(ctx context.Context, f *TransactionForm, in schema.Input) (core.Transaction, error) {
	keepValues(f.Values, in, transactionFields...)

	t, errs := schema.Transaction(in)
	if !errs.Empty() {
		f.Errors = errs
		return core.Transaction{}, ErrValidation
	}
	f.Errors = schema.FieldErrors{}

	op := core.OperationCreate
	var (
		saved core.Transaction
		err   error
	)
	if id, ok := editID(f.Mode); ok {
		op = core.OperationUpdate
		t.ID = &id
		saved, err = s.API.UpdateTransaction(ctx, t)
	} else {
		t.ID = nil
		saved, err = s.API.CreateTransaction(ctx, t)
	}

	m := core.Mutation{
		Resource:  core.ResourceTransaction,
		Operation: op,
		EntityID:  firstID(saved.ID, t.ID),
		Title:     t.Title,
		At:        now(s.Now),
	}
	if err != nil {
		s.record(ctx, withOutcome(m, err))
		return core.Transaction{}, fmt.Errorf("%s transaction: %w", op, err)
	}

	if s.Cache != nil {
		s.Cache.Invalidate(cache.TransactionMutationKeys...)
	}
	s.record(ctx, withOutcome(m, nil))
	*f = *NewTransactionForm(nil, f.Categories)
	return saved, nil
}

func (s *TransactionSubmitter) record(ctx context.Context, m core.Mutation) {
	if s.Recorder != nil {
		s.Recorder.Record(ctx, m)
	}
}
