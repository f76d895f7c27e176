package http

import (
	"net/http"
	"strconv"
	"strings"

	"financas/internal/core"
	"financas/internal/form"
	"financas/internal/log"
	"financas/internal/view"
)

type transactionsPage struct {
	Form    *form.TransactionForm
	Table   view.Table
	Loading view.Table
}

func newTransactionsPage(f *form.TransactionForm, table view.Table) transactionsPage {
	return transactionsPage{Form: f, Table: table, Loading: view.PendingTable(view.TransactionColumns(nil))}
}

func (s *Server) transactionTable(r *http.Request) view.Table {
	txs, cats, err := s.transactionsWithCategories(r.Context())
	cols := view.TransactionColumns(cats)
	if err != nil {
		logFetchError(r, "Transactions fetch failed", err)
		return view.ErrorTable(cols, err)
	}
	return view.NewTable(txs, cols)
}

// categoryOptions fills the category select. Without them the form still
// renders; the select is just empty.
func (s *Server) categoryOptions(r *http.Request) []core.Category {
	cats, err := s.categories(r.Context())
	if err != nil {
		logFetchError(r, "Categories fetch failed", err)
		return nil
	}
	return cats
}

func (s *Server) respondTransactionForm(w http.ResponseWriter, r *http.Request, status int, f *form.TransactionForm) {
	if isHTMX(r) {
		s.write(w, r, NewHTMXResponse().Status(status), "transaction_form", f)
		return
	}
	s.writePage(w, r, status, "transactions.html", page{
		Title:   "Transações",
		Active:  "transactions",
		Content: newTransactionsPage(f, s.transactionTable(r)),
	})
}

// handleTransactionsPage renders the create form above the table.
func (s *Server) handleTransactionsPage(w http.ResponseWriter, r *http.Request) {
	txs, cats, err := s.transactionsWithCategories(r.Context())
	cols := view.TransactionColumns(cats)
	table := view.NewTable(txs, cols)
	if err != nil {
		logFetchError(r, "Transactions fetch failed", err)
		table = view.ErrorTable(cols, err)
	}
	s.writePage(w, r, http.StatusOK, "transactions.html", page{
		Title:   "Transações",
		Active:  "transactions",
		Content: newTransactionsPage(form.NewTransactionForm(nil, cats), table),
	})
}

func (s *Server) handleTransactionsTable(w http.ResponseWriter, r *http.Request) {
	s.writeFragment(w, r, "table", s.transactionTable(r))
}

func (s *Server) handleNewTransactionForm(w http.ResponseWriter, r *http.Request) {
	s.respondTransactionForm(w, r, http.StatusOK, form.NewTransactionForm(nil, s.categoryOptions(r)))
}

func (s *Server) handleEditTransactionForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		BadRequestError("Identificador inválido").Write(w)
		return
	}
	t, err := s.findTransaction(r.Context(), id)
	if err != nil {
		logFetchError(r, "Transactions fetch failed", err)
		BadGatewayError(apiErrorMessage(err)).Write(w)
		return
	}
	if t == nil {
		NotFoundError("Transação não encontrada").Write(w)
		return
	}
	s.respondTransactionForm(w, r, http.StatusOK, form.NewTransactionForm(t, s.categoryOptions(r)))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	s.submitTransaction(w, r, form.NewTransactionForm(nil, s.categoryOptions(r)))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		BadRequestError("Identificador inválido").Write(w)
		return
	}
	// The cached entity only seeds the form; the update goes ahead without it.
	t, err := s.findTransaction(r.Context(), id)
	if err != nil {
		logFetchError(r, "Transactions fetch failed", err)
	}
	if t == nil {
		t = &core.Transaction{ID: core.Int64(id), Movement: core.Outgoing}
	}
	s.submitTransaction(w, r, form.NewTransactionForm(t, s.categoryOptions(r)))
}

func (s *Server) submitTransaction(w http.ResponseWriter, r *http.Request, f *form.TransactionForm) {
	ctx := r.Context()
	in, err := ParseInput(r)
	if err != nil {
		BadRequestError("Formato da requisição inválido").Write(w)
		return
	}

	// The visible masked input wins over the hidden cents field, which only
	// the script keeps in sync. An amount too large for int64 is passed on
	// as typed so validation reports it on valueInCents.
	if raw, ok := in.String("raw"); ok {
		if cents, _, err := form.CurrencyMask(raw); err == nil {
			in["valueInCents"] = strconv.FormatInt(cents, 10)
		} else {
			in["valueInCents"] = raw
		}
		delete(in, "raw")
	}

	op, msg := core.OperationCreate, "Transação criada com sucesso"
	if f.IsEdit() {
		op, msg = core.OperationUpdate, "Transação atualizada com sucesso"
	}
	title, _ := in.String("title")

	saved, err := s.transactionForms.Submit(ctx, f, in)
	switch {
	case form.IsValidation(err):
		s.respondTransactionForm(w, r, http.StatusUnprocessableEntity, f)
		return
	case err != nil:
		log.NewStructuredLogger(log.FromContext(ctx)).LogMutation(ctx, core.ResourceTransaction, op, nil, title, err)
		BadGatewayError(apiErrorMessage(err)).Write(w)
		return
	}

	log.NewStructuredLogger(log.FromContext(ctx)).LogMutation(ctx, core.ResourceTransaction, op, saved.ID, saved.Title, nil)
	if !isHTMX(r) {
		http.Redirect(w, r, "/transactions", http.StatusSeeOther)
		return
	}
	s.write(w, r, NewHTMXResponse().TriggerTransactionMutation().TriggerSuccessNotification(msg), "transaction_form", f)
}

type currencyField struct {
	Cents   int64  `json:"cents"`
	Display string `json:"display"`
	Error   string `json:"error,omitempty"`
}

func newCurrencyField(raw string) currencyField {
	cents, display, err := form.CurrencyMask(raw)
	if err != nil {
		return currencyField{Display: raw, Error: "Valor grande demais"}
	}
	return currencyField{Cents: cents, Display: display}
}

// handleCurrencyMask masks ?raw= on the server, for clients without the
// inline script. JSON callers get the two values, everyone else the input
// pair the transaction form embeds.
func (s *Server) handleCurrencyMask(w http.ResponseWriter, r *http.Request) {
	field := newCurrencyField(r.URL.Query().Get("raw"))
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		status := http.StatusOK
		if field.Error != "" {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, field)
		return
	}
	s.writeFragment(w, r, "currency_field", field)
}
