package http

import (
	"net/http"

	"financas/internal/core"
	"financas/internal/form"
	"financas/internal/log"
	"financas/internal/view"
)

type categoriesPage struct {
	// Form is nil until the user opens the create or edit form.
	Form  *form.CategoryForm
	Table view.Table

	// Loading is shown while htmx re-fetches Table.
	Loading view.Table
}

func newCategoriesPage(f *form.CategoryForm, table view.Table) categoriesPage {
	return categoriesPage{Form: f, Table: table, Loading: view.PendingTable(view.CategoryColumns())}
}

func (s *Server) categoryTable(r *http.Request) view.Table {
	cats, err := s.categories(r.Context())
	if err != nil {
		logFetchError(r, "Categories fetch failed", err)
		return view.ErrorTable(view.CategoryColumns(), err)
	}
	return view.NewTable(cats, view.CategoryColumns())
}

// respondCategoryForm sends the form fragment to htmx and the whole page,
// with the form open, to everything else.
func (s *Server) respondCategoryForm(w http.ResponseWriter, r *http.Request, status int, f *form.CategoryForm) {
	if isHTMX(r) {
		s.write(w, r, NewHTMXResponse().Status(status), "category_form", f)
		return
	}
	s.writePage(w, r, status, "categories.html", page{
		Title:   "Categorias",
		Active:  "categories",
		Content: newCategoriesPage(f, s.categoryTable(r)),
	})
}

func (s *Server) handleCategoriesPage(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, r, http.StatusOK, "categories.html", page{
		Title:   "Categorias",
		Active:  "categories",
		Content: newCategoriesPage(nil, s.categoryTable(r)),
	})
}

func (s *Server) handleCategoriesTable(w http.ResponseWriter, r *http.Request) {
	s.writeFragment(w, r, "table", s.categoryTable(r))
}

func (s *Server) handleNewCategoryForm(w http.ResponseWriter, r *http.Request) {
	s.respondCategoryForm(w, r, http.StatusOK, form.NewCategoryForm(nil))
}

// handleEditCategoryForm opens the form pre-filled from the cached list.
func (s *Server) handleEditCategoryForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		BadRequestError("Identificador inválido").Write(w)
		return
	}
	c, err := s.findCategory(r.Context(), id)
	if err != nil {
		logFetchError(r, "Categories fetch failed", err)
		BadGatewayError(apiErrorMessage(err)).Write(w)
		return
	}
	if c == nil {
		NotFoundError("Categoria não encontrada").Write(w)
		return
	}
	s.respondCategoryForm(w, r, http.StatusOK, form.NewCategoryForm(c))
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	s.submitCategory(w, r, form.NewCategoryForm(nil))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		BadRequestError("Identificador inválido").Write(w)
		return
	}
	// The cached entity only supplies the heading; the update goes ahead
	// without it.
	c, err := s.findCategory(r.Context(), id)
	if err != nil {
		logFetchError(r, "Categories fetch failed", err)
	}
	if c == nil {
		c = &core.Category{ID: core.Int64(id)}
	}
	s.submitCategory(w, r, form.NewCategoryForm(c))
}

func (s *Server) submitCategory(w http.ResponseWriter, r *http.Request, f *form.CategoryForm) {
	ctx := r.Context()
	in, err := ParseInput(r)
	if err != nil {
		BadRequestError("Formato da requisição inválido").Write(w)
		return
	}

	op, msg := core.OperationCreate, "Categoria criada com sucesso"
	if f.IsEdit() {
		op, msg = core.OperationUpdate, "Categoria atualizada com sucesso"
	}
	title, _ := in.String("title")

	saved, err := s.categoryForms.Submit(ctx, f, in)
	switch {
	case form.IsValidation(err):
		s.respondCategoryForm(w, r, http.StatusUnprocessableEntity, f)
		return
	case err != nil:
		log.NewStructuredLogger(log.FromContext(ctx)).LogMutation(ctx, core.ResourceCategory, op, nil, title, err)
		BadGatewayError(apiErrorMessage(err)).Write(w)
		return
	}

	log.NewStructuredLogger(log.FromContext(ctx)).LogMutation(ctx, core.ResourceCategory, op, saved.ID, saved.Title, nil)
	if !isHTMX(r) {
		http.Redirect(w, r, "/categories", http.StatusSeeOther)
		return
	}
	s.write(w, r, NewHTMXResponse().TriggerCategoryMutation().TriggerSuccessNotification(msg), "category_form", f)
}

func logFetchError(r *http.Request, msg string, err error) {
	ctx := r.Context()
	errType := log.ErrorTypeUpstream
	if ctx.Err() != nil {
		// client went away
		errType = log.ErrorTypeNetwork
	}
	log.NewStructuredLogger(log.FromContext(ctx)).
		LogError(ctx, msg, err, log.OpFetch, log.NewFields().WithErrorType(errType))
}
