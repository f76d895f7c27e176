package form

import (
	"context"
	"errors"
	"fmt"
	"time"

	"financas/internal/cache"
	"financas/internal/core"
	"financas/internal/schema"
)

// CategoryForm is the state of the category create/edit form.
type CategoryForm struct {
	Mode   Mode
	Values map[string]string
	Errors schema.FieldErrors
	// title of the entity when the form was opened, used in the heading
	editing string
}

// NewCategoryForm opens the form for c, or a blank create form when c is nil.
func NewCategoryForm(c *core.Category) *CategoryForm {
	f := &CategoryForm{
		Mode:   Create{},
		Values: map[string]string{"title": "", "description": ""},
		Errors: schema.FieldErrors{},
	}
	if c != nil {
		f.Mode = ModeFor(c.ID)
		f.Values["title"] = c.Title
		f.Values["description"] = c.Description
		f.editing = c.Title
	}
	return f
}

func (f *CategoryForm) IsEdit() bool {
	_, ok := editID(f.Mode)
	return ok
}

// Heading is "Editando: <title>" in edit mode and "Crie uma categoria" otherwise.
func (f *CategoryForm) Heading() string {
	if f.IsEdit() {
		return "Editando: " + f.editing
	}
	return "Crie uma categoria"
}

func (f *CategoryForm) SubmitLabel() string {
	if f.IsEdit() {
		return "Salvar alterações"
	}
	return "Criar categoria"
}

// Action is the URL the form posts to.
func (f *CategoryForm) Action() string { return actionURL("/categories", f.Mode) }

// Method is the htmx verb for the submit.
func (f *CategoryForm) Method() string {
	if f.IsEdit() {
		return "put"
	}
	return "post"
}

func (f *CategoryForm) Value(field string) string { return f.Values[field] }

func (f *CategoryForm) Error(field string) string { return f.Errors.Get(field) }

// CategoryAPI is the part of the API client the category form needs.
type CategoryAPI interface {
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
}

// Invalidator drops cached queries after a successful write.
type Invalidator interface {
	Invalidate(keys ...cache.Key)
}

// Recorder is told about every mutation that reached the API.
type Recorder interface {
	Record(ctx context.Context, m core.Mutation)
}

// CategorySubmitter sends category forms to the API.
type CategorySubmitter struct {
	API      CategoryAPI
	Cache    Invalidator
	Recorder Recorder
	Now      func() time.Time
}

// Submit validates in and creates or updates the category according to the
// form's mode. Validation failures set f.Errors and return ErrValidation
// without calling the API. On success the form is reset to a blank create
// form.
func (s *CategorySubmitter) Submit(ctx context.Context, f *CategoryForm, in schema.Input) (core.Category, error) {
	keepValues(f.Values, in, "title", "description")

	c, errs := schema.Category(in)
	if !errs.Empty() {
		f.Errors = errs
		return core.Category{}, ErrValidation
	}
	f.Errors = schema.FieldErrors{}

	op := core.OperationCreate
	var (
		saved core.Category
		err   error
	)
	if id, ok := editID(f.Mode); ok {
		op = core.OperationUpdate
		c.ID = &id
		saved, err = s.API.UpdateCategory(ctx, c)
	} else {
		c.ID = nil
		saved, err = s.API.CreateCategory(ctx, c)
	}

	m := core.Mutation{
		Resource:  core.ResourceCategory,
		Operation: op,
		EntityID:  firstID(saved.ID, c.ID),
		Title:     c.Title,
		At:        now(s.Now),
	}
	if err != nil {
		s.record(ctx, withOutcome(m, err))
		return core.Category{}, fmt.Errorf("%s category: %w", op, err)
	}

	if s.Cache != nil {
		s.Cache.Invalidate(cache.CategoryMutationKeys...)
	}
	s.record(ctx, withOutcome(m, nil))
	*f = *NewCategoryForm(nil)
	return saved, nil
}

func (s *CategorySubmitter) record(ctx context.Context, m core.Mutation) {
	if s.Recorder != nil {
		s.Recorder.Record(ctx, m)
	}
}

// IsValidation reports whether err came from input validation.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
