package http

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"financas/internal/api"
	"financas/internal/core"
	"financas/internal/log"
	"financas/internal/middleware/trace"
)

var templateFuncs = template.FuncMap{
	"brl": core.FormatBRL,
	"id": func(id *int64) string {
		if id == nil {
			return ""
		}
		return strconv.FormatInt(*id, 10)
	},
	// currencyField feeds the currency_field partial from a raw form value.
	// Inside the transaction form the amount error comes from validation.
	"currencyField": func(raw string) currencyField {
		f := newCurrencyField(raw)
		f.Error = ""
		return f
	},
}

// page is the data of every full-page template. Content is the page's own
// payload.
type page struct {
	Title   string
	Active  string
	Content any
}

// render executes the named template into a buffer first, so a failing
// template never leaves a half-written response.
func (s *Server) render(ctx context.Context, name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		fields := log.NewFields().
			WithError(err).
			WithOperation(log.OpRender).
			WithErrorType(log.ErrorTypeInternal)
		fields["template"] = name
		log.FromContext(ctx).WithComponent(log.ComponentTemplate).ErrorContext(ctx, "Template execution failed", fields.ToSlice()...)
		return nil, err
	}
	return buf.Bytes(), nil
}

// write renders name and sends it with status through b.
func (s *Server) write(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder, name string, data any) {
	body, err := s.render(r.Context(), name, data)
	if err != nil {
		msg := "Erro ao renderizar a página"
		if id := trace.GetRequestID(r.Context()); id != "" {
			msg += " (referência " + id + ")"
		}
		InternalServerError(msg).Write(w)
		return
	}
	b.BodyHTML(body).Write(w)
}

// writePage renders a full page with the layout.
func (s *Server) writePage(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	s.write(w, r, NewHTMXResponse().Status(status), name, p)
}

func (s *Server) writeFragment(w http.ResponseWriter, r *http.Request, name string, data any) {
	s.write(w, r, NewHTMXResponse(), name, data)
}

// apiErrorMessage is the text shown to the user when the finance API failed.
func apiErrorMessage(err error) string {
	var se *api.StatusError
	if errors.As(err, &se) {
		return "A API respondeu com erro " + http.StatusText(se.StatusCode) + "."
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "A API não respondeu a tempo."
	}
	return "Não foi possível falar com a API."
}
