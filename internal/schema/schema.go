// Package schema validates and normalizes candidate Category and Transaction
// records coming from forms or JSON bodies.
//
// Coercion runs first (numeric strings to integers, date strings to dates,
// checkbox values to booleans); declarative constraints are then checked with
// the validate struct tags declared on the core types.
package schema

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"financas/internal/core"
)

// Input is a candidate record keyed by field name. Values are strings when
// built from a form and arbitrary JSON values when decoded from a body.
type Input map[string]any

// FromForm builds an Input from url.Values, keeping the first value per key.
func FromForm(form url.Values) Input {
	in := make(Input, len(form))
	for k, v := range form {
		if len(v) > 0 {
			in[k] = v[0]
		}
	}
	return in
}

// FromJSON decodes a JSON object into an Input. Numbers keep their literal text.
func FromJSON(body []byte) (Input, error) {
	in := Input{}
	dec := json.NewDecoder(strings.NewReader(string(body)))
	dec.UseNumber()
	if err := dec.Decode(&in); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	return in, nil
}

// String returns the textual form of a field and whether it was present.
func (in Input) String(key string) (string, bool) {
	v, ok := in[key]
	if !ok || v == nil {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), true
	case json.Number:
		return val.String(), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return fmt.Sprint(val), true
	}
}

// FieldErrors maps a field name to the message shown beneath its input.
type FieldErrors map[string]string

// Add keeps the first message reported for a field.
func (fe FieldErrors) Add(field, msg string) {
	if _, exists := fe[field]; !exists {
		fe[field] = msg
	}
}

func (fe FieldErrors) Get(field string) string { return fe[field] }

func (fe FieldErrors) Empty() bool { return len(fe) == 0 }

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for k, v := range fe {
		parts = append(parts, k+": "+v)
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}

const (
	msgRequired = "Campo obrigatório"
	msgNumber   = "Deve ser um número inteiro"
	msgDate     = "Data inválida"
	msgBool     = "Valor inválido"
	msgMovement = "Escolha entrada ou saída"
	msgCategory = "Selecione uma categoria"
	msgNegative = "O valor não pode ser negativo"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names so errors line up with form field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Category validates a candidate category.
func Category(in Input) (core.Category, FieldErrors) {
	errs := FieldErrors{}
	var c core.Category

	c.ID = optionalID(in, "id", errs)
	c.Title, _ = in.String("title")
	c.Description, _ = in.String("description")

	checkStruct(c, errs)
	if !errs.Empty() {
		return core.Category{}, errs
	}
	return c, nil
}

// Transaction validates a candidate transaction and applies defaults
// (isFixed=false, isPaid=false) for absent flags.
func Transaction(in Input) (core.Transaction, FieldErrors) {
	errs := FieldErrors{}
	var t core.Transaction

	t.ID = optionalID(in, "id", errs)

	if s, ok := in.String("categoryId"); ok && s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			errs.Add("categoryId", msgCategory)
		}
		t.CategoryID = id
	}

	t.Title, _ = in.String("title")

	if s, ok := in.String("movement"); ok && s != "" {
		m, err := core.ParseMovement(s)
		if err != nil {
			errs.Add("movement", msgMovement)
		}
		t.Movement = m
	}

	if s, ok := in.String("valueInCents"); ok && s != "" {
		cents, err := coerceCents(s)
		if err != nil {
			errs.Add("valueInCents", msgNumber)
		}
		t.ValueInCents = cents
	}

	t.Date = optionalDate(in, "date", errs)
	t.DueDate = optionalDate(in, "dueDate", errs)
	t.IsFixed = optionalBool(in, "isFixed", errs)
	t.IsPaid = optionalBool(in, "isPaid", errs)

	if raw, ok := in["category"].(map[string]any); ok {
		if c, cerrs := Category(Input(raw)); cerrs.Empty() {
			t.Category = &c
		}
	}

	checkStruct(t, errs)
	if !errs.Empty() {
		return core.Transaction{}, errs
	}
	return t, nil
}

// coerceCents accepts a plain integer ("1234") or masked currency text
// ("R$ 12,34"), both meaning minor units.
func coerceCents(s string) (int64, error) {
	if strings.HasPrefix(s, "R$") {
		return core.MaskedToCents(s)
	}
	return core.ParseCents(s)
}

func optionalID(in Input, key string, errs FieldErrors) *int64 {
	s, ok := in.String(key)
	if !ok || s == "" {
		return nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		errs.Add(key, msgNumber)
		return nil
	}
	return &id
}

func optionalDate(in Input, key string, errs FieldErrors) *core.Date {
	s, ok := in.String(key)
	if !ok || s == "" {
		return nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		errs.Add(key, msgDate)
		return nil
	}
	return &d
}

func optionalBool(in Input, key string, errs FieldErrors) bool {
	s, ok := in.String(key)
	if !ok {
		return false
	}
	switch strings.ToLower(s) {
	case "on", "true", "1", "yes", "sim":
		return true
	case "", "off", "false", "0", "no", "não":
		return false
	default:
		errs.Add(key, msgBool)
		return false
	}
}

func checkStruct(v any, errs FieldErrors) {
	err := validate.Struct(v)
	if err == nil {
		return
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.Add("_", err.Error())
		return
	}
	for _, fe := range verrs {
		errs.Add(fe.Field(), message(fe))
	}
}

func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "categoryId":
		return msgCategory
	case "movement":
		if fe.Tag() == "oneof" || fe.Tag() == "required" {
			return msgMovement
		}
	case "valueInCents":
		if fe.Tag() == "gte" {
			return msgNegative
		}
	}
	switch fe.Tag() {
	case "required":
		return msgRequired
	default:
		return "Valor inválido"
	}
}
