// Package form holds the create/edit forms for categories and transactions.
//
// A form is in exactly one Mode, decided once when it is built: Create, or
// Edit with the id of the entity being changed. Submitting validates the
// input, calls the API, invalidates the affected cached queries and records
// the mutation.
package form

import (
	"errors"
	"strconv"
)

// ErrValidation is returned by Submit when the input failed validation.
// The per-field messages are on the form's Errors.
var ErrValidation = errors.New("form: validation failed")

// Mode is either Create or Edit.
type Mode interface {
	isMode()
}

// Create submits a new entity.
type Create struct{}

// Edit submits changes to the entity with ID.
type Edit struct {
	ID int64
}

func (Create) isMode() {}
func (Edit) isMode()   {}

// ModeFor derives the mode from an optional id.
func ModeFor(id *int64) Mode {
	if id == nil {
		return Create{}
	}
	return Edit{ID: *id}
}

// editID returns the id being edited and true, or false in create mode.
func editID(m Mode) (int64, bool) {
	e, ok := m.(Edit)
	return e.ID, ok
}

func actionURL(base string, m Mode) string {
	if id, ok := editID(m); ok {
		return base + "/" + strconv.FormatInt(id, 10)
	}
	return base
}
