// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing HTTP request data into the
// candidate records the form layer validates.

package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"financas/internal/schema"
)

// maxBodyBytes caps form and JSON bodies; both records are tiny.
const maxBodyBytes = 64 << 10

var errInvalidID = errors.New("invalid id")

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	input       schema.Input
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
		if p.err == nil && len(p.body) > maxBodyBytes {
			p.err = fmt.Errorf("request body exceeds %d bytes", maxBodyBytes)
		}
	}
	return p
}

// Parse decodes the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.input = schema.Input{}
		return nil
	}

	if p.IsJSON() {
		p.input, p.err = schema.FromJSON(p.body)
		return p.err
	}

	values, err := url.ParseQuery(string(p.body))
	if err != nil {
		p.err = err
		return err
	}
	for k, vs := range values {
		for i := range vs {
			vs[i] = sanitizeInput(vs[i])
		}
		values[k] = vs
	}
	p.input = schema.FromForm(values)
	return nil
}

// Input returns the parsed record. Call Parse first.
func (p *RequestBodyParser) Input() schema.Input {
	if p.input == nil {
		return schema.Input{}
	}
	return p.input
}

// IsJSON reports whether the body is JSON, by header or by its first byte.
func (p *RequestBodyParser) IsJSON() bool {
	if strings.HasPrefix(strings.ToLower(p.contentType), "application/json") {
		return true
	}
	trimmed := strings.TrimSpace(string(p.body))
	return strings.HasPrefix(trimmed, "{")
}

// ParseInput reads r's body into a schema.Input.
func ParseInput(r *http.Request) (schema.Input, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return nil, err
	}
	return p.Input(), nil
}

// pathID reads the {id} route variable.
func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", errInvalidID, raw)
	}
	return id, nil
}
