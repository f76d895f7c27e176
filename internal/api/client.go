// Package api is the HTTP client of the external finance API.
//
// Every call is a single request: no retries, no backoff and, unless the
// caller configures one on the *http.Client, no timeout. Failures are returned
// to the caller unchanged apart from wrapping.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"financas/internal/log"
)

// ErrMissingID is returned when an update is attempted on an entity the API
// never assigned an id to.
var ErrMissingID = errors.New("api: update requires an id")

// ErrUnexpectedShape is returned when a response object carries none of the
// fields a resource is read from.
var ErrUnexpectedShape = errors.New("api: unexpected response shape")

// StatusError reports a non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// maxErrorBody bounds how much of an error response ends up in StatusError.
const maxErrorBody = 512

// Client talks to the finance API rooted at baseURL.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

// New builds a client. A nil httpClient means http.DefaultClient.
func New(baseURL string, httpClient *http.Client, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger.WithComponent(log.ComponentAPI),
	}
}

// do sends one request and returns the raw response body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "API request failed",
			log.FieldMethod, method, log.FieldPath, path, log.FieldError, err.Error())
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", method, path, err)
	}

	c.logger.DebugContext(ctx, "API request completed",
		log.FieldMethod, method,
		log.FieldPath, path,
		log.FieldStatusCode, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := strings.TrimSpace(string(data))
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return nil, &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: text}
	}
	return data, nil
}

// Ping checks that the API answers at all. Any HTTP response, even 404,
// counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("build ping: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ping %s: %w", c.baseURL, err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return &StatusError{Method: http.MethodHead, Path: "/", StatusCode: resp.StatusCode}
	}
	return nil
}

func idPath(resource string, id *int64) (string, error) {
	if id == nil {
		return "", ErrMissingID
	}
	return "/" + resource + "/" + strconv.FormatInt(*id, 10), nil
}
