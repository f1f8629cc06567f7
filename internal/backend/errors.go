package backend

import (
	"errors"
	"fmt"
)

// ErrUnavailable is returned by clients that cannot serve an endpoint.
var ErrUnavailable = errors.New("endpoint unavailable")

// HTTPError is a non-2xx response.
type HTTPError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.Status, body)
}

// SchemaError is a response whose envelope does not have the expected
// shape.
type SchemaError struct {
	Path string
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: unexpected response: %v", e.Path, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// APIError is an error the backend reported inside a 2xx envelope, such
// as an unknown question type.
type APIError struct {
	Path    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// StatusCode extracts the HTTP status carried by err: the status of an
// HTTPError, 200 for a nil error or an envelope error, 0 otherwise.
func StatusCode(err error) int {
	if err == nil {
		return 200
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	var apiErr *APIError
	var schemaErr *SchemaError
	if errors.As(err, &apiErr) || errors.As(err, &schemaErr) {
		return 200
	}
	return 0
}
