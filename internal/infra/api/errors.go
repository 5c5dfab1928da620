package api

import (
	"fmt"
	"net/http"
)

// NetworkError means no usable response reached the client: DNS/connect
// failure, dropped connection, or the fixed request timeout expiring.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError means a response arrived with a non-2xx status.
type HTTPError struct {
	Status int
	Body   []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, string(e.Body))
}

// Unauthorized reports whether the backend rejected the bearer token.
func (e *HTTPError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// NotFound reports whether the endpoint is absent, which several callers
// reinterpret as a benign "feature not implemented" state.
func (e *HTTPError) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// DecodeError means the response body did not match the endpoint's shape,
// either as malformed JSON or as a validation failure on the decoded DTO.
// Callers treat it like a NetworkError (fail-safe default).
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
