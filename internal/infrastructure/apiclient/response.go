// Package apiclient is the REST client used by the third-party integrations.
// Every call returns a Response envelope; transport failures, non-2xx status
// codes and undecodable bodies are all reported through Response.Error.
package apiclient

import (
	"errors"
)

// Response is the {success, data, error} envelope.
// Build it with Ok or Fail.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Ok wraps a successful result
func Ok[T any](data T) Response[T] {
	return Response[T]{Success: true, Data: data}
}

// Fail wraps an error message. An empty message becomes "Request failed".
func Fail[T any](message string) Response[T] {
	if message == "" {
		message = "Request failed"
	}
	return Response[T]{Error: message}
}

// Err returns nil on success and the envelope error otherwise
func (r Response[T]) Err() error {
	if r.Success {
		return nil
	}
	return errors.New(r.Error)
}

// Unwrap returns the data or the envelope error
func (r Response[T]) Unwrap() (T, error) {
	return r.Data, r.Err()
}
