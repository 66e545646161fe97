// Package apperr defines the error taxonomy shared by the domain services and
// the HTTP layer. Services wrap one of the sentinels with context using %w;
// handlers classify with errors.Is.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation marks malformed or missing caller input. Never retried.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a referenced id or name that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable marks a connection or transient store failure.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Validation returns an error wrapping ErrValidation with a caller-facing message.
func Validation(format string, args ...interface{}) error {
	return &classified{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

// NotFound returns an error wrapping ErrNotFound with a caller-facing message.
func NotFound(format string, args ...interface{}) error {
	return &classified{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

// Store wraps a driver error as ErrStoreUnavailable, keeping the cause in the chain.
// A nil err yields nil. Errors already classified are returned unchanged.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return &classified{kind: ErrStoreUnavailable, msg: op, cause: err}
}

type classified struct {
	kind  error
	msg   string
	cause error
}

func (e *classified) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.cause)
	}
	return e.msg
}

// Is reports the sentinel kind so errors.Is works without exposing the type.
func (e *classified) Is(target error) bool { return target == e.kind }

func (e *classified) Unwrap() error { return e.cause }

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text placed in the {"error": ...} body. Store failures
// are not echoed verbatim to callers.
func Message(err error) string {
	var c *classified
	if errors.As(err, &c) && c.kind != ErrStoreUnavailable {
		return c.msg
	}
	if errors.Is(err, ErrStoreUnavailable) {
		return ErrStoreUnavailable.Error()
	}
	return http.StatusText(http.StatusInternalServerError)
}
