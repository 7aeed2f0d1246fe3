// Package apierr classifies errors returned by handlers so the central
// responder can map them to an HTTP status and a client-safe message.
package apierr

import (
	"errors"
	"net/http"

	"github.com/dalemusser/portfolio/internal/domain/models"
)

// Kind is the category of a failure as seen by the client.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindBadRequest
	KindConflict
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindTooManyRequests
)

// Status returns the HTTP status code for k. A conflict is reported as
// 400 to match what existing clients already handle.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindBadRequest, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Message is safe to show to clients; Err
// is the underlying cause and is only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status is shorthand for e.Kind.Status().
func (e *Error) Status() int { return e.Kind.Status() }

func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func BadRequest(message string) *Error {
	return &Error{Kind: KindBadRequest, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func TooManyRequests(message string) *Error {
	return &Error{Kind: KindTooManyRequests, Message: message}
}

// Internal wraps an unexpected failure. The client only sees
// "Server Error".
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Server Error", Err: err}
}

// Classify turns any error into an *Error. Model validation failures
// become KindValidation with their field detail; anything unrecognised is
// KindInternal.
func Classify(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		return &Error{Kind: KindValidation, Message: ve.Error(), Fields: ve.Fields, Err: err}
	}
	return Internal(err)
}
