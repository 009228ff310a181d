// Package apperr carries request-level errors from the core pipeline out to
// the HTTP boundary. Each error has a Kind that fixes the response status;
// Internal errors keep their cause for the server log but present only the
// generic message to clients.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindConsistency
	KindInternal
)

// GenericMessage is the only text an Internal error shows to a client.
const GenericMessage = "Something went wrong. Please try again later."

// AccessForbiddenMessage is shared by every membership check.
const AccessForbiddenMessage = "You do not have access to this project."

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Forbidden() *Error {
	return &Error{Kind: KindForbidden, Message: AccessForbiddenMessage}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Consistency(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConsistency, Message: fmt.Sprintf(format, args...)}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: GenericMessage, Err: err}
}

// Status maps an error to its HTTP status code. Non-apperr errors are
// treated as Internal.
func Status(err error) int {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}

	switch appErr.Kind {
	case KindValidation, KindConsistency:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage returns the text safe to send to the client. Internal
// errors (and anything that is not an *Error) collapse to the generic
// message; the detailed cause belongs in the server log.
func ClientMessage(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Kind == KindInternal {
		return GenericMessage
	}
	return appErr.Message
}
