package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a request-terminating failure so handlers can map it to a
// status code without inspecting error strings.
type Kind int

const (
	KindValidation Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindUpstream
	KindPersistence
)

// Error carries a failure kind plus a user-facing message and an optional
// wrapped cause (exposed as `detail` in responses).
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

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error   { return &Error{Kind: KindValidation, Message: msg} }
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }
func Forbidden(msg string) *Error    { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }

func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

func Persistence(msg string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: msg, Err: err}
}

// Status returns the HTTP status for err. Unclassified errors are treated as
// persistence-level server errors.
func Status(err error) int {
	var ae *Error
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError
	}
	switch ae.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Body returns the JSON error body for err: always an `error` field, plus
// `detail` when a wrapped cause exists.
func Body(err error) map[string]interface{} {
	var ae *Error
	if !errors.As(err, &ae) {
		return map[string]interface{}{"error": "internal error"}
	}
	body := map[string]interface{}{"error": ae.Message}
	if ae.Err != nil {
		body["detail"] = ae.Err.Error()
	}
	return body
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, k Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == k
}
