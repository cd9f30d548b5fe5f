// Package apperror carries the error kinds that services return and that the
// HTTP layer turns into status codes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindLimitExceeded Kind = "limit_exceeded"
	KindBusinessRule  Kind = "business_rule"
	KindForbidden     Kind = "forbidden"
	KindConflict      Kind = "conflict"
	KindStoreTimeout  Kind = "store_timeout"
	KindInternal      Kind = "internal"
)

var statusByKind = map[Kind]int{
	KindValidation:    http.StatusBadRequest,
	KindNotFound:      http.StatusNotFound,
	KindLimitExceeded: http.StatusBadRequest,
	KindBusinessRule:  http.StatusBadRequest,
	KindForbidden:     http.StatusForbidden,
	KindConflict:      http.StatusConflict,
	KindStoreTimeout:  http.StatusRequestTimeout,
	KindInternal:      http.StatusInternalServerError,
}

// Error is a classified failure. Details is serialized to the client as-is,
// Err is only for logs.
type Error struct {
	Kind    Kind
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) HTTPStatus() int {
	if code, ok := statusByKind[e.Kind]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

func LimitExceeded(format string, args ...any) *Error {
	return New(KindLimitExceeded, format, args...)
}

func BusinessRule(format string, args ...any) *Error {
	return New(KindBusinessRule, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return New(KindForbidden, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return New(KindConflict, format, args...)
}

func StoreTimeout(err error) *Error {
	return Wrap(KindStoreTimeout, err, "the database did not respond in time, please retry")
}

// As unwraps err into an *Error when one is in the chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// KindOf reports the kind of err, KindInternal for unclassified errors.
func KindOf(err error) Kind {
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return KindInternal
}
