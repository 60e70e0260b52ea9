// Package apperr defines the operational error taxonomy shared by all
// components. Every expected failure (bad input, missing entity, lost race)
// is one of these kinds; anything else is treated as a server fault and
// never leaks detail to the client.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
	KindInternal
)

// Error is an operational error carrying the HTTP status and machine code
// the boundary layer maps it to.
type Error struct {
	Kind    Kind
	Message string
	Code    string // machine code, e.g. "not_found"
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Code: "validation_error"}
}

func Auth(message, code string) *Error {
	if code == "" {
		code = "unauthorized"
	}
	return &Error{Kind: KindAuth, Message: message, Code: code}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message, Code: "forbidden"}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message, Code: "not_found"}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message, Code: "conflict"}
}

// DuplicateKey marks conflicts surfaced by a storage-level unique index
// rather than an application check.
func DuplicateKey(message string) *Error {
	return &Error{Kind: KindConflict, Message: message, Code: "duplicate_key"}
}

func Internal(message string) *Error {
	return &Error{Kind: KindInternal, Message: message, Code: "server_error"}
}

// As unwraps err into an *Error if it is one.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
