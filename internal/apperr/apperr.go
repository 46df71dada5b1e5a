// Package apperr defines semantic error kinds shared by the application
// services and mapped to HTTP statuses at the edge.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is a sentinel category. Use errors.Is(err, apperr.NotFound).
type Kind interface {
	error
	isKind()
}

type kind struct{ name string }

func (k kind) Error() string { return k.name }
func (kind) isKind()         {}

func NewKind(name string) Kind { return kind{name: name} }

var (
	BadRequest   = NewKind("BAD_REQUEST")
	Unauthorized = NewKind("UNAUTHORIZED")
	Forbidden    = NewKind("FORBIDDEN")
	NotFound     = NewKind("NOT_FOUND")
	Gone         = NewKind("GONE")
	TooLarge     = NewKind("TOO_LARGE")
	RateLimited  = NewKind("RATE_LIMITED")
	Upstream     = NewKind("UPSTREAM")
	Internal     = NewKind("INTERNAL")
)

// Error carries a kind, a client facing message, optional details and an
// optional cause.
type Error struct {
	kind    Kind
	msg     string
	details string
	err     error
}

func New(k Kind, msg string) *Error {
	return &Error{kind: k, msg: msg}
}

func Newf(k Kind, format string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(format, args...)}
}

func Wrap(k Kind, err error, msg string) *Error {
	return &Error{kind: k, msg: msg, err: err}
}

// WithDetails attaches a client visible detail string.
func (e *Error) WithDetails(details string) *Error {
	e.details = details
	return e
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	case e.kind != nil:
		return e.kind.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	return e.kind != nil && errors.Is(e.kind, target)
}

func (e *Error) Kind() Kind      { return e.kind }
func (e *Error) Message() string { return e.msg }
func (e *Error) Details() string { return e.details }

// KindOf returns the kind of the first *Error in err's chain, Internal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) && e.kind != nil {
		return e.kind
	}
	return Internal
}

// Public returns the message and details safe to show a client. Errors
// without a semantic wrapper yield a generic message.
func Public(err error) (string, string) {
	var e *Error
	if errors.As(err, &e) {
		msg := e.msg
		if msg == "" {
			msg = e.kind.Error()
		}
		return msg, e.details
	}
	return "Internal server error", ""
}
