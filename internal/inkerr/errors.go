// Package inkerr defines the error taxonomy shared by the store, the
// search index, and the task runner. Callers map kinds to their own
// transport-level codes.
package inkerr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers.
type Kind string

const (
	KindNotFound      Kind = "not_found"
	KindAlreadyExists Kind = "already_exists"
	KindInvalidName   Kind = "invalid_name"
	KindInvalidPath   Kind = "invalid_path"
	KindIO            Kind = "io_error"
	KindIndex         Kind = "index_error"
)

// Error is a kinded error. Code defaults to the kind string and is what
// the task runner records as errorCode for failed jobs.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// newError formats the message only; causes are attached explicitly by
// the IO and Index constructors so a cause formatted with %v is never
// printed twice.
func newError(kind Kind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Code:    string(kind),
		Message: fmt.Sprintf(format, args...),
	}
}

// NotFound reports a missing space, document, or task.
func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

// AlreadyExists reports a rename or import target collision.
func AlreadyExists(format string, args ...any) *Error {
	return newError(KindAlreadyExists, format, args...)
}

// InvalidName reports a document basename with illegal characters.
func InvalidName(format string, args ...any) *Error {
	return newError(KindInvalidName, format, args...)
}

// InvalidPath reports a path that escapes its space root.
func InvalidPath(format string, args ...any) *Error {
	return newError(KindInvalidPath, format, args...)
}

// IO wraps an underlying filesystem failure.
func IO(err error, format string, args ...any) *Error {
	e := newError(KindIO, format, args...)
	e.Err = err
	return e
}

// Index wraps a database constraint or transaction failure.
func Index(err error, format string, args ...any) *Error {
	e := newError(KindIndex, format, args...)
	e.Err = err
	return e
}

// KindOf returns the kind of err, or "" for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// CodeOf returns the error code of err, or "" for untyped errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func IsNotFound(err error) bool      { return KindOf(err) == KindNotFound }
func IsAlreadyExists(err error) bool { return KindOf(err) == KindAlreadyExists }
func IsInvalidName(err error) bool   { return KindOf(err) == KindInvalidName }
func IsInvalidPath(err error) bool   { return KindOf(err) == KindInvalidPath }
