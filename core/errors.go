package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return "invalid input"
	}
	return err.Err.Error()
}

// StoreErrorKind tells which side of the Response Store failed.
type StoreErrorKind int

const (
	Unwritable StoreErrorKind = iota + 1
	Unreadable
)

func (k StoreErrorKind) String() string {
	switch k {
	case Unwritable:
		return "unwritable"
	case Unreadable:
		return "unreadable"
	default:
		return "unknown"
	}
}

// StoreError is returned when the backing medium of a store fails.
type StoreError struct {
	Kind    StoreErrorKind
	Backend string
	Err     error
}

func NewStoreError(kind StoreErrorKind, backend string, err error) error {
	return &StoreError{Kind: kind, Backend: backend, Err: err}
}

func (err *StoreError) Error() string {
	return fmt.Sprintf("%s store %s: %v", err.Backend, err.Kind, err.Err)
}

func (err *StoreError) Unwrap() error { return err.Err }

// IsStoreError reports whether err (or any error it wraps) is a StoreError of the given kind.
func IsStoreError(err error, kind StoreErrorKind) bool {
	var sErr *StoreError
	if errors.As(err, &sErr) {
		return sErr.Kind == kind
	}
	return false
}

// SchemaMismatchError reports a stored row that does not match the expected column layout.
// Row is 1-based and counts the header row when there is one.
type SchemaMismatchError struct {
	Row    int
	Reason string
}

func NewSchemaMismatchError(row int, format string, args ...interface{}) error {
	return &SchemaMismatchError{Row: row, Reason: fmt.Sprintf(format, args...)}
}

func (err *SchemaMismatchError) Error() string {
	return fmt.Sprintf("row %d does not match the expected layout: %s", err.Row, err.Reason)
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
