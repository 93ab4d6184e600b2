package jsonwriter

import (
	"reflect"

	"github.com/pkg/errors"
)

// Misuse of the builder API. These signal programming errors and are never
// produced by a failing sink.
var (
	// ErrNestedOpen is returned when a builder is used while a child
	// object or array opened from it has not been terminated yet.
	ErrNestedOpen = errors.New("jsonwriter: nested writer still open")
	// ErrClosed is returned when a builder is used after End or Close.
	ErrClosed = errors.New("jsonwriter: writer already closed")
)

// ErrTooDeep is returned for values nested deeper than the encoder allows,
// which in practice means a cycle.
var ErrTooDeep = errors.New("jsonwriter: value nested too deeply")

// WriteError reports that the sink rejected an append. The output written so
// far is syntactically incomplete and should be discarded by the caller.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string { return "jsonwriter: write failed: " + e.Err.Error() }

func (e *WriteError) Unwrap() error { return e.Err }

// UnsupportedTypeError is returned for values with no JSON encoding.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	if e.Type == nil {
		return "jsonwriter: unsupported type"
	}
	return "jsonwriter: unsupported type " + e.Type.String()
}

// AsWriteError extracts a WriteError from an error chain.
func AsWriteError(err error) (*WriteError, bool) {
	if err == nil {
		return nil, false
	}
	var we *WriteError
	if errors.As(err, &we) {
		return we, true
	}
	return nil, false
}

// wrapWrite wraps a raw sink error once; errors that already carry a
// WriteError pass through unchanged.
func wrapWrite(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsWriteError(err); ok {
		return err
	}
	return &WriteError{Err: err}
}
