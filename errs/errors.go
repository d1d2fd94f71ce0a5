// Package errs provides the single structured error family used by the codec.
//
// Every failure raised while reading or writing a graph is an *Error carrying a
// machine-readable Code, so callers can branch on the failure kind:
//
//	if errs.Is(err, errs.CodeReference) {
//	    // input referenced an @id that was never defined
//	}
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

const (
	// CodeDecode reports malformed input text or an invalid element shape.
	CodeDecode Code = "DECODE"
	// CodeType reports a type name that cannot be resolved.
	CodeType Code = "TYPE"
	// CodeShape reports a codec input missing its expected value field.
	CodeShape Code = "SHAPE"
	// CodeReference reports a reference to an identity never defined.
	CodeReference Code = "REFERENCE"
	// CodeConversion reports a value that cannot be coerced to the target type.
	CodeConversion Code = "CONVERSION"
	// CodeInstantiation reports that no construction strategy produced an instance.
	CodeInstantiation Code = "INSTANTIATION"
	// CodeEncode reports a failure while emitting JSON.
	CodeEncode Code = "ENCODE"
	// CodeConfig reports invalid reader or writer configuration.
	CodeConfig Code = "CONFIG"
)

// Error is a structured error with a code, optional cause and source position.
type Error struct {
	Code    Code
	Message string
	Cause   error
	Line    int
	Col     int
	Snippet string
}

// Error implements the error interface.
func (e *Error) Error() string {
	sb := strings.Builder{}
	sb.WriteString(string(e.Code))
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf(" (line: %d, col: %d)", e.Line, e.Col))
	}
	if e.Snippet != "" {
		sb.WriteString("\nLast read: ")
		sb.WriteString(e.Snippet)
	}
	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an error with the given code and formatted message.
func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps cause with a code and message. A cause that already is an *Error
// keeps its own code and position unless it is decorated further by the caller.
func Wrap(code Code, cause error, format string, args ...interface{}) *Error {
	if cause == nil {
		return New(code, format, args...)
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// As returns err as *Error, wrapping foreign errors with the supplied code.
func As(code Code, err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Code: code, Message: err.Error()}
}

// WithPosition sets the source position when none has been recorded yet.
func (e *Error) WithPosition(line, col int) *Error {
	if e.Line == 0 {
		e.Line = line
		e.Col = col
	}
	return e
}

// WithSnippet sets the last read input fragment.
func (e *Error) WithSnippet(snippet string) *Error {
	if e.Snippet == "" {
		e.Snippet = snippet
	}
	return e
}

// Is reports whether any error in err's chain carries the given code.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode returns the outermost code, or empty when err is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
