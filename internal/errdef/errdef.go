package errdef

import (
	"errors"
	"fmt"
)

// Code classifies an error for recovery decisions. Every code in this
// package is locally recoverable; nothing here should terminate the process.
type Code string

const (
	CodeUnknown       Code = "unknown"
	CodeInvalidParent Code = "invalid_parent"
	CodeCyclicMove    Code = "cyclic_move"
	CodeOrphan        Code = "orphan_reference"
	CodePersistence   Code = "persistence"
	CodeFilesystem    Code = "filesystem"
	CodeImport        Code = "import"
)

type Error struct {
	code Code
	msg  string
	err  error
}

func (e *Error) Error() string {
	switch {
	case e.msg != "" && e.err != nil:
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	default:
		return string(e.code)
	}
}

func (e *Error) Unwrap() error {
	return e.err
}

// New builds a coded error from a format string.
func New(code Code, format string, args ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and context message to an underlying error.
// A nil err yields nil so call sites can wrap unconditionally.
func Wrap(code Code, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{code: code, msg: msg, err: err}
}

// CodeOf returns the code carried by err, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return CodeUnknown
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// Message returns a short user-facing message for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.msg != "" {
		return e.msg
	}
	return err.Error()
}
