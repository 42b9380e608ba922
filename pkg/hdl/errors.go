package hdl

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies compilation failures.
type ErrorKind int

const (
	// IOError: a source or included file cannot be read.
	IOError ErrorKind = iota
	// SyntaxError: a token of the wrong kind where a specific one was required.
	SyntaxError
	// SemanticError: well-formed input that violates a declaration or binding rule.
	SemanticError
)

func (k ErrorKind) String() string {
	switch k {
	case IOError:
		return "I/O error"
	case SyntaxError:
		return "syntax error"
	default:
		return "semantic error"
	}
}

// ErrCircularInclude is wrapped by the error returned when a file includes
// itself, directly or through other files.
var ErrCircularInclude = errors.New("circular include")

// Error is a fatal compilation error tagged with its source location.
type Error struct {
	Kind ErrorKind
	File string
	Line int
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	loc := e.File
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.File, e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", loc, e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", loc, e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func ioError(file string, err error, format string, args ...interface{}) *Error {
	return &Error{
		Kind: IOError,
		File: file,
		Msg:  fmt.Sprintf(format, args...),
		Err:  errors.WithStack(err),
	}
}

func syntaxError(file string, line int, format string, args ...interface{}) *Error {
	return &Error{Kind: SyntaxError, File: file, Line: line, Msg: fmt.Sprintf(format, args...)}
}

func semanticError(file string, line int, format string, args ...interface{}) *Error {
	return &Error{Kind: SemanticError, File: file, Line: line, Msg: fmt.Sprintf(format, args...)}
}
