// Package errors tags failures with the operation that produced them and a
// coarse kind, so callers can branch on the kind without parsing messages.
package errors

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
)

// Op names the operation that failed, "package.Type.Method" or
// "package.function".
type Op string

// Kind classifies an Error.
type Kind uint16

const (
	KindOther Kind = iota + 1
	KindInternal
	KindBadInput
	// KindConfiguration is a fatal misconfiguration detected before any I/O.
	KindConfiguration
	// KindConnection is a failure reported by the database connection.
	KindConnection
	// KindDryRunSuppressed marks a failure that dry-run mode downgrades to an
	// empty result. It is logged, never returned.
	KindDryRunSuppressed
)

var kindNames = map[Kind]string{
	KindOther:            "other error",
	KindInternal:         "internal error",
	KindBadInput:         "bad input",
	KindConfiguration:    "configuration error",
	KindConnection:       "connection error",
	KindDryRunSuppressed: "error suppressed by dry run",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown error kind"
}

// Location is the source position E was called from.
type Location struct {
	File string
	Line int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Error is the error type built by E. Its message is the message of the
// wrapped error; Op and Kind are metadata.
type Error struct {
	Op       Op
	Kind     Kind
	Err      error
	Location Location
}

var _ error = (*Error)(nil)

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds an *Error for op out of args. A Kind sets the kind, an error is
// wrapped and a string becomes the wrapped error's message. Anything else is
// ignored and logged at debug level.
func E(op Op, args ...interface{}) error {
	_, file, line, _ := runtime.Caller(1)
	e := &Error{Op: op, Location: Location{File: file, Line: line}}
	for _, arg := range args {
		switch v := arg.(type) {
		case Kind:
			e.Kind = v
		case error:
			e.Err = v
		case string:
			e.Err = errors.New(v)
		default:
			logrus.Debugf("errors.E: ignoring argument %#v for %s at %s:%d", v, op, file, line)
		}
	}
	return e
}

// GetKind returns the kind of the outermost *Error in err's chain that has
// one, KindOther when there is none.
func GetKind(err error) Kind {
	for {
		var e *Error
		if !errors.As(err, &e) {
			return KindOther
		}
		if e.Kind != 0 {
			return e.Kind
		}
		err = e.Err
	}
}

func IsKind(want Kind, err error) bool {
	return GetKind(err) == want
}

// Ops lists the operations of every *Error in err's chain, outermost first.
func Ops(err error) []Op {
	var ops []Op
	for {
		var e *Error
		if !errors.As(err, &e) {
			return ops
		}
		ops = append(ops, e.Op)
		err = e.Err
	}
}

// GetLocation returns where the innermost *Error in err's chain was built.
func GetLocation(err error) Location {
	var loc Location
	for {
		var e *Error
		if !errors.As(err, &e) {
			return loc
		}
		loc = e.Location
		err = e.Err
	}
}

// Is, As and New are re-exported so callers importing this package under the
// name errors keep the standard helpers.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target interface{}) bool { return errors.As(err, target) }

func New(text string) error { return errors.New(text) }
