package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure to load or run a program.
type Kind uint

const (
	Undefined = Kind(iota)
	MalformedLine
	OpcodeTableExhausted
	StackUnderflow
	InputExhausted
	DivideByZero
	OperandMissing
	TypeMismatch
	AddressOutOfRange
	InvalidInput
)

var kindNames = [...]string{
	Undefined:            "Undefined",
	MalformedLine:        "MalformedLine",
	OpcodeTableExhausted: "OpcodeTableExhausted",
	StackUnderflow:       "StackUnderflow",
	InputExhausted:       "InputExhausted",
	DivideByZero:         "DivideByZero",
	OperandMissing:       "OperandMissing",
	TypeMismatch:         "TypeMismatch",
	AddressOutOfRange:    "AddressOutOfRange",
	InvalidInput:         "InvalidInput",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint(k))
}

// ExitCode is the process status reported for a failure of this kind.
func (k Kind) ExitCode() int {
	return int(k) + 1
}

type kindError struct {
	kind Kind
	line int
	err  error
}

func (e *kindError) Error() string {
	if e.line > 0 {
		return fmt.Sprintf("line %d: %s", e.line, e.err)
	}
	return e.err.Error()
}

func (e *kindError) Unwrap() error {
	return e.err
}

func (e *kindError) Extend(message string) error {
	return &kindError{kind: e.kind, line: e.line, err: errors.Wrap(e.err, message)}
}

func (k Kind) New(msg string) error {
	return &kindError{kind: k, err: errors.New(msg)}
}

func (k Kind) Errorf(msg string, args ...interface{}) error {
	return &kindError{kind: k, err: errors.Errorf(msg, args...)}
}

func (k Kind) Wrap(err error, msg string) error {
	return &kindError{kind: k, err: errors.Wrap(err, msg)}
}

func (k Kind) Wrapf(err error, msg string, args ...interface{}) error {
	return &kindError{kind: k, err: errors.Wrapf(err, msg, args...)}
}

// AtLine attaches a 1-based source line to err. A line already attached wins.
func AtLine(err error, line int) error {
	if err == nil {
		return nil
	}
	var ke *kindError
	if errors.As(err, &ke) {
		if ke.line > 0 {
			return err
		}
		return &kindError{kind: ke.kind, line: line, err: ke.err}
	}
	return &kindError{kind: Undefined, line: line, err: err}
}

// KindOf returns the kind carried by err or Undefined.
func KindOf(err error) Kind {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return Undefined
}

// LineOf returns the source line attached to err, zero if none.
func LineOf(err error) int {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.line
	}
	return 0
}

func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return KindOf(err).ExitCode()
}
