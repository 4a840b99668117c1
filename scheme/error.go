// Copyright © 2018 The ELPS authors

package scheme

import (
	"bufio"
	"fmt"
	"io"
)

// ErrorKind classifies evaluation failures.
type ErrorKind uint

// Possible ErrorKind values
const (
	// UnknownError is never produced by the evaluator.
	UnknownError ErrorKind = iota
	// UnboundVariable is produced when a symbol has no binding in any frame
	// and does not name a primitive.
	UnboundVariable
	// UnrecognizedExpression is produced for values that are not a valid
	// expression, including malformed special forms.
	UnrecognizedExpression
	// UnapplicableObject is produced when the operator of an application is
	// not a procedure.
	UnapplicableObject
	// TypeMismatch is produced when a primitive receives an argument of the
	// wrong variant.
	TypeMismatch
	// ArityMismatch is produced when a procedure receives the wrong number
	// of arguments.
	ArityMismatch
	// DivideByZero is produced by division with a zero divisor.
	DivideByZero
	// StackOverflow is produced when nested procedure calls exceed the
	// maximum stack height of the runtime.
	StackOverflow
	// Cancelled is produced when the evaluation context is done.
	Cancelled
)

var errorKindStrings = []string{
	UnknownError:           "error",
	UnboundVariable:        "unbound-variable",
	UnrecognizedExpression: "unrecognized-expression",
	UnapplicableObject:     "unapplicable-object",
	TypeMismatch:           "type-mismatch",
	ArityMismatch:          "arity-mismatch",
	DivideByZero:           "divide-by-zero",
	StackOverflow:          "stack-overflow",
	Cancelled:              "cancelled",
}

func (k ErrorKind) String() string {
	if int(k) >= len(errorKindStrings) {
		return errorKindStrings[UnknownError]
	}
	return errorKindStrings[k]
}

// Sentinel errors for use with errors.Is.  An *Error matches a sentinel when
// their kinds are equal.
var (
	ErrUnboundVariable        = &Error{Kind: UnboundVariable}
	ErrUnrecognizedExpression = &Error{Kind: UnrecognizedExpression}
	ErrUnapplicableObject     = &Error{Kind: UnapplicableObject}
	ErrTypeMismatch           = &Error{Kind: TypeMismatch}
	ErrArityMismatch          = &Error{Kind: ArityMismatch}
	ErrDivideByZero           = &Error{Kind: DivideByZero}
	ErrStackOverflow          = &Error{Kind: StackOverflow}
	ErrCancelled              = &Error{Kind: Cancelled}
)

// Error is the error type returned by evaluation.  Stack holds a copy of the
// call stack at the point the error was raised, if it was raised while
// evaluating inside an environment.
type Error struct {
	Kind  ErrorKind
	Msg   string
	Stack *CallStack
	// Err is an underlying cause, such as the error of a cancelled context.
	Err error
}

func errorf(kind ErrorKind, format string, v ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, v...)}
}

// ErrorMessage returns the message of e without its kind or procedure name.
func (e *Error) ErrorMessage() string {
	if e.Msg == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Msg
}

// Error implements the error interface.  When the error happened inside a
// procedure call the procedure name precedes the message.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.ErrorMessage())
	if name := e.FunName(); name != "" {
		return fmt.Sprintf("%s: %s", name, msg)
	}
	return msg
}

// FunName returns the name of the procedure on top of the attached call stack.
func (e *Error) FunName() string {
	top := e.Stack.Top()
	if top == nil {
		return ""
	}
	return top.Name
}

// Is reports whether target is a sentinel of the same kind as e.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Msg == "" && t.Err == nil
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WriteTrace writes the error and a stack trace to w
func (e *Error) WriteTrace(w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	var n int
	var err error
	wrote := func(_n int, _err error) bool {
		n += _n
		err = _err
		return err == nil
	}
	if !wrote(bw.WriteString(e.Error())) {
		return n, err
	}
	if !wrote(bw.WriteString("\n")) {
		return n, err
	}
	if e.Stack != nil {
		if !wrote(e.Stack.DebugPrint(bw)) {
			return n, err
		}
	}
	return n, bw.Flush()
}
