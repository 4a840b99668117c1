// Copyright © 2018 The ELPS authors

// Package diagnostic renders evaluation and syntax errors as annotated
// terminal output.
package diagnostic

import (
	"errors"

	"github.com/luthersystems/scm/parser"
	"github.com/luthersystems/scm/scheme"
)

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// Span identifies a source line to show in the diagnostic.
type Span struct {
	File  string // path for reading source; display name if unreadable
	Line  int    // 1-based line number, 0 when unknown
	Label string // text shown after the underline
}

// Diagnostic is a single error, warning, or note with optional source
// annotations and trailing notes.
type Diagnostic struct {
	Severity Severity
	// Code classifies the diagnostic, e.g. the kind of an evaluation error.
	Code    string
	Message string
	Spans   []Span
	Notes   []string
}

// FromError converts err into a Diagnostic.  Evaluation errors list the
// procedures on their call stack as notes, innermost first.  Syntax errors
// refer to the source line they were found on.
func FromError(err error) Diagnostic {
	d := Diagnostic{
		Severity: SeverityError,
		Message:  err.Error(),
	}
	var serr *scheme.Error
	var perr *parser.Error
	switch {
	case errors.As(err, &serr):
		d.Code = serr.Kind.String()
		d.Message = serr.ErrorMessage()
		if name := serr.FunName(); name != "" {
			d.Message = name + ": " + d.Message
		}
		if serr.Stack != nil {
			for i := len(serr.Stack.Frames) - 1; i >= 0; i-- {
				d.Notes = append(d.Notes, "in "+serr.Stack.Frames[i].String())
			}
		}
	case errors.As(err, &perr):
		d.Code = "syntax"
		d.Message = perr.Msg
		if perr.Source != "" {
			d.Spans = append(d.Spans, Span{File: perr.Source, Line: perr.Line})
		}
	}
	return d
}
