package profiler

import (
	"strings"

	"github.com/luthersystems/scm/scheme"
)

// SkipFilter returns true for procedures which should not be traced.
type SkipFilter func(proc *scheme.Procedure) bool

// WithDocFilter filters to only include spans for procedures with
// docstrings that denote tracing.
func WithDocFilter() Option {
	return WithSkipFilter(docSkipFilter)
}

// WithSkipFilter sets the filter for tracing spans.
func WithSkipFilter(skipFilter SkipFilter) Option {
	return func(p *profiler) {
		p.skipFilter = skipFilter
	}
}

// DocTrace is a magic string used to enable tracing in a profiler
// configured WithDocFilter.  All procedures with a docstring that contains
// this string will be traced.
const DocTrace = "@trace"

func docSkipFilter(proc *scheme.Procedure) bool {
	return !strings.Contains(proc.Docstring(), DocTrace)
}
