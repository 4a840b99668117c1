// Package profiler provides scheme.Profiler implementations which record
// procedure applications as trace spans, pprof labels or callgrind profiles.
package profiler

import (
	"fmt"

	"github.com/luthersystems/scm/scheme"
)

// profiler holds the state shared by annotators.
type profiler struct {
	runtime    *scheme.Runtime
	enabled    bool
	primitives bool
	skipFilter SkipFilter
	funLabeler FunLabeler
}

func (p *profiler) IsEnabled() bool {
	return p.enabled
}

type Option func(*profiler)

func (p *profiler) applyConfigs(opts ...Option) {
	for _, opt := range opts {
		opt(p)
	}
}

func (p *profiler) Enable() error {
	if p.enabled {
		return fmt.Errorf("profiler already enabled")
	}
	p.enabled = true
	return nil
}

// WithPrimitives makes the profiler trace applications of primitive
// procedures, which are skipped by default.
func WithPrimitives() Option {
	return func(p *profiler) {
		p.primitives = true
	}
}

// skipTrace is a helper function to decide whether to skip tracing.
func (p *profiler) skipTrace(proc *scheme.Procedure) bool {
	if !p.enabled {
		return true
	}
	if proc.Kind == scheme.ProcPrimitive && !p.primitives {
		return true
	}
	return p.skipFilter != nil && p.skipFilter(proc)
}

// defaultFunName returns the procedure name, or "lambda" for anonymous
// procedures.
func defaultFunName(proc *scheme.Procedure) string {
	if proc.Name == "" {
		return "lambda"
	}
	return proc.Name
}

// prettyFunName returns the span label and the default name for proc.
func (p *profiler) prettyFunName(proc *scheme.Procedure) (string, string) {
	origLabel := defaultFunName(proc)
	prettyLabel := origLabel
	if p.funLabeler != nil {
		prettyLabel = p.funLabeler(proc)
	}
	if prettyLabel == "" {
		prettyLabel = origLabel
	}
	return prettyLabel, origLabel
}

func procKind(proc *scheme.Procedure) string {
	if proc.Kind == scheme.ProcPrimitive {
		return "primitive"
	}
	return "compound"
}
