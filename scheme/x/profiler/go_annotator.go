package profiler

import (
	"context"
	"runtime/pprof"

	"github.com/luthersystems/scm/scheme"
)

// pprofAnnotator labels the current goroutine with the procedure being
// applied so CPU profiles taken with pprof can be broken down by scheme
// procedure.  It does not start pprof itself.  The pprof sampling rate is
// fixed at 100Hz, so short programs produce few labelled samples.
type pprofAnnotator struct {
	profiler
	currentContext context.Context
}

var _ scheme.Profiler = &pprofAnnotator{}

func NewPprofAnnotator(runtime *scheme.Runtime, parentContext context.Context, opts ...Option) *pprofAnnotator {
	p := &pprofAnnotator{
		profiler: profiler{
			runtime: runtime,
		},
		currentContext: parentContext,
	}
	p.profiler.applyConfigs(opts...)
	return p
}

func (p *pprofAnnotator) Enable() error {
	p.runtime.Profiler = p
	if p.currentContext == nil {
		p.currentContext = context.Background()
	}
	return p.profiler.Enable()
}

func (p *pprofAnnotator) Complete() error {
	pprof.SetGoroutineLabels(context.Background())
	return nil
}

// Context returns the context carrying the labels of the innermost traced
// application.
func (p *pprofAnnotator) Context() context.Context {
	return p.currentContext
}

func (p *pprofAnnotator) Start(proc *scheme.Procedure) func() {
	if p.skipTrace(proc) {
		return func() {}
	}
	// Contexts are kept on the Go stack through the returned closure instead
	// of pprof.Do, which would need the evaluator to run inside a callback.
	oldContext := p.currentContext
	prettyLabel, _ := p.prettyFunName(proc)
	p.currentContext = pprof.WithLabels(p.currentContext, pprof.Labels(
		"function", prettyLabel,
		"kind", procKind(proc),
	))
	pprof.SetGoroutineLabels(p.currentContext)

	return func() {
		p.currentContext = oldContext
		pprof.SetGoroutineLabels(oldContext)
	}
}
