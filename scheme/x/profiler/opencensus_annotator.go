package profiler

import (
	"context"
	"errors"

	"github.com/golang-collections/collections/stack"
	"github.com/luthersystems/scm/scheme"
	"go.opencensus.io/trace"
)

var _ scheme.Profiler = &ocAnnotator{}

type ocAnnotator struct {
	profiler
	currentContext context.Context
	currentSpan    *trace.Span
	contexts       *stack.Stack
}

// NewOpenCensusAnnotator returns a profiler which records an opencensus span
// for each procedure application as a child of the span in parentContext.
func NewOpenCensusAnnotator(runtime *scheme.Runtime, parentContext context.Context, opts ...Option) scheme.Profiler {
	p := &ocAnnotator{
		profiler: profiler{
			runtime: runtime,
		},
		currentContext: parentContext,
		contexts:       stack.New(),
	}
	p.profiler.applyConfigs(opts...)
	return p
}

func (p *ocAnnotator) Enable() error {
	p.runtime.Profiler = p
	if p.currentContext == nil {
		return errors.New("we can only append spans to a context that is linked to opencensus")
	}
	return p.profiler.Enable()
}

func (p *ocAnnotator) Complete() error {
	if p.currentSpan != nil {
		p.currentSpan.End()
	}
	return nil
}

func (p *ocAnnotator) Start(proc *scheme.Procedure) func() {
	if p.skipTrace(proc) {
		return func() {}
	}
	prettyLabel, funName := p.prettyFunName(proc)
	p.contexts.Push(p.currentContext)
	p.currentContext, p.currentSpan = trace.StartSpan(p.currentContext, prettyLabel)
	span := p.currentSpan
	return func() {
		span.Annotate([]trace.Attribute{
			trace.StringAttribute("function", funName),
			trace.StringAttribute("kind", procKind(proc)),
			trace.Int64Attribute("params", int64(len(proc.Params))),
		}, "procedure")
		span.End()
		// And pop the current context back
		p.currentContext = p.contexts.Pop().(context.Context)
		p.currentSpan = trace.FromContext(p.currentContext)
	}
}
