package profiler

import (
	"context"
	"errors"

	"github.com/luthersystems/scm/scheme"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	// ContextOpenTelemetryTracerKey looks up a parent tracer name from a context key.
	ContextOpenTelemetryTracerKey = "otelParentTracer"
)

var _ scheme.Profiler = &otelAnnotator{}

type otelAnnotator struct {
	profiler
	currentContext context.Context
	currentSpan    trace.Span
}

// NewOpenTelemetryAnnotator returns a profiler which records a span for each
// procedure application as a child of the span in parentContext.
func NewOpenTelemetryAnnotator(runtime *scheme.Runtime, parentContext context.Context, opts ...Option) scheme.Profiler {
	p := &otelAnnotator{
		profiler: profiler{
			runtime: runtime,
		},
		currentContext: parentContext,
	}
	p.profiler.applyConfigs(opts...)
	return p
}

func (p *otelAnnotator) Enable() error {
	p.runtime.Profiler = p
	if p.currentContext == nil {
		return errors.New("we can only append spans to a context that is linked to opentelemetry")
	}
	return p.profiler.Enable()
}

func (p *otelAnnotator) Complete() error {
	if p.currentSpan != nil {
		p.currentSpan.End()
	}
	return nil
}

func contextTracer(ctx context.Context) trace.Tracer {
	tracerName, ok := ctx.Value(ContextOpenTelemetryTracerKey).(string)
	if !ok {
		tracerName = "scm"
	}
	return otel.GetTracerProvider().Tracer(tracerName)
}

func (p *otelAnnotator) Start(proc *scheme.Procedure) func() {
	if p.skipTrace(proc) {
		return func() {}
	}
	prettyLabel, funName := p.prettyFunName(proc)
	parentContext := p.currentContext
	ctx, span := contextTracer(parentContext).Start(parentContext, prettyLabel,
		trace.WithAttributes(procedureAttributes(proc, funName)...))
	p.currentContext, p.currentSpan = ctx, span
	return func() {
		span.End()
		p.currentContext = parentContext
		p.currentSpan = trace.SpanFromContext(parentContext)
	}
}

// procedureAttributes describes an application of proc.  Compound
// procedures also record their formal parameters and any @trace label in
// their docstring.
func procedureAttributes(proc *scheme.Procedure, funName string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.CodeNamespace("scheme"),
		semconv.CodeFunction(funName),
		attribute.String("scheme.procedure.kind", procKind(proc)),
	}
	if proc.Kind != scheme.ProcCompound {
		return attrs
	}
	attrs = append(attrs, attribute.StringSlice("scheme.procedure.params", proc.Params))
	if label := cleanLabel(proc.Docstring()); label != "" {
		attrs = append(attrs, attribute.String("scheme.procedure.trace_label", label))
	}
	return attrs
}
