package profiler_test

import (
	"context"
	"testing"

	"github.com/luthersystems/scm/parser"
	"github.com/luthersystems/scm/scheme"
	"github.com/luthersystems/scm/scheme/x/profiler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const testSource = `
(define (square x) (* x x))
(define (sum-squares a b)
  "@trace{ Sum Squares }"
  (+ (square a) (square b)))
(define (loop n) (if (= n 0.0) 'done (loop (- n 1))))
(sum-squares 3 4)
`

func newEnv(t *testing.T) *scheme.Env {
	env, err := scheme.NewGlobalEnv(scheme.WithReader(parser.NewReader()))
	require.NoError(t, err)
	return env
}

func setupExporter(t *testing.T) *tracetest.InMemoryExporter {
	exporter := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(
		trace.WithSyncer(exporter),
		trace.WithSampler(trace.AlwaysSample()),
	)
	t.Cleanup(func() {
		err := tp.Shutdown(context.Background())
		assert.NoError(t, err, "TracerProvider shutdown")
	})
	otel.SetTracerProvider(tp)
	return exporter
}

func spanNames(spans tracetest.SpanStubs) []string {
	var names []string
	for _, span := range spans {
		names = append(names, span.Name)
	}
	return names
}

func TestNewOpenTelemetryAnnotator(t *testing.T) {
	exporter := setupExporter(t)

	env := newEnv(t)
	ppa := profiler.NewOpenTelemetryAnnotator(env.Runtime, context.Background())
	assert.NoError(t, ppa.Enable())
	assert.Error(t, ppa.Enable(), "enabled twice")
	v, err := env.LoadString("test.scm", testSource)
	require.NoError(t, err)
	assert.Equal(t, "25.0", v.String())
	assert.NoError(t, ppa.Complete())

	spans := exporter.GetSpans()
	require.Equal(t, []string{"square", "square", "sum-squares"}, spanNames(spans))
	parent := spans[2]
	assert.False(t, parent.Parent.IsValid())
	for _, child := range spans[:2] {
		assert.Equal(t, parent.SpanContext.SpanID(), child.Parent.SpanID())
		assert.Equal(t, parent.SpanContext.TraceID(), child.SpanContext.TraceID())
	}
	assert.Contains(t, parent.Attributes, semconv.CodeFunction("sum-squares"))
	assert.Contains(t, parent.Attributes, semconv.CodeNamespace("scheme"))
	assert.Contains(t, parent.Attributes, attribute.StringSlice("scheme.procedure.params", []string{"a", "b"}))
	assert.Contains(t, parent.Attributes, attribute.String("scheme.procedure.trace_label", "Sum_Squares"))
	for _, attr := range spans[0].Attributes {
		assert.NotEqual(t, attribute.Key("scheme.procedure.trace_label"), attr.Key, "square has no docstring")
	}
}

func TestOpenTelemetryAnnotatorPrimitives(t *testing.T) {
	exporter := setupExporter(t)

	env := newEnv(t)
	ppa := profiler.NewOpenTelemetryAnnotator(env.Runtime, context.Background(), profiler.WithPrimitives())
	require.NoError(t, ppa.Enable())
	_, err := env.LoadString("test.scm", testSource)
	require.NoError(t, err)
	require.NoError(t, ppa.Complete())

	spans := exporter.GetSpans()
	assert.Equal(t,
		[]string{"*", "square", "*", "square", "+", "sum-squares"},
		spanNames(spans))
	assert.ElementsMatch(t, []attribute.KeyValue{
		semconv.CodeNamespace("scheme"),
		semconv.CodeFunction("*"),
		attribute.String("scheme.procedure.kind", "primitive"),
	}, spans[0].Attributes)
}

func TestOpenTelemetryAnnotatorTailCalls(t *testing.T) {
	exporter := setupExporter(t)

	env := newEnv(t)
	_, err := env.LoadString("test.scm", testSource)
	require.NoError(t, err)
	exporter.Reset()

	ppa := profiler.NewOpenTelemetryAnnotator(env.Runtime, context.Background())
	require.NoError(t, ppa.Enable())
	_, err = env.LoadString("test.scm", `(loop 2) ((lambda (x) x) 1)`)
	require.NoError(t, err)
	require.NoError(t, ppa.Complete())

	spans := exporter.GetSpans()
	// Tail calls replace one another rather than nesting.
	require.Equal(t, []string{"loop", "loop", "loop", "lambda"}, spanNames(spans))
	for _, span := range spans {
		assert.False(t, span.Parent.IsValid(), span.Name)
	}
}

func TestOpenTelemetryAnnotatorSkip(t *testing.T) {
	exporter := setupExporter(t)

	env := newEnv(t)
	ppa := profiler.NewOpenTelemetryAnnotator(env.Runtime, context.Background(),
		profiler.WithDocFilter(),
		profiler.WithDocLabeler())
	require.NoError(t, ppa.Enable())
	_, err := env.LoadString("test.scm", testSource)
	require.NoError(t, err)
	require.NoError(t, ppa.Complete())

	spans := exporter.GetSpans()
	require.Equal(t, []string{"Sum_Squares"}, spanNames(spans))
	assert.Contains(t, spans[0].Attributes, semconv.CodeFunction("sum-squares"))
}

func TestOpenTelemetryAnnotatorDisabled(t *testing.T) {
	exporter := setupExporter(t)

	env := newEnv(t)
	ppa := profiler.NewOpenTelemetryAnnotator(env.Runtime, nil)
	assert.Error(t, ppa.Enable())
	assert.Same(t, ppa, env.Runtime.Profiler)
	assert.False(t, ppa.IsEnabled())
	_, err := env.LoadString("test.scm", testSource)
	require.NoError(t, err)
	assert.Empty(t, exporter.GetSpans())
}
