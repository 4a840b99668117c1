// Copyright © 2018 The ELPS authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"time"

	"github.com/luthersystems/scm/scheme"
	"github.com/luthersystems/scm/scheme/x/profiler"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Trace modes accepted by the trace configuration key.
const (
	TraceNone       = ""
	TraceOtel       = "otel"
	TraceOpenCensus = "opencensus"
	TracePprof      = "pprof"
	TraceCallgrind  = "callgrind"
)

// Default output files of the pprof and callgrind trace modes.
const (
	DefaultPprofFile     = "scm.pprof"
	DefaultCallgrindFile = "callgrind.out.scm"
)

const tracerName = "scm"

// logSpanExporter logs finished spans.  It serves as an OpenTelemetry
// SpanExporter and an OpenCensus Exporter.
type logSpanExporter struct {
	logger *logrus.Logger
}

var (
	_ sdktrace.SpanExporter = (*logSpanExporter)(nil)
	_ trace.Exporter        = (*logSpanExporter)(nil)
)

func newLogSpanExporter(w io.Writer) *logSpanExporter {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(logrus.InfoLevel)
	return &logSpanExporter{logger: logger}
}

func (e *logSpanExporter) log(name, traceID, spanID, parentID string, start, end time.Time) {
	fields := logrus.Fields{
		"trace":    traceID,
		"span":     spanID,
		"duration": end.Sub(start),
	}
	if parentID != "" {
		fields["parent"] = parentID
	}
	e.logger.WithFields(fields).Info(name)
}

// ExportSpans implements sdktrace.SpanExporter.
func (e *logSpanExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		var parentID string
		if span.Parent().IsValid() {
			parentID = span.Parent().SpanID().String()
		}
		e.log(span.Name(),
			span.SpanContext().TraceID().String(),
			span.SpanContext().SpanID().String(),
			parentID,
			span.StartTime(), span.EndTime())
	}
	return ctx.Err()
}

// Shutdown implements sdktrace.SpanExporter.
func (e *logSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

// ExportSpan implements trace.Exporter.
func (e *logSpanExporter) ExportSpan(sd *trace.SpanData) {
	var parentID string
	if sd.ParentSpanID != (trace.SpanID{}) {
		parentID = sd.ParentSpanID.String()
	}
	e.log(sd.Name, sd.TraceID.String(), sd.SpanID.String(), parentID, sd.StartTime, sd.EndTime)
}

// startTracing attaches a profiler of the given mode to the runtime of env.
// In the span modes spans are logged to w as they finish, as children of a
// root span named after the command.  The pprof mode writes a CPU profile
// labelled by procedure to file and the callgrind mode writes a callgrind
// profile to file.  The returned function ends the session and flushes its
// output.
func startTracing(env *scheme.Env, mode string, command string, w io.Writer, file string) (func() error, error) {
	exporter := newLogSpanExporter(w)
	switch mode {
	case TraceNone:
		return func() error { return nil }, nil
	case TraceOtel:
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSyncer(exporter),
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
		)
		otel.SetTracerProvider(tp)
		ctx, root := tp.Tracer(tracerName).Start(env.Runtime.Context(), command)
		return enableProfiler(profiler.NewOpenTelemetryAnnotator(env.Runtime, ctx), func() error {
			root.End()
			return tp.Shutdown(context.Background())
		})
	case TraceOpenCensus:
		trace.ApplyConfig(trace.Config{DefaultSampler: trace.AlwaysSample()})
		trace.RegisterExporter(exporter)
		ctx, root := trace.StartSpan(env.Runtime.Context(), command)
		return enableProfiler(profiler.NewOpenCensusAnnotator(env.Runtime, ctx), func() error {
			root.End()
			trace.UnregisterExporter(exporter)
			return nil
		})
	case TracePprof:
		f, err := os.Create(traceFile(file, DefaultPprofFile)) //#nosec G304
		if err != nil {
			return nil, err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, err
		}
		return enableProfiler(profiler.NewPprofAnnotator(env.Runtime, env.Runtime.Context()), func() error {
			pprof.StopCPUProfile()
			return f.Close()
		})
	case TraceCallgrind:
		p := profiler.NewCallgrindProfiler(env.Runtime)
		if err := p.SetFile(traceFile(file, DefaultCallgrindFile)); err != nil {
			return nil, err
		}
		return enableProfiler(p, func() error { return nil })
	default:
		return nil, fmt.Errorf("unknown trace mode: %q", mode)
	}
}

func enableProfiler(p scheme.Profiler, shutdown func() error) (func() error, error) {
	if err := p.Enable(); err != nil {
		_ = shutdown()
		return nil, err
	}
	return func() error {
		if err := p.Complete(); err != nil {
			_ = shutdown()
			return err
		}
		return shutdown()
	}, nil
}

func traceFile(file, def string) string {
	if file == "" {
		return def
	}
	return file
}
