// Copyright © 2018 The ELPS authors

// Package schemetest runs table driven tests of scheme source.
package schemetest

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/luthersystems/scm/parser"
	"github.com/luthersystems/scm/scheme"
)

// TestSequence is a sequence of scheme expressions which are evaluated
// sequentially by a scheme.Env.
type TestSequence []struct {
	Expr   string // a scheme expression
	Result string // the printed result, or the error message
}

// TestSuite is a set of named TestSequences
type TestSuite []struct {
	Name string
	TestSequence
}

// NewEnv returns a global environment that reads source with the standard
// parser and logs through t.  The returned Logger should be flushed when
// the test is done.
func NewEnv(t testing.TB, config ...scheme.Config) (*scheme.Env, *Logger) {
	logger := NewLogger(t)
	config = append([]scheme.Config{
		scheme.WithReader(parser.NewReader()),
		scheme.WithStderr(logger),
	}, config...)
	env, err := scheme.NewGlobalEnv(config...)
	if err != nil {
		t.Fatalf("failed to initialize environment: %v", err)
	}
	return env, logger
}

// RunTestSuite runs each TestSequence in tests on isolated global
// environments.  Each expression must parse to exactly one value.
func RunTestSuite(t *testing.T, tests TestSuite, config ...scheme.Config) {
	for i, test := range tests {
		i, test := i, test
		t.Run(test.Name, func(t *testing.T) {
			env, logger := NewEnv(t, config...)
			defer logger.Flush()
			for j, expr := range test.TestSequence {
				v, err := env.Runtime.Reader.Read("test", strings.NewReader(expr.Expr))
				if err != nil {
					t.Errorf("test %d %q: expr %d: parse error: %v", i, test.Name, j, err)
					continue
				}
				if len(v) != 1 {
					t.Errorf("test %d %q: expr %d: expected one expression (got %d)", i, test.Name, j, len(v))
					continue
				}
				result := Result(env.Eval(v[0]))
				if result != expr.Result {
					t.Errorf("test %d %q: expr %d: expected result %s (got %s)", i, test.Name, j, expr.Result, result)
				}
			}
		})
	}
}

// Result formats the outcome of an evaluation the way TestSequence results
// are written.
func Result(v *scheme.Value, err error) string {
	if err != nil {
		return err.Error()
	}
	return v.String()
}

// Error reports err through t along with its stack trace, if it has one.
func Error(t testing.TB, err error) {
	var serr *scheme.Error
	if !errors.As(err, &serr) {
		t.Error(err)
		return
	}
	var buf bytes.Buffer
	_, ioerr := serr.WriteTrace(&buf)
	if ioerr != nil {
		t.Errorf("io error: %v", ioerr)
		t.Error(err)
		return
	}
	t.Error(buf.String())
}

// BenchmarkParse returns a benchmark which parses the source file at path.
func BenchmarkParse(path string) func(*testing.B) {
	return func(b *testing.B) {
		buf, err := os.ReadFile(path) //#nosec G304
		if err != nil {
			b.Fatalf("Unable to read source file %v: %v", path, err)
		}
		b.SetBytes(int64(len(buf)))
		r := parser.NewReader()
		for i := 0; i < b.N; i++ {
			_, err := r.Read("test", bytes.NewReader(buf))
			if err != nil {
				b.Fatalf("Parse failure: %v", err)
			}
		}
	}
}

// RunBenchmark runs a standard benchmark that evaluates expressions parsed
// from source in a fresh environment on each iteration.
func RunBenchmark(b *testing.B, source string, config ...scheme.Config) {
	b.StopTimer()
	exprs, err := parser.ParseString(source)
	if err != nil {
		b.Fatalf("parse error: %v", err)
	}
	for i := 0; i < b.N; i++ {
		env, err := scheme.NewGlobalEnv(config...)
		if err != nil {
			b.Fatal(err)
		}
		b.StartTimer()
		for j, expr := range exprs {
			_, err := env.Eval(expr)
			if err != nil {
				b.Fatalf("expr %d: %v", j, err)
			}
		}
		b.StopTimer()
	}
}
