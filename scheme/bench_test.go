// Copyright © 2018 The ELPS authors

package scheme_test

import (
	"os"
	"testing"

	"github.com/luthersystems/scm/scheme"
	"github.com/luthersystems/scm/schemetest"
)

func BenchmarkParse(b *testing.B) {
	schemetest.BenchmarkParse("testdata/bench.scm")(b)
}

func BenchmarkEval(b *testing.B) {
	source, err := os.ReadFile("testdata/bench.scm")
	if err != nil {
		b.Fatal(err)
	}
	schemetest.RunBenchmark(b, string(source))
}

func BenchmarkEvalIntegerArithmetic(b *testing.B) {
	source, err := os.ReadFile("testdata/bench.scm")
	if err != nil {
		b.Fatal(err)
	}
	schemetest.RunBenchmark(b, string(source), scheme.WithIntegerArithmetic(true))
}

func TestLoadFile(t *testing.T) {
	env, logger := schemetest.NewEnv(t)
	defer logger.Flush()
	v, err := env.LoadFile("testdata/bench.scm")
	if err != nil {
		schemetest.Error(t, err)
		return
	}
	if v.String() != "1000.0" {
		t.Errorf("unexpected result: %v", v)
	}
	fib, err := env.LoadString("fib", "(fib 10)")
	if err != nil {
		schemetest.Error(t, err)
		return
	}
	if fib.String() != "55.0" {
		t.Errorf("unexpected fib result: %v", fib)
	}
}
