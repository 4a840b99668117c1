package profiler_test

import (
	"bytes"
	"context"
	"runtime/pprof"
	"testing"

	"github.com/luthersystems/scm/scheme/x/profiler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A meaningful CPU profile needs much more work than this, but the run
// demonstrates that labelling does not disturb evaluation.
func TestNewPprofAnnotator(t *testing.T) {
	env := newEnv(t)
	ppa := profiler.NewPprofAnnotator(env.Runtime, nil)
	var buf bytes.Buffer
	require.NoError(t, pprof.StartCPUProfile(&buf))
	assert.NoError(t, ppa.Enable())
	assert.Error(t, ppa.Enable(), "enabled twice")
	assert.Same(t, ppa, env.Runtime.Profiler)

	v, err := env.LoadString("test.scm", testSource+`(loop 5000)`)
	pprof.StopCPUProfile()
	require.NoError(t, err)
	assert.Equal(t, "done", v.String())
	assert.NoError(t, ppa.Complete())
	assert.NotZero(t, buf.Len())

	_, ok := pprof.Label(ppa.Context(), "function")
	assert.False(t, ok, "labels are removed when applications end")
}

func TestPprofAnnotatorLabels(t *testing.T) {
	env := newEnv(t)
	ppa := profiler.NewPprofAnnotator(env.Runtime, context.Background(), profiler.WithDocLabeler())
	_, err := env.LoadString("test.scm", testSource)
	require.NoError(t, err)
	square, err := env.Get("square")
	require.NoError(t, err)
	sumSquares, err := env.Get("sum-squares")
	require.NoError(t, err)
	mul, err := env.Get("*")
	require.NoError(t, err)

	end := ppa.Start(square.Proc)
	_, ok := pprof.Label(ppa.Context(), "function")
	assert.False(t, ok, "a disabled annotator adds no labels")
	end()

	require.NoError(t, ppa.Enable())
	endOuter := ppa.Start(sumSquares.Proc)
	label, _ := pprof.Label(ppa.Context(), "function")
	assert.Equal(t, "Sum_Squares", label)

	endInner := ppa.Start(square.Proc)
	label, _ = pprof.Label(ppa.Context(), "function")
	assert.Equal(t, "square", label)
	kind, _ := pprof.Label(ppa.Context(), "kind")
	assert.Equal(t, "compound", kind)

	endPrim := ppa.Start(mul.Proc)
	label, _ = pprof.Label(ppa.Context(), "function")
	assert.Equal(t, "square", label, "primitives are skipped")
	endPrim()

	endInner()
	label, _ = pprof.Label(ppa.Context(), "function")
	assert.Equal(t, "Sum_Squares", label)
	endOuter()
	_, ok = pprof.Label(ppa.Context(), "function")
	assert.False(t, ok)
	assert.NoError(t, ppa.Complete())
}
