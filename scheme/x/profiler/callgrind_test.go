package profiler_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luthersystems/scm/scheme/x/profiler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCallgrind(t *testing.T) {
	env := newEnv(t)
	var buf bytes.Buffer
	// Create a profiler
	p := profiler.NewCallgrindProfiler(env.Runtime)
	assert.Same(t, p, env.Runtime.Profiler)
	assert.EqualError(t, p.Enable(), "no output set in profiler")
	// Tell it what to do with the output
	require.NoError(t, p.SetWriter(&buf))
	require.NoError(t, p.Enable())
	assert.Error(t, p.Enable(), "enabled twice")
	assert.Error(t, p.SetWriter(&buf), "output set after enable")

	v, err := env.LoadString("test.scm", testSource)
	require.NoError(t, err)
	assert.Equal(t, "25.0", v.String())
	// Mark the profile as complete and dump the rest of the profile
	require.NoError(t, p.Complete())
	assert.Error(t, p.Complete(), "completed twice")

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "version: 1\ncreator: scm (Go "), out)
	assert.Contains(t, out, "positions: line\n")
	assert.Contains(t, out, "events: Time_(ns) Memory_(bytes)\n")
	assert.Contains(t, out, "fn=(1) square\n")
	assert.Contains(t, out, "fn=(2) sum-squares\n")
	assert.Equal(t, 2, strings.Count(out, "cfn=(1)\ncalls=1 0\n"), "sum-squares calls square twice")
	assert.Contains(t, out, "fn=(3) ENTRYPOINT\n")
	assert.Contains(t, out, "cfn=(2)\ncalls=1 0\n")
	assert.Contains(t, out, "\nsummary: ")
	assert.NotContains(t, out, "fn=(4)", "primitives are not profiled")
}

func TestCallgrindPrimitives(t *testing.T) {
	env := newEnv(t)
	var buf bytes.Buffer
	p := profiler.NewCallgrindProfiler(env.Runtime, profiler.WithPrimitives(), profiler.WithDocLabeler())
	require.NoError(t, p.SetWriter(&buf))
	require.NoError(t, p.Enable())
	_, err := env.LoadString("test.scm", testSource)
	require.NoError(t, err)
	require.NoError(t, p.Complete())

	out := buf.String()
	assert.Contains(t, out, "fn=(1) *\n")
	assert.Contains(t, out, "fn=(2) square\n")
	assert.Contains(t, out, "fn=(3) +\n")
	assert.Contains(t, out, "fn=(4) Sum_Squares\n")
}

func TestCallgrindError(t *testing.T) {
	env := newEnv(t)
	var buf bytes.Buffer
	p := profiler.NewCallgrindProfiler(env.Runtime)
	require.NoError(t, p.SetWriter(&buf))
	require.NoError(t, p.Enable())
	_, err := env.LoadString("test.scm", `(define (f x) (car x)) (define (g x) (f x)) (g 1)`)
	require.Error(t, err)
	require.NoError(t, p.Complete())

	// The call to f is a tail call so g has ended before f starts.
	out := buf.String()
	assert.Contains(t, out, "fn=(1) g\n0 ")
	assert.Contains(t, out, "fn=(2) f\n0 ")
	assert.Contains(t, out, "fn=(3) ENTRYPOINT\n")
}

type failingWriter struct{}

func (failingWriter) Write(b []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestCallgrindWriteError(t *testing.T) {
	env := newEnv(t)
	p := profiler.NewCallgrindProfiler(env.Runtime)
	require.NoError(t, p.SetWriter(failingWriter{}))
	assert.EqualError(t, p.Enable(), "disk full")
	assert.False(t, p.IsEnabled())
}

func TestCallgrindFile(t *testing.T) {
	env := newEnv(t)
	path := filepath.Join(t.TempDir(), "callgrind.out")
	p := profiler.NewCallgrindProfiler(env.Runtime)
	require.NoError(t, p.SetFile(path))
	require.NoError(t, p.Enable())
	_, err := env.LoadString("test.scm", testSource)
	require.NoError(t, err)
	require.NoError(t, p.Complete())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "fn=(2) sum-squares\n")
}
