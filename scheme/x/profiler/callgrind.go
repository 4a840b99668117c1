package profiler

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/luthersystems/scm/scheme"
)

// entrypointName names the call ref covering the whole profiling session.
const entrypointName = "ENTRYPOINT"

// errWriter wraps an io.Writer and captures the first write error,
// short-circuiting subsequent writes after a failure.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) print(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprint(ew.w, s)
}

// A profiler implementation that builds Callgrind files, which can be
// opened in KCacheGrind or QCacheGrind.  Procedures carry no source
// locations so entries are keyed by procedure name alone and every
// position is reported as line 0.
type callgrindProfiler struct {
	profiler
	sync.Mutex
	writer     io.Writer
	writeErr   error
	startTime  time.Time
	refs       map[string]int
	refCounter int
	current    *callRef
}

var _ scheme.Profiler = &callgrindProfiler{}

// NewCallgrindProfiler returns a profiler installed in runtime.  An output
// must be set with SetFile or SetWriter before it is enabled.
func NewCallgrindProfiler(runtime *scheme.Runtime, opts ...Option) *callgrindProfiler {
	p := new(callgrindProfiler)
	p.runtime = runtime
	runtime.Profiler = p

	p.applyConfigs(opts...)
	return p
}

// Represents something that got called
type callRef struct {
	start       time.Time
	prev        *callRef
	name        string
	children    []*callRef
	duration    time.Duration
	startMemory uint64
	memory      uint64
}

func totalAlloc() uint64 {
	ms := &runtime.MemStats{}
	runtime.ReadMemStats(ms)
	return ms.TotalAlloc
}

func (p *callgrindProfiler) Enable() error {
	p.Lock()
	if p.enabled {
		p.Unlock()
		return errors.New("profiler already enabled")
	}
	if p.writer == nil {
		p.Unlock()
		return errors.New("no output set in profiler")
	}
	w := &errWriter{w: p.writer}
	w.printf("version: 1\ncreator: scm (Go %s)\n", runtime.Version())
	w.print("cmd: Eval\npart: 1\npositions: line\n\n")
	w.print("events: Time_(ns) Memory_(bytes)\n\n")
	if w.err != nil {
		p.Unlock()
		return w.err
	}
	p.startTime = time.Now()
	p.refs = make(map[string]int)
	p.refCounter = 0
	p.current = nil
	p.writeErr = nil
	p.Unlock()
	p.pushCallRef(entrypointName)
	return p.profiler.Enable()
}

// SetFile creates filename and writes the profile to it.  The file is
// closed by Complete.
func (p *callgrindProfiler) SetFile(filename string) error {
	p.Lock()
	defer p.Unlock()
	if p.enabled {
		return errors.New("profiler already enabled")
	}
	pointer, err := os.Create(filename) //#nosec G304
	if err != nil {
		return err
	}
	p.writer = pointer
	return nil
}

// SetWriter writes the profile to w.  If w is an io.Closer it is closed by
// Complete.
func (p *callgrindProfiler) SetWriter(w io.Writer) error {
	p.Lock()
	defer p.Unlock()
	if p.enabled {
		return errors.New("profiler already enabled")
	}
	p.writer = w
	return nil
}

func (p *callgrindProfiler) Complete() error {
	p.Lock()
	defer p.Unlock()
	if !p.enabled {
		return errors.New("profiler not enabled")
	}
	p.enabled = false
	// Applications still open when the session ends are attributed to the
	// entrypoint.
	ref := p.current
	for ref != nil && ref.prev != nil {
		ref = ref.prev
	}
	p.current = nil
	if p.writeErr != nil {
		return p.writeErr
	}
	ref.duration = time.Since(ref.start)
	ref.memory = totalAlloc() - ref.startMemory
	p.writeEntry(ref)
	w := &errWriter{w: p.writer}
	w.printf("summary: %d %d\n\n", time.Since(p.startTime).Nanoseconds(), ref.memory)
	if w.err != nil {
		return w.err
	}
	if p.writeErr != nil {
		return p.writeErr
	}
	if c, ok := p.writer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (p *callgrindProfiler) getRef(name string) string {
	if ref, ok := p.refs[name]; ok {
		return fmt.Sprintf("(%d)", ref)
	}
	p.refCounter++
	p.refs[name] = p.refCounter
	return fmt.Sprintf("(%d) %s", p.refCounter, name)
}

func (p *callgrindProfiler) Start(proc *scheme.Procedure) func() {
	if p.skipTrace(proc) {
		return func() {}
	}
	prettyLabel, _ := p.prettyFunName(proc)
	// Mark the time and point of entry.  The runtime stack records callers;
	// the call refs record callees.
	p.pushCallRef(prettyLabel)
	return p.end
}

func (p *callgrindProfiler) pushCallRef(name string) {
	p.Lock()
	defer p.Unlock()
	ref := &callRef{
		name: name,
		prev: p.current,
	}
	if ref.prev != nil {
		ref.prev.children = append(ref.prev.children, ref)
	}
	ref.startMemory = totalAlloc()
	ref.start = time.Now()
	p.current = ref
}

func (p *callgrindProfiler) end() {
	p.Lock()
	defer p.Unlock()
	if !p.enabled || p.current == nil || p.current.prev == nil {
		return
	}
	ref := p.current
	p.current = ref.prev
	ref.duration = time.Since(ref.start)
	if ref.duration == 0 {
		ref.duration = 1
	}
	ref.memory = totalAlloc() - ref.startMemory
	if p.writeErr != nil {
		return
	}
	p.writeEntry(ref)
}

// writeEntry writes the cost of ref and of each of its callees.  Callers
// must hold the lock.
func (p *callgrindProfiler) writeEntry(ref *callRef) {
	w := &errWriter{w: p.writer}
	w.printf("fn=%s\n", p.getRef(ref.name))
	w.printf("0 %d %d\n", ref.duration, ref.memory)
	for _, entry := range ref.children {
		w.printf("cfn=%s\n", p.getRef(entry.name))
		w.print("calls=1 0\n")
		w.printf("0 %d %d\n", entry.duration, entry.memory)
	}
	w.print("\n")
	if w.err != nil {
		p.writeErr = w.err
	}
}
