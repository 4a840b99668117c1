// Copyright © 2018 The ELPS authors

package scheme

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// DefaultMaxStackHeight is the default maximum height of a runtime CallStack.
const DefaultMaxStackHeight = 10000

// Runtime is an object underlying a family of tree of Env values.  It is
// responsible for holding shared evaluation state and writing debugging
// output.
type Runtime struct {
	Stderr   io.Writer
	Logger   *logrus.Logger
	Stack    *CallStack
	Reader   Reader
	Profiler Profiler
	// IntegerArithmetic keeps the results of + - * and exact / integral when
	// all arguments are integers.  By default every arithmetic result is a
	// float.
	IntegerArithmetic bool
	ctx               context.Context
}

// StandardRuntime returns a new Runtime with Stderr set to os.Stderr and a
// logger which only reports warnings.
func StandardRuntime() *Runtime {
	return &Runtime{
		Stderr: os.Stderr,
		Logger: newLogger(),
		Stack:  &CallStack{MaxHeight: DefaultMaxStackHeight},
	}
}

// detachedLogger is used by evaluations in environments which have no
// runtime.  Nothing can reconfigure it because no Config reaches it.
var detachedLogger = newLogger()

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

// Context returns the context governing evaluation.
func (r *Runtime) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// checkContext returns a Cancelled error once the runtime context is done.
func (r *Runtime) checkContext() error {
	if r.ctx == nil {
		return nil
	}
	select {
	case <-r.ctx.Done():
		return &Error{Kind: Cancelled, Err: r.ctx.Err()}
	default:
		return nil
	}
}

func (r *Runtime) debugEnabled() bool {
	return r.Logger != nil && r.Logger.IsLevelEnabled(logrus.DebugLevel)
}

func (r *Runtime) profile(proc *Procedure) func() {
	if r.Profiler == nil || !r.Profiler.IsEnabled() {
		return func() {}
	}
	return r.Profiler.Start(proc)
}

// attachStack associates the current call stack with err if err does not
// already carry one.
func (r *Runtime) attachStack(err error) error {
	e, ok := err.(*Error)
	if !ok || e.Stack != nil {
		return err
	}
	e.Stack = r.Stack.Copy()
	return e
}
