// Copyright © 2018 The ELPS authors

package scheme

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
)

// Config is a function that configures a global environment or its runtime.
type Config func(env *Env) error

// WithMaximumStackHeight returns a Config that will prevent an execution
// environment from allowing the physical stack height to exceed n.  Calls in
// tail position do not add to the physical height.  A value of zero or less
// removes the limit.
func WithMaximumStackHeight(n int) Config {
	return func(env *Env) error {
		env.Runtime.Stack.MaxHeight = n
		return nil
	}
}

// WithReader returns a Config that makes environments use r to parse source
// streams.  There is no default Reader for an environment.
func WithReader(r Reader) Config {
	return func(env *Env) error {
		env.Runtime.Reader = r
		return nil
	}
}

// WithStderr returns a Config that makes environments write debugging output
// to w instead of the default, os.Stderr.  The runtime logger writes to w as
// well.
func WithStderr(w io.Writer) Config {
	return func(env *Env) error {
		env.Runtime.Stderr = w
		if env.Runtime.Logger != nil {
			env.Runtime.Logger.SetOutput(w)
		}
		return nil
	}
}

// WithLogger returns a Config that replaces the runtime logger.
func WithLogger(logger *logrus.Logger) Config {
	return func(env *Env) error {
		env.Runtime.Logger = logger
		return nil
	}
}

// WithLogLevel returns a Config that sets the level of the runtime logger.
// Applications and sequence evaluation are logged at the debug level.
func WithLogLevel(level logrus.Level) Config {
	return func(env *Env) error {
		if env.Runtime.Logger == nil {
			env.Runtime.Logger = logrus.New()
		}
		env.Runtime.Logger.SetLevel(level)
		return nil
	}
}

// WithContext returns a Config that sets the context.Context for evaluation.
// The context is checked at each evaluation step; if it is cancelled or its
// deadline expires, evaluation returns a Cancelled error.
func WithContext(ctx context.Context) Config {
	return func(env *Env) error {
		env.Runtime.ctx = ctx
		return nil
	}
}

// WithIntegerArithmetic returns a Config that controls whether arithmetic on
// integers produces integers.
func WithIntegerArithmetic(ok bool) Config {
	return func(env *Env) error {
		env.Runtime.IntegerArithmetic = ok
		return nil
	}
}

// WithProfiler returns a Config that attaches p to the runtime.  The
// profiler is notified of applications once it is enabled.
func WithProfiler(p Profiler) Config {
	return func(env *Env) error {
		env.Runtime.Profiler = p
		return nil
	}
}
