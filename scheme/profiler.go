// Copyright © 2018 The ELPS authors

package scheme

// Profiler receives notifications when procedures are applied.
type Profiler interface {
	// Is the profiler enabled?
	IsEnabled() bool
	// Enable the profiler
	Enable() error
	// End the profiling session
	Complete() error
	// Start marks the start of an application of proc.  The returned
	// function marks its end.
	Start(proc *Procedure) func()
}
