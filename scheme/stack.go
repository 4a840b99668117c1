// Copyright © 2018 The ELPS authors

package scheme

import (
	"fmt"
	"io"
)

// CallStack is a procedure call stack.  Only applications of compound
// procedures push frames.  A call in tail position replaces the frame of its
// caller so the physical height of the stack does not grow.
type CallStack struct {
	Frames []CallFrame
	// MaxHeight bounds the physical height of the stack.  A value of zero or
	// less means the stack is unbounded.
	MaxHeight int
}

// CallFrame is one frame in the CallStack
type CallFrame struct {
	// Name is the procedure name, or empty for anonymous procedures.
	Name string
	// Params are the formal parameter names of the procedure.
	Params []string
	// Elided counts tail calls which replaced this frame.
	Elided int
}

func (f *CallFrame) String() string {
	name := f.Name
	if name == "" {
		name = "lambda"
	}
	if f.Elided > 0 {
		return fmt.Sprintf("%s [%d tail calls elided]", name, f.Elided)
	}
	return name
}

// Copy creates a copy of the current stack so that it can be attached to an
// error.
func (s *CallStack) Copy() *CallStack {
	frames := make([]CallFrame, len(s.Frames))
	copy(frames, s.Frames)
	return &CallStack{
		Frames:    frames,
		MaxHeight: s.MaxHeight,
	}
}

// Top returns the CallFrame at the top of the stack or nil if none exists.
func (s *CallStack) Top() *CallFrame {
	if s == nil || len(s.Frames) == 0 {
		return nil
	}
	return &s.Frames[len(s.Frames)-1]
}

// HeightLogical returns the height of the stack plus the number of frames
// elided by tail calls.
func (s *CallStack) HeightLogical() int {
	h := len(s.Frames)
	for i := range s.Frames {
		h += s.Frames[i].Elided
	}
	return h
}

// Push pushes a new frame for proc onto s.  Push returns a StackOverflow
// error instead of growing s beyond MaxHeight.
func (s *CallStack) Push(proc *Procedure) error {
	if s.MaxHeight > 0 && s.MaxHeight <= len(s.Frames) {
		return errorf(StackOverflow, "stack height exceeded maximum: %d", len(s.Frames)+1)
	}
	s.Frames = append(s.Frames, CallFrame{
		Name:   proc.Name,
		Params: proc.Params,
	})
	return nil
}

// ReplaceTop overwrites the top frame with a frame for proc, which is being
// called in tail position.
func (s *CallStack) ReplaceTop(proc *Procedure) {
	top := s.Top()
	if top == nil {
		panic("replace called on an empty stack")
	}
	*top = CallFrame{
		Name:   proc.Name,
		Params: proc.Params,
		Elided: top.Elided + 1,
	}
}

// Pop removes the top CallFrame from the stack and returns it.
func (s *CallStack) Pop() CallFrame {
	if len(s.Frames) < 1 {
		panic("pop called on an empty stack")
	}
	f := s.Frames[len(s.Frames)-1]
	s.Frames[len(s.Frames)-1] = CallFrame{}
	s.Frames = s.Frames[:len(s.Frames)-1]
	return f
}

// DebugPrint prints s
func (s *CallStack) DebugPrint(w io.Writer) (int, error) {
	n, err := fmt.Fprintf(w, "Stack Trace [%d frames -- entrypoint last]:\n", len(s.Frames))
	if err != nil {
		return n, err
	}
	indent := "  "
	for i := len(s.Frames) - 1; i >= 0; i-- {
		_n, err := fmt.Fprintf(w, "%sheight %d: %s\n", indent, i, s.Frames[i].String())
		n += _n
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
