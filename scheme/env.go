// Copyright © 2018 The ELPS authors

package scheme

import (
	"fmt"
	"os"
	"sort"
)

// Env is an environment: a chain of frames searched from the innermost frame
// outward.  Environments created by procedure application share frames with
// the environment the procedure closed over, so assignments through one are
// visible through every other environment sharing the frame.
//
// A nil *Env is the empty environment.  It has no frames, so lookups in it
// only find primitives and definitions in it fail.
type Env struct {
	frame   *Frame
	Parent  *Env
	Runtime *Runtime
}

// Frame is a mutable table of bindings.  Names are unique within a frame
// except when a procedure declares the same parameter twice, in which case
// the first binding wins.
type Frame struct {
	bindings []Binding
}

// Binding associates a name with a value.
type Binding struct {
	Name  string
	Value *Value
}

// NewGlobalEnv returns an environment with a single empty frame and a new
// Runtime configured by config.
func NewGlobalEnv(config ...Config) (*Env, error) {
	env := &Env{
		frame:   &Frame{},
		Runtime: StandardRuntime(),
	}
	for _, fn := range config {
		err := fn(env)
		if err != nil {
			return nil, err
		}
	}
	return env, nil
}

// NewEnv returns a child of parent with a single empty frame.  If parent is
// nil the child gets a new standard Runtime.
func NewEnv(parent *Env) *Env {
	var rt *Runtime
	if parent != nil {
		rt = parent.Runtime
	} else {
		rt = StandardRuntime()
	}
	return &Env{
		frame:   &Frame{},
		Parent:  parent,
		Runtime: rt,
	}
}

// Bindings returns a copy of the bindings in the innermost frame of env.
func (env *Env) Bindings() []Binding {
	if env == nil {
		return nil
	}
	b := make([]Binding, len(env.frame.bindings))
	copy(b, env.frame.bindings)
	return b
}

// Names returns the sorted names bound anywhere in env.
func (env *Env) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for e := env; e != nil; e = e.Parent {
		for _, b := range e.frame.bindings {
			if !seen[b.Name] {
				seen[b.Name] = true
				names = append(names, b.Name)
			}
		}
	}
	sort.Strings(names)
	return names
}

func (f *Frame) lookup(name string) *Binding {
	for i := range f.bindings {
		if f.bindings[i].Name == name {
			return &f.bindings[i]
		}
	}
	return nil
}

// Get returns the value of the innermost binding of name.  A name with no
// binding that names a primitive evaluates to that primitive.
func (env *Env) Get(name string) (*Value, error) {
	for e := env; e != nil; e = e.Parent {
		if b := e.frame.lookup(name); b != nil {
			return b.Value, nil
		}
	}
	if op, ok := primitiveByName[name]; ok {
		return PrimitiveValue(op), nil
	}
	return nil, errorf(UnboundVariable, "%s", name)
}

// Update replaces the value of the innermost existing binding of name, the
// way set! does.  Update fails if name is not bound in any frame.
func (env *Env) Update(name string, v *Value) error {
	for e := env; e != nil; e = e.Parent {
		if b := e.frame.lookup(name); b != nil {
			b.Value = v
			return nil
		}
	}
	return errorf(UnboundVariable, "%s", name)
}

// Put binds name to v in the innermost frame of env, the way define does.
// An existing binding for name in that frame is overwritten.  Outer frames
// are never modified.
func (env *Env) Put(name string, v *Value) error {
	if env == nil {
		return errorf(TypeMismatch, "cannot define %s in the empty environment", name)
	}
	if b := env.frame.lookup(name); b != nil {
		b.Value = v
		return nil
	}
	env.frame.bindings = append(env.frame.bindings, Binding{Name: name, Value: v})
	return nil
}

// Extend returns a child of env with a new frame binding params to args
// positionally.  Extend returns an ArityMismatch error if the counts differ.
func (env *Env) Extend(params []string, args []*Value) (*Env, error) {
	if len(params) != len(args) {
		if len(params) < len(args) {
			return nil, errorf(ArityMismatch, "too many arguments supplied: expected %d, got %d", len(params), len(args))
		}
		return nil, errorf(ArityMismatch, "too few arguments supplied: expected %d, got %d", len(params), len(args))
	}
	frame := &Frame{bindings: make([]Binding, len(params))}
	for i := range params {
		frame.bindings[i] = Binding{Name: params[i], Value: args[i]}
	}
	child := &Env{
		frame:  frame,
		Parent: env,
	}
	if env != nil {
		child.Runtime = env.Runtime
	}
	return child, nil
}

// ExtendEnvironment binds the symbols in the list params to the values in
// the list args in a new frame whose parent is env.
func ExtendEnvironment(params, args *Value, env *Env) (*Env, error) {
	names, err := symbolNames(params)
	if err != nil {
		return nil, err
	}
	vals, err := Slice(args)
	if err != nil {
		return nil, err
	}
	return env.Extend(names, vals)
}

// symbolNames returns the names of the symbols in the list params.
func symbolNames(params *Value) ([]string, error) {
	vals, err := Slice(params)
	if err != nil {
		return nil, errorf(UnrecognizedExpression, "parameter list is not a list: %v", params)
	}
	names := make([]string, len(vals))
	for i, v := range vals {
		if v.Type != VSymbol {
			return nil, errorf(UnrecognizedExpression, "parameter is not a symbol: %v", v)
		}
		names[i] = v.Str
	}
	return names, nil
}

// runtime returns the runtime of env.  An env without a runtime is
// evaluated with a fresh call stack and the shared detachedLogger.
func (env *Env) runtime() *Runtime {
	if env == nil || env.Runtime == nil {
		return &Runtime{
			Stderr: os.Stderr,
			Logger: detachedLogger,
			Stack:  &CallStack{MaxHeight: DefaultMaxStackHeight},
		}
	}
	return env.Runtime
}

func (env *Env) String() string {
	depth := 0
	for e := env; e != nil; e = e.Parent {
		depth++
	}
	return fmt.Sprintf("#<environment %d frames>", depth)
}
