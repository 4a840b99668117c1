// Copyright © 2018 The ELPS authors

package scheme

import (
	"bytes"
	"fmt"
)

// ProcKind distinguishes primitive and compound procedures.
type ProcKind uint

// Possible ProcKind values
const (
	ProcPrimitive ProcKind = iota + 1
	ProcCompound
)

// Procedure is a callable value.  Primitive procedures are identified by
// their Opcode.  Compound procedures are closures created by lambda which
// capture the environment they were created in.
type Procedure struct {
	Kind ProcKind
	// Op identifies a primitive procedure.
	Op Opcode
	// Name is the primitive name, or the name a compound procedure was
	// defined with.  Anonymous procedures have no name.
	Name string
	// Params are the formal parameters of a compound procedure.
	Params []string
	// Body is the non-empty list of body expressions of a compound
	// procedure.
	Body *Value
	// Env is the environment a compound procedure closed over.
	Env *Env
}

// MakeProcedure returns a compound procedure with parameters params and body
// closed over env.  The body must be a non-empty list of expressions.
func MakeProcedure(params *Value, body *Value, env *Env) (*Value, error) {
	names, err := symbolNames(params)
	if err != nil {
		return nil, err
	}
	if !body.IsPair() {
		return nil, errorf(UnrecognizedExpression, "procedure body is empty")
	}
	return &Value{
		Type: VProc,
		Proc: &Procedure{
			Kind:   ProcCompound,
			Params: names,
			Body:   body,
			Env:    env,
		},
	}, nil
}

// IsPrimitiveProcedure returns true if v is a primitive procedure.
func IsPrimitiveProcedure(v *Value) bool {
	return v.Type == VProc && v.Proc.Kind == ProcPrimitive
}

// IsCompoundProcedure returns true if v is a compound procedure.
func IsCompoundProcedure(v *Value) bool {
	return v.Type == VProc && v.Proc.Kind == ProcCompound
}

// ProcedureParameters returns the parameter list of the compound procedure v.
func ProcedureParameters(v *Value) (*Value, error) {
	if !IsCompoundProcedure(v) {
		return nil, errorf(TypeMismatch, "not a compound procedure: %v", v)
	}
	params := make([]*Value, len(v.Proc.Params))
	for i, name := range v.Proc.Params {
		params[i] = Symbol(name)
	}
	return List(params...), nil
}

// ProcedureBody returns the body expressions of the compound procedure v.
func ProcedureBody(v *Value) (*Value, error) {
	if !IsCompoundProcedure(v) {
		return nil, errorf(TypeMismatch, "not a compound procedure: %v", v)
	}
	return v.Proc.Body, nil
}

// ProcedureEnvironment returns the environment the compound procedure v
// closed over.
func ProcedureEnvironment(v *Value) (*Env, error) {
	if !IsCompoundProcedure(v) {
		return nil, errorf(TypeMismatch, "not a compound procedure: %v", v)
	}
	return v.Proc.Env, nil
}

// Docstring returns the documentation of a compound procedure.  A procedure
// is documented when its body has more than one expression and the first is
// a string literal.
func (p *Procedure) Docstring() string {
	if p.Kind != ProcCompound || p.Body == nil || p.Body.Pair == nil {
		return ""
	}
	first := p.Body.Pair
	if first.Tail == nil || first.Head.Type != VString {
		return ""
	}
	return first.Head.Str
}

func (p *Procedure) equal(other *Procedure) bool {
	if p == other {
		return true
	}
	return p.Kind == ProcPrimitive && other.Kind == ProcPrimitive && p.Op == other.Op
}

func (p *Procedure) String() string {
	if p.Kind == ProcPrimitive {
		return fmt.Sprintf("#<primitive %s>", p.Name)
	}
	var buf bytes.Buffer
	buf.WriteString("#<procedure ")
	if p.Name != "" {
		buf.WriteString(p.Name)
		buf.WriteString(" ")
	}
	buf.WriteString("(")
	for i, name := range p.Params {
		if i > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(name)
	}
	buf.WriteString(")>")
	return buf.String()
}
