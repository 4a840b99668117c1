// Copyright © 2018 The ELPS authors

package scheme

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// VType is the variant of a Value.
type VType uint

// Possible VType values
const (
	// VInvalid (0) is not a valid scheme type.
	VInvalid VType = iota
	// VInt values store a whole number in the Value.Int field.
	VInt
	// VFloat values store a float64 in the Value.Float field.
	VFloat
	// VSymbol values store the symbol name in the Value.Str field.  Symbols
	// are both identifiers and quoted atoms.
	VSymbol
	// VString values store their text in the Value.Str field.
	VString
	// VBool values store their truth value in the Value.Bool field.
	VBool
	// VQuote values are pre-quoted literal atoms with their text stored in
	// Value.Str.  They evaluate to themselves.  The quote special form is the
	// canonical quoting mechanism; VQuote only exists so that readers can
	// hand the evaluator an atom that was quoted ahead of time.
	VQuote
	// VList values store a cons chain in Value.Pair.  A nil Pair is the
	// empty list.
	VList
	// VProc values store a primitive or compound procedure in Value.Proc.
	VProc
	// VUnspecified is the value of an if expression whose predicate is false
	// and which has no alternative.
	VUnspecified
	// VTypeMax is not a real type but represents a value numerically greater
	// than all valid VType values.
	VTypeMax
)

var vtypeStrings = []string{
	VInvalid:     "INVALID",
	VInt:         "integer",
	VFloat:       "float",
	VSymbol:      "symbol",
	VString:      "string",
	VBool:        "boolean",
	VQuote:       "quote",
	VList:        "list",
	VProc:        "procedure",
	VUnspecified: "unspecified",
}

func (t VType) String() string {
	if t >= VType(len(vtypeStrings)) {
		return vtypeStrings[VInvalid]
	}
	return vtypeStrings[t]
}

// Value is a scheme datum.  Values are used both for source syntax handed
// over by a reader and for the results of evaluation.  Values are never
// modified after construction so they may be shared freely.
type Value struct {
	// Proc is used by VProc values.
	Proc *Procedure

	// Pair is used by VList values.  A nil Pair is the empty list.
	Pair *Pair

	// Str is used by VSymbol, VString and VQuote values.
	Str string

	// Fields used for numeric types.
	Int   int64
	Float float64

	// Type is the variant of the value.
	Type VType

	// Bool is used by VBool values.
	Bool bool
}

// Pair is a cons cell.  The nil *Pair is the empty list, so every chain of
// pairs is a proper list.  A cons onto something that is not a list is
// rejected instead of producing an improper list.
type Pair struct {
	Head *Value
	Tail *Pair
}

// Singleton values.  Callers MUST NOT mutate them.
var (
	singletonNil         = &Value{Type: VList}
	singletonTrue        = &Value{Type: VBool, Bool: true}
	singletonFalse       = &Value{Type: VBool, Bool: false}
	singletonUnspecified = &Value{Type: VUnspecified}
)

// Int returns a Value representing the whole number x.
func Int(x int64) *Value {
	return &Value{Type: VInt, Int: x}
}

// Float returns a Value representing the number x.
func Float(x float64) *Value {
	return &Value{Type: VFloat, Float: x}
}

// Symbol returns a Value representing the symbol s.
func Symbol(s string) *Value {
	return &Value{Type: VSymbol, Str: s}
}

// String returns a Value representing the string str.
func String(str string) *Value {
	return &Value{Type: VString, Str: str}
}

// Quote returns a pre-quoted atom with the given text.
func Quote(text string) *Value {
	return &Value{Type: VQuote, Str: text}
}

// Bool returns the boolean Value for b.  The returned value is shared.
func Bool(b bool) *Value {
	if b {
		return singletonTrue
	}
	return singletonFalse
}

// Nil returns the empty list.  The returned value is shared.
func Nil() *Value {
	return singletonNil
}

// Unspecified returns the value of an if expression without an alternative
// whose predicate was false.  The returned value is shared.
func Unspecified() *Value {
	return singletonUnspecified
}

// List returns a proper list containing vals.
func List(vals ...*Value) *Value {
	var p *Pair
	for i := len(vals) - 1; i >= 0; i-- {
		p = &Pair{Head: vals[i], Tail: p}
	}
	return listFromPair(p)
}

func listFromPair(p *Pair) *Value {
	if p == nil {
		return Nil()
	}
	return &Value{Type: VList, Pair: p}
}

// Cons prepends head onto the list tail.  Cons returns a TypeMismatch error
// when tail is not a list because improper lists are not supported.
func Cons(head, tail *Value) (*Value, error) {
	if tail.Type != VList {
		return nil, errorf(TypeMismatch, "cons: second argument is not a list: %v", tail.Type)
	}
	return listFromPair(&Pair{Head: head, Tail: tail.Pair}), nil
}

// Car returns the first element of the non-empty list v.
func Car(v *Value) (*Value, error) {
	if v.Type != VList {
		return nil, errorf(TypeMismatch, "car: not a list: %v", v.Type)
	}
	if v.Pair == nil {
		return nil, errorf(TypeMismatch, "car: not a pair: ()")
	}
	return v.Pair.Head, nil
}

// Cdr returns the list following the first element of the non-empty list v.
func Cdr(v *Value) (*Value, error) {
	if v.Type != VList {
		return nil, errorf(TypeMismatch, "cdr: not a list: %v", v.Type)
	}
	if v.Pair == nil {
		return nil, errorf(TypeMismatch, "cdr: not a pair: ()")
	}
	return listFromPair(v.Pair.Tail), nil
}

// Cadr returns the second element of v.
func Cadr(v *Value) (*Value, error) {
	rest, err := Cdr(v)
	if err != nil {
		return nil, err
	}
	return Car(rest)
}

// Length returns the number of elements in the list v.  Every list is
// proper so Length only fails when v is not a list at all.
func Length(v *Value) (int, error) {
	if v.Type != VList {
		return 0, errorf(TypeMismatch, "not a list: %v", v.Type)
	}
	return v.Pair.Len(), nil
}

// Slice returns the elements of the list v.
func Slice(v *Value) ([]*Value, error) {
	if v.Type != VList {
		return nil, errorf(TypeMismatch, "not a list: %v", v.Type)
	}
	vals := make([]*Value, 0, v.Pair.Len())
	for p := v.Pair; p != nil; p = p.Tail {
		vals = append(vals, p.Head)
	}
	return vals, nil
}

// Len returns the number of pairs in the chain starting at p.
func (p *Pair) Len() int {
	n := 0
	for ; p != nil; p = p.Tail {
		n++
	}
	return n
}

// Equal reports whether p and other have equal heads and tails.
func (p *Pair) Equal(other *Pair) bool {
	for p != nil && other != nil {
		if !p.Head.Equal(other.Head) {
			return false
		}
		p, other = p.Tail, other.Tail
	}
	return p == nil && other == nil
}

// IsNumber returns true if v is an integer or a float.
func (v *Value) IsNumber() bool {
	return v.Type == VInt || v.Type == VFloat
}

// IsString returns true if v is a string.
func (v *Value) IsString() bool {
	return v.Type == VString
}

// IsSymbol returns true if v is a symbol.
func (v *Value) IsSymbol() bool {
	return v.Type == VSymbol
}

// IsSelfEvaluating returns true if v is a number or a string.
func (v *Value) IsSelfEvaluating() bool {
	return v.IsNumber() || v.IsString()
}

// IsPair returns true if v is a non-empty list.
func (v *Value) IsPair() bool {
	return v.Type == VList && v.Pair != nil
}

// IsNil returns true if v is the empty list.
func (v *Value) IsNil() bool {
	return v.Type == VList && v.Pair == nil
}

// IsTrue returns true only for the boolean true.  Every other value,
// including numbers and lists, is treated as false by if.
func (v *Value) IsTrue() bool {
	return v.Type == VBool && v.Bool
}

// IsNumberCombination returns true if v is a non-empty list whose elements
// are all numbers or number combinations, e.g. ((1 2) (3 4) 5).  Such lists
// are data and evaluate to themselves.
func (v *Value) IsNumberCombination() bool {
	if !v.IsPair() {
		return false
	}
	for p := v.Pair; p != nil; p = p.Tail {
		if !p.Head.IsNumber() && !p.Head.IsNumberCombination() {
			return false
		}
	}
	return true
}

// Equal returns true if v and other are the same variant with equal
// payloads.  Values of different variants are never equal, so the integer 1
// and the float 1.0 differ.  Procedures are equal only to themselves.
func (v *Value) Equal(other *Value) bool {
	if v == other {
		return true
	}
	if v == nil || other == nil || v.Type != other.Type {
		return false
	}
	switch v.Type {
	case VInt:
		return v.Int == other.Int
	case VFloat:
		return v.Float == other.Float
	case VSymbol, VString, VQuote:
		return v.Str == other.Str
	case VBool:
		return v.Bool == other.Bool
	case VList:
		return v.Pair.Equal(other.Pair)
	case VProc:
		return v.Proc.equal(other.Proc)
	case VUnspecified:
		return true
	}
	return false
}

func (v *Value) String() string {
	switch v.Type {
	case VInt:
		return strconv.FormatInt(v.Int, 10)
	case VFloat:
		return formatFloat(v.Float)
	case VSymbol, VQuote:
		return v.Str
	case VString:
		return strconv.Quote(v.Str)
	case VBool:
		if v.Bool {
			return "#t"
		}
		return "#f"
	case VList:
		return listString(v.Pair)
	case VProc:
		return v.Proc.String()
	case VUnspecified:
		return "#<unspecified>"
	default:
		return fmt.Sprintf("#<%s>", v.Type)
	}
}

// formatFloat renders x so that it never reads as an integer.
func formatFloat(x float64) string {
	s := strconv.FormatFloat(x, 'g', -1, 64)
	if strings.ContainsAny(s, ".eIN") {
		return s
	}
	return s + ".0"
}

func listString(p *Pair) string {
	var buf bytes.Buffer
	buf.WriteString("(")
	for q := p; q != nil; q = q.Tail {
		if q != p {
			buf.WriteString(" ")
		}
		buf.WriteString(q.Head.String())
	}
	buf.WriteString(")")
	return buf.String()
}
