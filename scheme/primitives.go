// Copyright © 2018 The ELPS authors

package scheme

import (
	"math"
	"sort"
)

// Opcode identifies a primitive procedure.
type Opcode uint

// Primitive opcodes.
const (
	OpInvalid Opcode = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpCar
	OpCdr
	OpCons
	OpNull
	OpEqual
	opMax
)

// primitiveFunc computes the result of a primitive.  The argument count has
// already been checked against the primitive arity.
type primitiveFunc func(rt *Runtime, args []*Value) (*Value, error)

type langPrimitive struct {
	name  string
	arity int
	fun   primitiveFunc
	doc   string
}

var langPrimitives = [opMax]langPrimitive{
	OpAdd:   {"+", 2, primitiveAdd, "Returns the sum of two numbers."},
	OpSub:   {"-", 2, primitiveSub, "Returns the difference of two numbers."},
	OpMul:   {"*", 2, primitiveMul, "Returns the product of two numbers."},
	OpDiv:   {"/", 2, primitiveDiv, "Returns the quotient of two numbers.  The divisor must not be zero."},
	OpCar:   {"car", 1, primitiveCar, "Returns the first element of a non-empty list."},
	OpCdr:   {"cdr", 1, primitiveCdr, "Returns the list following the first element of a non-empty list."},
	OpCons:  {"cons", 2, primitiveCons, "Returns a new list with the first argument prepended to the list in the second argument."},
	OpNull:  {"null?", 1, primitiveNull, "Returns #t if the argument is the empty list."},
	OpEqual: {"=", 2, primitiveEqual, "Returns #t if both arguments are structurally equal.  An integer never equals a float."},
}

var primitiveByName = make(map[string]Opcode, len(langPrimitives))

func init() {
	for op := OpInvalid + 1; op < opMax; op++ {
		primitiveByName[langPrimitives[op].name] = op
	}
}

// PrimitiveNames returns the sorted names of all primitive procedures.
func PrimitiveNames() []string {
	names := make([]string, 0, len(primitiveByName))
	for name := range primitiveByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupPrimitive returns the opcode of the primitive with the given name.
func LookupPrimitive(name string) (Opcode, bool) {
	op, ok := primitiveByName[name]
	return op, ok
}

// PrimitiveValue returns the procedure value for the primitive op.
func PrimitiveValue(op Opcode) *Value {
	return &Value{
		Type: VProc,
		Proc: &Procedure{
			Kind: ProcPrimitive,
			Op:   op,
			Name: op.String(),
		},
	}
}

func (op Opcode) String() string {
	if op == OpInvalid || op >= opMax {
		return "INVALID"
	}
	return langPrimitives[op].name
}

// Doc returns the documentation of the primitive op.
func (op Opcode) Doc() string {
	if op == OpInvalid || op >= opMax {
		return ""
	}
	return langPrimitives[op].doc
}

// applyPrimitive validates the number of arguments and computes the result
// of the primitive op.
func applyPrimitive(rt *Runtime, op Opcode, args []*Value) (*Value, error) {
	if op == OpInvalid || op >= opMax {
		return nil, errorf(UnapplicableObject, "invalid primitive opcode: %d", op)
	}
	prim := &langPrimitives[op]
	if len(args) != prim.arity {
		return nil, errorf(ArityMismatch, "%s: expected %d arguments, got %d", prim.name, prim.arity, len(args))
	}
	return prim.fun(rt, args)
}

func primitiveAdd(rt *Runtime, args []*Value) (*Value, error) {
	return arith(rt, "+", args[0], args[1],
		func(a, b int64) (int64, bool) {
			c := a + b
			return c, (c > a) == (b > 0)
		},
		func(a, b float64) float64 { return a + b })
}

func primitiveSub(rt *Runtime, args []*Value) (*Value, error) {
	return arith(rt, "-", args[0], args[1],
		func(a, b int64) (int64, bool) {
			c := a - b
			return c, (c < a) == (b > 0)
		},
		func(a, b float64) float64 { return a - b })
}

func primitiveMul(rt *Runtime, args []*Value) (*Value, error) {
	return arith(rt, "*", args[0], args[1],
		func(a, b int64) (int64, bool) {
			if a == 0 || b == 0 {
				return 0, true
			}
			c := a * b
			return c, c/b == a && !(a == -1 && b == math.MinInt64) && !(b == -1 && a == math.MinInt64)
		},
		func(a, b float64) float64 { return a * b })
}

func primitiveDiv(rt *Runtime, args []*Value) (*Value, error) {
	a, b := args[0], args[1]
	if err := checkNumbers("/", a, b); err != nil {
		return nil, err
	}
	if (b.Type == VInt && b.Int == 0) || (b.Type == VFloat && b.Float == 0) {
		return nil, errorf(DivideByZero, "/: division by zero")
	}
	if rt.IntegerArithmetic && a.Type == VInt && b.Type == VInt {
		if a.Int%b.Int == 0 && !(a.Int == math.MinInt64 && b.Int == -1) {
			return Int(a.Int / b.Int), nil
		}
	}
	return Float(toFloat(a) / toFloat(b)), nil
}

// arith combines two numbers.  The result is a float unless the runtime
// uses integer arithmetic, both arguments are integers, and the integer
// result does not overflow.
func arith(rt *Runtime, name string, a, b *Value, iop func(a, b int64) (int64, bool), fop func(a, b float64) float64) (*Value, error) {
	if err := checkNumbers(name, a, b); err != nil {
		return nil, err
	}
	if rt.IntegerArithmetic && a.Type == VInt && b.Type == VInt {
		if c, ok := iop(a.Int, b.Int); ok {
			return Int(c), nil
		}
	}
	return Float(fop(toFloat(a), toFloat(b))), nil
}

func checkNumbers(name string, args ...*Value) error {
	for _, v := range args {
		if !v.IsNumber() {
			return errorf(TypeMismatch, "%s: argument is not a number: %v", name, v.Type)
		}
	}
	return nil
}

func toFloat(v *Value) float64 {
	if v.Type == VInt {
		return float64(v.Int)
	}
	return v.Float
}

func primitiveCar(rt *Runtime, args []*Value) (*Value, error) {
	return Car(args[0])
}

func primitiveCdr(rt *Runtime, args []*Value) (*Value, error) {
	return Cdr(args[0])
}

func primitiveCons(rt *Runtime, args []*Value) (*Value, error) {
	return Cons(args[0], args[1])
}

func primitiveNull(rt *Runtime, args []*Value) (*Value, error) {
	return Bool(args[0].IsNil()), nil
}

// primitiveEqual never equates values of different types, so 1 and 1.0
// are not equal.
func primitiveEqual(rt *Runtime, args []*Value) (*Value, error) {
	return Bool(args[0].Equal(args[1])), nil
}
