// Copyright © 2018 The ELPS authors

package scheme

import (
	"github.com/sirupsen/logrus"
)

// Eval evaluates exp in env.
func Eval(exp *Value, env *Env) (*Value, error) {
	return env.Eval(exp)
}

// Eval evaluates exp in env.  Errors returned by Eval are of type *Error
// and carry a copy of the call stack at the point of failure.
func (env *Env) Eval(exp *Value) (*Value, error) {
	return eval(env.runtime(), env, exp)
}

// Apply applies the procedure proc to the list of argument values args.
// Compound procedures are evaluated in an extension of the environment they
// closed over, not in env.
func (env *Env) Apply(proc *Value, args *Value) (*Value, error) {
	rt := env.runtime()
	vals, err := Slice(args)
	if err != nil {
		return nil, rt.attachStack(err)
	}
	return apply(rt, proc, vals)
}

// EvalSequence evaluates the list of expressions exps in order and returns
// the value of the last one.  An empty sequence is an UnrecognizedExpression
// error.
func (env *Env) EvalSequence(exps *Value) (*Value, error) {
	rt := env.runtime()
	last, err := evalLeading(rt, env, exps)
	if err != nil {
		return nil, err
	}
	return eval(rt, env, last)
}

// ListOfValues evaluates the list of expressions exps from left to right and
// returns the list of their values.
func (env *Env) ListOfValues(exps *Value) (*Value, error) {
	rt := env.runtime()
	vals, err := listOfValues(rt, env, exps)
	if err != nil {
		return nil, err
	}
	return List(vals...), nil
}

// eval is the evaluation loop.  Expressions in tail position (the branches
// of if, the last expression of begin and of a procedure body) are evaluated
// by further iterations of the loop instead of by recursion.  A tail call of
// a compound procedure replaces the stack frame pushed by this invocation.
func eval(rt *Runtime, env *Env, exp *Value) (*Value, error) {
	var (
		pushed bool
		end    = func() {}
	)
	defer func() {
		end()
		if pushed {
			rt.Stack.Pop()
		}
	}()
	for {
		if err := rt.checkContext(); err != nil {
			return nil, rt.attachStack(err)
		}
		if exp == nil {
			return nil, rt.attachStack(errorf(UnrecognizedExpression, "missing expression"))
		}
		switch {
		case isLiteral(exp):
			return exp, nil
		case exp.Type == VSymbol:
			v, err := env.Get(exp.Str)
			if err != nil {
				return nil, rt.attachStack(err)
			}
			return v, nil
		case IsQuoted(exp):
			v, err := TextOfQuotation(exp)
			if err != nil {
				return nil, rt.attachStack(err)
			}
			return v, nil
		case IsAssignment(exp):
			return evalAssignment(rt, env, exp)
		case IsDefinition(exp):
			return evalDefinition(rt, env, exp)
		case IsIf(exp):
			next, err := evalIf(rt, env, exp)
			if err != nil {
				return nil, err
			}
			exp = next
		case IsLambda(exp):
			return evalLambda(rt, env, exp)
		case IsBegin(exp):
			next, err := evalLeading(rt, env, BeginActions(exp))
			if err != nil {
				return nil, err
			}
			exp = next
		case IsApplication(exp):
			proc, err := eval(rt, env, Operator(exp))
			if err != nil {
				return nil, err
			}
			args, err := listOfValues(rt, env, Operands(exp))
			if err != nil {
				return nil, err
			}
			if !IsCompoundProcedure(proc) {
				return apply(rt, proc, args)
			}
			if pushed {
				rt.Stack.ReplaceTop(proc.Proc)
			} else {
				err = rt.Stack.Push(proc.Proc)
				if err != nil {
					return nil, rt.attachStack(err)
				}
				pushed = true
			}
			end()
			end = rt.profile(proc.Proc)
			logApply(rt, proc.Proc, len(args))
			env, err = extendProcedureEnv(rt, proc.Proc, args)
			if err != nil {
				return nil, rt.attachStack(err)
			}
			exp, err = evalLeading(rt, env, proc.Proc.Body)
			if err != nil {
				return nil, err
			}
		default:
			return nil, rt.attachStack(errorf(UnrecognizedExpression, "unknown expression type: %v", exp))
		}
	}
}

// isLiteral returns true for values which evaluate to themselves.
func isLiteral(exp *Value) bool {
	switch exp.Type {
	case VInt, VFloat, VString, VBool, VProc, VUnspecified:
		return true
	case VList:
		return exp.Pair == nil || exp.IsNumberCombination()
	}
	return false
}

func apply(rt *Runtime, proc *Value, args []*Value) (*Value, error) {
	switch {
	case IsPrimitiveProcedure(proc):
		end := rt.profile(proc.Proc)
		defer end()
		logApply(rt, proc.Proc, len(args))
		v, err := applyPrimitive(rt, proc.Proc.Op, args)
		if err != nil {
			return nil, rt.attachStack(err)
		}
		return v, nil
	case IsCompoundProcedure(proc):
		err := rt.Stack.Push(proc.Proc)
		if err != nil {
			return nil, rt.attachStack(err)
		}
		defer rt.Stack.Pop()
		end := rt.profile(proc.Proc)
		defer end()
		logApply(rt, proc.Proc, len(args))
		env, err := extendProcedureEnv(rt, proc.Proc, args)
		if err != nil {
			return nil, rt.attachStack(err)
		}
		last, err := evalLeading(rt, env, proc.Proc.Body)
		if err != nil {
			return nil, err
		}
		return eval(rt, env, last)
	default:
		return nil, rt.attachStack(errorf(UnapplicableObject, "not a procedure: %v", proc))
	}
}

// extendProcedureEnv binds the parameters of proc to args in a new frame
// extending the environment proc closed over.
func extendProcedureEnv(rt *Runtime, proc *Procedure, args []*Value) (*Env, error) {
	env, err := proc.Env.Extend(proc.Params, args)
	if err != nil {
		return nil, err
	}
	env.Runtime = rt
	return env, nil
}

// evalLeading evaluates every expression in exps except the last and returns
// the last expression unevaluated.
func evalLeading(rt *Runtime, env *Env, exps *Value) (*Value, error) {
	if !exps.IsPair() {
		return nil, rt.attachStack(errorf(UnrecognizedExpression, "empty sequence"))
	}
	if rt.debugEnabled() {
		rt.Logger.WithFields(logrus.Fields{
			"depth": len(rt.Stack.Frames),
			"nexp":  exps.Pair.Len(),
		}).Debug("eval sequence")
	}
	p := exps.Pair
	for ; p.Tail != nil; p = p.Tail {
		_, err := eval(rt, env, p.Head)
		if err != nil {
			return nil, err
		}
	}
	return p.Head, nil
}

func listOfValues(rt *Runtime, env *Env, exps *Value) ([]*Value, error) {
	vals := make([]*Value, 0, exps.Pair.Len())
	for p := exps.Pair; p != nil; p = p.Tail {
		v, err := eval(rt, env, p.Head)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func evalIf(rt *Runtime, env *Env, exp *Value) (*Value, error) {
	pred, err := IfPredicate(exp)
	if err != nil {
		return nil, rt.attachStack(err)
	}
	ok, err := eval(rt, env, pred)
	if err != nil {
		return nil, err
	}
	var next *Value
	if ok.IsTrue() {
		next, err = IfConsequent(exp)
	} else {
		next, err = IfAlternative(exp)
	}
	if err != nil {
		return nil, rt.attachStack(err)
	}
	return next, nil
}

func evalAssignment(rt *Runtime, env *Env, exp *Value) (*Value, error) {
	name, err := AssignmentVariable(exp)
	if err != nil {
		return nil, rt.attachStack(err)
	}
	valexp, err := AssignmentValue(exp)
	if err != nil {
		return nil, rt.attachStack(err)
	}
	val, err := eval(rt, env, valexp)
	if err != nil {
		return nil, err
	}
	err = env.Update(name, val)
	if err != nil {
		return nil, rt.attachStack(err)
	}
	return Symbol("ok"), nil
}

func evalDefinition(rt *Runtime, env *Env, exp *Value) (*Value, error) {
	name, err := DefinitionVariable(exp)
	if err != nil {
		return nil, rt.attachStack(err)
	}
	valexp, err := DefinitionValue(exp)
	if err != nil {
		return nil, rt.attachStack(err)
	}
	val, err := eval(rt, env, valexp)
	if err != nil {
		return nil, err
	}
	if IsLambda(valexp) && IsCompoundProcedure(val) && val.Proc.Name == "" {
		// The closure was created for this definition alone.
		val.Proc.Name = name
	}
	err = env.Put(name, val)
	if err != nil {
		return nil, rt.attachStack(err)
	}
	return Symbol("ok"), nil
}

func evalLambda(rt *Runtime, env *Env, exp *Value) (*Value, error) {
	params, err := LambdaParameters(exp)
	if err != nil {
		return nil, rt.attachStack(err)
	}
	proc, err := MakeProcedure(params, LambdaBody(exp), env)
	if err != nil {
		return nil, rt.attachStack(err)
	}
	return proc, nil
}

func logApply(rt *Runtime, proc *Procedure, nargs int) {
	if !rt.debugEnabled() {
		return
	}
	rt.Logger.WithFields(logrus.Fields{
		"proc":  proc.String(),
		"depth": len(rt.Stack.Frames),
		"nargs": nargs,
	}).Debug("apply")
}
