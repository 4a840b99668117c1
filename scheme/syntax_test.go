// Copyright © 2018 The ELPS authors

package scheme

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sym(s string) *Value { return Symbol(s) }

func TestClassifier(t *testing.T) {
	quoted := List(sym("quote"), sym("a"))
	assign := List(sym("set!"), sym("x"), Int(1))
	def := List(sym("define"), sym("x"), Int(1))
	ifExp := List(sym("if"), Bool(true), Int(1), Int(2))
	lambda := List(sym("lambda"), List(sym("x")), sym("x"))
	begin := List(sym("begin"), Int(1), Int(2))
	app := List(sym("f"), Int(1))

	forms := []*Value{quoted, assign, def, ifExp, lambda, begin, app}
	preds := []func(*Value) bool{IsQuoted, IsAssignment, IsDefinition, IsIf, IsLambda, IsBegin, IsApplication}
	for i, form := range forms {
		for j, pred := range preds {
			assert.Equal(t, i == j, pred(form), "form %v predicate %d", form, j)
		}
	}

	assert.True(t, IsQuoted(Quote("x")))
	assert.True(t, IsApplication(List(List(sym("lambda"), Nil(), Int(1)))))
	assert.False(t, IsApplication(Nil()))
	assert.False(t, IsApplication(Int(1)))
	assert.False(t, IsTaggedList(sym("if"), "if"))
}

func TestClassifierAccessors(t *testing.T) {
	q, err := TextOfQuotation(List(sym("quote"), List(Int(1), sym("a"))))
	require.NoError(t, err)
	assert.Equal(t, "(1 a)", q.String())
	atom := Quote("x")
	q, err = TextOfQuotation(atom)
	require.NoError(t, err)
	assert.Same(t, atom, q)

	assign := List(sym("set!"), sym("x"), List(sym("+"), sym("x"), Int(1)))
	name, err := AssignmentVariable(assign)
	require.NoError(t, err)
	assert.Equal(t, "x", name)
	val, err := AssignmentValue(assign)
	require.NoError(t, err)
	assert.Equal(t, "(+ x 1)", val.String())

	def := List(sym("define"), List(sym("square"), sym("x")), List(sym("*"), sym("x"), sym("x")))
	name, err = DefinitionVariable(def)
	require.NoError(t, err)
	assert.Equal(t, "square", name)
	val, err = DefinitionValue(def)
	require.NoError(t, err)
	assert.Equal(t, "(lambda (x) (* x x))", val.String())

	def = List(sym("define"), sym("x"), Int(8))
	val, err = DefinitionValue(def)
	require.NoError(t, err)
	assert.True(t, val.Equal(Int(8)))

	ifExp := List(sym("if"), sym("p"), Int(1))
	pred, err := IfPredicate(ifExp)
	require.NoError(t, err)
	assert.Equal(t, "p", pred.String())
	conseq, err := IfConsequent(ifExp)
	require.NoError(t, err)
	assert.True(t, conseq.Equal(Int(1)))
	alt, err := IfAlternative(ifExp)
	require.NoError(t, err)
	assert.Same(t, Unspecified(), alt)

	lambda := List(sym("lambda"), List(sym("x"), sym("y")), Int(1), Int(2))
	params, err := LambdaParameters(lambda)
	require.NoError(t, err)
	assert.Equal(t, "(x y)", params.String())
	assert.Equal(t, "(1 2)", LambdaBody(lambda).String())
	assert.Equal(t, "(lambda (x y) 1 2)", MakeLambda(params, LambdaBody(lambda)).String())

	assert.Equal(t, "(1 2)", BeginActions(List(sym("begin"), Int(1), Int(2))).String())
	assert.True(t, BeginActions(List(sym("begin"))).IsNil())

	app := List(sym("f"), Int(1), Int(2))
	assert.Equal(t, "f", Operator(app).String())
	assert.Equal(t, "(1 2)", Operands(app).String())
	assert.True(t, Operands(List(sym("f"))).IsNil())
}

func TestClassifierMalformed(t *testing.T) {
	for _, exp := range []*Value{
		List(sym("quote")),
		List(sym("quote"), Int(1), Int(2)),
	} {
		_, err := TextOfQuotation(exp)
		assert.True(t, errors.Is(err, ErrUnrecognizedExpression), exp.String())
	}
	_, err := AssignmentVariable(List(sym("set!"), Int(1), Int(2)))
	assert.True(t, errors.Is(err, ErrUnrecognizedExpression))
	_, err = DefinitionVariable(List(sym("define")))
	assert.True(t, errors.Is(err, ErrUnrecognizedExpression))
	_, err = DefinitionValue(List(sym("define"), sym("x")))
	assert.True(t, errors.Is(err, ErrUnrecognizedExpression))
	_, err = IfPredicate(List(sym("if"), Int(1)))
	assert.True(t, errors.Is(err, ErrUnrecognizedExpression))
	_, err = LambdaParameters(List(sym("lambda")))
	assert.True(t, errors.Is(err, ErrUnrecognizedExpression))
}
