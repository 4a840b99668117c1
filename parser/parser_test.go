// Copyright © 2018 The ELPS authors

package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/luthersystems/scm/scheme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		source string
		result string
	}{
		{`1`, `1`},
		{`-12`, `-12`},
		{`3.5`, `3.5`},
		{`1e3`, `1000.0`},
		{`#t`, `#t`},
		{`#false`, `#f`},
		{`"a b"`, `"a b"`},
		{`car`, `car`},
		{`null?`, `null?`},
		{`set!`, `set!`},
		{`+`, `+`},
		{`()`, `()`},
		{`(+ 1 2)`, `(+ 1 2)`},
		{`((1 2) (3 4) 5)`, `((1 2) (3 4) 5)`},
		{`'a`, `(quote a)`},
		{`'(1 a)`, `(quote (1 a))`},
		{`(define (f x)
			; the identity
			x)`, `(define (f x) x)`},
	}
	for _, test := range tests {
		vals, err := ParseString(test.source)
		if assert.NoError(t, err, test.source) && assert.Len(t, vals, 1, test.source) {
			assert.Equal(t, test.result, vals[0].String(), test.source)
		}
	}
}

func TestParseTypes(t *testing.T) {
	vals, err := ParseString(`1 1.0 x "x" #t ()`)
	require.NoError(t, err)
	var types []scheme.VType
	for _, v := range vals {
		types = append(types, v.Type)
	}
	assert.Equal(t, []scheme.VType{
		scheme.VInt,
		scheme.VFloat,
		scheme.VSymbol,
		scheme.VString,
		scheme.VBool,
		scheme.VList,
	}, types)
	assert.True(t, vals[5].IsNil())
	assert.Same(t, scheme.Bool(true), vals[4])
}

func TestParseComments(t *testing.T) {
	vals, err := ParseString("; only a comment\n")
	require.NoError(t, err)
	assert.Empty(t, vals)

	vals, err = ParseString("1 ; one\n2 ; two\n")
	require.NoError(t, err)
	require.Len(t, vals, 2)
	assert.Equal(t, "2", vals[1].String())
}

func TestParseErrors(t *testing.T) {
	for _, test := range []struct {
		source string
		msg    string
	}{
		{`(define x`, `unmatched "("`},
		{`(a (b c)`, `unmatched "("`},
		{`(a (b`, `unmatched "("`},
		{`(+ 1 2))`, `unexpected source text possibly starting: )`},
		{`)`, `unexpected source text possibly starting: )`},
	} {
		_, err := ParseString(test.source)
		if assert.Error(t, err, test.source) {
			var perr *Error
			assert.True(t, errors.As(err, &perr), test.source)
			assert.Contains(t, err.Error(), test.msg, test.source)
		}
	}
}

func TestReader(t *testing.T) {
	r := NewReader()
	exprs, err := r.Read("test.scm", strings.NewReader("(define x 1)\n(+ x 1)"))
	require.NoError(t, err)
	require.Len(t, exprs, 2)
	assert.True(t, scheme.IsDefinition(exprs[0]))
	assert.True(t, scheme.IsApplication(exprs[1]))

	_, err = r.Read("test.scm", strings.NewReader("(+ 1"))
	require.Error(t, err)
	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "test.scm", perr.Source)
	assert.Contains(t, err.Error(), "test.scm")
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "f.scm:3: bad", (&Error{Source: "f.scm", Line: 3, Msg: "bad"}).Error())
	assert.Equal(t, "f.scm: bad", (&Error{Source: "f.scm", Msg: "bad"}).Error())
	assert.Equal(t, "3: bad", (&Error{Line: 3, Msg: "bad"}).Error())
	assert.Equal(t, "bad", (&Error{Msg: "bad"}).Error())
}

func BenchmarkParse(b *testing.B) {
	source := []byte(strings.Repeat("(define (square x) (* x x)) (square 12) '(1 2 3)\n", 50))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, err := Parse(source)
		if err != nil {
			b.Fatal(err)
		}
	}
}
