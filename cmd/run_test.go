// Copyright © 2018 The ELPS authors

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testViper() *viper.Viper {
	v := viper.New()
	v.Set(keyColor, "never")
	return v
}

func execute(t *testing.T, v *viper.Viper, args ...string) (string, string, error) {
	t.Helper()
	cmd := RunCommand(WithViper(v))
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRunCommand_DefaultFlags(t *testing.T) {
	cmd := RunCommand()
	assert.Equal(t, "run [flags] FILE...", cmd.Use)
	for _, name := range []string{"expression", "print"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestRunExpressions(t *testing.T) {
	stdout, stderr, err := execute(t, testViper(), "-e", "-p",
		"(define (square x) (* x x))",
		"(square 12) (if #f 1)",
		"'(1 2)")
	require.NoError(t, err)
	assert.Equal(t, "ok\n144.0\n(1 2)\n", stdout)
	assert.Empty(t, stderr)

	// Without -p nothing is printed.
	stdout, _, err = execute(t, testViper(), "-e", "(+ 1 2)")
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestRunIntegerArithmetic(t *testing.T) {
	v := testViper()
	v.Set(keyIntegerArithmetic, true)
	stdout, _, err := execute(t, v, "-e", "-p", "(* 6 7)", "(/ 7 2)")
	require.NoError(t, err)
	assert.Equal(t, "42\n3.5\n", stdout)
}

func TestRunFiles(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "a_lib.scm")
	main := filepath.Join(dir, "b_main.scm")
	require.NoError(t, os.WriteFile(lib, []byte(`
; accumulate a list of n copies of x
(define (repeat x n acc)
  (if (= n 0.0) acc (repeat x (- n 1) (cons x acc))))
`), 0o600))
	require.NoError(t, os.WriteFile(main, []byte(`(repeat 'a 3 '())`), 0o600))

	stdout, _, err := execute(t, testViper(), "-p", lib, main)
	require.NoError(t, err)
	assert.Equal(t, "ok\n(a a a)\n", stdout)

	stdout, _, err = execute(t, testViper(), "-p", dir+"/...")
	require.NoError(t, err)
	assert.Equal(t, "ok\n(a a a)\n", stdout)
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.scm")
	require.NoError(t, os.WriteFile(path, []byte(`(define (f x) (car x)) (f 1) (undefined)`), 0o600))

	stdout, stderr, err := execute(t, testViper(), "-p", path)
	assert.ErrorIs(t, err, errEvalFailed)
	assert.Equal(t, "ok\n", stdout, "evaluation stops at the first error")
	assert.Contains(t, stderr, "error[type-mismatch]: f: car: not a list: integer\n   = note: in f\n")
	assert.Contains(t, stderr, "while running")

	_, stderr, err = execute(t, testViper(), "-e", "(+ 1")
	assert.ErrorIs(t, err, errEvalFailed)
	assert.Contains(t, stderr, "error[syntax]: unmatched")

	_, _, err = execute(t, testViper(), filepath.Join(dir, "missing.scm"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, errEvalFailed)

	_, _, err = execute(t, testViper())
	assert.Error(t, err, "at least one argument is required")
}

func TestRunStackHeight(t *testing.T) {
	v := testViper()
	v.Set(keyMaxStackHeight, 50)
	_, stderr, err := execute(t, v, "-e",
		"(define (deep n) (+ 1 (deep n)))",
		"(deep 1)")
	assert.ErrorIs(t, err, errEvalFailed)
	assert.Contains(t, stderr, "error[stack-overflow]: deep: stack height exceeded maximum: 51")
}

func TestRunInvalidLogLevel(t *testing.T) {
	v := testViper()
	v.Set(keyLogLevel, "chatty")
	_, _, err := execute(t, v, "-e", "1")
	assert.ErrorContains(t, err, "invalid log-level")
}

func TestRunDebugLogging(t *testing.T) {
	v := testViper()
	v.Set(keyLogLevel, "debug")
	_, stderr, err := execute(t, v, "-e", "((lambda (x) x) 1)")
	require.NoError(t, err)
	assert.Contains(t, stderr, "msg=apply")
}
