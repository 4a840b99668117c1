// Copyright © 2018 The ELPS authors

package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runDoc(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := DocCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestDocCommand(t *testing.T) {
	out, err := runDoc(t)
	require.NoError(t, err)
	assert.Contains(t, out, "# scm language reference")

	out, err = runDoc(t, "car")
	require.NoError(t, err)
	assert.Equal(t, "primitive car\n\n  Returns the first element of a non-empty list.\n", out)

	out, err = runDoc(t, "set!")
	require.NoError(t, err)
	assert.Contains(t, out, "special form set!\n")
	assert.Contains(t, out, "innermost existing binding")

	_, err = runDoc(t, "cadr")
	assert.EqualError(t, err, "no documentation for cadr")
}

func TestDocList(t *testing.T) {
	out, err := runDoc(t, "-l")
	require.NoError(t, err)
	assert.Contains(t, out, "lambda   special form\n")
	assert.Contains(t, out, "null?    primitive\n")
}
