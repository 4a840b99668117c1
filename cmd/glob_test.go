// Copyright © 2018 The ELPS authors

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandArgs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.scm", "a.scm", "notes.txt", "sub/c.scm"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
		require.NoError(t, os.WriteFile(path, []byte("1"), 0o600))
	}

	files, err := expandArgs([]string{"first.scm", dir + "/..."})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"first.scm",
		filepath.Join(dir, "a.scm"),
		filepath.Join(dir, "b.scm"),
		filepath.Join(dir, "sub", "c.scm"),
	}, files)

	_, err = expandArgs([]string{filepath.Join(dir, "missing") + "/..."})
	assert.Error(t, err)
}
