// Copyright © 2018 The ELPS authors

package cmd

import (
	"io"

	"github.com/luthersystems/scm/diagnostic"
)

func (c *cmdConfig) colorMode() diagnostic.ColorMode {
	return diagnostic.ParseColorMode(c.viper.GetString(keyColor))
}

func (c *cmdConfig) newRenderer() *diagnostic.Renderer {
	return &diagnostic.Renderer{Color: c.colorMode()}
}

// renderError renders an evaluation or syntax error to w.  If sourceFile is
// non-empty, a note naming the file being run is appended.
func (c *cmdConfig) renderError(w io.Writer, err error, sourceFile string) {
	var notes []string
	if sourceFile != "" {
		notes = append(notes, "while running "+sourceFile)
	}
	_ = c.newRenderer().RenderError(w, err, notes...)
}
