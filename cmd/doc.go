// Copyright © 2018 The ELPS authors

package cmd

import (
	"fmt"
	"io"

	"github.com/luthersystems/scm/docs"
	"github.com/luthersystems/scm/scheme"
	"github.com/spf13/cobra"
)

// DocCommand returns the doc command, which prints the language reference
// or the documentation of a primitive procedure or special form.
func DocCommand() *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "doc [flags] [NAME]",
		Short: "Show documentation",
		Long: `Show documentation for a primitive procedure or special form.

Without arguments the language reference is printed.`,
		Example: `  scm doc car
  scm doc define
  scm doc -l`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch {
			case list:
				return docList(w)
			case len(args) == 0:
				_, err := io.WriteString(w, docs.LangGuide)
				return err
			default:
				return docName(w, args[0])
			}
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List documented names")
	return cmd
}

func docName(w io.Writer, name string) error {
	if doc := scheme.SpecialFormDoc(name); doc != "" {
		_, err := fmt.Fprintf(w, "special form %s\n\n  %s\n", name, doc)
		return err
	}
	if op, ok := scheme.LookupPrimitive(name); ok {
		_, err := fmt.Fprintf(w, "primitive %s\n\n  %s\n", name, op.Doc())
		return err
	}
	return fmt.Errorf("no documentation for %s", name)
}

func docList(w io.Writer) error {
	for _, name := range scheme.SpecialForms() {
		if _, err := fmt.Fprintf(w, "%-8s special form\n", name); err != nil {
			return err
		}
	}
	for _, name := range scheme.PrimitiveNames() {
		if _, err := fmt.Fprintf(w, "%-8s primitive\n", name); err != nil {
			return err
		}
	}
	return nil
}
