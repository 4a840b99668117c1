// Copyright © 2018 The ELPS authors

package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/luthersystems/scm/scheme"
	"github.com/spf13/cobra"
)

// RunCommand returns the run command, which evaluates source files or
// expressions given on the command line.
func RunCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts...)
	var (
		runExpression bool
		runPrint      bool
	)
	cmd := &cobra.Command{
		Use:   "run [flags] FILE...",
		Short: "Run scheme code",
		Long: `Run scheme code supplied via the command line or files.

Arguments ending in "/..." expand to every .scm file under the directory.
Files are evaluated in order in a single global environment.  Evaluation
stops at the first error.`,
		Example: `  scm run prog.scm
  scm run -e -p '(define (sq x) (* x x))' '(sq 12)'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stderr := cmd.ErrOrStderr()
			env, err := cfg.newEnv(stderr)
			if err != nil {
				return err
			}
			stop, err := startTracing(env, cfg.viper.GetString(keyTrace), "scm run", stderr, cfg.viper.GetString(keyTraceFile))
			if err != nil {
				return err
			}
			sources, err := runReadSources(args, runExpression)
			if err != nil {
				_ = stop()
				return err
			}
			for _, src := range sources {
				err = runSource(env, cmd.OutOrStdout(), src, runPrint)
				if err != nil {
					cfg.renderError(stderr, err, src.file)
					_ = stop()
					return errEvalFailed
				}
			}
			return stop()
		},
	}
	cmd.Flags().BoolVarP(&runExpression, "expression", "e", false,
		"Interpret arguments as scheme expressions")
	cmd.Flags().BoolVarP(&runPrint, "print", "p", false,
		"Print expression values to stdout")
	return cmd
}

type runSourceText struct {
	// name is shown in syntax errors; file is empty for expressions.
	name string
	file string
	text []byte
}

func runReadSources(args []string, expressions bool) ([]runSourceText, error) {
	if expressions {
		srcs := make([]runSourceText, len(args))
		for i := range args {
			srcs[i] = runSourceText{name: fmt.Sprintf("expression %d", i+1), text: []byte(args[i])}
		}
		return srcs, nil
	}
	paths, err := expandArgs(args)
	if err != nil {
		return nil, err
	}
	srcs := make([]runSourceText, len(paths))
	for i, path := range paths {
		b, err := os.ReadFile(path) //nolint:gosec // user-specified source file
		if err != nil {
			return nil, err
		}
		srcs[i] = runSourceText{name: path, file: path, text: b}
	}
	return srcs, nil
}

// runSource evaluates each expression of src in env.  When print is true
// values other than the unspecified value are written to w.
func runSource(env *scheme.Env, w io.Writer, src runSourceText, print bool) error {
	exprs, err := env.Runtime.Reader.Read(src.name, bytes.NewReader(src.text))
	if err != nil {
		return err
	}
	for _, expr := range exprs {
		v, err := env.Eval(expr)
		if err != nil {
			return err
		}
		if print && v != scheme.Unspecified() {
			if _, err := fmt.Fprintln(w, v); err != nil {
				return err
			}
		}
	}
	return nil
}
