// Copyright © 2018 The ELPS authors

package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/luthersystems/scm/repl"
	"github.com/spf13/cobra"
)

// ReplCommand returns the repl command.
func ReplCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts...)
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive Scheme REPL",
		Long: `Start an interactive read-eval-print loop.

Input continues on the next line until parentheses balance.  Line editing,
tab completion and command history (~/.scm_history) are supported via
readline.  Use Ctrl-D to exit and Ctrl-C to discard the current input.

Example REPL session:
  scm> (define (square x) (* x x))
  ok
  scm> (square 5)
  25.0
  scm> (car '())
  error[type-mismatch]: car: not a pair: ()`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stderr := cmd.ErrOrStderr()
			env, err := cfg.newEnv(stderr)
			if err != nil {
				return err
			}
			stop, err := startTracing(env, cfg.viper.GetString(keyTrace), "scm repl", stderr, cfg.viper.GetString(keyTraceFile))
			if err != nil {
				return err
			}
			prompt := filepath.Base(os.Args[0]) + "> "
			err = repl.RunEnv(env, prompt, strings.Repeat(" ", len(prompt)), repl.WithColor(cfg.colorMode()))
			if err != nil {
				_ = stop()
				return err
			}
			return stop()
		},
	}
}
