// Copyright © 2018 The ELPS authors

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Configuration keys.  Each key can be set by a flag of the same name, by
// the configuration file, or by an environment variable with the SCM_
// prefix, e.g. SCM_MAX_STACK_HEIGHT.
const (
	keyMaxStackHeight    = "max-stack-height"
	keyIntegerArithmetic = "integer-arithmetic"
	keyLogLevel          = "log-level"
	keyTrace             = "trace"
	keyTraceFile         = "trace-file"
	keyColor             = "color"
)

var cfgFile string

// errEvalFailed is returned by commands which already reported an error to
// the user.
var errEvalFailed = errors.New("evaluation failed")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scm",
	Short: "scm — a small Scheme interpreter",
	Long: `scm is a tree-walking interpreter for a small subset of Scheme.

Getting started:
  scm run file.scm             Run a source file
  scm run dir/...              Run every .scm file under dir
  scm run -e '(+ 1 2)' -p      Evaluate an expression and print its value
  scm repl                     Start an interactive REPL
  scm doc car                  Show documentation for a primitive

Language overview:
  Special forms are quote, set!, define, if, lambda and begin.
  The primitive procedures are + - * / car cdr cons null? and =.
  Only #t is true in the predicate of an if expression.
  Calls in tail position run in constant stack space.

Configuration is read from $HOME/.scm.yaml (or --config) and from SCM_*
environment variables.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errEvalFailed) {
			fmt.Fprintln(os.Stderr, err) //nolint:errcheck // best-effort error display
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.scm.yaml)")
	flags.String(keyColor, "auto", `Control colored output: "auto", "always", or "never".`)
	flags.Int(keyMaxStackHeight, 0, "Maximum call stack height (default 10000)")
	flags.Bool(keyIntegerArithmetic, false, "Keep integer results of arithmetic on integers")
	flags.String(keyLogLevel, "warning", "Interpreter log level (debug logs every application)")
	flags.String(keyTrace, "", `Trace procedure applications: "otel", "opencensus", "pprof" or "callgrind"`)
	flags.String(keyTraceFile, "", "Output file of the pprof and callgrind trace modes")
	for _, key := range []string{keyColor, keyMaxStackHeight, keyIntegerArithmetic, keyLogLevel, keyTrace, keyTraceFile} {
		if err := viper.BindPFlag(key, flags.Lookup(key)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(RunCommand())
	rootCmd.AddCommand(ReplCommand())
	rootCmd.AddCommand(DocCommand())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err) //nolint:errcheck // best-effort error display
			os.Exit(1)
		}

		// Search config in home directory with name ".scm" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".scm")
	}

	viper.SetEnvPrefix("scm")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed()) //nolint:errcheck // informational
	}
}
