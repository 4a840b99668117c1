// Copyright © 2018 The ELPS authors

package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"github.com/luthersystems/scm/diagnostic"
	"github.com/luthersystems/scm/parser"
	"github.com/luthersystems/scm/scheme"
)

// HistoryFileName is the name of the history file in the user's home
// directory.
const HistoryFileName = ".scm_history"

type config struct {
	stdin       io.ReadCloser
	stderr      io.WriteCloser
	historyFile string
	color       diagnostic.ColorMode
	envConfig   []scheme.Config
}

func newConfig(opts ...Option) *config {
	config := &config{historyFile: historyPath()}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

type Option func(*config)

// WithStdin allows overriding the input to the REPL.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) {
		c.stdin = stdin
	}
}

// WithStderr allows overriding the output to the REPL.
func WithStderr(stderr io.WriteCloser) Option {
	return func(c *config) {
		c.stderr = stderr
	}
}

// WithHistoryFile sets the file input history is saved to.  An empty path
// disables history.
func WithHistoryFile(path string) Option {
	return func(c *config) {
		c.historyFile = path
	}
}

// WithColor sets the color mode used to render errors.
func WithColor(mode diagnostic.ColorMode) Option {
	return func(c *config) {
		c.color = mode
	}
}

// WithEnvConfig adds configuration for the environment created by RunRepl.
func WithEnvConfig(cfgs ...scheme.Config) Option {
	return func(c *config) {
		c.envConfig = append(c.envConfig, cfgs...)
	}
}

// RunRepl runs a simple repl in a new global environment.
func RunRepl(prompt string, opts ...Option) error {
	cfg := newConfig(opts...)
	envOpts := []scheme.Config{scheme.WithReader(parser.NewReader())}
	if cfg.stderr != nil {
		envOpts = append(envOpts, scheme.WithStderr(cfg.stderr))
	}
	envOpts = append(envOpts, cfg.envConfig...)
	env, err := scheme.NewGlobalEnv(envOpts...)
	if err != nil {
		return fmt.Errorf("environment initialization failure: %w", err)
	}
	return RunEnv(env, prompt, strings.Repeat(" ", len(prompt)), opts...)
}

// RunEnv runs a simple repl with env as a root environment.  Input lines
// are accumulated until their parentheses balance.  Then each expression is
// evaluated and its value printed.
func RunEnv(env *scheme.Env, prompt, cont string, opts ...Option) error {
	if env.Parent != nil {
		return errors.New("REPL environment is not a root environment")
	}
	if env.Runtime.Reader == nil {
		return errors.New("REPL environment has no reader")
	}

	cfg := newConfig(opts...)
	if cfg.stderr != nil {
		env.Runtime.Stderr = cfg.stderr
	}
	out := env.Runtime.Stderr

	ensureHistoryFilePermissions(cfg.historyFile)
	rlCfg := &readline.Config{
		Stdout:            out,
		Stderr:            out,
		Prompt:            prompt,
		HistoryFile:       cfg.historyFile,
		HistorySearchFold: true,
		AutoComplete:      &symbolCompleter{env: env},
	}
	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return err
	}
	defer rl.Close() //nolint:errcheck // best-effort cleanup

	renderer := &diagnostic.Renderer{Color: cfg.color}
	var buf strings.Builder
	for {
		if buf.Len() == 0 {
			rl.SetPrompt(prompt)
		} else {
			rl.SetPrompt(cont)
		}
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			buf.Reset()
			continue
		}
		if err != nil {
			if strings.TrimSpace(buf.String()) != "" {
				evalPrint(env, out, renderer, buf.String())
			}
			return nil
		}
		buf.WriteString(line)
		buf.WriteString("\n")
		if strings.TrimSpace(buf.String()) == "" {
			buf.Reset()
			continue
		}
		if parenDepth(buf.String()) > 0 {
			continue
		}
		evalPrint(env, out, renderer, buf.String())
		buf.Reset()
	}
}

// evalPrint evaluates each expression in source and prints its value.
// Evaluation stops at the first error.
func evalPrint(env *scheme.Env, w io.Writer, r *diagnostic.Renderer, source string) {
	exprs, err := env.Runtime.Reader.Read("stdin", strings.NewReader(source))
	if err != nil {
		_ = r.RenderError(w, err)
		return
	}
	for _, expr := range exprs {
		v, err := env.Eval(expr)
		if err != nil {
			_ = r.RenderError(w, err)
			return
		}
		if v == scheme.Unspecified() {
			continue
		}
		fmt.Fprintln(w, v) //nolint:errcheck // best-effort REPL output
	}
}

// parenDepth returns the number of unclosed parentheses in source, ignoring
// string literals and comments.
func parenDepth(source string) int {
	depth := 0
	inString := false
	escaped := false
	inComment := false
	for _, c := range source {
		switch {
		case inComment:
			inComment = c != '\n'
		case inString:
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
		case c == ';':
			inComment = true
		case c == '"':
			inString = true
		case c == '(':
			depth++
		case c == ')':
			depth--
		}
	}
	if inString && depth == 0 {
		// An unterminated string needs more input.
		return 1
	}
	return depth
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, HistoryFileName)
}

// ensureHistoryFilePermissions creates the history file if it does not
// exist and restricts it to the current user.
func ensureHistoryFilePermissions(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600) //nolint:gosec // user history file
	if err != nil {
		return
	}
	_ = f.Close()
	_ = os.Chmod(path, 0600)
}
