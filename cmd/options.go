// Copyright © 2018 The ELPS authors

package cmd

import (
	"fmt"
	"io"

	"github.com/luthersystems/scm/parser"
	"github.com/luthersystems/scm/scheme"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Option configures an exported command factory (RunCommand, ReplCommand).
type Option func(*cmdConfig)

type cmdConfig struct {
	viper *viper.Viper
	env   *scheme.Env
}

func newCmdConfig(opts ...Option) *cmdConfig {
	c := &cmdConfig{}
	for _, opt := range opts {
		opt(c)
	}
	if c.viper == nil {
		c.viper = viper.GetViper()
	}
	return c
}

// WithViper makes a command read its configuration from v instead of the
// global viper instance.
func WithViper(v *viper.Viper) Option {
	return func(c *cmdConfig) { c.viper = v }
}

// WithEnv injects a fully configured global environment.  Configuration
// keys which affect the environment are ignored when an env is given.
func WithEnv(env *scheme.Env) Option {
	return func(c *cmdConfig) { c.env = env }
}

// envConfig translates configuration keys into environment options.
func (c *cmdConfig) envConfig(stderr io.Writer) ([]scheme.Config, error) {
	config := []scheme.Config{
		scheme.WithReader(parser.NewReader()),
		scheme.WithStderr(stderr),
		scheme.WithIntegerArithmetic(c.viper.GetBool(keyIntegerArithmetic)),
	}
	if n := c.viper.GetInt(keyMaxStackHeight); n > 0 {
		config = append(config, scheme.WithMaximumStackHeight(n))
	}
	if name := c.viper.GetString(keyLogLevel); name != "" {
		level, err := logrus.ParseLevel(name)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", keyLogLevel, err)
		}
		config = append(config, scheme.WithLogLevel(level))
	}
	return config, nil
}

// newEnv returns the injected environment or a new global environment
// configured from the command configuration.
func (c *cmdConfig) newEnv(stderr io.Writer) (*scheme.Env, error) {
	if c.env != nil {
		return c.env, nil
	}
	config, err := c.envConfig(stderr)
	if err != nil {
		return nil, err
	}
	return scheme.NewGlobalEnv(config...)
}
