// Copyright © 2018 The ELPS authors

package scheme

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Reader parses scheme source.
type Reader interface {
	// Read the contents of r and return the sequence of Values that it
	// contains.  The returned Values should be evaluated as if inside a
	// begin.
	Read(name string, r io.Reader) ([]*Value, error)
}

// LoadString parses exprs and evaluates the expressions it contains.
func (env *Env) LoadString(name, exprs string) (*Value, error) {
	return env.Load(name, strings.NewReader(exprs))
}

// LoadFile reads the file at path and evaluates the expressions it contains.
func (env *Env) LoadFile(path string) (*Value, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck
	return env.Load(path, f)
}

// Load reads Values from r and evaluates them in order.  The value of the
// last expression is returned, or the empty list if r contained no
// expressions.  Any read error prevents evaluation.  If env.Runtime.Reader
// has not been set then an error will be returned by Load.
func (env *Env) Load(name string, r io.Reader) (*Value, error) {
	if env.Runtime.Reader == nil {
		return nil, fmt.Errorf("no reader for environment runtime")
	}
	exprs, err := env.Runtime.Reader.Read(name, r)
	if err != nil {
		return nil, err
	}
	ret := Nil()
	for _, exp := range exprs {
		ret, err = env.Eval(exp)
		if err != nil {
			return nil, err
		}
	}
	return ret, nil
}
