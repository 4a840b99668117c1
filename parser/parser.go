// Copyright © 2018 The ELPS authors

/*
Package parser provides a scheme reader.

	expr     := '(' <expr>* ')' | '\'' <expr> | <number> | <string> | <boolean> | <symbol>
	number   := /[+-]?[0-9]+/ <fraction>? <exponent>?
	fraction := '.' /[0-9]+/
	exponent := e /[+-]?[0-9]+/
	string   := '"' <strcontent> '"'
	boolean  := '#t' | '#f' | '#true' | '#false'
	symbol   := /[^[:space:]()']+/

Comments begin with ';' and extend to the end of the line.  The form 'x is
read as (quote x).
*/
package parser

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/luthersystems/scm/scheme"
	parsec "github.com/prataprc/goparsec"
)

// NewReader returns a scheme.Reader.
func NewReader() scheme.Reader {
	return &parsecReader{}
}

type parsecReader struct{}

func (p *parsecReader) Read(name string, r io.Reader) ([]*scheme.Value, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	vals, _, err := Parse(b)
	if err != nil {
		if perr, ok := err.(*Error); ok {
			perr.Source = name
		}
		return nil, err
	}
	return vals, nil
}

// Error is a syntax error.  Line is zero when the location of the error is
// unknown.
type Error struct {
	Source string
	Line   int
	Msg    string
}

func (e *Error) Error() string {
	switch {
	case e.Source != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Msg)
	case e.Source != "":
		return fmt.Sprintf("%s: %s", e.Source, e.Msg)
	case e.Line > 0:
		return fmt.Sprintf("%d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

const (
	nodeInvalid nodeType = iota
	nodeTerm
	nodeSExpr
	nodeSExprOUnmatched
	nodeQExpr
)

var nodeTypeStrings = []string{
	nodeInvalid:         "INVALID",
	nodeTerm:            "TERM",
	nodeSExpr:           "SEXPR",
	nodeSExprOUnmatched: "SEXPROPENUNMATCHED",
	nodeQExpr:           "QEXPR",
}

type nodeType uint

func (t nodeType) String() string {
	if int(t) >= len(nodeTypeStrings) {
		return "INVALID"
	}
	return nodeTypeStrings[t]
}

// Parse parses scheme values from text and returns them.  The number of
// bytes read is returned along with any error that was encountered in
// parsing.
func Parse(text []byte) ([]*scheme.Value, int, error) {
	var vals []*scheme.Value
	s := parsec.NewScanner(text)
	s = s.TrackLineno()
	parser := newParsecParser()
	root, s := parser(s)
	for root != nil {
		v, err := getValue(root)
		if err != nil {
			return vals, s.GetCursor(), &Error{Line: s.Lineno(), Msg: err.Error()}
		}
		if v != nil {
			vals = append(vals, v)
		}
		root, s = parser(s)
	}
	_, s = s.SkipWS()
	if !s.Endof() {
		b, _ := s.Match(`.{1,16}`)
		if len(b) > 15 {
			b = append(b[:15:15], []byte("...")...)
		}
		return vals, s.GetCursor(), &Error{
			Line: s.Lineno(),
			Msg:  fmt.Sprintf("unexpected source text possibly starting: %s", b),
		}
	}
	return vals, s.GetCursor(), nil
}

// ParseString parses the scheme values in text.
func ParseString(text string) ([]*scheme.Value, error) {
	vals, _, err := Parse([]byte(text))
	return vals, err
}

func newParsecParser() parsec.Parser {
	openP := parsec.Atom("(", "OPENP")
	closeP := parsec.Atom(")", "CLOSEP")
	q := parsec.Atom("'", "QUOTE")
	comment := parsec.Token(`;([^\n]*[^\s])?`, "COMMENT")
	decimal := parsec.Token(`[+-]?[0-9]+([.][0-9]+)?([eE][+-]?[0-9]+)?`, "DECIMAL")
	boolean := parsec.Token(`#(?:true|false|t|f)`, "BOOLEAN")
	symbol := parsec.Token(`(?:\pL|[0-9]|[._+\-*/\=<>!&~%?$^:])+`, "SYMBOL")
	term := parsec.OrdChoice(astNode(nodeTerm), // terminal token
		parsec.String(),
		decimal,
		boolean,
		symbol, // symbol comes last because it swallows anything
	)
	var expr parsec.Parser // forward declaration allows for recursive parsing
	exprList := parsec.Kleene(nil, &expr)
	sexpr := parsec.And(astNode(nodeSExpr), openP, exprList, closeP)
	sexprOUnmatched := parsec.And(astNode(nodeSExprOUnmatched), openP, exprList, parsec.End())
	qexpr := parsec.And(astNode(nodeQExpr), q, &expr)
	expr = parsec.OrdChoice(nil,
		comment,
		term,
		sexpr,
		qexpr,
		// Error matching cases come last because they have the lowest
		// precedence.
		sexprOUnmatched,
	)
	return expr
}

func newAST(typ nodeType, nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes, ok := cleanParsecNodeList(nodes)
	if !ok {
		// There is an error in the first position.
		return nodes[0]
	}
	switch typ {
	case nodeTerm:
		if len(nodes) == 0 {
			return fmt.Errorf("empty term")
		}
		return newTerm(nodes[0])
	case nodeSExprOUnmatched:
		open := nodes[0].(*parsec.Terminal)
		rest := open.GetValue() + stringifyNodes(nodes[1:len(nodes)-1]) // Trim off the End node
		if len(rest) > 10 {
			rest = rest[:10] + "..."
		}
		return fmt.Errorf("unmatched %q starting: %v", open.GetValue(), rest)
	case nodeSExpr:
		// We don't want terminal parsec nodes '(' and ')'
		vals := make([]*scheme.Value, 0, len(nodes))
		for _, c := range nodes {
			if c, ok := c.(*scheme.Value); ok {
				vals = append(vals, c)
			}
		}
		return scheme.List(vals...)
	case nodeQExpr:
		if len(nodes) < 2 {
			return fmt.Errorf("quote is missing an expression")
		}
		c, ok := nodes[1].(*scheme.Value)
		if !ok {
			return fmt.Errorf("invalid quoted expression")
		}
		return scheme.List(scheme.Symbol(scheme.KeywordQuote), c)
	default:
		panic(fmt.Sprintf("unknown nodeType: %s (%d)", typ, typ))
	}
}

func newTerm(node parsec.ParsecNode) parsec.ParsecNode {
	switch term := node.(type) {
	case string:
		return scheme.String(unquoteString(term))
	case *parsec.Terminal:
		switch term.Name {
		case "DECIMAL":
			if strings.ContainsAny(term.Value, ".eE") {
				f, err := strconv.ParseFloat(term.Value, 64)
				if err != nil {
					return fmt.Errorf("bad number: %v (%s)", err, term.Value)
				}
				return scheme.Float(f)
			}
			x, err := strconv.ParseInt(term.Value, 10, 64)
			if err != nil {
				return fmt.Errorf("bad number: %v (%s)", err, term.Value)
			}
			return scheme.Int(x)
		case "BOOLEAN":
			return scheme.Bool(term.Value == "#t" || term.Value == "#true")
		case "SYMBOL":
			return scheme.Symbol(term.Value)
		}
	}
	return fmt.Errorf("unexpected token: %v", node)
}

func stringifyNodes(nodes []parsec.ParsecNode) string {
	var s []string
	for _, node := range nodes {
		switch node := node.(type) {
		case *parsec.Terminal:
			switch node.GetName() {
			case "OPENP", "CLOSEP":
				continue
			}
			s = append(s, node.GetValue())
		case []parsec.ParsecNode:
			s = append(s, "("+stringifyNodes(node)+")")
		case *scheme.Value:
			s = append(s, node.String())
		}
	}
	return strings.Join(s, " ")
}

func cleanParsecNodeList(lis []parsec.ParsecNode) ([]parsec.ParsecNode, bool) {
	var nodes []parsec.ParsecNode
	for _, n := range lis {
		switch node := n.(type) {
		case *parsec.Terminal:
			if node.Name == "COMMENT" {
				continue
			}
			nodes = append(nodes, node)
		case error:
			nodes = []parsec.ParsecNode{node}
			return nodes, false
		case []parsec.ParsecNode:
			clean, ok := cleanParsecNodeList(node)
			if !ok {
				return clean, false
			}
			nodes = append(nodes, clean...)
		default:
			nodes = append(nodes, node)
		}
	}
	return nodes, true
}

func astNode(t nodeType) parsec.Nodify {
	return func(nodes []parsec.ParsecNode) parsec.ParsecNode {
		return newAST(t, nodes)
	}
}

// getValue returns the value of a top level node.  A nil value is returned
// for nodes containing only comments.
func getValue(root parsec.ParsecNode) (*scheme.Value, error) {
	nodes, ok := cleanParsecNodeList([]parsec.ParsecNode{root})
	if !ok {
		return nil, nodes[0].(error)
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	v, ok := nodes[0].(*scheme.Value)
	if !ok {
		return nil, nil
	}
	return v, nil
}

// The goparsec.String() parser unescapes the string contents but returns
// them wrapped in double quotes.
func unquoteString(s string) string {
	return s[1 : len(s)-1]
}
