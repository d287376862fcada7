package formula

import (
	"strconv"
	"strings"
)

// Expr is a node of a formula right-hand side.
type Expr interface {
	String() string
	children() []Expr
}

type Literal struct {
	Value float64
}

type Ident struct {
	Name string
}

// Unary is a prefix negation.
type Unary struct {
	Op byte
	X  Expr
}

type Binary struct {
	Op   byte
	X, Y Expr
}

// Call is a distribution or math function applied to arguments.
type Call struct {
	Func string
	Args []Expr
}

func (l *Literal) String() string { return strconv.FormatFloat(l.Value, 'g', -1, 64) }
func (i *Ident) String() string   { return i.Name }
func (u *Unary) String() string   { return string(u.Op) + u.X.String() }

func (b *Binary) String() string {
	return "(" + b.X.String() + " " + string(b.Op) + " " + b.Y.String() + ")"
}

func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return c.Func + "(" + strings.Join(args, ", ") + ")"
}

func (l *Literal) children() []Expr { return nil }
func (i *Ident) children() []Expr   { return nil }
func (u *Unary) children() []Expr   { return []Expr{u.X} }
func (b *Binary) children() []Expr  { return []Expr{b.X, b.Y} }
func (c *Call) children() []Expr    { return c.Args }

// Walk visits e and its descendants depth-first. Returning false from fn
// skips the children of the current node.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, c := range e.children() {
		Walk(c, fn)
	}
}

// isLiteral reports whether e is a number, optionally negated.
func isLiteral(e Expr) bool {
	switch n := e.(type) {
	case *Literal:
		return true
	case *Unary:
		return isLiteral(n.X)
	}
	return false
}
