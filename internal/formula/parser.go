package formula

import (
	"fmt"
)

// Statement is a syntactically valid `lhs ~ rhs` line, not yet classified.
type Statement struct {
	LHS string
	RHS Expr
}

type parser struct {
	toks []token
	pos  int
}

// ParseStatement parses a single formula string.
func ParseStatement(src string) (*Statement, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}

	tildes := 0
	for _, t := range toks {
		if t.kind == tokTilde {
			tildes++
		}
	}
	if tildes != 1 {
		return nil, fmt.Errorf("expected exactly one '~', found %d", tildes)
	}

	p := &parser{toks: toks}

	lhs, err := p.expect(tokIdent)
	if err != nil {
		return nil, fmt.Errorf("left-hand side must be a single name: %w", err)
	}
	if _, err := p.expect(tokTilde); err != nil {
		return nil, fmt.Errorf("left-hand side must be a single name: %w", err)
	}

	rhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokEOF); err != nil {
		return nil, err
	}

	return &Statement{LHS: lhs.text, RHS: rhs}, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, fmt.Errorf("expected %s at %d, got %s", kind, t.pos, describe(t))
	}
	return t, nil
}

func describe(t token) string {
	if t.text != "" {
		return fmt.Sprintf("%q", t.text)
	}
	return t.kind.String()
}

// expr := term (('+'|'-') term)*
func (p *parser) parseExpr() (Expr, error) {
	x, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokPlus && t.kind != tokMinus {
			return x, nil
		}
		p.next()
		y, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		x = &Binary{Op: t.text[0], X: x, Y: y}
	}
}

// term := unary (('*'|'/') unary)*
func (p *parser) parseTerm() (Expr, error) {
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokStar && t.kind != tokSlash {
			return x, nil
		}
		p.next()
		y, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		x = &Binary{Op: t.text[0], X: x, Y: y}
	}
}

// unary := ('-'|'+') unary | primary
func (p *parser) parseUnary() (Expr, error) {
	switch p.peek().kind {
	case tokMinus:
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: '-', X: x}, nil
	case tokPlus:
		p.next()
		return p.parseUnary()
	}
	return p.parsePrimary()
}

// primary := NUMBER | IDENT | IDENT '(' [expr (',' expr)*] ')' | '(' expr ')'
func (p *parser) parsePrimary() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return &Literal{Value: t.num}, nil

	case tokIdent:
		if p.peek().kind != tokLParen {
			return &Ident{Name: t.text}, nil
		}
		p.next()
		call := &Call{Func: t.text}
		if p.peek().kind == tokRParen {
			p.next()
			return call, nil
		}
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			sep := p.next()
			if sep.kind == tokRParen {
				return call, nil
			}
			if sep.kind != tokComma {
				return nil, fmt.Errorf("expected ',' or ')' at %d, got %s", sep.pos, describe(sep))
			}
		}

	case tokLParen:
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return x, nil
	}

	return nil, fmt.Errorf("unexpected %s at %d", describe(t), t.pos)
}
