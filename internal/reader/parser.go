package reader

import (
	"fmt"

	"github.com/roach88/clausal/internal/term"
)

// parser is an operator-precedence parser over one clause at a time.
type parser struct {
	lex  *lexer
	ops  *term.OpTable
	tok  token
	peek *token

	vars  map[string]term.Var
	order []term.Var
}

func (p *parser) advance() error {
	if p.peek != nil {
		p.tok = *p.peek
		p.peek = nil
		return nil
	}
	tok, err := p.lex.scan()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) lookahead() (token, error) {
	if p.peek == nil {
		tok, err := p.lex.scan()
		if err != nil {
			return token{}, err
		}
		p.peek = &tok
	}
	return *p.peek, nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Line: p.tok.line, Col: p.tok.col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expectPunct(text string) error {
	if p.tok.kind != tokPunct || p.tok.text != text {
		return p.errorf("expected %q, found %s", text, p.tok)
	}
	return p.advance()
}

func (p *parser) variable(name string) term.Var {
	if name == "_" {
		return term.NewVar("_")
	}
	if v, ok := p.vars[name]; ok {
		return v
	}
	v := term.NewVar(name)
	p.vars[name] = v
	p.order = append(p.order, v)
	return v
}

// readClause parses one term terminated by an end token. It returns nil at
// end of input.
func (p *parser) readClause() (term.Term, error) {
	p.vars = map[string]term.Var{}
	p.order = nil
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.kind == tokEOF {
		return nil, nil
	}
	t, _, err := p.parse(1200)
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEnd {
		return nil, p.errorf("operator expected, found %s", p.tok)
	}
	return t, nil
}

// parse reads a term whose priority is at most max. On return p.tok is the
// first token after the term.
func (p *parser) parse(max int) (term.Term, int, error) {
	left, prec, err := p.parsePrimary(max)
	if err != nil {
		return nil, 0, err
	}
	return p.parseInfix(left, prec, max)
}

func (p *parser) parseInfix(left term.Term, leftPrec, max int) (term.Term, int, error) {
	for {
		name, ok := p.infixName()
		if !ok {
			return left, leftPrec, nil
		}
		if op, ok := p.ops.Infix(name); ok {
			lmax, rmax := op.ArgMax()
			if op.Priority <= max && leftPrec <= lmax {
				if err := p.advance(); err != nil {
					return nil, 0, err
				}
				right, _, err := p.parse(rmax)
				if err != nil {
					return nil, 0, err
				}
				if name == "|" {
					name = ";"
				}
				left = &term.Struct{Functor: name, Args: []term.Term{left, right}}
				leftPrec = op.Priority
				continue
			}
		}
		if op, ok := p.ops.Postfix(name); ok {
			lmax, _ := op.ArgMax()
			if op.Priority <= max && leftPrec <= lmax {
				if err := p.advance(); err != nil {
					return nil, 0, err
				}
				left = &term.Struct{Functor: name, Args: []term.Term{left}}
				leftPrec = op.Priority
				continue
			}
		}
		return left, leftPrec, nil
	}
}

// infixName reports the operator name the current token could stand for in
// infix position.
func (p *parser) infixName() (string, bool) {
	switch p.tok.kind {
	case tokName:
		return p.tok.text, true
	case tokPunct:
		if p.tok.text == "," || p.tok.text == "|" {
			return p.tok.text, true
		}
	}
	return "", false
}

func (p *parser) parsePrimary(max int) (term.Term, int, error) {
	tok := p.tok
	switch tok.kind {
	case tokInt:
		return term.Integer(tok.ival), 0, p.advance()
	case tokReal:
		return term.Real(tok.fval), 0, p.advance()
	case tokVar:
		return p.variable(tok.text), 0, p.advance()
	case tokString:
		return term.Atom(tok.text), 0, p.advance()
	case tokPunct, tokOpenCT:
		return p.parseBracketed(tok)
	case tokName:
		return p.parseName(tok, max)
	case tokEnd:
		return nil, 0, p.errorf("unexpected end of clause")
	}
	return nil, 0, p.errorf("unexpected %s", tok)
}

func (p *parser) parseBracketed(tok token) (term.Term, int, error) {
	switch tok.text {
	case "(":
		if err := p.advance(); err != nil {
			return nil, 0, err
		}
		t, _, err := p.parse(1200)
		if err != nil {
			return nil, 0, err
		}
		return t, 0, p.expectPunct(")")
	case "[":
		if err := p.advance(); err != nil {
			return nil, 0, err
		}
		if p.tok.kind == tokPunct && p.tok.text == "]" {
			return p.atomOrCompound("[]")
		}
		elems, err := p.argList(",", "|", "]")
		if err != nil {
			return nil, 0, err
		}
		var tail term.Term = term.EmptyList
		if p.tok.text == "|" {
			if err := p.advance(); err != nil {
				return nil, 0, err
			}
			if tail, _, err = p.parse(999); err != nil {
				return nil, 0, err
			}
		}
		return term.ListWithTail(tail, elems...), 0, p.expectPunct("]")
	case "{":
		if err := p.advance(); err != nil {
			return nil, 0, err
		}
		if p.tok.kind == tokPunct && p.tok.text == "}" {
			return p.atomOrCompound("{}")
		}
		t, _, err := p.parse(1200)
		if err != nil {
			return nil, 0, err
		}
		return &term.Struct{Functor: "{}", Args: []term.Term{t}}, 0, p.expectPunct("}")
	}
	return nil, 0, p.errorf("unexpected %s", tok)
}

// argList parses comma separated arguments at priority 999 and stops at any
// of the given closing tokens, which is left current.
func (p *parser) argList(sep string, closers ...string) ([]term.Term, error) {
	var args []term.Term
	for {
		a, _, err := p.parse(999)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.tok.kind == tokPunct && p.tok.text == sep {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		for _, c := range closers {
			if p.tok.kind == tokPunct && p.tok.text == c {
				return args, nil
			}
		}
		return nil, p.errorf("expected %q or one of %q, found %s", sep, closers, p.tok)
	}
}

// atomOrCompound consumes the closing bracket of [] or {} and handles a
// following functional-notation argument list.
func (p *parser) atomOrCompound(name string) (term.Term, int, error) {
	if err := p.advance(); err != nil {
		return nil, 0, err
	}
	if p.tok.kind == tokOpenCT {
		return p.compound(name)
	}
	return term.Atom(name), 0, nil
}

func (p *parser) compound(name string) (term.Term, int, error) {
	if err := p.advance(); err != nil {
		return nil, 0, err
	}
	args, err := p.argList(",", ")")
	if err != nil {
		return nil, 0, err
	}
	return term.NewStruct(name, args...), 0, p.advance()
}

func (p *parser) parseName(tok token, max int) (term.Term, int, error) {
	if err := p.advance(); err != nil {
		return nil, 0, err
	}
	name := tok.text

	if p.tok.kind == tokOpenCT {
		return p.compound(name)
	}

	if name == "-" || name == "+" {
		if (p.tok.kind == tokInt || p.tok.kind == tokReal) && !p.tok.layout {
			num := p.tok
			if err := p.advance(); err != nil {
				return nil, 0, err
			}
			switch {
			case num.kind == tokInt && name == "-":
				return term.Integer(-num.ival), 0, nil
			case num.kind == tokInt:
				return term.Integer(num.ival), 0, nil
			case name == "-":
				return term.Real(-num.fval), 0, nil
			default:
				return term.Real(num.fval), 0, nil
			}
		}
	}

	op, isPrefix := p.ops.Prefix(name)
	if !isPrefix || !p.startsTerm() {
		pri := 0
		if p.ops.IsOp(name) {
			pri = opPriority(p.ops, name)
			if pri > max {
				pri = 0
			}
		}
		return term.Atom(name), pri, nil
	}

	pri := op.Priority
	_, argMax := op.ArgMax()
	if pri > max {
		pri, argMax = 999, 999
	}
	arg, _, err := p.parse(argMax)
	if err != nil {
		return nil, 0, err
	}
	return &term.Struct{Functor: name, Args: []term.Term{arg}}, pri, nil
}

func opPriority(ops *term.OpTable, name string) int {
	pri := 0
	if op, ok := ops.Prefix(name); ok && op.Priority > pri {
		pri = op.Priority
	}
	if op, ok := ops.Infix(name); ok && op.Priority > pri {
		pri = op.Priority
	}
	return pri
}

// startsTerm reports whether the current token can begin an operand of a
// prefix operator.
func (p *parser) startsTerm() bool {
	switch p.tok.kind {
	case tokEOF, tokEnd:
		return false
	case tokPunct:
		switch p.tok.text {
		case "(", "[", "{":
			return true
		}
		return false
	case tokName:
		// An infix operator here means the prefix operator is itself the
		// left operand, as in "- = X".
		if _, infix := p.ops.Infix(p.tok.text); infix {
			if _, prefix := p.ops.Prefix(p.tok.text); !prefix {
				next, err := p.lookahead()
				return err == nil && next.kind == tokOpenCT
			}
		}
	}
	return true
}
