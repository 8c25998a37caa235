package reader

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/clausal/internal/term"
)

// SyntaxError reports malformed source text with its position.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// Query is a parsed goal together with its named variables in order of
// first appearance. Anonymous variables are not listed.
type Query struct {
	Goal term.Term
	Vars []term.Var
}

// Reader parses clauses and goals. Operator definitions made with op/3
// directives while reading apply to the rest of the input and to later reads
// from the same Reader.
type Reader struct {
	ops *term.OpTable
}

// New returns a Reader using the standard operator table.
func New() *Reader {
	return &Reader{ops: term.DefaultOps()}
}

// Ops returns the reader's operator table.
func (r *Reader) Ops() *term.OpTable { return r.ops }

// ReadClauses parses every clause in src.
func (r *Reader) ReadClauses(src io.Reader) ([]*term.Clause, error) {
	p := &parser{lex: newLexer(src), ops: r.ops}
	var out []*term.Clause
	for {
		t, err := p.readClause()
		if err != nil {
			return nil, err
		}
		if t == nil {
			return out, nil
		}
		c, ok := term.ToClause(t)
		if !ok {
			return nil, &SyntaxError{Line: p.tok.line, Col: p.tok.col, Msg: fmt.Sprintf("%s is not a clause", term.Format(t))}
		}
		if c.IsDirective() {
			if err := r.applyDirective(c.Body); err != nil {
				return nil, &SyntaxError{Line: p.tok.line, Col: p.tok.col, Msg: err.Error()}
			}
		}
		out = append(out, c)
	}
}

// ReadQuery parses a single goal. The terminating '.' is optional.
func (r *Reader) ReadQuery(src string) (*Query, error) {
	src = strings.TrimSpace(src)
	if !strings.HasSuffix(src, ".") || strings.HasSuffix(src, "..") {
		src += " ."
	}
	p := &parser{lex: newLexer(strings.NewReader(src)), ops: r.ops}
	t, err := p.readClause()
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, &SyntaxError{Line: 1, Col: 1, Msg: "empty query"}
	}
	if s, ok := t.(*term.Struct); ok && s.Functor == "?-" && len(s.Args) == 1 {
		t = s.Args[0]
	}
	if tail, err := p.lex.scan(); err == nil && tail.kind != tokEOF {
		return nil, &SyntaxError{Line: tail.line, Col: tail.col, Msg: "unexpected input after query"}
	}
	return &Query{Goal: t, Vars: p.order}, nil
}

// ReadTerm parses a single term. The terminating '.' is optional.
func (r *Reader) ReadTerm(src string) (term.Term, error) {
	q, err := r.ReadQuery(src)
	if err != nil {
		return nil, err
	}
	return q.Goal, nil
}

// applyDirective handles the directives that affect reading.
func (r *Reader) applyDirective(body term.Term) error {
	for _, g := range term.TupleSlice(body) {
		s, ok := g.(*term.Struct)
		if !ok || s.Functor != "op" || len(s.Args) != 3 {
			continue
		}
		pri, ok1 := s.Args[0].(term.Integer)
		typ, ok2 := s.Args[1].(term.Atom)
		if !ok1 || !ok2 || pri < 0 || pri > 1200 || !validOpType(term.OpType(typ)) {
			return fmt.Errorf("invalid op/3 directive %s", term.Format(s))
		}
		names := []term.Term{s.Args[2]}
		if term.IsList(s.Args[2]) {
			names, _ = term.ListSlice(s.Args[2])
		}
		for _, n := range names {
			name, ok := n.(term.Atom)
			if !ok {
				return fmt.Errorf("invalid operator name %s", term.Format(n))
			}
			r.ops.Add(term.Op{Name: string(name), Priority: int(pri), Type: term.OpType(typ)})
		}
	}
	return nil
}

func validOpType(t term.OpType) bool {
	switch t {
	case term.XFX, term.XFY, term.YFX, term.FY, term.FX, term.XF, term.YF:
		return true
	}
	return false
}

// ParseClauses parses src with the standard operators.
func ParseClauses(src string) ([]*term.Clause, error) {
	return New().ReadClauses(strings.NewReader(src))
}

// ParseQuery parses a goal with the standard operators.
func ParseQuery(src string) (*Query, error) {
	return New().ReadQuery(src)
}

// ParseTerm parses a term with the standard operators.
func ParseTerm(src string) (term.Term, error) {
	return New().ReadTerm(src)
}

// MustParseTerm is ParseTerm for tests and fixed inputs; it panics on error.
func MustParseTerm(src string) term.Term {
	t, err := ParseTerm(src)
	if err != nil {
		panic(err)
	}
	return t
}
