package term

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Printer renders terms as source text. A Printer numbers unnamed variables
// _0, _1, ... in order of first appearance across all calls, so several
// terms printed with the same Printer stay consistent with each other.
type Printer struct {
	// Quoted quotes atoms that would not read back as the same atom.
	Quoted bool
	// Ops is the operator table used for infix/prefix rendering.
	Ops *OpTable
	// NumberVars enables _N naming; otherwise unnamed variables print as _G<id>.
	NumberVars bool

	names map[int64]string
}

// NewPrinter returns a quoting, variable-numbering printer over the
// standard operators.
func NewPrinter() *Printer {
	return &Printer{Quoted: true, Ops: standardOps, NumberVars: true}
}

// Format renders t quoted, with unnamed variables as _G<id>.
func Format(t Term) string {
	p := &Printer{Quoted: true, Ops: standardOps}
	return p.Format(t)
}

// FormatUnquoted renders t the way write/1 does.
func FormatUnquoted(t Term) string {
	p := &Printer{Ops: standardOps}
	return p.Format(t)
}

// Format renders t.
func (p *Printer) Format(t Term) string {
	if p.Ops == nil {
		p.Ops = standardOps
	}
	var b strings.Builder
	p.write(&b, t, 1200)
	return b.String()
}

func (p *Printer) write(b *strings.Builder, t Term, max int) {
	switch t := t.(type) {
	case nil:
		b.WriteString("<nil>")
	case Var:
		b.WriteString(p.varName(t))
	case Atom:
		p.writeAtomOperand(b, t, max)
	case Integer:
		b.WriteString(strconv.FormatInt(int64(t), 10))
	case Real:
		b.WriteString(FormatReal(float64(t)))
	case *Clause:
		p.write(b, t.Struct(), max)
	case *Struct:
		p.writeStruct(b, t, max)
	default:
		fmt.Fprintf(b, "%v", t)
	}
}

func (p *Printer) varName(v Var) string {
	if !v.IsAnonymous() {
		return v.Name
	}
	if !p.NumberVars {
		return "_G" + strconv.FormatInt(v.ID, 10)
	}
	if p.names == nil {
		p.names = map[int64]string{}
	}
	if n, ok := p.names[v.ID]; ok {
		return n
	}
	n := "_" + strconv.Itoa(len(p.names))
	p.names[v.ID] = n
	return n
}

func (p *Printer) writeAtomOperand(b *strings.Builder, a Atom, max int) {
	if pri := p.atomPriority(string(a)); pri > max {
		b.WriteByte('(')
		p.writeAtom(b, a)
		b.WriteByte(')')
		return
	}
	p.writeAtom(b, a)
}

func (p *Printer) atomPriority(name string) int {
	pri := 0
	for _, lookup := range []func(string) (Op, bool){p.Ops.Prefix, p.Ops.Infix, p.Ops.Postfix} {
		if op, ok := lookup(name); ok && op.Priority > pri {
			pri = op.Priority
		}
	}
	return pri
}

func (p *Printer) writeAtom(b *strings.Builder, a Atom) {
	if !p.Quoted || !needsQuotes(string(a)) {
		b.WriteString(string(a))
		return
	}
	b.WriteString(QuoteAtom(string(a)))
}

func (p *Printer) writeStruct(b *strings.Builder, s *Struct, max int) {
	switch {
	case s.Functor == "." && len(s.Args) == 2:
		p.writeList(b, s)
		return
	case s.Functor == "{}" && len(s.Args) == 1:
		b.WriteByte('{')
		p.write(b, s.Args[0], 1200)
		b.WriteByte('}')
		return
	}
	if len(s.Args) == 2 {
		if op, ok := p.Ops.Infix(s.Functor); ok {
			p.writeInfix(b, s, op, max)
			return
		}
	}
	if len(s.Args) == 1 {
		if op, ok := p.Ops.Prefix(s.Functor); ok {
			p.writePrefix(b, s, op, max)
			return
		}
		if op, ok := p.Ops.Postfix(s.Functor); ok {
			open := op.Priority > max
			if open {
				b.WriteByte('(')
			}
			l, _ := op.ArgMax()
			p.write(b, s.Args[0], l)
			p.writeAtom(b, Atom(s.Functor))
			if open {
				b.WriteByte(')')
			}
			return
		}
	}
	p.writeAtom(b, Atom(s.Functor))
	b.WriteByte('(')
	for i, a := range s.Args {
		if i > 0 {
			b.WriteByte(',')
		}
		p.write(b, a, 999)
	}
	b.WriteByte(')')
}

func (p *Printer) writeInfix(b *strings.Builder, s *Struct, op Op, max int) {
	open := op.Priority > max
	if open {
		b.WriteByte('(')
	}
	lmax, rmax := op.ArgMax()
	left := p.sub(s.Args[0], lmax)
	right := p.sub(s.Args[1], rmax)
	name := s.Functor
	if name != "," {
		var nb strings.Builder
		p.writeAtom(&nb, Atom(name))
		name = nb.String()
	}
	b.WriteString(left)
	switch {
	case name == ",":
		b.WriteString(",")
	case isAlnumAtom(s.Functor) || name == "->" || name == ":-" || name == "-->" || name == ";":
		b.WriteString(" " + name + " ")
	default:
		if endsWithSymbol(left) {
			b.WriteByte(' ')
		}
		b.WriteString(name)
		if startsWithSymbol(right) {
			b.WriteByte(' ')
		}
	}
	b.WriteString(right)
	if open {
		b.WriteByte(')')
	}
}

func (p *Printer) writePrefix(b *strings.Builder, s *Struct, op Op, max int) {
	open := op.Priority > max
	if open {
		b.WriteByte('(')
	}
	_, rmax := op.ArgMax()
	p.writeAtom(b, Atom(s.Functor))
	arg := p.sub(s.Args[0], rmax)
	if IsNumber(s.Args[0]) || startsWithSymbol(arg) || isAlnumAtom(s.Functor) || strings.HasPrefix(arg, "(") {
		b.WriteByte(' ')
	}
	b.WriteString(arg)
	if open {
		b.WriteByte(')')
	}
}

func (p *Printer) sub(t Term, max int) string {
	var sb strings.Builder
	p.write(&sb, t, max)
	return sb.String()
}

func (p *Printer) writeList(b *strings.Builder, s *Struct) {
	elems, tail := ListSlice(s)
	b.WriteByte('[')
	for i, e := range elems {
		if i > 0 {
			b.WriteByte(',')
		}
		p.write(b, e, 999)
	}
	if !IsEmptyList(tail) {
		b.WriteByte('|')
		p.write(b, tail, 999)
	}
	b.WriteByte(']')
}

// FormatReal renders a float so that it reads back as a Real.
func FormatReal(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// QuoteAtom wraps name in single quotes, escaping as needed.
func QuoteAtom(name string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range name {
		switch r {
		case '\'':
			b.WriteString("\\'")
		case '\\':
			b.WriteString("\\\\")
		case '\n':
			b.WriteString("\\n")
		case '\t':
			b.WriteString("\\t")
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

const symbolChars = "+-*/\\^<>=~:.?@#&$"

// IsSymbolChar reports whether r may appear in a symbolic atom.
func IsSymbolChar(r rune) bool {
	return strings.ContainsRune(symbolChars, r)
}

func needsQuotes(name string) bool {
	switch name {
	case "[]", "{}", "!", ";":
		return false
	case "", ",", "|", ".":
		return true
	}
	if isAlnumAtom(name) {
		return false
	}
	for _, r := range name {
		if !IsSymbolChar(r) {
			return true
		}
	}
	return false
}

func isAlnumAtom(name string) bool {
	r, size := utf8.DecodeRuneInString(name)
	if size == 0 || !unicode.IsLower(r) {
		return false
	}
	for _, r := range name[size:] {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func startsWithSymbol(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return IsSymbolChar(r)
}

func endsWithSymbol(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return IsSymbolChar(r)
}
