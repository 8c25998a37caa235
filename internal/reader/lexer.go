package reader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/roach88/clausal/internal/term"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokName
	tokVar
	tokInt
	tokReal
	tokString
	tokPunct // ( ) [ ] { } , |
	tokOpenCT
	tokEnd
)

func (k tokenKind) String() string {
	return [...]string{"end of input", "atom", "variable", "integer", "float", "string", "punctuation", "'('", "end of clause"}[k]
}

type token struct {
	kind tokenKind
	text string
	ival int64
	fval float64
	// layout is true when whitespace or a comment preceded the token.
	layout bool
	line   int
	col    int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF, tokEnd:
		return t.kind.String()
	}
	return fmt.Sprintf("%s %q", t.kind, t.text)
}

// lexer turns source text into tokens. It reads runes through a small
// lookahead buffer so that "1.5", "1. " and "0'c" can be told apart.
type lexer struct {
	r    *bufio.Reader
	look []rune
	line int
	col  int
	err  error
}

func newLexer(src io.Reader) *lexer {
	return &lexer{r: bufio.NewReader(src), line: 1, col: 1}
}

const eof = rune(-1)

func (l *lexer) peekAt(i int) rune {
	for len(l.look) <= i {
		ch, _, err := l.r.ReadRune()
		if err != nil {
			if err != io.EOF && l.err == nil {
				l.err = err
			}
			return eof
		}
		l.look = append(l.look, ch)
	}
	return l.look[i]
}

func (l *lexer) peek() rune { return l.peekAt(0) }

func (l *lexer) next() rune {
	ch := l.peek()
	if ch == eof {
		return eof
	}
	l.look = l.look[1:]
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *lexer) errorf(line, col int, format string, args ...any) error {
	return &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

// skipLayout consumes whitespace and comments and reports whether any was seen.
func (l *lexer) skipLayout() (bool, error) {
	seen := false
	for {
		ch := l.peek()
		switch {
		case ch == eof:
			return seen, nil
		case unicode.IsSpace(ch):
			l.next()
			seen = true
		case ch == '%':
			for ch := l.next(); ch != '\n' && ch != eof; ch = l.next() {
			}
			seen = true
		case ch == '/' && l.peekAt(1) == '*':
			line, col := l.line, l.col
			l.next()
			l.next()
			for {
				ch := l.next()
				if ch == eof {
					return seen, l.errorf(line, col, "unterminated block comment")
				}
				if ch == '*' && l.peek() == '/' {
					l.next()
					break
				}
			}
			seen = true
		default:
			return seen, nil
		}
	}
}

func isAlnum(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

func isLayoutOrEOF(ch rune) bool {
	return ch == eof || unicode.IsSpace(ch) || ch == '%'
}

// scan returns the next token.
func (l *lexer) scan() (token, error) {
	layout, err := l.skipLayout()
	if err != nil {
		return token{}, err
	}
	tok := token{layout: layout, line: l.line, col: l.col}
	ch := l.peek()
	switch {
	case ch == eof:
		tok.kind = tokEOF
		return tok, l.err

	case unicode.IsDigit(ch):
		return l.scanNumber(tok)

	case ch == '_' || unicode.IsUpper(ch):
		tok.kind = tokVar
		tok.text = l.scanWhile(isAlnum)
		return tok, nil

	case unicode.IsLetter(ch):
		tok.kind = tokName
		tok.text = l.scanWhile(isAlnum)
		return tok, nil

	case ch == '\'':
		tok.kind = tokName
		s, err := l.scanQuoted('\'')
		tok.text = s
		return tok, err

	case ch == '"' || ch == '`':
		tok.kind = tokString
		s, err := l.scanQuoted(ch)
		tok.text = s
		return tok, err

	case ch == '(':
		l.next()
		tok.kind = tokPunct
		if !layout {
			tok.kind = tokOpenCT
		}
		tok.text = "("
		return tok, nil

	case strings.ContainsRune(")[]{},|", ch):
		l.next()
		tok.kind = tokPunct
		tok.text = string(ch)
		if ch == '|' && l.peek() == '|' {
			l.next()
			tok.kind = tokName
			tok.text = "||"
		}
		return tok, nil

	case ch == '!' || ch == ';':
		l.next()
		tok.kind = tokName
		tok.text = string(ch)
		return tok, nil

	case ch == '.' && isLayoutOrEOF(l.peekAt(1)):
		l.next()
		tok.kind = tokEnd
		return tok, nil

	case term.IsSymbolChar(ch):
		tok.kind = tokName
		tok.text = l.scanWhile(term.IsSymbolChar)
		return tok, nil
	}
	l.next()
	return tok, l.errorf(tok.line, tok.col, "unexpected character %q", ch)
}

func (l *lexer) scanWhile(pred func(rune) bool) string {
	var b strings.Builder
	for pred(l.peek()) {
		b.WriteRune(l.next())
	}
	return b.String()
}

func (l *lexer) scanNumber(tok token) (token, error) {
	tok.kind = tokInt
	if l.peek() == '0' {
		switch l.peekAt(1) {
		case '\'':
			l.next()
			l.next()
			ch, err := l.scanCharCode()
			tok.ival = int64(ch)
			tok.text = strconv.FormatInt(tok.ival, 10)
			return tok, err
		case 'x', 'o', 'b':
			base := map[rune]int{'x': 16, 'o': 8, 'b': 2}[l.peekAt(1)]
			if isDigitIn(l.peekAt(2), base) {
				l.next()
				l.next()
				digits := l.scanWhile(func(r rune) bool { return isDigitIn(r, base) })
				v, err := strconv.ParseInt(digits, base, 64)
				if err != nil {
					return tok, l.errorf(tok.line, tok.col, "invalid number: %v", err)
				}
				tok.ival = v
				tok.text = digits
				return tok, nil
			}
		}
	}

	text := l.scanWhile(unicode.IsDigit)
	isReal := false
	if l.peek() == '.' && unicode.IsDigit(l.peekAt(1)) {
		isReal = true
		l.next()
		text += "." + l.scanWhile(unicode.IsDigit)
	}
	if e := l.peek(); e == 'e' || e == 'E' {
		sign := l.peekAt(1)
		switch {
		case unicode.IsDigit(sign):
			isReal = true
			l.next()
			text += "e" + l.scanWhile(unicode.IsDigit)
		case (sign == '+' || sign == '-') && unicode.IsDigit(l.peekAt(2)):
			isReal = true
			l.next()
			l.next()
			text += "e" + string(sign) + l.scanWhile(unicode.IsDigit)
		}
	}
	tok.text = text
	if isReal {
		tok.kind = tokReal
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return tok, l.errorf(tok.line, tok.col, "invalid float %q", text)
		}
		tok.fval = v
		return tok, nil
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return tok, l.errorf(tok.line, tok.col, "integer out of range %q", text)
	}
	tok.ival = v
	return tok, nil
}

func isDigitIn(r rune, base int) bool {
	switch {
	case r >= '0' && r <= '9':
		return int(r-'0') < base
	case r >= 'a' && r <= 'f':
		return base == 16
	case r >= 'A' && r <= 'F':
		return base == 16
	}
	return false
}

func (l *lexer) scanCharCode() (rune, error) {
	line, col := l.line, l.col
	ch := l.next()
	switch ch {
	case eof:
		return 0, l.errorf(line, col, "unexpected end of input in character code")
	case '\\':
		return l.scanEscape(line, col)
	case '\'':
		if l.peek() == '\'' {
			l.next()
		}
		return '\'', nil
	}
	return ch, nil
}

func (l *lexer) scanEscape(line, col int) (rune, error) {
	ch := l.next()
	switch ch {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case 'a':
		return '\a', nil
	case 'b':
		return '\b', nil
	case 'f':
		return '\f', nil
	case 'v':
		return '\v', nil
	case '0':
		return 0, nil
	case '\\', '\'', '"', '`':
		return ch, nil
	}
	return 0, l.errorf(line, col, "unknown escape \\%c", ch)
}

func (l *lexer) scanQuoted(q rune) (string, error) {
	line, col := l.line, l.col
	l.next()
	var b strings.Builder
	for {
		ch := l.next()
		switch ch {
		case eof:
			return "", l.errorf(line, col, "unterminated quoted %c", q)
		case q:
			if l.peek() == q {
				l.next()
				b.WriteRune(q)
				continue
			}
			return b.String(), nil
		case '\\':
			if l.peek() == '\n' {
				l.next()
				continue
			}
			r, err := l.scanEscape(l.line, l.col)
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
		default:
			b.WriteRune(ch)
		}
	}
}
