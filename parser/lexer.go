package parser

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// lexer splits hotfile source into tokens. It understands just enough Go
// lexical structure for the job: identifiers, number and string literals,
// comments, and single-character punctuation, with "..." as the only
// multi-character token. Everything else a hotfile carries rides through
// as raw source slices, so token boundaries matter more than token
// classification here.
type lexer struct {
	file string
	src  string
	off  int
	line int
	col  int

	prevLine int
}

type mark struct {
	pos  int
	line int
	col  int
}

func newLexer(file, src string) *lexer {
	return &lexer{file: file, src: src, line: 1, col: 1}
}

func (lx *lexer) mark() mark {
	return mark{pos: lx.off, line: lx.line, col: lx.col}
}

func (lx *lexer) bump() rune {
	r, size := utf8.DecodeRuneInString(lx.src[lx.off:])
	lx.off += size
	if r == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	return r
}

func (lx *lexer) byteAt(off int) byte {
	if off >= len(lx.src) {
		return 0
	}
	return lx.src[off]
}

func (lx *lexer) errorf(at mark, cat error, format string, args ...any) error {
	return &Error{
		Span: Span{File: lx.file, Start: at.pos, End: lx.off, Line: at.line, Col: at.col},
		Msg:  fmt.Sprintf(format, args...),
		cat:  cat,
	}
}

// next returns the next token. Whitespace and comments are consumed here;
// the token records whether a line break preceded it and where its
// attached leading comment block starts, both of which drive item
// boundary decisions in the parser.
func (lx *lexer) next() (token, error) {
	attach := -1
	nlToken := 0 // line breaks since the previous token
	nlRun := 0   // line breaks since the previous token or comment

skip:
	for lx.off < len(lx.src) {
		switch c := lx.src[lx.off]; {
		case c == ' ' || c == '\t' || c == '\r':
			lx.bump()
		case c == '\n':
			lx.bump()
			nlToken++
			nlRun++
		case c == '/' && lx.byteAt(lx.off+1) == '/':
			if nlRun >= 2 {
				attach = -1
			}
			if (nlRun > 0 || lx.prevLine == 0) && attach == -1 {
				attach = lx.off
			}
			for lx.off < len(lx.src) && lx.src[lx.off] != '\n' {
				lx.bump()
			}
			nlRun = 0
		case c == '/' && lx.byteAt(lx.off+1) == '*':
			if nlRun >= 2 {
				attach = -1
			}
			ownLine := nlRun > 0 || lx.prevLine == 0
			start := lx.mark()
			lx.bump()
			lx.bump()
			closed := false
			for lx.off < len(lx.src) {
				if lx.src[lx.off] == '*' && lx.byteAt(lx.off+1) == '/' {
					lx.bump()
					lx.bump()
					closed = true
					break
				}
				if lx.src[lx.off] == '\n' {
					nlToken++
				}
				lx.bump()
			}
			if !closed {
				return token{}, lx.errorf(start, ErrUnterminated, "unterminated block comment")
			}
			if ownLine && attach == -1 {
				attach = start.pos
			}
			nlRun = 0
		default:
			break skip
		}
	}
	if nlRun >= 2 {
		attach = -1
	}

	start := lx.mark()
	tok := token{
		pos:     start.pos,
		line:    start.line,
		col:     start.col,
		newline: nlToken > 0,
		comment: attach,
	}
	if lx.off >= len(lx.src) {
		tok.kind = tokEOF
		tok.end = start.pos
		return tok, nil
	}

	r, _ := utf8.DecodeRuneInString(lx.src[lx.off:])
	switch {
	case isIdentStart(r):
		lx.scanIdent()
		tok.kind = tokIdent
	case isDigit(r) || (r == '.' && isDigit(rune(lx.byteAt(lx.off+1)))):
		lx.scanNumber()
		tok.kind = tokNumber
	case r == '"' || r == '\'':
		if err := lx.scanString(byte(r), start); err != nil {
			return token{}, err
		}
		tok.kind = tokString
	case r == '`':
		if err := lx.scanRawString(start); err != nil {
			return token{}, err
		}
		tok.kind = tokString
	case r == '.' && lx.byteAt(lx.off+1) == '.' && lx.byteAt(lx.off+2) == '.':
		lx.bump()
		lx.bump()
		lx.bump()
		tok.kind = tokPunct
	default:
		lx.bump()
		tok.kind = tokPunct
	}

	tok.end = lx.off
	tok.lit = lx.src[start.pos:lx.off]
	lx.prevLine = lx.line
	return tok, nil
}

func (lx *lexer) scanIdent() {
	for lx.off < len(lx.src) {
		r, _ := utf8.DecodeRuneInString(lx.src[lx.off:])
		if !isIdentCont(r) {
			return
		}
		lx.bump()
	}
}

func (lx *lexer) scanNumber() {
	for lx.off < len(lx.src) {
		switch c := lx.src[lx.off]; {
		case c == 'e' || c == 'E' || c == 'p' || c == 'P':
			lx.bump()
			if c := lx.byteAt(lx.off); c == '+' || c == '-' {
				lx.bump()
			}
		case c == '_' || c == '.' || isDigit(rune(c)) ||
			('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z'):
			lx.bump()
		default:
			return
		}
	}
}

func (lx *lexer) scanString(quote byte, start mark) error {
	lx.bump()
	for {
		if lx.off >= len(lx.src) || lx.src[lx.off] == '\n' {
			return lx.errorf(start, ErrUnterminated, "unterminated string literal")
		}
		c := lx.bump()
		switch {
		case c == '\\':
			if lx.off < len(lx.src) {
				lx.bump()
			}
		case byte(c) == quote:
			return nil
		}
	}
}

func (lx *lexer) scanRawString(start mark) error {
	lx.bump()
	for lx.off < len(lx.src) {
		if lx.bump() == '`' {
			return nil
		}
	}
	return lx.errorf(start, ErrUnterminated, "unterminated raw string literal")
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentCont(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}
