package parser

import "fmt"

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokPunct
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokNumber:
		return "number"
	case tokString:
		return "string"
	case tokPunct:
		return "punctuation"
	}
	return "unknown"
}

// token is a single lexeme with enough position information to slice the
// original source back out of it. Pos and End are byte offsets.
type token struct {
	kind tokenKind
	lit  string
	pos  int
	end  int
	line int
	col  int

	// newline reports that at least one line break separates this token
	// from the previous one. Item boundaries depend on it.
	newline bool

	// comment is the byte offset of the comment block attached to this
	// token, or -1. A comment block is attached when it sits on its own
	// lines directly above the token with no blank line in between.
	comment int
}

func (t token) is(k tokenKind, lit string) bool {
	return t.kind == k && t.lit == lit
}

func (t token) describe() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokString:
		return "string literal"
	default:
		return fmt.Sprintf("%q", t.lit)
	}
}

// Span locates a region of a hotfile or of a Go source file referenced by
// one. Start and End are byte offsets; Line and Col describe Start, both
// 1-based.
type Span struct {
	File  string
	Start int
	End   int
	Line  int
	Col   int
}

func (s Span) String() string {
	if s.File == "" {
		return fmt.Sprintf("%d:%d", s.Line, s.Col)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Col)
}

func (lx *lexer) span(start, end token) Span {
	return Span{
		File:  lx.file,
		Start: start.pos,
		End:   end.end,
		Line:  start.line,
		Col:   start.col,
	}
}
