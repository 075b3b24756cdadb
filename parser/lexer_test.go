package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lex(t *testing.T, src string) []token {
	t.Helper()
	lx := newLexer("lex.hot", src)
	var toks []token
	for {
		tok, err := lx.next()
		require.NoError(t, err)
		if tok.kind == tokEOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

func lits(toks []token) []string {
	out := make([]string, len(toks))
	for i, tok := range toks {
		out[i] = tok.lit
	}
	return out
}

func Test_Lexer(t *testing.T) {
	toks := lex(t, `module m { const x = "a\"b" }`)
	assert.Equal(t, []string{"module", "m", "{", "const", "x", "=", `"a\"b"`, "}"}, lits(toks))

	kinds := []tokenKind{tokIdent, tokIdent, tokPunct, tokIdent, tokIdent, tokPunct, tokString, tokPunct}
	for i, tok := range toks {
		assert.Equal(t, kinds[i], tok.kind, "token %d %q", i, tok.lit)
	}
}

func Test_Lexer_Spans(t *testing.T) {
	toks := lex(t, "ab é\ncd")
	require.Len(t, toks, 3)

	assert.Equal(t, 1, toks[0].line)
	assert.Equal(t, 1, toks[0].col)
	assert.Equal(t, 0, toks[0].pos)
	assert.Equal(t, 2, toks[0].end)

	assert.Equal(t, "é", toks[1].lit)
	assert.Equal(t, 4, toks[1].col)

	assert.Equal(t, "cd", toks[2].lit)
	assert.Equal(t, 2, toks[2].line)
	assert.Equal(t, 1, toks[2].col)
	assert.True(t, toks[2].newline)
	assert.False(t, toks[1].newline)
}

func Test_Lexer_Dots(t *testing.T) {
	toks := lex(t, "a ...int ..b .5")
	assert.Equal(t, []string{"a", "...", "int", ".", ".", "b", ".5"}, lits(toks))
	assert.Equal(t, tokNumber, toks[len(toks)-1].kind)
}

func Test_Lexer_Numbers(t *testing.T) {
	toks := lex(t, "0x1F 1.5e-3 42_000")
	assert.Equal(t, []string{"0x1F", "1.5e-3", "42_000"}, lits(toks))
	for _, tok := range toks {
		assert.Equal(t, tokNumber, tok.kind, tok.lit)
	}
}

func Test_Lexer_Strings(t *testing.T) {
	toks := lex(t, "`raw\nstring` 'x' \"esc\\\\\"")
	require.Len(t, toks, 3)
	assert.Equal(t, "`raw\nstring`", toks[0].lit)
	assert.Equal(t, "'x'", toks[1].lit)
	assert.Equal(t, `"esc\\"`, toks[2].lit)
}

func Test_Lexer_CommentAttach(t *testing.T) {
	src := "// doc\nconst a = 1\n\n// detached\n\nconst b = 2\nconst c = 3 // trail\n// lead\nconst d = 4\n"
	toks := lex(t, src)

	byLit := map[string]token{}
	for _, tok := range toks {
		if tok.kind == tokIdent {
			byLit[tok.lit] = tok
		}
	}

	// "// doc" sits directly above a
	first := toks[0]
	assert.Equal(t, "const", first.lit)
	assert.Equal(t, 0, first.comment)

	// blank line after "// detached" breaks the attachment
	assert.Equal(t, -1, byLit["b"].comment)

	// nothing above c at all
	assert.Equal(t, -1, byLit["c"].comment)

	// "// trail" belongs to the line above, "// lead" attaches to d
	dTok := token{}
	for i, tok := range toks {
		if tok.lit == "d" {
			dTok = toks[i-1] // the const before d
		}
	}
	require.NotEqual(t, token{}, dTok)
	assert.Equal(t, "// lead", src[dTok.comment:dTok.comment+len("// lead")])
}

func Test_Lexer_BlockComment(t *testing.T) {
	toks := lex(t, "a /* inline */ b\n/* multi\nline */\nc")
	assert.Equal(t, []string{"a", "b", "c"}, lits(toks))
	assert.True(t, toks[2].newline)
}

func Test_Lexer_Errors(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{`"abc`, "unterminated string literal"},
		{"\"ab\nc\"", "unterminated string literal"},
		{"`abc", "unterminated raw string literal"},
		{"/* abc", "unterminated block comment"},
	}
	for _, tt := range cases {
		lx := newLexer("lex.hot", tt.src)
		var err error
		for err == nil {
			var tok token
			tok, err = lx.next()
			if err == nil && tok.kind == tokEOF {
				break
			}
		}
		assert.ErrorContains(t, err, tt.want, "src: %s", tt.src)
	}
}
