// Package parser reads hotfiles: module declarations that mix ordinary Go
// declarations with hot function markers. The three marker forms, a
// hot_functions_from_file directive, an inline hot func definition, and a
// hot funcs signature block, all reduce to the same canonical Signature
// so later stages never care how a function was declared.
package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/hotgen/hotgen/logutil"
)

// Error categories, matchable with errors.Is. Every fatal parse error
// renders its own message; these only classify.
var (
	ErrBadHeader    = errors.New("invalid module header")
	ErrUnterminated = errors.New("unterminated")
	ErrBadString    = errors.New("invalid string literal")
	ErrBadItem      = errors.New("invalid item")
)

// Error is a diagnostic pinned to a source location. Parse errors are
// fatal: the first one aborts the parse.
type Error struct {
	Span Span
	Msg  string

	cat error
	err error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Span, e.Msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Span, e.Msg)
}

func (e *Error) Is(target error) bool { return target == e.cat }

func (e *Error) Unwrap() error { return e.err }

// Warning is a non-fatal diagnostic. The parser records warnings and
// keeps going; callers decide how to surface them.
type Warning struct {
	Span Span
	Msg  string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Span, w.Msg)
}

// Parser parses a single hotfile. Extractor resolves
// hot_functions_from_file directives and can be replaced before calling
// Parse; it defaults to a GoExtractor rooted at the working directory.
type Parser struct {
	Extractor Extractor

	lx       *lexer
	tok      token
	prev     token
	warnings []Warning
}

// New returns a Parser for the given source. name is used in
// diagnostics. Input may start with a UTF-8 byte order mark, which is
// stripped.
func New(r io.Reader, name string) (*Parser, error) {
	tr := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(r, tr))
	if err != nil {
		return nil, err
	}
	p := &Parser{
		Extractor: GoExtractor{},
		lx:        newLexer(name, string(data)),
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseFile parses the hotfile at path. Relative paths in
// hot_functions_from_file directives resolve against the hotfile's
// directory. Warnings are returned alongside the result, also when
// parsing fails.
func ParseFile(path string) (*File, []Warning, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	p, err := New(f, path)
	if err != nil {
		return nil, nil, err
	}
	p.Extractor = GoExtractor{Dir: filepath.Dir(path)}
	file, err := p.Parse()
	return file, p.Warnings(), err
}

// Parse consumes the whole input: an optional hot_module attribute
// followed by one module declaration.
func (p *Parser) Parse() (*File, error) {
	var file File
	if p.tok.is(tokPunct, "#") {
		attr, err := p.parseAttr()
		if err != nil {
			return nil, err
		}
		file.Attr = attr
	}
	mod, err := p.parseModule()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorAt(p.tok, "unexpected %s after module body", p.tok.describe())
	}
	file.Module = mod
	return &file, nil
}

// Warnings returns the non-fatal diagnostics recorded so far.
func (p *Parser) Warnings() []Warning {
	return p.warnings
}

func (p *Parser) advance() error {
	tok, err := p.lx.next()
	if err != nil {
		return err
	}
	logutil.Trace("token", "kind", tok.kind.String(), "lit", tok.lit,
		"pos", fmt.Sprintf("%s:%d:%d", p.lx.file, tok.line, tok.col))
	p.prev = p.tok
	p.tok = tok
	return nil
}

func (p *Parser) errorAt(t token, format string, args ...any) error {
	return &Error{
		Span: Span{File: p.lx.file, Start: t.pos, End: t.end, Line: t.line, Col: t.col},
		Msg:  fmt.Sprintf(format, args...),
	}
}

func (p *Parser) errorCat(cat error, t token, format string, args ...any) error {
	err := p.errorAt(t, format, args...)
	err.(*Error).cat = cat
	return err
}

// withCat classifies an already built parse error.
func withCat(err error, cat error) error {
	var e *Error
	if errors.As(err, &e) {
		e.cat = cat
	}
	return err
}

func (p *Parser) warnAt(t token, format string, args ...any) {
	p.warnings = append(p.warnings, Warning{
		Span: Span{File: p.lx.file, Start: t.pos, End: t.end, Line: t.line, Col: t.col},
		Msg:  fmt.Sprintf(format, args...),
	})
}

func (p *Parser) expect(lit string, context string) (token, error) {
	if !p.tok.is(tokPunct, lit) {
		return token{}, p.errorAt(p.tok, "expected %q %s, found %s", lit, context, p.tok.describe())
	}
	t := p.tok
	return t, p.advance()
}

func (p *Parser) parseModule() (*Module, error) {
	start := p.tok
	mod := &Module{}
	if p.tok.is(tokIdent, "pub") {
		mod.Pub = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if !p.tok.is(tokIdent, "module") {
		return nil, p.errorCat(ErrBadHeader, p.tok, "expected %q, found %s", "module", p.tok.describe())
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.kind != tokIdent {
		return nil, p.errorCat(ErrBadHeader, p.tok, "expected module name, found %s", p.tok.describe())
	}
	mod.Name = p.tok.lit
	if err := p.advance(); err != nil {
		return nil, err
	}
	open, err := p.expect("{", "after module name")
	if err != nil {
		return nil, withCat(err, ErrBadHeader)
	}
	for !p.tok.is(tokPunct, "}") {
		if p.tok.kind == tokEOF {
			return nil, p.errorCat(ErrUnterminated, open, "unterminated module body")
		}
		if p.tok.is(tokPunct, ";") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		mod.Items = append(mod.Items, item)
	}
	closing := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}
	mod.span = p.lx.span(start, closing)
	return mod, nil
}

func (p *Parser) parseItem() (Item, error) {
	switch {
	case p.tok.is(tokIdent, "hot_functions_from_file"):
		return p.parseFileDirective()
	case p.tok.is(tokIdent, "hot"):
		return p.parseHotDecl()
	default:
		return p.parseRawItem()
	}
}

// parseFileDirective handles hot_functions_from_file("path"). The
// referenced file is read immediately: extraction failures are parse
// failures, reported at the directive.
func (p *Parser) parseFileDirective() (Item, error) {
	start := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect("(", "after hot_functions_from_file"); err != nil {
		return nil, err
	}
	if p.tok.kind != tokString {
		return nil, p.errorCat(ErrBadString, p.tok, "hot_functions_from_file requires a string literal path, found %s", p.tok.describe())
	}
	pathTok := p.tok
	path, err := strconv.Unquote(pathTok.lit)
	if err != nil {
		return nil, p.errorCat(ErrBadString, pathTok, "malformed path literal %s", pathTok.lit)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	closing, err := p.expect(")", "to close hot_functions_from_file")
	if err != nil {
		return nil, err
	}
	sp := p.lx.span(start, closing)

	ext := p.Extractor
	if ext == nil {
		ext = GoExtractor{}
	}
	sigs, err := ext.Functions(path)
	if err != nil {
		return nil, &Error{Span: sp, Msg: fmt.Sprintf("hot_functions_from_file(%q)", path), err: err}
	}
	return HotFuncs{Form: FormFile, Sigs: sigs, span: sp}, nil
}

func (p *Parser) parseHotDecl() (Item, error) {
	start := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}
	switch {
	case p.tok.is(tokIdent, "func"):
		return p.parseHotFunc(start)
	case p.tok.is(tokIdent, "funcs"):
		return p.parseHotBlock(start)
	default:
		return nil, p.errorAt(p.tok, "expected %q or %q after %q, found %s", "func", "funcs", "hot", p.tok.describe())
	}
}

// parseHotFunc handles the inline form: a full function definition whose
// body is parsed for balance and then dropped. Only the signature
// survives into the generated module.
func (p *Parser) parseHotFunc(start token) (Item, error) {
	sig, err := p.parseSignature()
	if err != nil {
		return nil, err
	}
	if !p.tok.is(tokPunct, "{") {
		return nil, p.errorAt(p.tok, "expected function body after signature, found %s", p.tok.describe())
	}
	closing, err := p.skipBalanced()
	if err != nil {
		return nil, err
	}
	return HotFuncs{Form: FormInline, Sigs: []Signature{sig}, span: p.lx.span(start, closing)}, nil
}

func (p *Parser) parseHotBlock(start token) (Item, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	open, err := p.expect("{", "after hot funcs")
	if err != nil {
		return nil, err
	}
	var sigs []Signature
	for {
		switch {
		case p.tok.kind == tokEOF:
			return nil, p.errorCat(ErrUnterminated, open, "unterminated hot funcs block")
		case p.tok.is(tokPunct, "}"):
			closing := p.tok
			if err := p.advance(); err != nil {
				return nil, err
			}
			return HotFuncs{Form: FormBlock, Sigs: sigs, span: p.lx.span(start, closing)}, nil
		case p.tok.is(tokPunct, ";"):
			if err := p.advance(); err != nil {
				return nil, err
			}
		case p.tok.is(tokIdent, "func"):
			sig, err := p.parseSignature()
			if err != nil {
				return nil, err
			}
			if p.tok.is(tokPunct, "{") {
				return nil, p.errorAt(p.tok, "unexpected function body in hot funcs block")
			}
			sigs = append(sigs, sig)
		default:
			bad := p.tok
			if _, err := p.scanItemTokens(); err != nil {
				return nil, err
			}
			p.warnAt(bad, "hot funcs block includes unexpected item %s; only function signatures are allowed", bad.describe())
		}
	}
}

// skipBalanced consumes a brace-delimited region starting at the current
// "{" token and returns the closing brace.
func (p *Parser) skipBalanced() (token, error) {
	open := p.tok
	depth := 0
	for {
		if p.tok.kind == tokEOF {
			return token{}, p.errorCat(ErrUnterminated, open, "unterminated function body")
		}
		if p.tok.kind == tokPunct {
			switch p.tok.lit {
			case "{", "(", "[":
				depth++
			case "}", ")", "]":
				depth--
			}
		}
		t := p.tok
		if err := p.advance(); err != nil {
			return token{}, err
		}
		if depth == 0 {
			return t, nil
		}
	}
}

// parseRawItem consumes one generic declaration and captures its source
// text byte for byte, leading comment block included. Import
// declarations also get their specs parsed so the generator can hoist
// them into the file's import block.
func (p *Parser) parseRawItem() (Item, error) {
	start := p.tok
	if start.kind != tokIdent {
		return nil, p.errorCat(ErrBadItem, start, "unexpected %s in module body", start.describe())
	}
	toks, err := p.scanItemTokens()
	if err != nil {
		return nil, err
	}
	last := toks[len(toks)-1]
	textStart := start.pos
	if start.comment >= 0 {
		textStart = start.comment
	}
	it := RawItem{
		Text: p.lx.src[textStart:last.end],
		span: p.lx.span(start, last),
	}
	if start.lit == "import" {
		specs, err := p.importSpecs(toks)
		if err != nil {
			return nil, err
		}
		it.Imports = specs
	}
	return it, nil
}

// scanItemTokens consumes one item's worth of tokens. The item ends, at
// bracket depth zero, at a semicolon, at the module's closing brace, or
// at a line break that follows a token able to end a declaration. The
// trailing semicolon is consumed but not included.
func (p *Parser) scanItemTokens() ([]token, error) {
	var toks []token
	depth := 0
	for {
		t := p.tok
		switch {
		case t.kind == tokEOF:
			return toks, nil
		case depth == 0 && t.is(tokPunct, "}"):
			return toks, nil
		case depth == 0 && t.is(tokPunct, ";"):
			return toks, p.advance()
		case depth == 0 && t.newline && len(toks) > 0 && endsDecl(toks[len(toks)-1]):
			return toks, nil
		}
		if t.kind == tokPunct {
			switch t.lit {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				depth--
				if depth < 0 {
					return nil, p.errorCat(ErrBadItem, t, "unexpected %q", t.lit)
				}
			}
		}
		toks = append(toks, t)
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
}

// endsDecl reports whether a declaration can end at tok, mirroring Go's
// semicolon insertion rule for the token classes that appear at the top
// level.
func endsDecl(t token) bool {
	switch t.kind {
	case tokIdent, tokNumber, tokString:
		return true
	case tokPunct:
		return t.lit == ")" || t.lit == "]" || t.lit == "}"
	}
	return false
}

func (p *Parser) importSpecs(toks []token) ([]ImportSpec, error) {
	rest := toks[1:]
	if len(rest) == 0 {
		return nil, p.errorCat(ErrBadItem, toks[0], "expected import path string")
	}
	if rest[0].is(tokPunct, "(") {
		specs := []ImportSpec{}
		i := 1
		for i < len(rest) {
			t := rest[i]
			if t.is(tokPunct, ")") {
				return specs, nil
			}
			if t.is(tokPunct, ";") {
				i++
				continue
			}
			spec, n, err := p.importSpecAt(rest, i)
			if err != nil {
				return nil, err
			}
			specs = append(specs, spec)
			i = n
		}
		return nil, p.errorCat(ErrUnterminated, toks[0], "unterminated import declaration")
	}
	spec, n, err := p.importSpecAt(rest, 0)
	if err != nil {
		return nil, err
	}
	if n != len(rest) {
		return nil, p.errorCat(ErrBadItem, rest[n], "unexpected %s in import declaration", rest[n].describe())
	}
	return []ImportSpec{spec}, nil
}

func (p *Parser) importSpecAt(toks []token, i int) (ImportSpec, int, error) {
	var spec ImportSpec
	t := toks[i]
	switch {
	case t.kind == tokIdent:
		spec.Alias = t.lit
		i++
	case t.is(tokPunct, "."):
		spec.Alias = "."
		i++
	}
	if i >= len(toks) || toks[i].kind != tokString {
		at := t
		if i < len(toks) {
			at = toks[i]
		}
		return spec, 0, p.errorCat(ErrBadItem, at, "expected import path string")
	}
	path, err := strconv.Unquote(toks[i].lit)
	if err != nil {
		return spec, 0, p.errorCat(ErrBadString, toks[i], "malformed import path %s", toks[i].lit)
	}
	spec.Path = path
	return spec, i + 1, nil
}
