package parser

import "strings"

// parseSignature parses "func Name(params) results" starting at the
// "func" keyword. It stops after the results, leaving the next token,
// a body brace or whatever follows, for the caller.
func (p *Parser) parseSignature() (Signature, error) {
	start := p.tok
	if err := p.advance(); err != nil {
		return Signature{}, err
	}
	if p.tok.kind != tokIdent {
		return Signature{}, p.errorAt(p.tok, "expected function name, found %s", p.tok.describe())
	}
	name := p.tok
	if err := p.advance(); err != nil {
		return Signature{}, err
	}
	if p.tok.is(tokPunct, "[") {
		return Signature{}, p.errorAt(p.tok, "hot function %s cannot be generic", name.lit)
	}
	if !p.tok.is(tokPunct, "(") {
		return Signature{}, p.errorAt(p.tok, "expected %q after function name, found %s", "(", p.tok.describe())
	}
	entries, err := p.parseGroup()
	if err != nil {
		return Signature{}, err
	}
	params, err := p.resolveParams(entries, true)
	if err != nil {
		return Signature{}, err
	}
	results, err := p.parseResults()
	if err != nil {
		return Signature{}, err
	}
	return Signature{
		Name:    name.lit,
		Params:  params,
		Results: results,
		Span:    p.lx.span(start, p.prev),
	}, nil
}

// parseGroup consumes a parenthesized, comma-separated list starting at
// the current "(" and returns the token runs between the commas.
func (p *Parser) parseGroup() ([][]token, error) {
	open := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}
	var entries [][]token
	var cur []token
	depth := 0
	for {
		t := p.tok
		switch {
		case t.kind == tokEOF:
			return nil, p.errorCat(ErrUnterminated, open, "unterminated parameter list")
		case depth == 0 && t.is(tokPunct, "}"):
			// the enclosing block is closing, the list never did
			return nil, p.errorCat(ErrUnterminated, open, "unterminated parameter list")
		case depth == 0 && t.is(tokPunct, ")"):
			if len(cur) > 0 {
				entries = append(entries, cur)
			}
			return entries, p.advance()
		case depth == 0 && t.is(tokPunct, ","):
			if len(cur) == 0 {
				return nil, p.errorAt(t, "missing parameter")
			}
			entries = append(entries, cur)
			cur = nil
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if t.kind == tokPunct {
			switch t.lit {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				depth--
				if depth < 0 {
					return nil, p.errorAt(t, "unexpected %q", t.lit)
				}
			}
		}
		cur = append(cur, t)
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
}

// resolveParams turns the raw entries of a parameter or result list into
// canonical params. Go's grammar leaves "(a, b int)" vs "(int, string)"
// undecided until the whole list is seen: the list is named as soon as
// one entry reads as a name followed by a type, and then lone
// identifiers take the type of the next entry that has one. Instantiated
// generic types like List[int] read as named entries too; those must be
// written with an explicit name (or _) in a named list.
func (p *Parser) resolveParams(entries [][]token, allowVariadic bool) ([]Param, error) {
	named := false
	for _, e := range entries {
		if isNamedEntry(e) {
			named = true
			break
		}
	}
	params := make([]Param, len(entries))
	if named {
		pending := ""
		for i := len(entries) - 1; i >= 0; i-- {
			e := entries[i]
			switch {
			case isNamedEntry(e):
				typ := p.sliceText(e[1], e[len(e)-1])
				params[i] = Param{Name: e[0].lit, Type: typ}
				pending = typ
			case len(e) == 1 && e[0].kind == tokIdent && !isTypeKeyword(e[0].lit):
				if pending == "" {
					return nil, p.errorAt(e[0], "mixed named and unnamed parameters")
				}
				params[i] = Param{Name: e[0].lit, Type: pending}
			default:
				return nil, p.errorAt(e[0], "mixed named and unnamed parameters")
			}
		}
	} else {
		for i, e := range entries {
			params[i] = Param{Type: p.sliceText(e[0], e[len(e)-1])}
		}
	}
	for i, param := range params {
		if !param.Variadic() {
			continue
		}
		if !allowVariadic {
			return nil, p.errorAt(entries[i][0], "cannot use variadic parameter in results")
		}
		if i != len(params)-1 {
			return nil, p.errorAt(entries[i][0], "variadic parameter must be last")
		}
	}
	return params, nil
}

// isNamedEntry reports whether a list entry reads as "name type". A
// leading identifier does not make an entry named when it is a type
// keyword, a qualified name like pkg.Type, or an instantiated generic:
// in "List[int]" the bracket opening right after the identifier is the
// one that closes the entry, which never happens in "a [4]int" or
// "a []List[int]".
func isNamedEntry(e []token) bool {
	if len(e) < 2 || e[0].kind != tokIdent || isTypeKeyword(e[0].lit) {
		return false
	}
	if e[1].is(tokPunct, ".") {
		return false
	}
	if e[1].is(tokPunct, "[") && matchingClose(e, 1) == len(e)-1 {
		return false
	}
	return true
}

// matchingClose returns the index of the token closing the bracket at i,
// or -1 if the run ends first.
func matchingClose(e []token, i int) int {
	depth := 0
	for ; i < len(e); i++ {
		if e[i].kind != tokPunct {
			continue
		}
		switch e[i].lit {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func (p *Parser) parseResults() ([]string, error) {
	t := p.tok
	switch {
	case t.kind == tokEOF, t.newline:
		return nil, nil
	case t.is(tokPunct, "{"), t.is(tokPunct, "}"), t.is(tokPunct, ";"):
		return nil, nil
	case t.is(tokPunct, "("):
		entries, err := p.parseGroup()
		if err != nil {
			return nil, err
		}
		params, err := p.resolveParams(entries, false)
		if err != nil {
			return nil, err
		}
		results := make([]string, len(params))
		for i, param := range params {
			results[i] = param.Type
		}
		return results, nil
	default:
		return p.scanResultType()
	}
}

// scanResultType captures a single unparenthesized result type. A brace
// at depth zero ends the type unless it belongs to a struct or interface
// literal, in which case it nests.
func (p *Parser) scanResultType() ([]string, error) {
	start := p.tok
	var last token
	depth := 0
	for {
		t := p.tok
		if t.kind == tokEOF {
			break
		}
		if depth == 0 {
			if t.is(tokPunct, "}") || t.is(tokPunct, ";") {
				break
			}
			if t.is(tokPunct, "{") && !last.is(tokIdent, "struct") && !last.is(tokIdent, "interface") {
				break
			}
			if t.newline && endsDecl(last) {
				break
			}
		}
		if t.kind == tokPunct {
			switch t.lit {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				depth--
			}
		}
		if depth < 0 {
			break
		}
		last = t
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if last.end == 0 {
		return nil, p.errorAt(start, "expected result type, found %s", start.describe())
	}
	text := p.sliceText(start, last)
	if strings.HasPrefix(text, "...") {
		return nil, p.errorAt(start, "cannot use variadic parameter in results")
	}
	return []string{text}, nil
}

func (p *Parser) sliceText(first, last token) string {
	return p.lx.src[first.pos:last.end]
}

func isTypeKeyword(lit string) bool {
	switch lit {
	case "map", "chan", "func", "interface", "struct":
		return true
	}
	return false
}
