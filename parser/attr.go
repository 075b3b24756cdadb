package parser

import (
	"fmt"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// parseAttr handles the optional #[hot_module(name = "...", dir = "...")]
// attribute ahead of the module declaration. Values must be string
// literals and keys must be known; both name and dir may still be
// overridden or supplied later, so neither is required here.
func (p *Parser) parseAttr() (*Source, error) {
	start := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect("[", "to open attribute"); err != nil {
		return nil, err
	}
	if !p.tok.is(tokIdent, "hot_module") {
		return nil, p.errorAt(p.tok, "expected %q attribute, found %s", "hot_module", p.tok.describe())
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect("(", "after hot_module"); err != nil {
		return nil, err
	}

	kv := map[string]string{}
	for !p.tok.is(tokPunct, ")") {
		if p.tok.kind == tokEOF {
			return nil, p.errorCat(ErrUnterminated, start, "unterminated hot_module attribute")
		}
		if p.tok.kind != tokIdent {
			return nil, p.errorAt(p.tok, "expected attribute key, found %s", p.tok.describe())
		}
		key := p.tok
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect("=", "after attribute key"); err != nil {
			return nil, err
		}
		if p.tok.kind != tokString {
			return nil, p.errorCat(ErrBadString, p.tok, "attribute values must be string literals, found %s", p.tok.describe())
		}
		val, err := strconv.Unquote(p.tok.lit)
		if err != nil {
			return nil, p.errorCat(ErrBadString, p.tok, "malformed string literal %s", p.tok.lit)
		}
		if _, dup := kv[key.lit]; dup {
			return nil, p.errorAt(key, "duplicate attribute key %q", key.lit)
		}
		kv[key.lit] = val
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.is(tokPunct, ",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
		} else if !p.tok.is(tokPunct, ")") && p.tok.kind != tokEOF {
			return nil, p.errorAt(p.tok, "expected %q or %q in attribute, found %s", ",", ")", p.tok.describe())
		}
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect("]", "to close attribute"); err != nil {
		return nil, err
	}

	src, err := decodeSource(kv)
	if err != nil {
		return nil, &Error{Span: p.lx.span(start, p.prev), Msg: err.Error()}
	}
	return src, nil
}

func decodeSource(kv map[string]string) (*Source, error) {
	var src Source
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &src,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(kv); err != nil {
		return nil, fmt.Errorf("hot_module attribute: %w", err)
	}
	return &src, nil
}
