package parser

import "strings"

// File is the result of parsing one hotfile: the optional hot_module
// attribute and the module declaration. The attribute is kept separate
// from the module because command line flags may override it before the
// module's library source is fixed with SetSource.
type File struct {
	Attr   *Source
	Module *Module
}

// Source names the dynamic library a module proxies for. Name is the
// logical library name, Dir the directory the loader searches. Dir may
// reference environment variables with $VAR or ${VAR} syntax; expansion
// happens at load time, not at generation time.
type Source struct {
	Name string `mapstructure:"name"`
	Dir  string `mapstructure:"dir"`
}

// Module is a parsed module body. Items preserves declaration order.
// Source is nil until SetSource is called; generating a module without a
// source fails.
type Module struct {
	Pub    bool
	Name   string
	Items  []Item
	Source *Source

	span Span
}

func (m *Module) Span() Span { return m.span }

// SetSource fixes the library the generated module loads from. It is a
// separate step from parsing so that attribute values and command line
// overrides can be merged first.
func (m *Module) SetSource(src Source) {
	m.Source = &src
}

// Functions returns every hot function signature in the module, in
// declaration order across all three forms.
func (m *Module) Functions() []Signature {
	var sigs []Signature
	for _, it := range m.Items {
		if hf, ok := it.(HotFuncs); ok {
			sigs = append(sigs, hf.Sigs...)
		}
	}
	return sigs
}

// Item is one entry of a module body. It is either a HotFuncs group, to
// be lowered into proxy functions, or a RawItem that passes through to
// the generated file untouched.
type Item interface {
	Span() Span
	item()
}

// RawItem is a module body item that is not one of the hot declaration
// forms. Text is the exact source slice, leading comments included.
// Import declarations additionally carry their parsed specs so the
// generator can hoist them into the file's import block; for those,
// Text is not reproduced verbatim.
type RawItem struct {
	Text    string
	Imports []ImportSpec

	span Span
}

func (r RawItem) Span() Span { return r.span }
func (RawItem) item()        {}

// ImportSpec is a single import line hoisted out of a RawItem. Alias is
// empty for a plain import, or an identifier, ".", or "_".
type ImportSpec struct {
	Alias string
	Path  string
}

// HotFuncs is a group of hot function signatures produced by one
// declaration, tagged with the form it was written in. A file directive
// or block yields one group with all its signatures; the inline form
// yields a group of one.
type HotFuncs struct {
	Form Form
	Sigs []Signature

	span Span
}

func (h HotFuncs) Span() Span { return h.span }
func (HotFuncs) item()        {}

// Form identifies which declaration form produced a HotFuncs group.
type Form int

const (
	FormFile   Form = iota // hot_functions_from_file("path")
	FormInline             // hot func Name(...) ... { ... }
	FormBlock              // hot funcs { ... }
)

func (f Form) String() string {
	switch f {
	case FormFile:
		return "file"
	case FormInline:
		return "inline"
	case FormBlock:
		return "block"
	}
	return "unknown"
}

// Signature is the canonical shape all three declaration forms reduce
// to: a name, ordered parameters, and ordered result types. Span points
// at the declaration the signature came from, which for the file form is
// a location inside the referenced Go source file.
type Signature struct {
	Name    string
	Params  []Param
	Results []string
	Span    Span
}

func (s Signature) String() string {
	var b strings.Builder
	b.WriteString("func ")
	b.WriteString(s.Name)
	b.WriteByte('(')
	for i, p := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		if p.Name != "" {
			b.WriteString(p.Name)
			b.WriteByte(' ')
		}
		b.WriteString(p.Type)
	}
	b.WriteByte(')')
	switch len(s.Results) {
	case 0:
	case 1:
		b.WriteByte(' ')
		b.WriteString(s.Results[0])
	default:
		b.WriteString(" (")
		b.WriteString(strings.Join(s.Results, ", "))
		b.WriteByte(')')
	}
	return b.String()
}

// Param is one parameter of a hot function signature. Name is empty for
// unnamed parameters; the generator synthesizes names for those. Type
// holds the type expression text exactly as written, with variadic types
// keeping their "..." prefix.
type Param struct {
	Name string
	Type string
}

// Variadic reports whether the parameter is a variadic final parameter.
func (p Param) Variadic() bool {
	return strings.HasPrefix(p.Type, "...")
}
