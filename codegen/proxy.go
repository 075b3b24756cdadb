package codegen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hotgen/hotgen/parser"
)

// lowerParams returns sig's parameters with names synthesized for the
// unnamed and blank ones, so every argument can be forwarded. Types,
// order and visibility are never touched.
func lowerParams(sig parser.Signature) []parser.Param {
	taken := map[string]bool{}
	for _, p := range sig.Params {
		if p.Name != "" && p.Name != "_" {
			taken[p.Name] = true
		}
	}
	params := make([]parser.Param, len(sig.Params))
	for i, p := range sig.Params {
		if p.Name == "" || p.Name == "_" {
			name := fmt.Sprintf("a%d", i)
			for taken[name] {
				name += "_"
			}
			taken[name] = true
			p.Name = name
		}
		params[i] = p
	}
	return params
}

// writeProxy emits one proxy function with the same visible signature
// as sig. The body resolves the symbol on every call and asserts it to
// the concrete function type before forwarding.
func writeProxy(b *bytes.Buffer, sig parser.Signature) {
	params := lowerParams(sig)

	decl := make([]string, len(params))
	types := make([]string, len(params))
	args := make([]string, len(params))
	for i, p := range params {
		decl[i] = p.Name + " " + p.Type
		types[i] = p.Type
		args[i] = p.Name
		if p.Variadic() {
			args[i] += "..."
		}
	}
	results := resultsSuffix(sig.Results)

	fmt.Fprintf(b, "func %s(%s)%s {\n", sig.Name, strings.Join(decl, ", "), results)
	call := fmt.Sprintf("_hotSymbol(%q).(func(%s)%s)(%s)",
		sig.Name, strings.Join(types, ", "), results, strings.Join(args, ", "))
	if len(sig.Results) > 0 {
		fmt.Fprintf(b, "\treturn %s\n", call)
	} else {
		fmt.Fprintf(b, "\t%s\n", call)
	}
	b.WriteString("}\n")
}

func resultsSuffix(results []string) string {
	switch len(results) {
	case 0:
		return ""
	case 1:
		return " " + results[0]
	default:
		return " (" + strings.Join(results, ", ") + ")"
	}
}
