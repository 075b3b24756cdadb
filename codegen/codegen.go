// Package codegen turns parsed hotfile modules into Go source files:
// the passthrough items, one proxy per hot function, and the loader
// scaffolding, in declaration order, formatted with go/format. Output
// is deterministic: the same module generates the same bytes.
package codegen

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"go/token"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/hotgen/hotgen/parser"
)

// DefaultRuntime is the import path of the loader runtime package
// compiled into generated modules.
const DefaultRuntime = "github.com/hotgen/hotgen/hotload"

// ErrNoSource reports a module generated before any library source was
// configured: the hotfile had no usable hot_module attribute and no
// override supplied one.
var ErrNoSource = errors.New("no hot library source (name, dir) configured")

// Options adjust generation. The zero value is ready to use.
type Options struct {
	// Runtime is the loader package import path, DefaultRuntime when
	// empty. Whatever its base name, the generated code refers to it
	// as hotload.
	Runtime string
}

// Generate renders mod as a complete Go file. The module must have its
// Source set; everything else about the output follows from the item
// list alone.
func Generate(mod *parser.Module, opts Options) ([]byte, error) {
	if mod.Source == nil {
		return nil, fmt.Errorf("module %s: %w", mod.Name, ErrNoSource)
	}
	if err := validateSource(mod.Source); err != nil {
		return nil, fmt.Errorf("module %s: %w", mod.Name, err)
	}
	if token.IsKeyword(mod.Name) || mod.Name == "_" {
		return nil, fmt.Errorf("module name %q cannot be used as a package name", mod.Name)
	}
	runtimePath := opts.Runtime
	if runtimePath == "" {
		runtimePath = DefaultRuntime
	}

	warnDuplicates(mod)

	identity := "module " + mod.Name
	if mod.Pub {
		identity = "pub " + identity
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "// Code generated by hotgen. DO NOT EDIT.\n//\n// %s: hot function proxies for library %q loaded from %q.\n\n",
		identity, mod.Source.Name, mod.Source.Dir)
	fmt.Fprintf(&b, "package %s\n\n", mod.Name)
	writeImports(&b, mod, runtimePath)
	for _, it := range mod.Items {
		switch it := it.(type) {
		case parser.RawItem:
			if it.Imports != nil {
				continue
			}
			b.WriteString(it.Text)
			b.WriteString("\n\n")
		case parser.HotFuncs:
			for _, sig := range it.Sigs {
				writeProxy(&b, sig)
				b.WriteString("\n")
			}
		}
	}
	if err := writeScaffold(&b, mod); err != nil {
		return nil, err
	}

	out, err := format.Source(b.Bytes())
	if err != nil {
		return nil, fmt.Errorf("module %s: formatting generated code: %w", mod.Name, err)
	}
	return out, nil
}

type importLine struct {
	alias string
	path  string
}

// writeImports emits one merged import block: the scaffolding's own
// imports plus every import hoisted out of the module body, deduped by
// exact (alias, path) pair, standard library first.
func writeImports(b *bytes.Buffer, mod *parser.Module, runtimePath string) {
	lines := []importLine{{path: "fmt"}, {path: "sync"}}
	if path.Base(runtimePath) == "hotload" {
		lines = append(lines, importLine{path: runtimePath})
	} else {
		lines = append(lines, importLine{alias: "hotload", path: runtimePath})
	}
	for _, it := range mod.Items {
		raw, ok := it.(parser.RawItem)
		if !ok || raw.Imports == nil {
			continue
		}
		for _, spec := range raw.Imports {
			lines = append(lines, importLine{alias: spec.Alias, path: spec.Path})
		}
	}

	seen := map[importLine]bool{}
	var std, ext []importLine
	for _, l := range lines {
		if seen[l] {
			continue
		}
		seen[l] = true
		if isStdPath(l.path) {
			std = append(std, l)
		} else {
			ext = append(ext, l)
		}
	}
	sortImports(std)
	sortImports(ext)

	b.WriteString("import (\n")
	for _, l := range std {
		writeImportLine(b, l)
	}
	if len(std) > 0 && len(ext) > 0 {
		b.WriteString("\n")
	}
	for _, l := range ext {
		writeImportLine(b, l)
	}
	b.WriteString(")\n\n")
}

func writeImportLine(b *bytes.Buffer, l importLine) {
	if l.alias != "" {
		fmt.Fprintf(b, "\t%s %q\n", l.alias, l.path)
	} else {
		fmt.Fprintf(b, "\t%q\n", l.path)
	}
}

func isStdPath(p string) bool {
	root, _, _ := strings.Cut(p, "/")
	return !strings.Contains(root, ".")
}

func sortImports(lines []importLine) {
	slices.SortFunc(lines, func(a, b importLine) int {
		if c := strings.Compare(a.path, b.path); c != 0 {
			return c
		}
		return strings.Compare(a.alias, b.alias)
	})
}

// warnDuplicates flags hot function names declared more than once. The
// module still generates; the duplicate definitions are left for the Go
// compiler to reject.
func warnDuplicates(mod *parser.Module) {
	seen := map[string]parser.Span{}
	for _, sig := range mod.Functions() {
		if prev, ok := seen[sig.Name]; ok {
			slog.Warn("duplicate hot function, generated code will not compile",
				"func", sig.Name, "first", prev.String(), "again", sig.Span.String())
			continue
		}
		seen[sig.Name] = sig.Span
	}
}
