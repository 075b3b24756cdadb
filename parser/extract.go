package parser

import (
	"go/ast"
	goparser "go/parser"
	"go/printer"
	gotoken "go/token"
	"log/slog"
	"path/filepath"
	"strings"
)

// Extractor resolves a hot_functions_from_file directive into the
// ordered signatures the referenced file provides. There is no partial
// success: implementations return the full list or an error.
type Extractor interface {
	Functions(path string) ([]Signature, error)
}

// GoExtractor reads Go source files. It keeps exported top level
// functions, the ones a dynamic library actually exposes as symbols.
// Methods and unexported functions are skipped silently; generic
// functions are skipped with a warning since their symbols cannot be
// looked up.
type GoExtractor struct {
	// Dir is the base for relative paths, typically the directory of
	// the hotfile holding the directive. Empty means the working
	// directory.
	Dir string
}

func (e GoExtractor) Functions(path string) ([]Signature, error) {
	full := path
	if e.Dir != "" && !filepath.IsAbs(path) {
		full = filepath.Join(e.Dir, path)
	}
	fset := gotoken.NewFileSet()
	f, err := goparser.ParseFile(fset, full, nil, goparser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}
	var sigs []Signature
	for _, decl := range f.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Recv != nil || !fd.Name.IsExported() {
			continue
		}
		if fd.Type.TypeParams != nil && len(fd.Type.TypeParams.List) > 0 {
			slog.Warn("skipping generic function, its symbol cannot be looked up", "func", fd.Name.Name, "file", full)
			continue
		}
		sig, err := signatureOf(fset, fd, full)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

func signatureOf(fset *gotoken.FileSet, fd *ast.FuncDecl, file string) (Signature, error) {
	pos := fset.Position(fd.Pos())
	end := fset.Position(fd.End())
	sig := Signature{
		Name: fd.Name.Name,
		Span: Span{File: file, Start: pos.Offset, End: end.Offset, Line: pos.Line, Col: pos.Column},
	}
	for _, field := range fd.Type.Params.List {
		typ, err := typeText(fset, field.Type)
		if err != nil {
			return Signature{}, err
		}
		if len(field.Names) == 0 {
			sig.Params = append(sig.Params, Param{Type: typ})
			continue
		}
		for _, name := range field.Names {
			sig.Params = append(sig.Params, Param{Name: name.Name, Type: typ})
		}
	}
	if fd.Type.Results != nil {
		for _, field := range fd.Type.Results.List {
			typ, err := typeText(fset, field.Type)
			if err != nil {
				return Signature{}, err
			}
			n := len(field.Names)
			if n == 0 {
				n = 1
			}
			for i := 0; i < n; i++ {
				sig.Results = append(sig.Results, typ)
			}
		}
	}
	return sig, nil
}

func typeText(fset *gotoken.FileSet, expr ast.Expr) (string, error) {
	var b strings.Builder
	if err := printer.Fprint(&b, fset, expr); err != nil {
		return "", err
	}
	return b.String(), nil
}
