package codegen

import (
	"bytes"
	_ "embed"
	"fmt"
	"regexp"
	"sync"
	"text/template"

	"github.com/hotgen/hotgen/parser"
)

//go:embed scaffold.gotmpl
var scaffoldSrc string

var scaffoldOnce = sync.OnceValues(func() (*template.Template, error) {
	return template.New("scaffold").Parse(scaffoldSrc)
})

var libNameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// validateSource checks the library name and search dir before any code
// is emitted. Either value may come from the hotfile attribute or from
// flags; by this point both must be usable.
func validateSource(src *parser.Source) error {
	if src.Name == "" {
		return fmt.Errorf("library name is empty")
	}
	if !libNameRe.MatchString(src.Name) {
		return fmt.Errorf("invalid library name %q", src.Name)
	}
	if src.Dir == "" {
		return fmt.Errorf("library search dir is empty")
	}
	return nil
}

type scaffoldData struct {
	Module string
	Lib    string
	Dir    string
}

// writeScaffold emits the per-module loader plumbing: the lazy Loader,
// the symbol resolver the proxies call, and the exported Reload,
// LibVersion and Subscribe entry points.
func writeScaffold(b *bytes.Buffer, mod *parser.Module) error {
	tmpl, err := scaffoldOnce()
	if err != nil {
		return err
	}
	return tmpl.Execute(b, scaffoldData{
		Module: mod.Name,
		Lib:    mod.Source.Name,
		Dir:    mod.Source.Dir,
	})
}
