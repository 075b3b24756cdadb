package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hotgen/hotgen/codegen"
	"github.com/hotgen/hotgen/envconfig"
	"github.com/hotgen/hotgen/parser"
)

func GenerateHandler(cmd *cobra.Command, args []string) error {
	lib, _ := cmd.Flags().GetString("lib")
	dir, _ := cmd.Flags().GetString("dir")
	output, _ := cmd.Flags().GetString("output")
	runtimePath, _ := cmd.Flags().GetString("runtime")
	if runtimePath == "" {
		runtimePath = envconfig.RuntimePackage
	}

	if output != "" && len(args) != 1 {
		return fmt.Errorf("the --output flag takes exactly one hotfile, got %d", len(args))
	}

	g := new(errgroup.Group)
	for _, hotfile := range args {
		hotfile := hotfile
		g.Go(func() error {
			code, name, err := generate(hotfile, lib, dir, runtimePath)
			if err != nil {
				return err
			}

			if output == "-" {
				_, err := cmd.OutOrStdout().Write(code)
				return err
			}

			target := output
			if target == "" {
				target = filepath.Join(filepath.Dir(hotfile), name+"_hot.go")
			}
			if err := os.WriteFile(target, code, 0o644); err != nil {
				return err
			}
			slog.Info("generated", "hotfile", hotfile, "output", target)
			return nil
		})
	}
	return g.Wait()
}

// generate runs one hotfile through the parser and code generator and
// returns the rendered source along with the module name. Flags beat the
// hot_module attribute, per value: an empty flag keeps the attribute's.
func generate(hotfile, lib, dir, runtimePath string) ([]byte, string, error) {
	f, warnings, err := parser.ParseFile(hotfile)
	for _, w := range warnings {
		slog.Warn(w.String())
	}
	if err != nil {
		return nil, "", err
	}

	mod := f.Module
	if f.Attr != nil {
		mod.SetSource(*f.Attr)
	}
	if lib != "" || dir != "" {
		src := parser.Source{Name: lib, Dir: dir}
		if mod.Source != nil {
			if src.Name == "" {
				src.Name = mod.Source.Name
			}
			if src.Dir == "" {
				src.Dir = mod.Source.Dir
			}
		}
		mod.SetSource(src)
	}

	code, err := codegen.Generate(mod, codegen.Options{Runtime: runtimePath})
	if errors.Is(err, codegen.ErrNoSource) {
		return nil, "", fmt.Errorf("%s: %w, add a #[hot_module(name = ..., dir = ...)] attribute or pass --lib and --dir", hotfile, err)
	}
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", hotfile, err)
	}
	return code, mod.Name, nil
}
