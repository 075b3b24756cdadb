package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_GoExtractor(t *testing.T) {
	dir := t.TempDir()
	src := `package lib

import "strings"

// Tick advances the simulation.
func Tick(dt float64) {}

func Render(w, h int, layers ...string) (n int, err error) { return 0, nil }

func internal() {}

func (s *State) Method() {}

func Generic[T any](v T) T { return v }

func Lookup(m map[string]int) *strings.Reader { return nil }
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "api.go"), []byte(src), 0o644))

	sigs, err := GoExtractor{Dir: dir}.Functions("api.go")
	require.NoError(t, err)
	require.Len(t, sigs, 3)

	assert.Equal(t, "func Tick(dt float64)", sigs[0].String())
	assert.Equal(t, "func Render(w int, h int, layers ...string) (int, error)", sigs[1].String())
	assert.Equal(t, "func Lookup(m map[string]int) *strings.Reader", sigs[2].String())

	assert.Equal(t, 6, sigs[0].Span.Line)
	assert.Contains(t, sigs[0].Span.File, "api.go")
}

func Test_GoExtractor_AbsolutePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "api.go")
	require.NoError(t, os.WriteFile(path, []byte("package lib\n\nfunc Fire() {}\n"), 0o644))

	sigs, err := GoExtractor{}.Functions(path)
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Equal(t, "func Fire()", sigs[0].String())
}

func Test_GoExtractor_BadSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.go"), []byte("package lib\nfunc ("), 0o644))

	_, err := GoExtractor{Dir: dir}.Functions("broken.go")
	assert.Error(t, err)
}

func Test_GoExtractor_MissingFile(t *testing.T) {
	_, err := GoExtractor{Dir: t.TempDir()}.Functions("nope.go")
	assert.Error(t, err)
}

func Test_ParseFile(t *testing.T) {
	dir := t.TempDir()
	api := `package lib

func Fire(x, y int) bool { return true }
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "api.go"), []byte(api), 0o644))

	hot := `#[hot_module(name = "game", dir = "build")]
module game {
	hot_functions_from_file("api.go")
}
`
	path := filepath.Join(dir, "game.hot")
	require.NoError(t, os.WriteFile(path, []byte(hot), 0o644))

	f, warnings, err := ParseFile(path)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	require.NotNil(t, f.Attr)
	assert.Equal(t, "game", f.Attr.Name)
	require.Len(t, f.Module.Items, 1)
	hf, ok := f.Module.Items[0].(HotFuncs)
	require.True(t, ok)
	assert.Equal(t, FormFile, hf.Form)
	require.Len(t, hf.Sigs, 1)
	assert.Equal(t, "func Fire(x int, y int) bool", hf.Sigs[0].String())
}
