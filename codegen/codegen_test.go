package codegen

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/golden"

	"github.com/hotgen/hotgen/parser"
)

func parseModule(t *testing.T, input string) *parser.Module {
	t.Helper()
	p, err := parser.New(strings.NewReader(input), "test.hot")
	require.NoError(t, err)
	f, err := p.Parse()
	require.NoError(t, err)
	if f.Attr != nil {
		f.Module.SetSource(*f.Attr)
	}
	return f.Module
}

const basicModule = `#[hot_module(name = "game", dir = "target/debug")]
module game {
	import "fmt"

	// frame counter
	var frames int

	hot func Tick(dt float64) float64 {
		return dt
	}

	hot funcs {
		func Render(frame int, opts ...string) (int, error)
		func Reset()
	}
}
`

func Test_Generate(t *testing.T) {
	mod := parseModule(t, basicModule)
	got, err := Generate(mod, Options{})
	require.NoError(t, err)
	golden.Assert(t, string(got), "basic.golden")
}

func Test_Generate_Deterministic(t *testing.T) {
	mod := parseModule(t, basicModule)
	first, err := Generate(mod, Options{})
	require.NoError(t, err)
	second, err := Generate(mod, Options{})
	require.NoError(t, err)
	if diff := cmp.Diff(string(first), string(second)); diff != "" {
		t.Errorf("generate not deterministic (-first +second):\n%s", diff)
	}
}

func Test_Generate_NoSource(t *testing.T) {
	mod := parseModule(t, `module m {}`)
	_, err := Generate(mod, Options{})
	require.ErrorIs(t, err, ErrNoSource)
	assert.ErrorContains(t, err, "module m")
}

func Test_Generate_SourceValidation(t *testing.T) {
	cases := []struct {
		src  parser.Source
		want string
	}{
		{parser.Source{Dir: "build"}, "library name is empty"},
		{parser.Source{Name: "my lib", Dir: "build"}, `invalid library name "my lib"`},
		{parser.Source{Name: "2fast", Dir: "build"}, "invalid library name"},
		{parser.Source{Name: "game"}, "library search dir is empty"},
	}
	for _, tt := range cases {
		mod := parseModule(t, `module m {}`)
		mod.SetSource(tt.src)
		_, err := Generate(mod, Options{})
		assert.ErrorContains(t, err, tt.want, "source: %+v", tt.src)
	}
}

func Test_Generate_PubHeader(t *testing.T) {
	mod := parseModule(t, `#[hot_module(name = "game", dir = "build")]
pub module m {}`)
	got, err := Generate(mod, Options{})
	require.NoError(t, err)
	assert.Contains(t, string(got), "// pub module m: hot function proxies")
}

func Test_Generate_PackageName(t *testing.T) {
	mod := parseModule(t, `module chan {}`)
	mod.SetSource(parser.Source{Name: "game", Dir: "build"})
	_, err := Generate(mod, Options{})
	assert.ErrorContains(t, err, "cannot be used as a package name")
}

func Test_Generate_RuntimeOverride(t *testing.T) {
	mod := parseModule(t, `#[hot_module(name = "game", dir = "build")]
module m {}`)
	got, err := Generate(mod, Options{Runtime: "example.com/reload/v2"})
	require.NoError(t, err)
	assert.Contains(t, string(got), `hotload "example.com/reload/v2"`)
	assert.NotContains(t, string(got), DefaultRuntime)
}

func Test_Generate_ImportMerge(t *testing.T) {
	mod := parseModule(t, `#[hot_module(name = "game", dir = "build")]
module m {
	import "fmt"
	import f "fmt"
	import (
		"os"
		api "example.com/game/api"
	)

	var _ = f.Sprint(os.Args, api.Version)
}`)
	got, err := Generate(mod, Options{})
	require.NoError(t, err)
	out := string(got)

	assert.Equal(t, 1, strings.Count(out, "\t\"fmt\"\n"), out)
	assert.Contains(t, out, `f "fmt"`)
	assert.Contains(t, out, `api "example.com/game/api"`)
	assert.Equal(t, 1, strings.Count(out, "import ("), out)
}

func Test_Generate_ProxyShapes(t *testing.T) {
	mod := parseModule(t, `#[hot_module(name = "game", dir = "build")]
module m {
	hot funcs {
		func Fire()
		func Free(ptr *uint64)
		func Blend(int, int) int
	}
}`)
	got, err := Generate(mod, Options{})
	require.NoError(t, err)
	out := string(got)

	assert.Contains(t, out, "func Fire() {\n\t_hotSymbol(\"Fire\").(func())()\n}")
	assert.Contains(t, out, "func Free(ptr *uint64) {\n\t_hotSymbol(\"Free\").(func(*uint64))(ptr)\n}")
	assert.Contains(t, out, "func Blend(a0 int, a1 int) int {\n\treturn _hotSymbol(\"Blend\").(func(int, int) int)(a0, a1)\n}")
}

func Test_Generate_DuplicateWarning(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	mod := parseModule(t, `#[hot_module(name = "game", dir = "build")]
module m {
	hot funcs {
		func Fire()
		func Fire()
	}
}`)
	_, err := Generate(mod, Options{})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "duplicate hot function")
}

func Test_Generate_BadPassthrough(t *testing.T) {
	mod := parseModule(t, `#[hot_module(name = "game", dir = "build")]
module m {
	gibberish nonsense
}`)
	_, err := Generate(mod, Options{})
	assert.ErrorContains(t, err, "formatting generated code")
}
