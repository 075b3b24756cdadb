package envconfig

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hotgen/hotgen/logutil"
)

func TestConfig(t *testing.T) {
	t.Setenv("HOTGEN_DEBUG", "")
	LoadConfig()
	require.False(t, Debug)

	t.Setenv("HOTGEN_DEBUG", "false")
	LoadConfig()
	require.False(t, Debug)

	t.Setenv("HOTGEN_DEBUG", "1")
	LoadConfig()
	require.True(t, Debug)

	// unparsable values still enable it
	t.Setenv("HOTGEN_DEBUG", "yes please")
	LoadConfig()
	require.True(t, Debug)

	t.Setenv("HOTGEN_RUNTIME", "  \"example.com/custom/hotload\" ")
	LoadConfig()
	require.Equal(t, "example.com/custom/hotload", RuntimePackage)
}

func TestLogLevel(t *testing.T) {
	t.Setenv("HOTGEN_DEBUG", "")
	t.Setenv("HOTGEN_TRACE", "")
	LoadConfig()
	require.Equal(t, slog.LevelInfo, LogLevel())

	t.Setenv("HOTGEN_DEBUG", "1")
	LoadConfig()
	require.Equal(t, slog.LevelDebug, LogLevel())

	t.Setenv("HOTGEN_TRACE", "1")
	LoadConfig()
	require.Equal(t, logutil.LevelTrace, LogLevel())
}
