package envconfig

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/hotgen/hotgen/logutil"
)

var (
	// Set via HOTGEN_DEBUG in the environment
	Debug bool
	// Set via HOTGEN_TRACE in the environment
	Trace bool
	// Set via HOTGEN_RUNTIME in the environment
	RuntimePackage string
)

type EnvVar struct {
	Name        string
	Value       any
	Description string
}

func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"HOTGEN_DEBUG":   {"HOTGEN_DEBUG", Debug, "Show additional debug information (e.g. HOTGEN_DEBUG=1)"},
		"HOTGEN_TRACE":   {"HOTGEN_TRACE", Trace, "Log every token the hotfile lexer produces"},
		"HOTGEN_RUNTIME": {"HOTGEN_RUNTIME", RuntimePackage, "Import path generated code uses for the loader runtime (default github.com/hotgen/hotgen/hotload)"},
	}
}

// LogLevel returns the slog level selected by the environment.
func LogLevel() slog.Level {
	switch {
	case Trace:
		return logutil.LevelTrace
	case Debug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// Clean quotes and spaces from the value
func clean(key string) string {
	return strings.Trim(os.Getenv(key), "\"' ")
}

func init() {
	LoadConfig()
}

func LoadConfig() {
	Debug = false
	if debug := clean("HOTGEN_DEBUG"); debug != "" {
		d, err := strconv.ParseBool(debug)
		if err == nil {
			Debug = d
		} else {
			Debug = true
		}
	}

	Trace = false
	if trace := clean("HOTGEN_TRACE"); trace != "" {
		d, err := strconv.ParseBool(trace)
		if err == nil {
			Trace = d
		} else {
			Trace = true
		}
	}

	RuntimePackage = clean("HOTGEN_RUNTIME")
}
