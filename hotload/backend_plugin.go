//go:build linux || darwin || freebsd

package hotload

import (
	"fmt"
	"os"
	"path/filepath"
	"plugin"
	"time"
)

func defaultBackend() Backend {
	return PluginBackend{}
}

// PluginBackend loads libraries built with go build -buildmode=plugin.
// The Go runtime refuses to open the same plugin path twice, so each
// rebuild must land under a fresh file name; Open picks the newest
// name*.so in the directory.
type PluginBackend struct{}

func (PluginBackend) Open(name, dir string) (Handle, error) {
	pattern := filepath.Join(dir, name+"*.so")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	newest := ""
	var newestMod time.Time
	for _, m := range matches {
		fi, err := os.Stat(m)
		if err != nil {
			continue
		}
		if newest == "" || fi.ModTime().After(newestMod) {
			newest = m
			newestMod = fi.ModTime()
		}
	}
	if newest == "" {
		return nil, fmt.Errorf("no library matches %s", pattern)
	}
	p, err := plugin.Open(newest)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", newest, err)
	}
	return pluginHandle{p}, nil
}

type pluginHandle struct {
	p *plugin.Plugin
}

func (h pluginHandle) Lookup(name string) (Symbol, error) {
	return h.p.Lookup(name)
}
