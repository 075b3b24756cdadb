// Package hotload opens and swaps dynamic libraries behind generated
// proxy modules. A Loader owns the currently loaded build of one
// library; proxies resolve their symbol through Loader.Current on every
// call, so a completed Reload is observed by the very next call into
// the module while in-flight calls finish on the build they started
// with.
package hotload

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// Symbol is a value resolved from a loaded library, in practice a
// function value the generated proxies assert to their concrete type.
type Symbol = any

// Handle is one opened build of a library.
type Handle interface {
	Lookup(name string) (Symbol, error)
}

// Backend opens library builds. Open is called once per load: at
// loader construction and again on every reload.
type Backend interface {
	Open(name, dir string) (Handle, error)
}

// Event reports a completed reload.
type Event struct {
	Name    string
	Version int
}

// Options configure a Loader.
type Options struct {
	// Name is the logical library name, without platform prefix or
	// file extension.
	Name string

	// Dir is where builds are searched. Environment references like
	// $HOME or ${OUT_DIR} are expanded on every load. Empty means the
	// working directory.
	Dir string

	// Backend overrides the platform default.
	Backend Backend
}

// Loader tracks the current build of one dynamic library. The zero
// value is not usable; construct with NewLoader.
type Loader struct {
	name    string
	dir     string
	backend Backend

	current atomic.Pointer[Library]

	mu   sync.Mutex // serializes reloads, guards subs
	subs []chan Event
}

// NewLoader opens the library once and returns a loader holding that
// first build.
func NewLoader(opts Options) (*Loader, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("hotload: library name is required")
	}
	backend := opts.Backend
	if backend == nil {
		backend = defaultBackend()
	}
	if backend == nil {
		return nil, fmt.Errorf("hotload: no dynamic library backend on this platform, set Options.Backend")
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	l := &Loader{name: opts.Name, dir: dir, backend: backend}
	h, err := l.open()
	if err != nil {
		return nil, fmt.Errorf("hotload: loading %s: %w", opts.Name, err)
	}
	l.current.Store(&Library{name: l.name, version: 1, handle: h})
	slog.Debug("loaded hot library", "name", l.name, "version", 1)
	return l, nil
}

func (l *Loader) open() (Handle, error) {
	return l.backend.Open(l.name, os.ExpandEnv(l.dir))
}

// Current returns the library build as of this call. Callers that want
// to observe reloads must not hold on to the result between calls.
func (l *Loader) Current() *Library {
	return l.current.Load()
}

// Version reports how many builds have been loaded so far, starting at
// 1 for the initial load.
func (l *Loader) Version() int {
	return l.Current().Version()
}

// Reload opens the library again and swaps it in. A failed reload
// leaves the current build in place.
func (l *Loader) Reload() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	h, err := l.open()
	if err != nil {
		return fmt.Errorf("hotload: reloading %s: %w", l.name, err)
	}
	lib := l.install(h)
	slog.Debug("reloaded hot library", "name", lib.name, "version", lib.version)
	return nil
}

// Replace swaps in an already opened handle. Loaders driven by an
// external engine that builds and opens libraries itself use this
// instead of Reload; the version bump and subscriber notification are
// the same.
func (l *Loader) Replace(h Handle) *Library {
	l.mu.Lock()
	defer l.mu.Unlock()
	lib := l.install(h)
	slog.Debug("replaced hot library", "name", lib.name, "version", lib.version)
	return lib
}

// install publishes h as the next build. Callers hold mu.
func (l *Loader) install(h Handle) *Library {
	lib := &Library{name: l.name, version: l.Current().Version() + 1, handle: h}
	l.current.Store(lib)
	ev := Event{Name: lib.name, Version: lib.version}
	for _, ch := range l.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	return lib
}

// Subscribe returns a channel that receives an Event after every
// completed reload. Slow receivers miss events rather than blocking
// reloads.
func (l *Loader) Subscribe() <-chan Event {
	ch := make(chan Event, 4)
	l.mu.Lock()
	l.subs = append(l.subs, ch)
	l.mu.Unlock()
	return ch
}

// Library is one loaded build. Symbol lookups go against exactly this
// build even after the loader has moved on to a newer one.
type Library struct {
	name    string
	version int
	handle  Handle
}

func (lib *Library) Name() string { return lib.name }

func (lib *Library) Version() int { return lib.version }

// Lookup resolves a symbol in this build.
func (lib *Library) Lookup(name string) (Symbol, error) {
	sym, err := lib.handle.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("%s build %d: lookup %s: %w", lib.name, lib.version, name, err)
	}
	return sym, nil
}
