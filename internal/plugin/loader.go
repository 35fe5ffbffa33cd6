// Package plugin loads Starlark plugins that extend call-site recognition.
//
// A plugin is a .star file defining a match(method) function that returns
// True when <receiver>.<method>("name", fn) is an injectable registration.
// It may also define a name global used in logs and error messages.
//
//	name = "dashboard"
//
//	def match(method):
//	    return method in ["widget", "panel"]
package plugin

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// matchFunc is the callable every plugin must define.
const matchFunc = "match"

// ResolveError reports a plugin path that does not resolve to a file.
type ResolveError struct {
	Path string
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("error: plugin file not found %s", e.Path)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// LoadError reports a plugin that resolved but failed to load.
type LoadError struct {
	Path    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("error: couldn't load plugin %q: %s", e.Path, e.Message)
}

// Module is a loaded plugin.
type Module struct {
	name   string
	path   string
	match  starlark.Callable
	thread *starlark.Thread
}

// Name returns the plugin's display name.
func (m *Module) Name() string { return m.name }

// Path returns the absolute, symlink-resolved path the plugin was loaded from.
func (m *Module) Path() string { return m.path }

// Match calls the plugin's match function for method.
func (m *Module) Match(method string) (bool, error) {
	v, err := starlark.Call(m.thread, m.match, starlark.Tuple{starlark.String(method)}, nil)
	if err != nil {
		return false, err
	}
	return bool(v.Truth()), nil
}

// Loader resolves and executes plugin files.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger discards output.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{logger: logger}
}

// LoadAll loads paths in order and stops at the first failure; later paths
// are never resolved once one fails.
func (l *Loader) LoadAll(paths []string) ([]*Module, error) {
	modules := make([]*Module, 0, len(paths))
	for _, p := range paths {
		m, err := l.Load(p)
		if err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, nil
}

// Load resolves path through symlinks to an absolute path and executes it.
func (l *Loader) Load(path string) (*Module, error) {
	resolved, err := Resolve(path)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(resolved) //nolint:gosec // G304: plugin path is supplied by the user
	if err != nil {
		return nil, &LoadError{Path: resolved, Message: fmt.Sprintf("failed to read file: %v", err)}
	}

	name := strings.TrimSuffix(filepath.Base(resolved), filepath.Ext(resolved))
	thread := &starlark.Thread{
		Name: "plugin:" + name,
		Print: func(_ *starlark.Thread, msg string) {
			l.logger.Debug("plugin output", slog.String("plugin", name), slog.String("msg", msg))
		},
	}

	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, resolved, content, nil)
	if err != nil {
		return nil, &LoadError{Path: resolved, Message: err.Error()}
	}

	fn, ok := globals[matchFunc].(starlark.Callable)
	if !ok {
		return nil, &LoadError{Path: resolved, Message: "plugin does not define a match(method) function"}
	}

	if v, ok := globals["name"].(starlark.String); ok && v != "" {
		name = string(v)
	}

	l.logger.Debug("loaded plugin", slog.String("name", name), slog.String("path", resolved))

	return &Module{
		name:   name,
		path:   resolved,
		match:  fn,
		thread: thread,
	}, nil
}

// Resolve returns the canonical absolute path of path, following symlinks.
func Resolve(path string) (string, error) {
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", &ResolveError{Path: path, Err: err}
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", &ResolveError{Path: path, Err: err}
	}
	return abs, nil
}
