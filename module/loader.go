// Package module provides the file-based loader behind import/export:
// relative resolution against the importing file, a canonical-path cache so
// each module body is evaluated at most once, and import cycle detection.
package module

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/pulse/runtime"
)

// DefaultExtension is appended to specifiers that name no extension.
const DefaultExtension = ".pulse"

// EvalFunc evaluates a module body and returns its exports. Supplied by
// the interpreter so the loader stays free of evaluation logic.
type EvalFunc func(source, path string) (map[string]*runtime.Value, error)

// FileLoader implements the interpreter's ModuleLoader over the
// filesystem.
type FileLoader struct {
	eval    EvalFunc
	cache   map[string]map[string]*runtime.Value
	loading map[string]bool
}

func NewFileLoader(eval EvalFunc) *FileLoader {
	return &FileLoader{
		eval:    eval,
		cache:   make(map[string]map[string]*runtime.Value),
		loading: make(map[string]bool),
	}
}

// Resolve turns a specifier into a canonical absolute path, resolving
// relative specifiers against the importing file's directory.
func (l *FileLoader) Resolve(specifier, fromPath string) (string, error) {
	if specifier == "" {
		return "", fmt.Errorf("empty module specifier")
	}
	p := specifier
	if filepath.Ext(p) == "" {
		p += DefaultExtension
	}
	if !filepath.IsAbs(p) {
		base := "."
		if fromPath != "" {
			base = filepath.Dir(fromPath)
		}
		p = filepath.Join(base, p)
	}
	return filepath.Abs(p)
}

// Load evaluates the module at the canonical path, serving repeat loads
// from the cache. A module importing itself, directly or through a chain,
// is an error rather than a hang.
func (l *FileLoader) Load(path string) (map[string]*runtime.Value, error) {
	if exports, ok := l.cache[path]; ok {
		return exports, nil
	}
	if l.loading[path] {
		return nil, fmt.Errorf("import cycle detected at %s", path)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot load module %s: %w", path, err)
	}

	l.loading[path] = true
	defer delete(l.loading, path)

	exports, err := l.eval(string(source), path)
	if err != nil {
		return nil, err
	}
	l.cache[path] = exports
	return exports, nil
}
