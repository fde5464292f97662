package loader

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Constructor is a function that creates a new Loader instance.
type Constructor func() Loader

var registry = map[string]Constructor{}

// Register adds a loader constructor for the given file extension
// (including the leading dot, e.g. ".onnx").
func Register(ext string, ctor Constructor) {
	registry[strings.ToLower(ext)] = ctor
}

// Get returns the loader constructor for the given extension.
func Get(ext string) (Constructor, error) {
	ctor, ok := registry[strings.ToLower(ext)]
	if !ok {
		return nil, fmt.Errorf("loader: no loader for extension %q", ext)
	}
	return ctor, nil
}

// ForPath returns a Loader for the given file path, keyed on its extension.
func ForPath(path string) (Loader, error) {
	ctor, err := Get(filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return ctor(), nil
}

// Extensions returns the extensions of all registered loaders.
func Extensions() []string {
	exts := make([]string, 0, len(registry))
	for ext := range registry {
		exts = append(exts, ext)
	}
	return exts
}
