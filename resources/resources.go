// Package resources looks up files bundled with an application, typically
// from an embed.FS.
package resources

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("resource not found")

// Locator finds files within one resource filesystem.
type Locator struct {
	fsys fs.FS
	name string
}

// NewLocator creates a locator over fsys. The name appears in error
// messages ("background", "template", ...).
func NewLocator(fsys fs.FS, name string) Locator {
	return Locator{fsys: fsys, name: name}
}

// Get returns the content of the named resource file.
func (l Locator) Get(filename string) ([]byte, error) {
	data, err := fs.ReadFile(l.fsys, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %s file %q", ErrNotFound, l.name, filename)
	}
	return data, nil
}

// Exists reports whether the named resource file is present.
func (l Locator) Exists(filename string) bool {
	_, err := fs.Stat(l.fsys, filename)
	return err == nil
}

// List returns the file names in dir, hiding special files whose name
// starts with "_" or ".".
func (l Locator) List(dir string) ([]string, error) {
	entries, err := fs.ReadDir(l.fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s directory %q", ErrNotFound, l.name, dir)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}
