// Package datadir manages the on-disk data directories used by basis,
// project, and component scopes. All paths resolve within the scope's root
// directory to prevent traversal outside it.
package datadir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EscapeError reports a path that would resolve outside a scope's root
// directory.
type EscapeError struct {
	Path string
}

// Error implements the error interface.
func (e *EscapeError) Error() string {
	return fmt.Sprintf("path %q resolves outside the data directory", e.Path)
}

// Dir is a handle to a scope's data directory. It exposes the conventional
// subdirectories and creates them lazily.
type Dir struct {
	root string
}

// New creates a Dir rooted at the given directory, creating it if needed.
func New(root string) (*Dir, error) {
	if root == "" {
		return nil, fmt.Errorf("data directory root is required")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving data directory root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Dir{root: abs}, nil
}

// RootDir returns the absolute path to the scope's root directory.
func (d *Dir) RootDir() string {
	return d.root
}

// CacheDir returns the cache subdirectory, creating it if needed.
func (d *Dir) CacheDir() (string, error) {
	return d.ensure("cache")
}

// DataDir returns the data subdirectory, creating it if needed.
func (d *Dir) DataDir() (string, error) {
	return d.ensure("data")
}

// TempDir returns the temp subdirectory, creating it if needed.
func (d *Dir) TempDir() (string, error) {
	return d.ensure("tmp")
}

// resolve joins a relative path onto the root. Rather than comparing
// string prefixes, it asks the reverse question: the joined path must be
// expressible as a descendant-relative path of the root, otherwise the
// input escaped.
func (d *Dir) resolve(relativePath string) (string, error) {
	if relativePath == "" {
		return d.root, nil
	}
	if filepath.IsAbs(relativePath) {
		return "", &EscapeError{Path: relativePath}
	}

	full := filepath.Join(d.root, relativePath)
	rel, err := filepath.Rel(d.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &EscapeError{Path: relativePath}
	}

	return full, nil
}

// ensure resolves a relative path and creates the directory if needed.
func (d *Dir) ensure(relativePath string) (string, error) {
	path, err := d.resolve(relativePath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(path, 0o750); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}
	return path, nil
}

// child creates a Dir handle for a named child scope under a grouping
// subdirectory, e.g. project/<name>.
func (d *Dir) child(group, name string) (*Dir, error) {
	if name == "" {
		return nil, fmt.Errorf("%s name is required", group)
	}
	path, err := d.ensure(filepath.Join(group, name))
	if err != nil {
		return nil, err
	}
	return &Dir{root: path}, nil
}

// Basis is the data directory handle for a basis scope.
type Basis struct {
	Dir
}

// NewBasis creates the basis data directory rooted at the given path.
func NewBasis(root string) (*Basis, error) {
	dir, err := New(root)
	if err != nil {
		return nil, err
	}
	return &Basis{Dir: *dir}, nil
}

// Project returns the data directory handle for a named project.
func (b *Basis) Project(name string) (*Project, error) {
	dir, err := b.child("project", name)
	if err != nil {
		return nil, err
	}
	return &Project{Dir: *dir}, nil
}

// Project is the data directory handle for a project scope.
type Project struct {
	Dir
}

// Target returns the data directory handle for a named target.
func (p *Project) Target(name string) (*Target, error) {
	dir, err := p.child("target", name)
	if err != nil {
		return nil, err
	}
	return &Target{Dir: *dir}, nil
}

// Component returns the data directory handle for a named component.
func (p *Project) Component(kind, name string) (*Component, error) {
	dir, err := p.child("component", kind+"-"+name)
	if err != nil {
		return nil, err
	}
	return &Component{Dir: *dir}, nil
}

// Target is the data directory handle for a target scope.
type Target struct {
	Dir
}

// Component is the data directory handle for a plugin component.
type Component struct {
	Dir
}
