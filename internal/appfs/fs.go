// Package appfs locates replkit's files under the user's configuration
// directory.
package appfs

import (
	"io/fs"
	"os"
	"path/filepath"
)

const (
	ConfigDir     = ".config/replkit"
	DefaultDBName = "history.db"
)

// AppFS is a filesystem rooted at the replkit configuration directory
type AppFS struct {
	root string
}

// New creates an AppFS rooted at ~/.config/replkit/, creating it if needed
func New() (*AppFS, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	root := filepath.Join(homeDir, ConfigDir)
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, err
	}
	return &AppFS{root: root}, nil
}

// NewWithRoot creates an AppFS with a custom root (for testing)
func NewWithRoot(root string) *AppFS {
	return &AppFS{root: root}
}

// Root returns the root directory path
func (a *AppFS) Root() string {
	return a.root
}

// Resolve maps a configured path to a filesystem path.
// Absolute paths are used directly; relative paths are taken under the root.
func (a *AppFS) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(a.root, path)
}

// DBPath returns the history database path for a history_location setting
// and makes sure its directory exists.
// If location is empty, uses ~/.config/replkit/history.db
// If location is absolute, uses it directly
// If location is relative, treats it as a path under ~/.config/replkit/
func (a *AppFS) DBPath(location string) (string, error) {
	path := filepath.Join(a.root, DefaultDBName)
	if location != "" {
		path = a.Resolve(location)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	return path, nil
}

// Open implements fs.FS
func (a *AppFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	return os.Open(filepath.Join(a.root, name))
}

// ReadFile reads a file by configured path: absolute paths directly,
// relative ones through the root.
func (a *AppFS) ReadFile(path string) ([]byte, error) {
	if filepath.IsAbs(path) {
		return os.ReadFile(path)
	}
	return fs.ReadFile(a, filepath.ToSlash(filepath.Clean(path)))
}

// WriteFile writes data to a file relative to the configuration directory
func (a *AppFS) WriteFile(name string, data []byte, perm os.FileMode) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "writefile", Path: name, Err: fs.ErrInvalid}
	}

	fullPath := filepath.Join(a.root, name)

	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	return os.WriteFile(fullPath, data, perm)
}
