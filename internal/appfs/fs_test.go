package appfs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)

	a, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	expectedPath := filepath.Join(tempDir, ConfigDir)
	if a.Root() != expectedPath {
		t.Errorf("Expected root path %s, got %s", expectedPath, a.Root())
	}
	if _, err := os.Stat(expectedPath); os.IsNotExist(err) {
		t.Errorf("Expected directory %s to be created", expectedPath)
	}
}

func TestDBPath(t *testing.T) {
	root := t.TempDir()
	abs := filepath.Join(t.TempDir(), "elsewhere", "h.db")
	a := NewWithRoot(root)

	tests := []struct {
		name     string
		location string
		want     string
	}{
		{"default", "", filepath.Join(root, DefaultDBName)},
		{"absolute", abs, abs},
		{"relative", filepath.Join("data", "h.db"), filepath.Join(root, "data", "h.db")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.DBPath(tt.location)
			if err != nil {
				t.Fatalf("DBPath(%q) failed: %v", tt.location, err)
			}
			if got != tt.want {
				t.Errorf("DBPath(%q) = %s, want %s", tt.location, got, tt.want)
			}
			if _, err := os.Stat(filepath.Dir(got)); err != nil {
				t.Errorf("Expected parent directory of %s to exist: %v", got, err)
			}
		})
	}
}

func TestWriteAndReadFile(t *testing.T) {
	a := NewWithRoot(t.TempDir())

	if err := a.WriteFile("catalogs/main.yaml", []byte("objects: []\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := a.ReadFile("catalogs/main.yaml")
	if err != nil {
		t.Fatalf("ReadFile (relative) failed: %v", err)
	}
	if string(data) != "objects: []\n" {
		t.Errorf("Unexpected content %q", data)
	}

	data, err = a.ReadFile(filepath.Join(a.Root(), "catalogs", "main.yaml"))
	if err != nil {
		t.Fatalf("ReadFile (absolute) failed: %v", err)
	}
	if string(data) != "objects: []\n" {
		t.Errorf("Unexpected content %q", data)
	}
}

func TestInvalidPaths(t *testing.T) {
	a := NewWithRoot(t.TempDir())

	if err := a.WriteFile("../escape", []byte("x"), 0644); !errors.Is(err, fs.ErrInvalid) {
		t.Errorf("WriteFile(../escape) error = %v, want fs.ErrInvalid", err)
	}
	if _, err := a.Open("/abs"); !errors.Is(err, fs.ErrInvalid) {
		t.Errorf("Open(/abs) error = %v, want fs.ErrInvalid", err)
	}
}

func TestResolve(t *testing.T) {
	a := NewWithRoot("/root/cfg")

	if got := a.Resolve(""); got != "" {
		t.Errorf("Resolve(\"\") = %q, want empty", got)
	}
	if got := a.Resolve("/abs/x.yaml"); got != "/abs/x.yaml" {
		t.Errorf("Resolve(abs) = %q", got)
	}
	if got := a.Resolve("x.yaml"); got != filepath.Join("/root/cfg", "x.yaml") {
		t.Errorf("Resolve(rel) = %q", got)
	}
}
