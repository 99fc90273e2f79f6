// Package testutil provides reusable test helpers for plume tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// NotesDir is a temporary directory of note files under test.
type NotesDir struct {
	Path string
	t    *testing.T
}

// NewNotesDir creates an empty temporary notes directory.
func NewNotesDir(t *testing.T) *NotesDir {
	t.Helper()
	return &NotesDir{Path: t.TempDir(), t: t}
}

// WithFile writes a file into the directory and returns the NotesDir for
// chaining. The path is relative to the directory root.
func (d *NotesDir) WithFile(relPath, content string) *NotesDir {
	d.t.Helper()
	full := filepath.Join(d.Path, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		d.t.Fatalf("mkdir for %s: %v", relPath, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		d.t.Fatalf("write %s: %v", relPath, err)
	}
	return d
}

// Join resolves a relative path inside the directory.
func (d *NotesDir) Join(relPath string) string {
	return filepath.Join(d.Path, relPath)
}

// ReadFile returns a file's content, failing the test on error.
func (d *NotesDir) ReadFile(relPath string) string {
	d.t.Helper()
	data, err := os.ReadFile(d.Join(relPath))
	if err != nil {
		d.t.Fatalf("read %s: %v", relPath, err)
	}
	return string(data)
}

// List returns the sorted base names of all files in the directory root.
func (d *NotesDir) List() []string {
	d.t.Helper()
	entries, err := os.ReadDir(d.Path)
	if err != nil {
		d.t.Fatalf("read dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}

// AssertFileExists fails the test if the file does not exist.
func (d *NotesDir) AssertFileExists(relPath string) {
	d.t.Helper()
	if _, err := os.Stat(d.Join(relPath)); os.IsNotExist(err) {
		d.t.Errorf("expected file to exist: %s (have: %v)", relPath, d.List())
	}
}

// AssertFileNotExists fails the test if the file exists.
func (d *NotesDir) AssertFileNotExists(relPath string) {
	d.t.Helper()
	if _, err := os.Stat(d.Join(relPath)); err == nil {
		d.t.Errorf("expected file to not exist: %s", relPath)
	}
}

// AssertFileContains fails the test if the file does not contain substr.
func (d *NotesDir) AssertFileContains(relPath, substr string) {
	d.t.Helper()
	content := d.ReadFile(relPath)
	if !strings.Contains(content, substr) {
		d.t.Errorf("expected file %s to contain %q, got:\n%s", relPath, substr, content)
	}
}
