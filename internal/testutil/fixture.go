// Package testutil provides data directories and fake providers for
// end-to-end tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// CatalogFile is the catalog name written by DataDir.
const CatalogFile = "catalog.json"

// DataDir creates a temporary data directory holding catalogJSON as
// catalog.json and returns its path.
func DataDir(t *testing.T, catalogJSON string) string {
	t.Helper()

	dir := t.TempDir()
	WriteFile(t, dir, CatalogFile, catalogJSON)
	return dir
}

// WriteFile writes content to dir/name, creating parent directories.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}
