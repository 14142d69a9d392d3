// Package paths resolves the facettes data directory and the files kept in it.
package paths

import (
	"os"
	"path/filepath"
)

const (
	// DefaultDataDir is used when neither a flag nor FACETTES_DATA_DIR is set.
	DefaultDataDir = ".facettes"

	// EnvDataDir overrides the data directory.
	EnvDataDir = "FACETTES_DATA_DIR"
)

// ResolveDataDir returns the data directory: flagValue, then
// $FACETTES_DATA_DIR, then ./.facettes. The result is absolute when the
// working directory is known.
func ResolveDataDir(flagValue string) string {
	dir := flagValue
	if dir == "" {
		dir = os.Getenv(EnvDataDir)
	}
	if dir == "" {
		dir = DefaultDataDir
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// Resolve joins a relative path to the data directory; absolute paths and
// empty strings are returned unchanged.
func Resolve(dataDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dataDir, filepath.FromSlash(p))
}

// EnsureDir creates dir if it is missing and returns it.
func EnsureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// Exists reports whether p exists.
func Exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
