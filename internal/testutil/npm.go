package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WritePackage installs a fake npm package under root/node_modules/name with
// the given package.json content and returns the package directory.
func WritePackage(t *testing.T, root, name, manifest string) string {
	t.Helper()
	dir := filepath.Join(root, "node_modules", filepath.FromSlash(name))
	WriteFile(t, filepath.Join(dir, "package.json"), manifest, 0o644)
	return dir
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
