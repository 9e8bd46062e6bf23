// Package nodemodules finds installed npm packages the way node's module
// resolution does: by walking up from a directory through every
// node_modules folder until the package is found.
package nodemodules

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/electron-inspector/electron-inspector/internal/safe"
)

// ErrModuleNotInstalled means no node_modules directory above the search root
// contains the requested package.
var ErrModuleNotInstalled = errors.New("module not installed")

// PackageFile is the npm package manifest name.
const PackageFile = "package.json"

// Package is an installed npm package and its parsed manifest.
type Package struct {
	// Dir is the package root (the directory holding package.json).
	Dir string

	manifest gjson.Result
}

// Version is the manifest's version field, verbatim.
func (p *Package) Version() string {
	return p.manifest.Get("version").String()
}

// Get returns a manifest field by gjson path, e.g. "binary.module_path".
func (p *Package) Get(path string) gjson.Result {
	return p.manifest.Get(path)
}

// ManifestPath is the absolute path of the package's package.json.
func (p *Package) ManifestPath() string {
	return filepath.Join(p.Dir, PackageFile)
}

// Resolver resolves package names relative to a base directory.
type Resolver struct {
	baseDir string
}

// NewResolver creates a resolver rooted at baseDir. An empty baseDir means the
// working directory.
func NewResolver(baseDir string) (*Resolver, error) {
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		baseDir = wd
	}

	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", baseDir, err)
	}
	return &Resolver{baseDir: abs}, nil
}

// Within returns a resolver that resolves from inside the installed package
// name, the way that package's own require calls do: its nested node_modules
// first, then every node_modules above it. When name is not installed, r
// itself is returned.
func (r *Resolver) Within(name string) *Resolver {
	dir, err := r.PackageDir(name)
	if err != nil {
		return r
	}
	return &Resolver{baseDir: dir}
}

// PackageDir returns the directory of the installed package name. The error
// wraps ErrModuleNotInstalled when no candidate directory has a package.json.
func (r *Resolver) PackageDir(name string) (string, error) {
	for _, dir := range r.searchPaths() {
		candidate := filepath.Join(dir, filepath.FromSlash(name))
		if safe.Exists(filepath.Join(candidate, PackageFile)) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: cannot find %q from %s", ErrModuleNotInstalled, name, r.baseDir)
}

// Package resolves and loads the manifest of the installed package name.
func (r *Resolver) Package(name string) (*Package, error) {
	dir, err := r.PackageDir(name)
	if err != nil {
		return nil, err
	}
	return Load(dir)
}

// File resolves a module request with a subpath, such as
// "node-inspector/bin/inspector.js", to an existing file.
func (r *Resolver) File(request string) (string, error) {
	name, subpath := SplitRequest(request)
	if subpath == "" {
		return "", fmt.Errorf("module request %q has no file path", request)
	}

	dir, err := r.PackageDir(name)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, filepath.FromSlash(subpath))
	if !safe.Exists(path) {
		return "", fmt.Errorf("%w: %s has no file %s", ErrModuleNotInstalled, name, subpath)
	}
	return path, nil
}

// searchPaths lists node_modules directories from the base dir up to the root.
func (r *Resolver) searchPaths() []string {
	var paths []string
	dir := r.baseDir
	for {
		if filepath.Base(dir) != "node_modules" {
			paths = append(paths, filepath.Join(dir, "node_modules"))
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return paths
		}
		dir = parent
	}
}

// SplitRequest splits a module request into its package name and subpath,
// keeping npm scopes ("@scope/pkg/lib/x.js" -> "@scope/pkg", "lib/x.js").
func SplitRequest(request string) (name, subpath string) {
	parts := strings.Split(request, "/")
	n := 1
	if strings.HasPrefix(request, "@") && len(parts) > 1 {
		n = 2
	}
	if len(parts) <= n {
		return request, ""
	}
	return strings.Join(parts[:n], "/"), strings.Join(parts[n:], "/")
}

// Load reads the package.json in dir.
func Load(dir string) (*Package, error) {
	path := filepath.Join(dir, PackageFile)
	data, err := safe.ReadFile(path, &safe.FileOptions{AllowSymlinks: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("failed to parse %s: invalid JSON", path)
	}
	return &Package{Dir: dir, manifest: gjson.ParseBytes(data)}, nil
}
