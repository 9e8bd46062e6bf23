package electron

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/electron-inspector/electron-inspector/internal/nodemodules"
	"github.com/electron-inspector/electron-inspector/internal/safe"
)

// ExplicitPathStrategy asks a user-supplied executable for its version.
type ExplicitPathStrategy struct {
	Path string
}

// Name implements Strategy.
func (s *ExplicitPathStrategy) Name() string {
	return "explicit-path"
}

// TryLocate implements Strategy. Nothing is spawned when Path does not exist.
func (s *ExplicitPathStrategy) TryLocate(ctx context.Context) (Info, bool) {
	if _, err := os.Stat(s.Path); err != nil {
		return Info{}, false
	}

	// #nosec G204 -- the executable path is the user's own --electron flag.
	out, err := execCommandContext(ctx, s.Path, "--version").Output()
	if err != nil {
		return Info{}, false
	}

	version, ok := ParseVersion(string(out))
	if !ok {
		return Info{}, false
	}
	return Info{ExecutablePath: s.Path, Version: version}, true
}

// pathFile is written by the electron npm packages' install script and names
// the executable, relative to either the package or its dist directory.
const pathFile = "path.txt"

// distDir holds the downloaded Electron release inside the package.
const distDir = "dist"

// ModuleStrategy finds Electron through an installed npm package such as
// "electron" or "electron-prebuilt". The executable path comes from the
// package's path.txt and the version from its package.json, unvalidated.
// A package whose executable is missing does not resolve.
type ModuleStrategy struct {
	Package  string
	Resolver *nodemodules.Resolver
}

// Name implements Strategy.
func (s *ModuleStrategy) Name() string {
	return "module:" + s.Package
}

// TryLocate implements Strategy.
func (s *ModuleStrategy) TryLocate(ctx context.Context) (Info, bool) {
	if s.Resolver == nil {
		return Info{}, false
	}

	pkg, err := s.Resolver.Package(s.Package)
	if err != nil {
		return Info{}, false
	}

	data, err := safe.ReadFile(filepath.Join(pkg.Dir, pathFile), &safe.FileOptions{AllowSymlinks: true})
	if err != nil {
		return Info{}, false
	}
	rel := strings.TrimSpace(string(data))
	if rel == "" {
		return Info{}, false
	}

	exe := executablePath(pkg.Dir, rel)
	if !safe.Exists(exe) {
		return Info{}, false
	}

	return Info{
		ExecutablePath: exe,
		Version:        pkg.Version(),
	}, true
}

// executablePath joins path.txt's content onto the package. electron-prebuilt
// 1.x writes "dist/electron", later packages write "electron".
func executablePath(pkgDir, rel string) string {
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, distDir+"/") {
		return filepath.Join(pkgDir, filepath.FromSlash(rel))
	}
	return filepath.Join(pkgDir, distDir, filepath.FromSlash(rel))
}
