// Package prebuilt computes where node-pre-gyp places the native binary of an
// npm package for a given runtime, mirroring node-pre-gyp's `find`.
//
// The package.json of a node-pre-gyp module carries a "binary" object:
//
//	"binary": {
//	    "module_name": "debug",
//	    "module_path": "./build/{module_name}/v{version}/{node_abi}-{platform}-{arch}/"
//	}
//
// Find expands the module_path template and appends "<module_name>.node".
package prebuilt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/electron-inspector/electron-inspector/internal/nodemodules"
)

// ErrNoBinaryMetadata means the package.json has no usable "binary" section.
var ErrNoBinaryMetadata = errors.New("package has no node-pre-gyp binary metadata")

const (
	RuntimeElectron = "electron"
	RuntimeNode     = "node"
)

// FindOptions selects the runtime a binary is looked up for. Zero-valued
// fields default to the host platform, host architecture and a release build.
type FindOptions struct {
	// Runtime is RuntimeElectron or RuntimeNode.
	Runtime string
	// Target is the runtime version, e.g. "1.4.3".
	Target string
	// ABI overrides the computed {node_abi} label, e.g. "node-v50".
	ABI string
	// Platform is a node platform name (linux, darwin, win32).
	Platform string
	// Arch is a node arch name (x64, ia32, arm, arm64).
	Arch  string
	Debug bool
}

// Find returns the expected binary path for the package in pkg.
func Find(pkg *nodemodules.Package, opts FindOptions) (string, error) {
	moduleName := pkg.Get("binary.module_name").String()
	modulePath := pkg.Get("binary.module_path").String()
	if moduleName == "" || modulePath == "" {
		return "", fmt.Errorf("%w: %s", ErrNoBinaryMetadata, pkg.ManifestPath())
	}

	abi, err := runtimeABI(opts)
	if err != nil {
		return "", err
	}

	platform := opts.Platform
	if platform == "" {
		platform = HostPlatform()
	}
	arch := opts.Arch
	if arch == "" {
		arch = HostArch()
	}
	configuration := "Release"
	if opts.Debug {
		configuration = "Debug"
	}

	vars := map[string]string{
		"module_name":     moduleName,
		"version":         pkg.Version(),
		"node_abi":        abi,
		"node_napi_label": abi,
		"platform":        platform,
		"target_platform": platform,
		"arch":            arch,
		"target_arch":     arch,
		"libc":            hostLibc(platform),
		"configuration":   configuration,
		"toolset":         "",
	}

	dir := expand(modulePath, vars)
	return filepath.Join(pkg.Dir, filepath.FromSlash(dir), moduleName+".node"), nil
}

// FindInDir loads the package.json in pkgDir and calls Find.
func FindInDir(pkgDir string, opts FindOptions) (string, error) {
	pkg, err := nodemodules.Load(pkgDir)
	if err != nil {
		return "", err
	}
	return Find(pkg, opts)
}

// runtimeABI computes node-pre-gyp's {node_abi} label. Electron binaries are
// keyed on major.minor ("electron-v1.4"); node binaries need the module ABI,
// which only the runtime itself knows, so it must be passed in.
func runtimeABI(opts FindOptions) (string, error) {
	if opts.ABI != "" {
		return opts.ABI, nil
	}

	switch opts.Runtime {
	case RuntimeElectron:
		v, err := goversion.NewVersion(opts.Target)
		if err != nil {
			return "", fmt.Errorf("invalid electron target %q: %w", opts.Target, err)
		}
		segments := v.Segments()
		return fmt.Sprintf("electron-v%d.%d", segments[0], segments[1]), nil
	case RuntimeNode:
		return "", fmt.Errorf("node runtime needs an explicit ABI")
	default:
		return "", fmt.Errorf("unsupported runtime %q", opts.Runtime)
	}
}

// NodeABI formats a process.versions.modules value as a {node_abi} label.
func NodeABI(modules string) string {
	return "node-v" + modules
}

// expand substitutes {name} placeholders; unknown placeholders are kept.
func expand(template string, vars map[string]string) string {
	var b strings.Builder
	for {
		start := strings.IndexByte(template, '{')
		if start < 0 {
			b.WriteString(template)
			return b.String()
		}
		end := strings.IndexByte(template[start:], '}')
		if end < 0 {
			b.WriteString(template)
			return b.String()
		}
		end += start

		b.WriteString(template[:start])
		key := template[start+1 : end]
		if v, ok := vars[key]; ok {
			b.WriteString(v)
		} else {
			b.WriteString(template[start : end+1])
		}
		template = template[end+1:]
	}
}

func hostLibc(platform string) string {
	if libc := os.Getenv("LIBC"); libc != "" {
		return libc
	}
	if platform == "linux" {
		return "glibc"
	}
	return "unknown"
}
