package rebuild

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/electron-inspector/electron-inspector/internal/config"
	"github.com/electron-inspector/electron-inspector/internal/electron"
	"github.com/electron-inspector/electron-inspector/internal/logging"
	"github.com/electron-inspector/electron-inspector/internal/prebuilt"
	"github.com/electron-inspector/electron-inspector/internal/safe"
)

var (
	execCommandContext = exec.CommandContext
	lookPath           = exec.LookPath
)

// NodeGypToolchain rebuilds add-ons with node-gyp and npm, the way
// electron-rebuild does.
type NodeGypToolchain struct {
	logger     zerolog.Logger
	npm        string
	nodeGyp    string
	headersURL string
	headersDir string

	// Stdout and Stderr receive the tools' output.
	Stdout io.Writer
	Stderr io.Writer
}

// NewNodeGypToolchain finds npm and node-gyp on PATH. A missing tool yields
// an error wrapping ErrRebuildUnavailable.
func NewNodeGypToolchain(logger zerolog.Logger, cfg config.RebuildConfig) (*NodeGypToolchain, error) {
	npm, err := lookPath("npm")
	if err != nil {
		return nil, fmt.Errorf("%w: npm not found: %v", ErrRebuildUnavailable, err)
	}
	nodeGyp, err := lookPath("node-gyp")
	if err != nil {
		return nil, fmt.Errorf("%w: node-gyp not found: %v", ErrRebuildUnavailable, err)
	}

	return &NodeGypToolchain{
		logger:     logging.Component(logger, "toolchain"),
		npm:        npm,
		nodeGyp:    nodeGyp,
		headersURL: cfg.HeadersURL,
		headersDir: cfg.HeadersDir,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}, nil
}

// Loader adapts NewNodeGypToolchain to a ToolchainLoader.
func Loader(logger zerolog.Logger, cfg config.RebuildConfig) ToolchainLoader {
	return func() (Toolchain, error) {
		return NewNodeGypToolchain(logger, cfg)
	}
}

func targetArch(arch string) string {
	if arch == "" {
		return prebuilt.HostArch()
	}
	return arch
}

// InstallHeaders implements Toolchain.
func (t *NodeGypToolchain) InstallHeaders(ctx context.Context, version, arch string) error {
	args := []string{
		"install",
		"--target=" + version,
		"--arch=" + targetArch(arch),
		"--dist-url=" + t.headersURL,
		"--devdir=" + t.headersDir,
	}
	return t.run(ctx, "", nil, t.nodeGyp, args...)
}

// RebuildModule implements Toolchain. npm runs from the directory that holds
// modulesDir so it picks up the right package tree.
func (t *NodeGypToolchain) RebuildModule(ctx context.Context, version, modulesDir, module, arch string) error {
	args := []string{
		"rebuild", module,
		"--runtime=electron",
		"--target=" + version,
		"--arch=" + targetArch(arch),
		"--disturl=" + t.headersURL,
		"--build-from-source",
	}
	env := []string{"npm_config_devdir=" + t.headersDir}
	return t.run(ctx, filepath.Dir(modulesDir), env, t.npm, args...)
}

// FixRunAsNode implements Toolchain. node-pre-gyp inside a run-as-node
// Electron identifies the runtime as node with Electron's module ABI, so the
// Electron-labelled binary is copied to the matching node-labelled path.
func (t *NodeGypToolchain) FixRunAsNode(ctx context.Context, moduleDir string, info electron.Info, arch string) error {
	abi, err := t.moduleABI(ctx, info)
	if err != nil {
		return err
	}

	src, err := prebuilt.FindInDir(moduleDir, prebuilt.FindOptions{
		Runtime: prebuilt.RuntimeElectron,
		Target:  info.Version,
		Arch:    arch,
	})
	if err != nil {
		return err
	}
	dst, err := prebuilt.FindInDir(moduleDir, prebuilt.FindOptions{
		Runtime: prebuilt.RuntimeNode,
		ABI:     prebuilt.NodeABI(abi),
		Arch:    arch,
	})
	if err != nil {
		return err
	}
	if src == dst {
		return nil
	}

	t.logger.Debug().Str("from", src).Str("to", dst).Msg("Copying binary for run-as-node")
	return safe.CopyFile(src, dst, &safe.FileOptions{
		MaxSize:  safe.MaxBinarySize,
		DestPerm: 0o755,
	})
}

// moduleABI asks Electron, in node mode, for process.versions.modules.
func (t *NodeGypToolchain) moduleABI(ctx context.Context, info electron.Info) (string, error) {
	// #nosec G204 -- the executable is the located Electron binary.
	cmd := execCommandContext(ctx, info.ExecutablePath, "-p", "process.versions.modules")
	cmd.Env = info.RunAsNodeEnviron(os.Environ())

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to query module ABI of %s: %w", info.ExecutablePath, err)
	}

	abi := strings.TrimSpace(string(out))
	if abi == "" || strings.Trim(abi, "0123456789") != "" {
		return "", fmt.Errorf("unexpected module ABI %q from %s", abi, info.ExecutablePath)
	}
	return abi, nil
}

func (t *NodeGypToolchain) run(ctx context.Context, dir string, env []string, name string, args ...string) error {
	t.logger.Debug().Str("cmd", name).Strs("args", args).Str("dir", dir).Msg("Running")

	// #nosec G204 -- the tools come from PATH and the arguments are built here.
	cmd := execCommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = t.Stdout

	// Keep a copy of stderr for the error message.
	var stderr bytes.Buffer
	if t.Stderr != nil {
		cmd.Stderr = io.MultiWriter(t.Stderr, &stderr)
	} else {
		cmd.Stderr = &stderr
	}

	if err := cmd.Run(); err != nil {
		if msg := lastLine(stderr.String()); msg != "" {
			return fmt.Errorf("%s %s: %w: %s", filepath.Base(name), args[0], err, msg)
		}
		return fmt.Errorf("%s %s: %w", filepath.Base(name), args[0], err)
	}
	return nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
