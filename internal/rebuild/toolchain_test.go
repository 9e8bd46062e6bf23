package rebuild

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/electron-inspector/electron-inspector/internal/config"
	"github.com/electron-inspector/electron-inspector/internal/electron"
	"github.com/electron-inspector/electron-inspector/internal/prebuilt"
	"github.com/electron-inspector/electron-inspector/internal/testutil"
)

type capturedCmd struct {
	name string
	args []string
	cmd  *exec.Cmd
}

// fakeExec replaces the exec seam; every command runs script under /bin/sh.
func fakeExec(t *testing.T, script string) *[]capturedCmd {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}
	var captured []capturedCmd
	orig := execCommandContext
	t.Cleanup(func() { execCommandContext = orig })
	execCommandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, "/bin/sh", "-c", script)
		captured = append(captured, capturedCmd{name: name, args: args, cmd: cmd})
		return cmd
	}
	return &captured
}

func fakeLookPath(t *testing.T, missing string) {
	t.Helper()
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })
	lookPath = func(file string) (string, error) {
		if file == missing {
			return "", exec.ErrNotFound
		}
		return "/usr/local/bin/" + file, nil
	}
}

func newTestToolchain(t *testing.T) *NodeGypToolchain {
	t.Helper()
	fakeLookPath(t, "")
	tc, err := NewNodeGypToolchain(testutil.NewTestLogger(t), config.RebuildConfig{
		HeadersURL: "https://electronjs.org/headers",
		HeadersDir: "/home/dev/.electron-gyp",
	})
	require.NoError(t, err)
	tc.Stdout, tc.Stderr = nil, nil
	return tc
}

func envValue(env []string, key string) (string, bool) {
	for i := len(env) - 1; i >= 0; i-- {
		if k, v, ok := strings.Cut(env[i], "="); ok && k == key {
			return v, true
		}
	}
	return "", false
}

func TestNewNodeGypToolchain_MissingTools(t *testing.T) {
	for _, tool := range []string{"npm", "node-gyp"} {
		t.Run(tool, func(t *testing.T) {
			fakeLookPath(t, tool)
			_, err := NewNodeGypToolchain(testutil.NewTestLogger(t), config.RebuildConfig{})
			require.ErrorIs(t, err, ErrRebuildUnavailable)
			assert.Contains(t, err.Error(), tool)
		})
	}
}

func TestLoader(t *testing.T) {
	fakeLookPath(t, "node-gyp")
	_, err := Loader(testutil.NewTestLogger(t), config.RebuildConfig{})()
	assert.ErrorIs(t, err, ErrRebuildUnavailable)
}

func TestNodeGypToolchain_InstallHeaders(t *testing.T) {
	tc := newTestToolchain(t)
	captured := fakeExec(t, "exit 0")

	require.NoError(t, tc.InstallHeaders(context.Background(), "1.4.3", "ia32"))

	require.Len(t, *captured, 1)
	c := (*captured)[0]
	assert.Equal(t, "/usr/local/bin/node-gyp", c.name)
	assert.Equal(t, []string{
		"install",
		"--target=1.4.3",
		"--arch=ia32",
		"--dist-url=https://electronjs.org/headers",
		"--devdir=/home/dev/.electron-gyp",
	}, c.args)
}

func TestNodeGypToolchain_RebuildModule(t *testing.T) {
	tc := newTestToolchain(t)
	captured := fakeExec(t, "exit 0")

	project := t.TempDir()
	modulesDir := filepath.Join(project, "node_modules")

	require.NoError(t, tc.RebuildModule(context.Background(), "1.4.3", modulesDir, "v8-debug", ""))

	require.Len(t, *captured, 1)
	c := (*captured)[0]
	assert.Equal(t, "/usr/local/bin/npm", c.name)
	assert.Equal(t, []string{
		"rebuild", "v8-debug",
		"--runtime=electron",
		"--target=1.4.3",
		"--arch=" + prebuilt.HostArch(),
		"--disturl=https://electronjs.org/headers",
		"--build-from-source",
	}, c.args)
	assert.Equal(t, project, c.cmd.Dir)

	devdir, ok := envValue(c.cmd.Env, "npm_config_devdir")
	require.True(t, ok)
	assert.Equal(t, "/home/dev/.electron-gyp", devdir)
}

func TestNodeGypToolchain_CommandFailure(t *testing.T) {
	tc := newTestToolchain(t)
	fakeExec(t, "echo 'gyp info it worked if it ends with ok' >&2; echo 'gyp ERR! not ok' >&2; exit 1")

	err := tc.InstallHeaders(context.Background(), "1.4.3", "x64")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node-gyp install")
	assert.Contains(t, err.Error(), "gyp ERR! not ok")

	var exitErr *exec.ExitError
	assert.True(t, errors.As(err, &exitErr))
}

const addonManifest = `{
  "name": "v8-debug",
  "version": "0.7.7",
  "binary": {
    "module_name": "debug",
    "module_path": "./build/{module_name}/v{version}/{node_abi}-{platform}-{arch}/"
  }
}`

func TestNodeGypToolchain_FixRunAsNode(t *testing.T) {
	tc := newTestToolchain(t)
	captured := fakeExec(t, "echo 50")

	moduleDir := testutil.WritePackage(t, t.TempDir(), "v8-debug", addonManifest)
	src, err := prebuilt.FindInDir(moduleDir, prebuilt.FindOptions{Runtime: prebuilt.RuntimeElectron, Target: "1.4.3"})
	require.NoError(t, err)
	testutil.WriteFile(t, src, "electron build", 0o755)

	err = tc.FixRunAsNode(context.Background(), moduleDir, electron.Info{ExecutablePath: "/opt/electron", Version: "1.4.3"}, "")
	require.NoError(t, err)

	dst := filepath.Join(moduleDir, "build", "debug", "v0.7.7",
		"node-v50-"+prebuilt.HostPlatform()+"-"+prebuilt.HostArch(), "debug.node")
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "electron build", string(got))

	require.Len(t, *captured, 1)
	c := (*captured)[0]
	assert.Equal(t, "/opt/electron", c.name)
	assert.Equal(t, []string{"-p", "process.versions.modules"}, c.args)
	v, ok := envValue(c.cmd.Env, "ELECTRON_RUN_AS_NODE")
	require.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestNodeGypToolchain_FixRunAsNodeLegacyElectron(t *testing.T) {
	tc := newTestToolchain(t)
	captured := fakeExec(t, "echo 47")

	moduleDir := testutil.WritePackage(t, t.TempDir(), "v8-debug", addonManifest)
	src, err := prebuilt.FindInDir(moduleDir, prebuilt.FindOptions{Runtime: prebuilt.RuntimeElectron, Target: "0.37.8"})
	require.NoError(t, err)
	testutil.WriteFile(t, src, "electron build", 0o755)

	require.NoError(t, tc.FixRunAsNode(context.Background(), moduleDir,
		electron.Info{ExecutablePath: "/opt/electron", Version: "0.37.8"}, ""))

	for _, name := range []string{"ELECTRON_RUN_AS_NODE", "ATOM_SHELL_INTERNAL_RUN_AS_NODE"} {
		v, ok := envValue((*captured)[0].cmd.Env, name)
		assert.True(t, ok, name)
		assert.Equal(t, "1", v, name)
	}
}

func TestNodeGypToolchain_FixRunAsNodeErrors(t *testing.T) {
	t.Run("unexpected abi output", func(t *testing.T) {
		tc := newTestToolchain(t)
		fakeExec(t, "echo undefined")

		moduleDir := testutil.WritePackage(t, t.TempDir(), "v8-debug", addonManifest)
		err := tc.FixRunAsNode(context.Background(), moduleDir, electron.Info{ExecutablePath: "/opt/electron", Version: "1.4.3"}, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected module ABI")
	})

	t.Run("electron binary was not built", func(t *testing.T) {
		tc := newTestToolchain(t)
		fakeExec(t, "echo 50")

		moduleDir := testutil.WritePackage(t, t.TempDir(), "v8-debug", addonManifest)
		err := tc.FixRunAsNode(context.Background(), moduleDir, electron.Info{ExecutablePath: "/opt/electron", Version: "1.4.3"}, "")
		require.Error(t, err)
		assert.True(t, os.IsNotExist(err))
	})
}
