package inspector

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/electron-inspector/electron-inspector/internal/config"
	"github.com/electron-inspector/electron-inspector/internal/electron"
	"github.com/electron-inspector/electron-inspector/internal/launcher"
	"github.com/electron-inspector/electron-inspector/internal/nodemodules"
	"github.com/electron-inspector/electron-inspector/internal/rebuild"
	"github.com/electron-inspector/electron-inspector/internal/testutil"
)

var testInfo = electron.Info{ExecutablePath: "/opt/electron/electron", Version: "1.4.3"}

type fakeLocator struct {
	info     electron.Info
	found    bool
	explicit string
}

func (f *fakeLocator) Locate(_ context.Context, explicitPath string) (electron.Info, bool) {
	f.explicit = explicitPath
	return f.info, f.found
}

type fakeChecker struct {
	compatible bool
	err        error
	versions   []string
}

func (f *fakeChecker) Compatible(version string) (bool, error) {
	f.versions = append(f.versions, version)
	return f.compatible, f.err
}

type fakeRebuilder struct {
	err   error
	calls int
	arch  string
}

func (f *fakeRebuilder) Rebuild(_ context.Context, info electron.Info, arch string) error {
	f.calls++
	f.arch = arch
	return f.err
}

type fakeLauncher struct {
	calls int
	info  electron.Info
	opts  config.Options
	proc  *launcher.Process
}

func (f *fakeLauncher) Launch(_ context.Context, info electron.Info, opts config.Options) *launcher.Process {
	f.calls++
	f.info = info
	f.opts = opts
	return f.proc
}

type fixture struct {
	locator   *fakeLocator
	checker   *fakeChecker
	rebuilder *fakeRebuilder
	launcher  *fakeLauncher
	logs      *testutil.LogBuffer
	inspector *Inspector
}

func newFixture(t *testing.T) *fixture {
	logger, logs := testutil.NewBufferedLogger(t)
	f := &fixture{
		locator:   &fakeLocator{info: testInfo, found: true},
		checker:   &fakeChecker{compatible: true},
		rebuilder: &fakeRebuilder{},
		launcher:  &fakeLauncher{proc: &launcher.Process{}},
		logs:      logs,
	}
	f.inspector = New(logger, f.locator, f.checker, f.rebuilder, f.launcher)
	return f
}

func TestInspectCompatible(t *testing.T) {
	f := newFixture(t)
	opts := config.Options{AutoRebuild: true, Electron: "/custom/electron"}

	proc, err := f.inspector.Inspect(context.Background(), opts)
	require.NoError(t, err)

	assert.Same(t, f.launcher.proc, proc)
	assert.Equal(t, "/custom/electron", f.locator.explicit)
	assert.Equal(t, []string{"1.4.3"}, f.checker.versions)
	assert.Zero(t, f.rebuilder.calls)
	assert.Equal(t, 1, f.launcher.calls)
	assert.Equal(t, testInfo, f.launcher.info)
	assert.Equal(t, opts, f.launcher.opts)
}

func TestInspectElectronNotFound(t *testing.T) {
	f := newFixture(t)
	f.locator.found = false

	proc, err := f.inspector.Inspect(context.Background(), config.Options{AutoRebuild: true})
	require.NoError(t, err)

	assert.Nil(t, proc)
	assert.Empty(t, f.checker.versions)
	assert.Zero(t, f.rebuilder.calls)
	assert.Zero(t, f.launcher.calls)
	assert.Contains(t, f.logs.String(), "Electron not found.")
}

func TestInspectRebuildsIncompatible(t *testing.T) {
	f := newFixture(t)
	f.checker.compatible = false

	proc, err := f.inspector.Inspect(context.Background(), config.Options{AutoRebuild: true, Arch: "ia32"})
	require.NoError(t, err)

	assert.NotNil(t, proc)
	assert.Equal(t, 1, f.rebuilder.calls)
	assert.Equal(t, "ia32", f.rebuilder.arch)
	assert.Equal(t, 1, f.launcher.calls)
	assert.Contains(t, f.logs.String(), "node-inspector binaries are incompatible or missing.")
	assert.Contains(t, f.logs.String(), "Attempting to rebuild...")
}

func TestInspectAutoRebuildDisabled(t *testing.T) {
	f := newFixture(t)
	f.checker.compatible = false

	proc, err := f.inspector.Inspect(context.Background(), config.Options{AutoRebuild: false})
	require.NoError(t, err)

	assert.NotNil(t, proc)
	assert.Zero(t, f.rebuilder.calls)
	assert.Equal(t, 1, f.launcher.calls)
	assert.Contains(t, f.logs.String(),
		"Native node-inspector modules are incompatible with Electron 1.4.3, and auto-rebuild is disabled, node-inspector may fail to run.")
}

func TestInspectRebuildUnavailable(t *testing.T) {
	f := newFixture(t)
	f.checker.compatible = false
	f.rebuilder.err = fmt.Errorf("%w: npm not found", rebuild.ErrRebuildUnavailable)

	proc, err := f.inspector.Inspect(context.Background(), config.Options{AutoRebuild: true})
	require.NoError(t, err)

	assert.NotNil(t, proc)
	assert.Equal(t, 1, f.launcher.calls)
	assert.Contains(t, f.logs.String(), "Skipping rebuild")
}

func TestInspectRebuildFailure(t *testing.T) {
	f := newFixture(t)
	f.checker.compatible = false
	stepErr := &rebuild.StepError{Step: rebuild.StepRebuildModule, Module: "v8-profiler", Err: errors.New("exit status 1")}
	f.rebuilder.err = stepErr

	proc, err := f.inspector.Inspect(context.Background(), config.Options{AutoRebuild: true})

	assert.Nil(t, proc)
	var got *rebuild.StepError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, "v8-profiler", got.Module)
	assert.Zero(t, f.launcher.calls)
}

func TestInspectCheckerError(t *testing.T) {
	f := newFixture(t)
	f.checker.err = fmt.Errorf("v8-profiler: %w", nodemodules.ErrModuleNotInstalled)

	proc, err := f.inspector.Inspect(context.Background(), config.Options{AutoRebuild: true})

	assert.Nil(t, proc)
	assert.ErrorIs(t, err, nodemodules.ErrModuleNotInstalled)
	assert.Zero(t, f.rebuilder.calls)
	assert.Zero(t, f.launcher.calls)
}
