// Package rebuild recompiles node-inspector's native add-ons against the
// headers of a specific Electron release.
package rebuild

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/electron-inspector/electron-inspector/internal/constants"
	"github.com/electron-inspector/electron-inspector/internal/electron"
	"github.com/electron-inspector/electron-inspector/internal/logging"
	"github.com/electron-inspector/electron-inspector/internal/nodemodules"
)

// ErrRebuildUnavailable means the rebuild tooling could not be loaded. No
// rebuild step has run when it is returned.
var ErrRebuildUnavailable = errors.New("native module rebuild is unavailable")

// Toolchain performs the individual rebuild steps. Implementations are not
// reentrant: every step shares one headers cache directory.
type Toolchain interface {
	// InstallHeaders installs the node headers of the Electron release.
	InstallHeaders(ctx context.Context, version, arch string) error
	// RebuildModule rebuilds module, installed in modulesDir, against those headers.
	RebuildModule(ctx context.Context, version, modulesDir, module, arch string) error
	// FixRunAsNode makes the freshly built binary in moduleDir loadable from a
	// run-as-node Electron process.
	FixRunAsNode(ctx context.Context, moduleDir string, info electron.Info, arch string) error
}

// ToolchainLoader returns the toolchain, or an error wrapping
// ErrRebuildUnavailable when its tools are missing.
type ToolchainLoader func() (Toolchain, error)

// Step names, in execution order for each add-on.
const (
	StepInstallHeaders = "install-headers"
	StepRebuildModule  = "rebuild-module"
	StepFixRunAsNode   = "fix-run-as-node"
)

// StepError reports which step of a rebuild failed. Steps that completed
// before it are not undone.
type StepError struct {
	Step   string
	Module string
	Err    error
}

func (e *StepError) Error() string {
	if e.Module == "" {
		return fmt.Sprintf("rebuild step %s failed: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("rebuild step %s failed for %s: %v", e.Step, e.Module, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Orchestrator runs the rebuild steps strictly in sequence.
type Orchestrator struct {
	logger       zerolog.Logger
	load         ToolchainLoader
	resolver     *nodemodules.Resolver
	addons       []string
	runAsNodeFix bool
}

// NewOrchestrator creates an orchestrator rebuilding addons, located through
// resolver, with the toolchain returned by load.
func NewOrchestrator(logger zerolog.Logger, load ToolchainLoader, resolver *nodemodules.Resolver, addons []string, runAsNodeFix bool) *Orchestrator {
	return &Orchestrator{
		logger:       logging.Component(logger, "rebuild"),
		load:         load,
		resolver:     resolver,
		addons:       addons,
		runAsNodeFix: runAsNodeFix,
	}
}

type step struct {
	name   string
	module string
	run    func(ctx context.Context) error
}

// Rebuild installs the headers for info.Version, then rebuilds (and, when
// enabled, fixes up) each add-on in order. The first failure aborts the
// sequence and is returned as a *StepError.
func (o *Orchestrator) Rebuild(ctx context.Context, info electron.Info, arch string) error {
	toolchain, err := o.load()
	if err != nil {
		if !errors.Is(err, ErrRebuildUnavailable) {
			err = fmt.Errorf("%w: %v", ErrRebuildUnavailable, err)
		}
		return err
	}

	steps, err := o.plan(toolchain, info, arch)
	if err != nil {
		return err
	}

	o.logger.Info().Str("version", info.Version).Msg("Rebuilding native node-inspector modules for Electron")
	for _, s := range steps {
		o.logger.Debug().Str("step", s.name).Str("module", s.module).Msg("Running rebuild step")
		if err := s.run(ctx); err != nil {
			return &StepError{Step: s.name, Module: s.module, Err: err}
		}
	}
	o.logger.Info().Msg("Done.")
	return nil
}

// plan resolves every add-on up front, from node-inspector's package the way
// compat.Checker does, so that a missing package fails before the headers
// download starts.
func (o *Orchestrator) plan(tc Toolchain, info electron.Info, arch string) ([]step, error) {
	steps := []step{{
		name: StepInstallHeaders,
		run: func(ctx context.Context) error {
			return tc.InstallHeaders(ctx, info.Version, arch)
		},
	}}

	resolver := o.resolver.Within(constants.InspectorPackage)
	for _, addon := range o.addons {
		moduleDir, err := resolver.PackageDir(addon)
		if err != nil {
			return nil, fmt.Errorf("failed to locate %s for rebuild: %w", addon, err)
		}
		modulesDir := filepath.Dir(moduleDir)
		module := addon

		steps = append(steps, step{
			name:   StepRebuildModule,
			module: module,
			run: func(ctx context.Context) error {
				o.logger.Info().Str("module", filepath.Join(modulesDir, module)).Msg("Rebuilding")
				return tc.RebuildModule(ctx, info.Version, modulesDir, module, arch)
			},
		})

		if o.runAsNodeFix {
			steps = append(steps, step{
				name:   StepFixRunAsNode,
				module: module,
				run: func(ctx context.Context) error {
					return tc.FixRunAsNode(ctx, moduleDir, info, arch)
				},
			})
		}
	}

	return steps, nil
}
