// Package inspector ties the pipeline together: locate Electron, make sure
// the native node-inspector add-ons match it, then launch node-inspector.
package inspector

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/electron-inspector/electron-inspector/internal/config"
	"github.com/electron-inspector/electron-inspector/internal/electron"
	"github.com/electron-inspector/electron-inspector/internal/launcher"
	"github.com/electron-inspector/electron-inspector/internal/logging"
	"github.com/electron-inspector/electron-inspector/internal/rebuild"
)

// Locator finds the Electron executable.
type Locator interface {
	Locate(ctx context.Context, explicitPath string) (electron.Info, bool)
}

// Checker reports whether the native add-ons are built for an Electron version.
type Checker interface {
	Compatible(version string) (bool, error)
}

// Rebuilder rebuilds the native add-ons against an Electron version.
type Rebuilder interface {
	Rebuild(ctx context.Context, info electron.Info, arch string) error
}

// Launcher starts node-inspector.
type Launcher interface {
	Launch(ctx context.Context, info electron.Info, opts config.Options) *launcher.Process
}

// Inspector runs the inspect flow.
type Inspector struct {
	logger    zerolog.Logger
	locator   Locator
	checker   Checker
	rebuilder Rebuilder
	launcher  Launcher
}

// New creates an Inspector from its collaborators.
func New(logger zerolog.Logger, locator Locator, checker Checker, rebuilder Rebuilder, l Launcher) *Inspector {
	return &Inspector{
		logger:    logging.Component(logger, "inspector"),
		locator:   locator,
		checker:   checker,
		rebuilder: rebuilder,
		launcher:  l,
	}
}

// Inspect locates Electron, checks and if needed rebuilds the native add-ons,
// and launches node-inspector. It returns (nil, nil) when Electron cannot be
// found. The returned process is already running; the caller waits on it.
func (i *Inspector) Inspect(ctx context.Context, opts config.Options) (*launcher.Process, error) {
	info, found := i.locator.Locate(ctx, opts.Electron)
	if !found {
		i.logger.Error().Msg("Electron not found.")
		return nil, nil
	}
	i.logger.Debug().Str("path", info.ExecutablePath).Str("version", info.Version).Msg("Found Electron")

	compatible, err := i.checker.Compatible(info.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to check native modules: %w", err)
	}

	if !compatible {
		if opts.AutoRebuild {
			i.logger.Info().Msg("node-inspector binaries are incompatible or missing.")
			i.logger.Info().Msg("Attempting to rebuild...")
			if err := i.rebuilder.Rebuild(ctx, info, opts.Arch); err != nil {
				if !errors.Is(err, rebuild.ErrRebuildUnavailable) {
					return nil, err
				}
				i.logger.Warn().Err(err).Msg("Skipping rebuild, node-inspector may fail to run.")
			}
		} else {
			i.logger.Warn().Msgf("Native node-inspector modules are incompatible with Electron %s, "+
				"and auto-rebuild is disabled, node-inspector may fail to run.", info.Version)
		}
	}

	return i.launcher.Launch(ctx, info, opts), nil
}
