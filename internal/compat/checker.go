// Package compat checks whether the prebuilt native add-ons node-inspector
// depends on match a given Electron version.
package compat

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/electron-inspector/electron-inspector/internal/constants"
	"github.com/electron-inspector/electron-inspector/internal/logging"
	"github.com/electron-inspector/electron-inspector/internal/nodemodules"
	"github.com/electron-inspector/electron-inspector/internal/prebuilt"
	"github.com/electron-inspector/electron-inspector/internal/safe"
)

// Checker probes the expected binary path of each add-on.
type Checker struct {
	logger   zerolog.Logger
	resolver *nodemodules.Resolver
	addons   []string
	arch     string
}

// NewChecker creates a checker for addons, resolved through resolver. An
// empty arch checks binaries for the host architecture.
func NewChecker(logger zerolog.Logger, resolver *nodemodules.Resolver, addons []string, arch string) *Checker {
	return &Checker{
		logger:   logging.Component(logger, "compat"),
		resolver: resolver,
		addons:   addons,
		arch:     arch,
	}
}

// Compatible reports whether every add-on has a binary built for Electron
// version. Add-ons are resolved from node-inspector's package, so nested and
// hoisted installs are both found. An add-on that is not installed at all is an error wrapping
// nodemodules.ErrModuleNotInstalled, not an incompatibility.
func (c *Checker) Compatible(version string) (bool, error) {
	resolver := c.resolver.Within(constants.InspectorPackage)
	for _, addon := range c.addons {
		ok, err := c.addonCompatible(resolver, addon, version)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (c *Checker) addonCompatible(resolver *nodemodules.Resolver, addon, version string) (bool, error) {
	pkg, err := resolver.Package(addon)
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", addon, err)
	}

	binary, err := prebuilt.Find(pkg, prebuilt.FindOptions{
		Runtime: prebuilt.RuntimeElectron,
		Target:  version,
		Arch:    c.arch,
	})
	if err != nil {
		return false, fmt.Errorf("failed to find %s binary: %w", addon, err)
	}

	exists := safe.Exists(binary)
	c.logger.Debug().
		Str("addon", addon).
		Str("binary", binary).
		Bool("exists", exists).
		Msg("Probed native binary")
	return exists, nil
}
