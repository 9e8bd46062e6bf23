// Package electron locates an Electron executable and determines its version.
package electron

import (
	"context"
	"os/exec"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/electron-inspector/electron-inspector/internal/constants"
	"github.com/electron-inspector/electron-inspector/internal/logging"
	"github.com/electron-inspector/electron-inspector/internal/nodemodules"
)

// Info identifies an Electron executable. It is a value type and is never
// modified after the locator returns it.
type Info struct {
	ExecutablePath string
	// Version is "major.minor.patch", without a leading "v".
	Version string
}

// Strategy is one way of finding Electron. TryLocate reports false when the
// strategy does not apply or fails; it never returns an error.
type Strategy interface {
	Name() string
	TryLocate(ctx context.Context) (Info, bool)
}

var execCommandContext = exec.CommandContext

var versionPattern = regexp.MustCompile(`^v(\d{1,2}\.\d{1,2}\.\d{1,2})$`)

// ParseVersion extracts "major.minor.patch" from `electron --version` output.
// Line terminators are stripped first; anything else must match vX.Y.Z with
// one or two digits per component.
func ParseVersion(output string) (string, bool) {
	cleaned := strings.NewReplacer("\r", "", "\n", "").Replace(output)
	match := versionPattern.FindStringSubmatch(cleaned)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// Locator runs strategies in order and returns the first hit.
type Locator struct {
	logger   zerolog.Logger
	resolver *nodemodules.Resolver
}

// NewLocator creates a locator that resolves Electron npm packages with resolver.
func NewLocator(logger zerolog.Logger, resolver *nodemodules.Resolver) *Locator {
	return &Locator{
		logger:   logging.Component(logger, "locator"),
		resolver: resolver,
	}
}

// Strategies returns the lookup order for an optional explicit path. An
// explicit path disables the npm package lookup entirely.
func (l *Locator) Strategies(explicitPath string) []Strategy {
	if explicitPath != "" {
		return []Strategy{&ExplicitPathStrategy{Path: explicitPath}}
	}

	strategies := make([]Strategy, 0, len(constants.ElectronPackages))
	for _, name := range constants.ElectronPackages {
		strategies = append(strategies, &ModuleStrategy{Package: name, Resolver: l.resolver})
	}
	return strategies
}

// Locate finds Electron. ok is false when no strategy succeeds.
func (l *Locator) Locate(ctx context.Context, explicitPath string) (Info, bool) {
	return l.locate(ctx, l.Strategies(explicitPath))
}

func (l *Locator) locate(ctx context.Context, strategies []Strategy) (Info, bool) {
	for _, s := range strategies {
		info, ok := s.TryLocate(ctx)
		if !ok {
			l.logger.Debug().Str("strategy", s.Name()).Msg("Electron not found by strategy")
			continue
		}
		l.logger.Debug().
			Str("strategy", s.Name()).
			Str("path", info.ExecutablePath).
			Str("version", info.Version).
			Msg("Located Electron")
		return info, true
	}
	return Info{}, false
}
