// Package cli implements the electron-inspector command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/electron-inspector/electron-inspector/internal/compat"
	"github.com/electron-inspector/electron-inspector/internal/config"
	"github.com/electron-inspector/electron-inspector/internal/constants"
	"github.com/electron-inspector/electron-inspector/internal/electron"
	"github.com/electron-inspector/electron-inspector/internal/inspector"
	"github.com/electron-inspector/electron-inspector/internal/launcher"
	"github.com/electron-inspector/electron-inspector/internal/logging"
	"github.com/electron-inspector/electron-inspector/internal/nodemodules"
	"github.com/electron-inspector/electron-inspector/internal/rebuild"
	"github.com/electron-inspector/electron-inspector/pkg/version"
)

// ExitError carries the exit code of node-inspector back to main.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("node-inspector exited with code %d", e.Code)
}

// run executes the inspect flow with a fully loaded config. Tests replace it.
var run = runInspect

// NewRootCmd creates the electron-inspector command.
func NewRootCmd() *cobra.Command {
	var configPath string
	f := &flagValues{}

	cmd := &cobra.Command{
		Use:   "electron-inspector",
		Short: "Debug the main process of an Electron app with node-inspector",
		Long: `Locates the Electron executable of the current project, makes sure the
native modules node-inspector depends on are built for that Electron version
(rebuilding them when allowed), and runs node-inspector inside Electron.

Start your app with --debug=5858 (or --debug-brk) and open the URL printed
by electron-inspector.

Settings are read from ~/.electron-inspector/config.yaml, then from
ELECTRON_INSPECTOR_* environment variables, then from flags.`,
		Version:       version.String(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = config.DefaultConfigPath()
			}

			cfg, err := config.NewLayeredLoader().Load(configPath, f.layer(cmd.Flags()))
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger := logging.New(logging.Config{
				Level:  cfg.Log.Level,
				Pretty: cfg.Log.Pretty,
				Output: cmd.ErrOrStderr(),
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			code, err := run(ctx, cfg, logger)
			if err != nil {
				return err
			}
			if code != 0 {
				return &ExitError{Code: code}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "settings", "", "electron-inspector config file (default ~/.electron-inspector/config.yaml)")
	f.register(cmd.Flags())

	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// runInspect wires the pipeline and blocks until node-inspector exits,
// returning its exit code. A missing Electron is exit code 0.
func runInspect(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (int, error) {
	resolver, err := nodemodules.NewResolver(cfg.ModulesDir)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve modules directory: %w", err)
	}

	var exitCode int
	terminate := func(code int) { exitCode = code }

	insp := inspector.New(
		logger,
		electron.NewLocator(logger, resolver),
		compat.NewChecker(logger, resolver, constants.NativeAddons, cfg.Arch),
		rebuild.NewOrchestrator(logger, rebuild.Loader(logger, cfg.Rebuild), resolver, constants.NativeAddons, cfg.Rebuild.RunAsNodeFix),
		launcher.NewLauncher(logger, resolver, terminate),
	)

	proc, err := insp.Inspect(ctx, cfg.Options)
	if err != nil {
		return 0, err
	}
	if proc == nil {
		return 0, nil
	}

	if proc.Wait() == launcher.StateErrored {
		return 0, fmt.Errorf("failed to start node-inspector: %w", proc.Err())
	}
	return exitCode, nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
