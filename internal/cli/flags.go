package cli

import (
	"github.com/spf13/pflag"

	"github.com/electron-inspector/electron-inspector/internal/config"
)

// flagAliases maps alternative flag names to their canonical names.
var flagAliases = map[string]string{
	"port": "web-port",
}

// flagValues holds the raw values of the root command's flags.
type flagValues struct {
	debugPort           int
	webHost             string
	webPort             int
	saveLiveEdit        bool
	preload             bool
	noPreload           bool
	inject              bool
	noInject            bool
	hidden              []string
	stackTraceLimit     int
	sslKey              string
	sslCert             string
	nodeInspectorConfig string
	electron            string
	autoRebuild         bool
	noAutoRebuild       bool
	arch                string
	modulesDir          string
	logLevel            string
	logPretty           bool
}

func (f *flagValues) register(flags *pflag.FlagSet) {
	defaults := config.DefaultConfig()

	flags.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if canonical, ok := flagAliases[name]; ok {
			name = canonical
		}
		return pflag.NormalizedName(name)
	})

	flags.IntVarP(&f.debugPort, "debug-port", "d", defaults.DebugPort, "Debug port of the Electron process")
	flags.StringVar(&f.webHost, "web-host", defaults.WebHost, "Host to listen on for node-inspector's web interface")
	flags.IntVarP(&f.webPort, "web-port", "p", defaults.WebPort, "Port to listen on for node-inspector's web interface (alias --port)")
	flags.BoolVar(&f.saveLiveEdit, "save-live-edit", defaults.SaveLiveEdit, "Save live edit changes to disk")
	flags.BoolVar(&f.preload, "preload", *defaults.Preload, "Preload *.js files")
	flags.BoolVar(&f.noPreload, "no-preload", false, "Disable preloading *.js files")
	flags.BoolVar(&f.inject, "inject", *defaults.Inject, "Inject debugger extensions into the debugged process")
	flags.BoolVar(&f.noInject, "no-inject", false, "Disable injection of debugger extensions")
	flags.StringArrayVar(&f.hidden, "hidden", nil, "Regular expression of files to hide from the UI (repeatable)")
	flags.IntVar(&f.stackTraceLimit, "stack-trace-limit", defaults.StackTraceLimit, "Number of stack frames to show on a breakpoint")
	flags.StringVar(&f.sslKey, "ssl-key", "", "Path to the SSL key file")
	flags.StringVar(&f.sslCert, "ssl-cert", "", "Path to the SSL certificate file")
	flags.StringVar(&f.nodeInspectorConfig, "config", "", "node-inspector config file")
	flags.StringVar(&f.electron, "electron", "", "Path to the Electron executable")
	flags.BoolVar(&f.autoRebuild, "auto-rebuild", defaults.AutoRebuild, "Rebuild native modules that are incompatible with Electron")
	flags.BoolVar(&f.noAutoRebuild, "no-auto-rebuild", false, "Never rebuild native modules")
	flags.StringVar(&f.arch, "arch", "", "Architecture to check and rebuild native modules for (ia32, x64, arm, arm64)")
	flags.StringVar(&f.modulesDir, "modules-dir", "", "Directory npm packages are resolved from (default: working directory)")
	flags.StringVar(&f.logLevel, "log-level", defaults.Log.Level, "Log level (trace, debug, info, warn, error)")
	flags.BoolVar(&f.logPretty, "log-pretty", defaults.Log.Pretty, "Human-readable log output")

	for _, name := range []string{"no-preload", "no-inject", "no-auto-rebuild"} {
		_ = flags.MarkHidden(name)
	}
}

// layer returns a config layer applying only the flags set on the command line.
func (f *flagValues) layer(flags *pflag.FlagSet) config.FlagLayer {
	return func(cfg *config.Config) error {
		if flags.Changed("debug-port") {
			cfg.DebugPort = f.debugPort
		}
		if flags.Changed("web-host") {
			cfg.WebHost = f.webHost
		}
		if flags.Changed("web-port") {
			cfg.WebPort = f.webPort
		}
		if flags.Changed("save-live-edit") {
			cfg.SaveLiveEdit = f.saveLiveEdit
		}
		if flags.Changed("preload") {
			cfg.Preload = config.Bool(f.preload)
		}
		if flags.Changed("no-preload") {
			cfg.Preload = config.Bool(!f.noPreload)
		}
		if flags.Changed("inject") {
			cfg.Inject = config.Bool(f.inject)
		}
		if flags.Changed("no-inject") {
			cfg.Inject = config.Bool(!f.noInject)
		}
		if flags.Changed("hidden") {
			cfg.Hidden = config.Patterns(f.hidden)
		}
		if flags.Changed("stack-trace-limit") {
			cfg.StackTraceLimit = f.stackTraceLimit
		}
		if flags.Changed("ssl-key") {
			cfg.SSLKey = f.sslKey
		}
		if flags.Changed("ssl-cert") {
			cfg.SSLCert = f.sslCert
		}
		if flags.Changed("config") {
			cfg.NodeInspectorConfig = f.nodeInspectorConfig
		}
		if flags.Changed("electron") {
			cfg.Electron = f.electron
		}
		if flags.Changed("auto-rebuild") {
			cfg.AutoRebuild = f.autoRebuild
		}
		if flags.Changed("no-auto-rebuild") {
			cfg.AutoRebuild = !f.noAutoRebuild
		}
		if flags.Changed("arch") {
			cfg.Arch = f.arch
		}
		if flags.Changed("modules-dir") {
			cfg.ModulesDir = f.modulesDir
		}
		if flags.Changed("log-level") {
			cfg.Log.Level = f.logLevel
		}
		if flags.Changed("log-pretty") {
			cfg.Log.Pretty = f.logPretty
		}
		return nil
	}
}
