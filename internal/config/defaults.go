package config

import (
	"os"
	"path/filepath"

	"github.com/electron-inspector/electron-inspector/internal/constants"
)

// DefaultOptions returns the options the command line starts from.
func DefaultOptions() Options {
	return Options{
		DebugPort:       constants.DefaultDebugPort,
		WebHost:         constants.DefaultWebHost,
		WebPort:         constants.DefaultWebPort,
		SaveLiveEdit:    false,
		Preload:         Bool(true),
		Inject:          Bool(true),
		StackTraceLimit: constants.DefaultStackTraceLimit,
		AutoRebuild:     true,
	}
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Options: DefaultOptions(),
		Rebuild: RebuildConfig{
			HeadersURL:   constants.DefaultHeadersURL,
			HeadersDir:   defaultHeadersDir(),
			RunAsNodeFix: true,
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

// defaultHeadersDir places the headers cache in the home directory, falling
// back to the temp dir in environments without one.
func defaultHeadersDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), constants.DefaultHeadersDir)
	}
	return filepath.Join(home, constants.DefaultHeadersDir)
}
