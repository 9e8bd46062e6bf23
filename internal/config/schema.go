// Package config provides configuration loading and management.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config is the complete electron-inspector configuration.
type Config struct {
	Options `yaml:",inline"`

	Rebuild RebuildConfig `yaml:"rebuild"`
	Log     LogConfig     `yaml:"log"`
}

// Options are the settings forwarded to node-inspector plus the settings that
// drive Electron lookup and native module rebuilds. A zero value means "not
// set"; the launcher omits unset options from the node-inspector command line.
type Options struct {
	// DebugPort is the debug port of the Electron process being debugged.
	DebugPort int `yaml:"debug_port,omitempty" env:"ELECTRON_INSPECTOR_DEBUG_PORT"`
	// WebHost is the host node-inspector's web interface listens on.
	WebHost string `yaml:"web_host,omitempty" env:"ELECTRON_INSPECTOR_WEB_HOST"`
	// WebPort is the port node-inspector's web interface listens on.
	WebPort int `yaml:"web_port,omitempty" env:"ELECTRON_INSPECTOR_WEB_PORT"`
	// SaveLiveEdit saves live edit changes to disk.
	SaveLiveEdit bool `yaml:"save_live_edit,omitempty" env:"ELECTRON_INSPECTOR_SAVE_LIVE_EDIT"`
	// Preload preloads *.js files. Nil leaves node-inspector's default (enabled).
	Preload *bool `yaml:"preload,omitempty" env:"ELECTRON_INSPECTOR_PRELOAD"`
	// Inject injects debugger extensions into the debugged process. Nil leaves
	// node-inspector's default (enabled).
	Inject *bool `yaml:"inject,omitempty" env:"ELECTRON_INSPECTOR_INJECT"`
	// Hidden holds regular expressions of files to hide from the UI.
	Hidden Patterns `yaml:"hidden,omitempty" env:"ELECTRON_INSPECTOR_HIDDEN"`
	// StackTraceLimit is the number of stack frames shown on a breakpoint.
	StackTraceLimit int    `yaml:"stack_trace_limit,omitempty" env:"ELECTRON_INSPECTOR_STACK_TRACE_LIMIT"`
	SSLKey          string `yaml:"ssl_key,omitempty" env:"ELECTRON_INSPECTOR_SSL_KEY"`
	SSLCert         string `yaml:"ssl_cert,omitempty" env:"ELECTRON_INSPECTOR_SSL_CERT"`
	// NodeInspectorConfig is a node-inspector config file passed through as --config.
	NodeInspectorConfig string `yaml:"node_inspector_config,omitempty" env:"ELECTRON_INSPECTOR_NODE_INSPECTOR_CONFIG"`

	// Electron is an explicit path to the Electron executable.
	Electron string `yaml:"electron,omitempty" env:"ELECTRON_INSPECTOR_ELECTRON"`
	// AutoRebuild allows rebuilding incompatible native modules.
	AutoRebuild bool `yaml:"auto_rebuild" env:"ELECTRON_INSPECTOR_AUTO_REBUILD"`
	// Arch is the CPU architecture native modules are rebuilt for (ia32, x64,
	// arm, arm64). Empty means the host architecture.
	Arch string `yaml:"arch,omitempty" env:"ELECTRON_INSPECTOR_ARCH"`
	// ModulesDir is where npm packages are resolved from, the way node resolves
	// modules from a script's directory. Empty means the working directory.
	ModulesDir string `yaml:"modules_dir,omitempty" env:"ELECTRON_INSPECTOR_MODULES_DIR"`
}

// RebuildConfig configures the native module rebuild toolchain.
type RebuildConfig struct {
	// HeadersURL is the dist URL Electron's Node headers are downloaded from.
	HeadersURL string `yaml:"headers_url" env:"ELECTRON_INSPECTOR_HEADERS_URL"`
	// HeadersDir is the node-gyp devdir shared by every rebuild step.
	HeadersDir string `yaml:"headers_dir" env:"ELECTRON_INSPECTOR_HEADERS_DIR"`
	// RunAsNodeFix copies rebuilt binaries to where node-pre-gyp looks for them
	// inside a run-as-node Electron process.
	RunAsNodeFix bool `yaml:"run_as_node_fix" env:"ELECTRON_INSPECTOR_RUN_AS_NODE_FIX"`
}

// LogConfig configures console logging.
type LogConfig struct {
	Level  string `yaml:"level" env:"ELECTRON_INSPECTOR_LOG_LEVEL"`
	Pretty bool   `yaml:"pretty" env:"ELECTRON_INSPECTOR_LOG_PRETTY"`
}

// Patterns is a list of file patterns that may be written in YAML either as a
// single string or as a sequence of strings.
type Patterns []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Patterns) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var single string
		if err := value.Decode(&single); err != nil {
			return err
		}
		*p = Patterns{single}
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := value.Decode(&many); err != nil {
			return err
		}
		*p = many
		return nil
	default:
		return fmt.Errorf("line %d: hidden must be a string or a list of strings", value.Line)
	}
}

// MarshalYAML implements yaml.Marshaler, writing a lone pattern as a scalar.
func (p Patterns) MarshalYAML() (interface{}, error) {
	if len(p) == 1 {
		return p[0], nil
	}
	return []string(p), nil
}

// Bool returns a pointer to b, for the optional toggles in Options.
func Bool(b bool) *bool {
	return &b
}
