package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/electron-inspector/electron-inspector/internal/constants"
)

// Layer represents a configuration layer source.
type Layer string

const (
	// LayerDefaults represents default configuration values.
	LayerDefaults Layer = "defaults"

	// LayerFile represents configuration from a file.
	LayerFile Layer = "file"

	// LayerEnv represents configuration from environment variables.
	LayerEnv Layer = "env"

	// LayerFlags represents configuration from command-line flags.
	LayerFlags Layer = "flags"
)

// FlagLayer applies explicitly set command-line flags on top of a config.
type FlagLayer func(cfg *Config) error

// LayeredLoader provides layered configuration loading.
// Configuration is loaded in the following order:
// 1. Defaults - hardcoded default values
// 2. File - configuration file (YAML)
// 3. Environment - environment variables
// 4. Flags - command-line flags that were set explicitly
//
// Each layer overrides values from previous layers.
type LayeredLoader struct {
	enabledLayers map[Layer]bool
}

// NewLayeredLoader creates a new layered configuration loader with all layers enabled.
func NewLayeredLoader() *LayeredLoader {
	return &LayeredLoader{
		enabledLayers: map[Layer]bool{
			LayerDefaults: true,
			LayerFile:     true,
			LayerEnv:      true,
			LayerFlags:    true,
		},
	}
}

// DisableLayer disables a specific configuration layer.
func (l *LayeredLoader) DisableLayer(layer Layer) {
	l.enabledLayers[layer] = false
}

// Load builds the configuration from every enabled layer. A missing config
// file is not an error; flags may be nil.
func (l *LayeredLoader) Load(configPath string, flags FlagLayer) (*Config, error) {
	var cfg *Config

	// Layer 1: Defaults
	if l.enabledLayers[LayerDefaults] {
		cfg = DefaultConfig()
	} else {
		cfg = &Config{}
	}

	// Layer 2: File
	if l.enabledLayers[LayerFile] && configPath != "" {
		if err := l.mergeFromFile(cfg, configPath); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
		}
	}

	// Layer 3: Environment
	if l.enabledLayers[LayerEnv] {
		if err := LoadFromEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from environment: %w", err)
		}
	}

	// Layer 4: Flags
	if l.enabledLayers[LayerFlags] && flags != nil {
		if err := flags(cfg); err != nil {
			return nil, fmt.Errorf("failed to apply command-line flags: %w", err)
		}
	}

	return cfg, nil
}

// mergeFromFile loads configuration from a YAML file and merges it into cfg.
func (l *LayeredLoader) mergeFromFile(cfg *Config, filePath string) error {
	// #nosec G304 -- filePath is the user's own config file.
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse YAML %s: %w", filePath, err)
	}

	return nil
}

// DefaultConfigPath returns the config file location. The directory is resolved
// in this order:
//  1. ELECTRON_INSPECTOR_CONFIG environment variable.
//  2. ~/.electron-inspector
//
// An empty string is returned when neither is available.
func DefaultConfigPath() string {
	if dir := os.Getenv(constants.ConfigDirEnv); dir != "" {
		return filepath.Join(dir, constants.ConfigFile)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, constants.DefaultDir, constants.ConfigFile)
}
