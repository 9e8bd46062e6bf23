package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLayeredLoader_Defaults(t *testing.T) {
	cfg, err := NewLayeredLoader().Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 5858, cfg.DebugPort)
	assert.Equal(t, "0.0.0.0", cfg.WebHost)
	assert.Equal(t, 8080, cfg.WebPort)
	assert.Equal(t, 50, cfg.StackTraceLimit)
	assert.False(t, cfg.SaveLiveEdit)
	assert.True(t, *cfg.Preload)
	assert.True(t, *cfg.Inject)
	assert.True(t, cfg.AutoRebuild)
	assert.True(t, cfg.Rebuild.RunAsNodeFix)
	assert.NotEmpty(t, cfg.Rebuild.HeadersDir)
}

func TestLayeredLoader_MissingFileIsIgnored(t *testing.T) {
	cfg, err := NewLayeredLoader().Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.WebPort)
}

func TestLayeredLoader_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
web_port: 9090
inject: false
hidden: node_modules/
electron: /opt/electron/electron
rebuild:
  headers_url: https://mirror.example.com/headers
log:
  level: debug
`)

	cfg, err := NewLayeredLoader().Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.WebPort)
	assert.Equal(t, 5858, cfg.DebugPort, "unset keys keep defaults")
	assert.False(t, *cfg.Inject)
	assert.Equal(t, Patterns{"node_modules/"}, cfg.Hidden)
	assert.Equal(t, "/opt/electron/electron", cfg.Electron)
	assert.Equal(t, "https://mirror.example.com/headers", cfg.Rebuild.HeadersURL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLayeredLoader_Precedence(t *testing.T) {
	path := writeConfig(t, "web_port: 9090\ndebug_port: 6000\n")
	t.Setenv("ELECTRON_INSPECTOR_WEB_PORT", "9191")

	cfg, err := NewLayeredLoader().Load(path, func(cfg *Config) error {
		cfg.DebugPort = 7000
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.WebPort, "env overrides file")
	assert.Equal(t, 7000, cfg.DebugPort, "flags override file")
}

func TestLayeredLoader_DisabledLayers(t *testing.T) {
	path := writeConfig(t, "web_port: 9090\n")
	t.Setenv("ELECTRON_INSPECTOR_DEBUG_PORT", "6000")

	loader := NewLayeredLoader()
	loader.DisableLayer(LayerDefaults)
	loader.DisableLayer(LayerEnv)

	cfg, err := loader.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.WebPort)
	assert.Equal(t, 0, cfg.DebugPort)
	assert.Nil(t, cfg.Preload)
}

func TestLayeredLoader_Errors(t *testing.T) {
	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "web_port: [not, a, port\n")
		_, err := NewLayeredLoader().Load(path, nil)
		require.Error(t, err)
	})

	t.Run("flag layer failure", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := NewLayeredLoader().Load("", func(*Config) error { return boom })
		require.ErrorIs(t, err, boom)
	})
}

func TestDefaultConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ELECTRON_INSPECTOR_CONFIG", dir)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), DefaultConfigPath())

	t.Setenv("ELECTRON_INSPECTOR_CONFIG", "")
	t.Setenv("HOME", dir)
	assert.Equal(t, filepath.Join(dir, ".electron-inspector", "config.yaml"), DefaultConfigPath())
}
