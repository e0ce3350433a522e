package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"), false)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigExplicitMissingFileFails(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"), true)
	assert.Error(t, err)
}

func TestLoadConfigOverridesMergeOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bricklayer.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "debug"

[window]
width = 1280
height = 720

[camera]
auto_rotate = true
pan_sensitivity = 0.01

[watcher]
poll_interval_ms = 100

[scene]
grid = false
`), 0o644))

	cfg, err := LoadConfig(path, true)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, int32(1280), cfg.Window.Width)
	assert.Equal(t, int32(720), cfg.Window.Height)
	assert.True(t, cfg.Camera.AutoRotate)
	assert.Equal(t, float32(0.01), cfg.Camera.PanSensitivity)
	assert.Equal(t, 100, cfg.Watcher.PollIntervalMS)
	assert.False(t, cfg.Scene.Grid)

	// Untouched sections keep their defaults.
	defaults := DefaultConfig()
	assert.Equal(t, defaults.Window.Title, cfg.Window.Title)
	assert.Equal(t, defaults.Window.TargetFPS, cfg.Window.TargetFPS)
	assert.Equal(t, defaults.Camera.RotateSensitivityX, cfg.Camera.RotateSensitivityX)
	assert.Equal(t, defaults.Camera.MaxRadius, cfg.Camera.MaxRadius)
	assert.Equal(t, defaults.Scene.Wireframe, cfg.Scene.Wireframe)
}

func TestLoadConfigRejectsInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[window\nwidth = "), 0o644))

	_, err := LoadConfig(path, true)
	assert.Error(t, err)
}

func TestOrbitSettingsConversion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Camera.ZoomSensitivity = 0.2
	cfg.Camera.MaxRadius = 12

	orbit := cfg.OrbitSettings()
	assert.Equal(t, float32(0.2), orbit.ZoomSensitivity)
	assert.Equal(t, cfg.Camera.PanSensitivity, orbit.PanSensitivity)
	assert.Equal(t, float32(12), orbit.MaxRadius)
	assert.Equal(t, cfg.Camera.RotateSensitivityX, orbit.RotateSensitivityX)
}
