package engine

import (
	"errors"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/bricklayer/engine/renderer/components"
)

// Config is the viewer configuration, loaded from a TOML file over the
// defaults below. Every field has a sane default so running without a
// config file is the normal case.
type Config struct {
	LogLevel string        `toml:"log_level"`
	Window   WindowConfig  `toml:"window"`
	Camera   CameraConfig  `toml:"camera"`
	Watcher  WatcherConfig `toml:"watcher"`
	Scene    SceneConfig   `toml:"scene"`
}

type WindowConfig struct {
	// Window starting width.
	Width int32 `toml:"width"`
	// Window starting height.
	Height int32 `toml:"height"`
	// The title used in windowing.
	Title     string `toml:"title"`
	TargetFPS int32  `toml:"target_fps"`
}

type CameraConfig struct {
	RotateSensitivityX float32 `toml:"rotate_sensitivity_x"`
	RotateSensitivityY float32 `toml:"rotate_sensitivity_y"`
	ZoomSensitivity    float32 `toml:"zoom_sensitivity"`
	PanSensitivity     float32 `toml:"pan_sensitivity"`
	AutoRotate         bool    `toml:"auto_rotate"`
	AutoRotateSpeed    float32 `toml:"auto_rotate_speed"`
	MinRadius          float32 `toml:"min_radius"`
	MaxRadius          float32 `toml:"max_radius"`
}

type WatcherConfig struct {
	PollIntervalMS int `toml:"poll_interval_ms"`
}

type SceneConfig struct {
	Grid      bool `toml:"grid"`
	Wireframe bool `toml:"wireframe"`
}

func DefaultConfig() *Config {
	orbit := components.DefaultOrbitSettings()
	return &Config{
		LogLevel: "info",
		Window: WindowConfig{
			Width:     800,
			Height:    450,
			Title:     "Bricklayer",
			TargetFPS: 60,
		},
		Camera: CameraConfig{
			RotateSensitivityX: orbit.RotateSensitivityX,
			RotateSensitivityY: orbit.RotateSensitivityY,
			ZoomSensitivity:    orbit.ZoomSensitivity,
			PanSensitivity:     orbit.PanSensitivity,
			AutoRotate:         false,
			AutoRotateSpeed:    orbit.AutoRotateSpeed,
			MinRadius:          orbit.MinRadius,
			MaxRadius:          orbit.MaxRadius,
		},
		Watcher: WatcherConfig{
			PollIntervalMS: 500,
		},
		Scene: SceneConfig{
			Grid:      true,
			Wireframe: false,
		},
	}
}

// LoadConfig reads a TOML file over the defaults. A missing file is
// not an error when the path was not explicitly requested.
func LoadConfig(path string, explicit bool) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OrbitSettings converts the camera section into the settings struct
// the camera component consumes.
func (c *Config) OrbitSettings() components.OrbitSettings {
	return components.OrbitSettings{
		RotateSensitivityX: c.Camera.RotateSensitivityX,
		RotateSensitivityY: c.Camera.RotateSensitivityY,
		ZoomSensitivity:    c.Camera.ZoomSensitivity,
		PanSensitivity:     c.Camera.PanSensitivity,
		AutoRotateSpeed:    c.Camera.AutoRotateSpeed,
		MinRadius:          c.Camera.MinRadius,
		MaxRadius:          c.Camera.MaxRadius,
	}
}
