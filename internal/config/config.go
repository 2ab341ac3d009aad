// Package config loads the TOML configuration for tessera programs.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Window  WindowConfig  `toml:"window"`
	Camera  CameraConfig  `toml:"camera"`
	Map     MapConfig     `toml:"map"`
	Assets  AssetsConfig  `toml:"assets"`
	Scripts ScriptsConfig `toml:"scripts"`
	Audio   AudioConfig   `toml:"audio"`
	Logging LoggingConfig `toml:"logging"`
	Debug   DebugConfig   `toml:"debug"`
}

type WindowConfig struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Resizable bool   `toml:"resizable"`
	ShowFPS   bool   `toml:"show_fps"`
}

type CameraConfig struct {
	X    float64 `toml:"x"`
	Y    float64 `toml:"y"`
	Zoom float64 `toml:"zoom"`
	Cull bool    `toml:"cull"`
}

type MapConfig struct {
	Path          string `toml:"path"`
	PixelsPerUnit int    `toml:"pixels_per_unit"`
}

type AssetsConfig struct {
	Manifest string `toml:"manifest"`
}

type ScriptsConfig struct {
	Dir string `toml:"dir"` // every *.lua file is loaded in name order
}

type AudioConfig struct {
	Muted      bool `toml:"muted"`
	SampleRate int  `toml:"sample_rate"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type DebugConfig struct {
	ShowColliders bool   `toml:"show_colliders"`
	Stats         bool   `toml:"stats"`
	TestScript    string `toml:"test_script"`
	Screenshots   string `toml:"screenshots"`
}

// Load reads the TOML file at path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config { return defaults() }

func (c *Config) validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Map.PixelsPerUnit <= 0 {
		return fmt.Errorf("map pixels_per_unit must be positive, got %v", c.Map.PixelsPerUnit)
	}
	if c.Camera.Zoom <= 0 {
		return fmt.Errorf("camera zoom must be positive, got %v", c.Camera.Zoom)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "tessera",
			Width:  800,
			Height: 600,
		},
		Camera: CameraConfig{
			Zoom: 1,
			Cull: true,
		},
		Map: MapConfig{
			PixelsPerUnit: 8,
		},
		Assets: AssetsConfig{
			Manifest: "res/assets.yaml",
		},
		Scripts: ScriptsConfig{
			Dir: "res/scripts",
		},
		Audio: AudioConfig{
			SampleRate: 44100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Debug: DebugConfig{
			Screenshots: "screenshots",
		},
	}
}
