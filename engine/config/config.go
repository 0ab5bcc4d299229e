// package config loads the showcase's TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

var (
	// ErrInvalidConfig is wrapped by every Validate failure.
	ErrInvalidConfig = errors.New("invalid config")
)

// Duration is a time.Duration that reads and writes as a Go duration string ("1s", "250ms").
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("failed to parse duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration as a string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full configuration tree.
type Config struct {
	Window WindowConfig `toml:"window"`
	Asset  AssetConfig  `toml:"asset"`
	Scene  SceneConfig  `toml:"scene"`
	Log    LogConfig    `toml:"log"`
	Watch  WatchConfig  `toml:"watch"`
}

type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	VSync  bool   `toml:"vsync"`
}

type AssetConfig struct {
	// URL is an http(s) URL, a file:// URL or a plain path to a .glb/.gltf file.
	URL string `toml:"url"`
	// LoadTimeout fails a hung load after the given duration. Zero waits forever.
	LoadTimeout Duration `toml:"load_timeout"`
}

type SceneConfig struct {
	KeyLightDelay Duration `toml:"key_light_delay"`
	MaxPixelRatio float32  `toml:"max_pixel_ratio"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type WatchConfig struct {
	// Enabled remounts the showcase when the asset file or the config file changes.
	Enabled bool `toml:"enabled"`
}

// Default returns a configuration that runs out of the box against ./assets/spidey.glb.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  "oxy-showcase",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Asset: AssetConfig{
			URL: "assets/spidey.glb",
		},
		Scene: SceneConfig{
			KeyLightDelay: Duration(time.Second),
			MaxPixelRatio: 2,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a TOML file and overlays it on Default. Keys missing from the file keep their
// default values.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - Config: the merged and validated configuration
//   - error: error if the file cannot be read, parsed or validated
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Parse decodes TOML data into cfg, leaving fields absent from data untouched.
//
// Parameters:
//   - data: raw TOML bytes
//   - cfg: the configuration to decode into
//
// Returns:
//   - error: the decoder's error, if any
func Parse(data []byte, cfg *Config) error {
	return toml.Unmarshal(data, cfg)
}

// Encode renders cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	return toml.Marshal(cfg)
}

// Validate checks the values the showcase cannot run without.
//
// Returns:
//   - error: an error wrapping ErrInvalidConfig, or nil
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d must be positive", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	case c.Asset.URL == "":
		return fmt.Errorf("%w: asset url is empty", ErrInvalidConfig)
	case c.Asset.LoadTimeout < 0:
		return fmt.Errorf("%w: asset load_timeout must not be negative", ErrInvalidConfig)
	case c.Scene.KeyLightDelay < 0:
		return fmt.Errorf("%w: scene key_light_delay must not be negative", ErrInvalidConfig)
	case c.Scene.MaxPixelRatio <= 0:
		return fmt.Errorf("%w: scene max_pixel_ratio must be positive", ErrInvalidConfig)
	}
	return nil
}
