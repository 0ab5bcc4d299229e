package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "showcase.toml")
	data := []byte(`
[window]
title = "portfolio"

[asset]
url = "https://example.com/model.glb"
load_timeout = "30s"

[scene]
key_light_delay = "250ms"
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Window.Title != "portfolio" {
		t.Errorf("title = %q", cfg.Window.Title)
	}
	if cfg.Window.Width != 1280 || cfg.Window.Height != 720 {
		t.Errorf("size should keep defaults, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Asset.URL != "https://example.com/model.glb" {
		t.Errorf("url = %q", cfg.Asset.URL)
	}
	if cfg.Asset.LoadTimeout.Std() != 30*time.Second {
		t.Errorf("load_timeout = %v", cfg.Asset.LoadTimeout.Std())
	}
	if cfg.Scene.KeyLightDelay.Std() != 250*time.Millisecond {
		t.Errorf("key_light_delay = %v", cfg.Scene.KeyLightDelay.Std())
	}
	if cfg.Scene.MaxPixelRatio != 2 {
		t.Errorf("max_pixel_ratio = %v", cfg.Scene.MaxPixelRatio)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestParseRejectsBadDuration(t *testing.T) {
	cfg := Default()
	if err := Parse([]byte("[asset]\nload_timeout = \"soon\"\n"), &cfg); err == nil {
		t.Fatal("expected a duration parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"negative height", func(c *Config) { c.Window.Height = -1 }},
		{"empty url", func(c *Config) { c.Asset.URL = "" }},
		{"negative timeout", func(c *Config) { c.Asset.LoadTimeout = Duration(-time.Second) }},
		{"zero pixel ratio", func(c *Config) { c.Scene.MaxPixelRatio = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestEncodeRoundTripsDurations(t *testing.T) {
	cfg := Default()
	cfg.Asset.LoadTimeout = Duration(5 * time.Second)
	data, err := Encode(cfg)
	if err != nil {
		t.Fatal(err)
	}
	var out Config
	if err := Parse(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Asset.LoadTimeout.Std() != 5*time.Second {
		t.Fatalf("load_timeout = %v", out.Asset.LoadTimeout.Std())
	}
}
