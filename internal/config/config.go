// SPDX-License-Identifier: Unlicense OR MIT

// Package config loads the settings of the pregen demo from YAML and the
// environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"pregen.dev/app"
	"pregen.dev/io/key"
)

// Environment variables overriding the file.
const (
	EnvBackend = app.EnvBackend
	EnvLog     = "PREGEN_LOG"
)

// Actions that may be bound to keys.
const (
	ActionForward = "forward"
	ActionBack    = "back"
	ActionLeft    = "left"
	ActionRight   = "right"
	ActionUp      = "up"
	ActionDown    = "down"
	ActionQuit    = "quit"
	ActionCopy    = "copy"
)

type Config struct {
	Window   Window            `yaml:"window"`
	Log      Log               `yaml:"log"`
	Camera   Camera            `yaml:"camera"`
	Bindings map[string]string `yaml:"bindings"`
}

type Window struct {
	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Resizable bool   `yaml:"resizable"`
	// Backend is a backend name as accepted by app.ParseBackend.
	Backend string `yaml:"backend"`
}

type Log struct {
	// Level is one of trace, debug, info, warn, error or off.
	Level string `yaml:"level"`
}

type Camera struct {
	// Speed is the movement speed in units per second.
	Speed float64 `yaml:"speed"`
	// Sensitivity is the rotation in radians per pixel of mouse motion.
	Sensitivity float64 `yaml:"sensitivity"`
}

func DefaultConfig() *Config {
	return &Config{
		Window: Window{
			Title:     "pregen",
			Width:     1280,
			Height:    720,
			Resizable: true,
			Backend:   "auto",
		},
		Log: Log{Level: "info"},
		Camera: Camera{
			Speed:       5,
			Sensitivity: 0.002,
		},
		Bindings: DefaultBindings(),
	}
}

func DefaultBindings() map[string]string {
	return map[string]string{
		ActionForward: "W",
		ActionBack:    "S",
		ActionLeft:    "A",
		ActionRight:   "D",
		ActionUp:      "Space",
		ActionDown:    "LShift",
		ActionQuit:    "Escape",
		ActionCopy:    "F2",
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/pregen/config.yaml, falling
// back to ~/.config.
func DefaultConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "pregen", "config.yaml"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "pregen", "config.yaml"), nil
}

// Load reads the configuration at path, or at DefaultConfigPath if path is
// empty. A missing file at the default path yields the defaults. The
// environment overrides are applied last.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
		data = nil
	case err != nil:
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown fields are rejected.
// Bindings in data replace the default binding of the same action only.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	bindings := cfg.Bindings
	cfg.Bindings = nil
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	for action, name := range cfg.Bindings {
		bindings[action] = name
	}
	cfg.Bindings = bindings
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvBackend)); v != "" {
		c.Window.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLog)); v != "" {
		c.Log.Level = v
	}
}

// Validate checks every field, naming the first invalid one.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 {
		return fmt.Errorf("window.width must be positive, got %d", c.Window.Width)
	}
	if c.Window.Height <= 0 {
		return fmt.Errorf("window.height must be positive, got %d", c.Window.Height)
	}
	if _, err := app.ParseBackend(c.Window.Backend); err != nil {
		return fmt.Errorf("window.backend: %w", err)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Camera.Speed <= 0 {
		return fmt.Errorf("camera.speed must be positive, got %v", c.Camera.Speed)
	}
	if c.Camera.Sensitivity <= 0 {
		return fmt.Errorf("camera.sensitivity must be positive, got %v", c.Camera.Sensitivity)
	}
	actions := maps.Keys(c.Bindings)
	slices.Sort(actions)
	known := maps.Keys(DefaultBindings())
	for _, action := range actions {
		if !slices.Contains(known, action) {
			return fmt.Errorf("bindings.%s: unknown action", action)
		}
		if _, err := key.Parse(c.Bindings[action]); err != nil {
			return fmt.Errorf("bindings.%s: %w", action, err)
		}
	}
	return nil
}

// Backend returns the configured backend.
func (c *Config) Backend() app.Backend {
	b, _ := app.ParseBackend(c.Window.Backend)
	return b
}

// Key returns the key bound to action, or key.Unknown.
func (c *Config) Key(action string) key.Key {
	k, err := key.Parse(c.Bindings[action])
	if err != nil {
		return key.Unknown
	}
	return k
}

// LevelOff disables logging.
const LevelOff = slog.Level(1 << 10)

// ParseLevel parses a log level name. The trace level is app.LevelTrace.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return app.LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "off", "none":
		return LevelOff, nil
	}
	return 0, fmt.Errorf("unknown level %q", s)
}
