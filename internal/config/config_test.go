// SPDX-License-Identifier: Unlicense OR MIT

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pregen.dev/app"
	"pregen.dev/io/key"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvBackend, "")
	t.Setenv(EnvLog, "")
	cfg, err := Load(writeConfig(t, "# empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvBackend, "")
	t.Setenv(EnvLog, "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Window.Title != "pregen" {
		t.Errorf("expected default title, got %q", cfg.Window.Title)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing explicit file")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv(EnvBackend, "")
	t.Setenv(EnvLog, "")
	path := writeConfig(t, strings.Join([]string{
		"window:",
		"  title: demo",
		"  width: 640",
		"  resizable: false",
		"  backend: headless",
		"camera:",
		"  speed: 2.5",
		"bindings:",
		"  forward: Up",
		"",
	}, "\n"))
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Window.Title != "demo" || cfg.Window.Width != 640 || cfg.Window.Height != 720 {
		t.Errorf("window = %+v", cfg.Window)
	}
	if cfg.Window.Resizable {
		t.Error("expected resizable false")
	}
	if cfg.Backend() != app.Headless {
		t.Errorf("Backend() = %v", cfg.Backend())
	}
	if cfg.Camera.Speed != 2.5 || cfg.Camera.Sensitivity != 0.002 {
		t.Errorf("camera = %+v", cfg.Camera)
	}
	if got := cfg.Key(ActionForward); got != key.Up {
		t.Errorf("forward bound to %v", got)
	}
	// Unspecified bindings keep their defaults.
	if got := cfg.Key(ActionBack); got != key.S {
		t.Errorf("back bound to %v", got)
	}
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv(EnvBackend, "headless")
	t.Setenv(EnvLog, "debug")
	cfg, err := Load(writeConfig(t, "window:\n  backend: x11\nlog:\n  level: error\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Window.Backend != "headless" || cfg.Log.Level != "debug" {
		t.Errorf("environment not applied: %+v %+v", cfg.Window, cfg.Log)
	}
}

func TestValidationNamesField(t *testing.T) {
	t.Setenv(EnvBackend, "")
	t.Setenv(EnvLog, "")
	tests := []struct {
		data  string
		field string
	}{
		{"window:\n  width: 0\n", "window.width"},
		{"window:\n  height: -5\n", "window.height"},
		{"window:\n  backend: amiga\n", "window.backend"},
		{"log:\n  level: loud\n", "log.level"},
		{"camera:\n  speed: 0\n", "camera.speed"},
		{"camera:\n  sensitivity: -1\n", "camera.sensitivity"},
		{"bindings:\n  jump: Space\n", "bindings.jump"},
		{"bindings:\n  forward: Hyper\n", "bindings.forward"},
	}
	for _, tc := range tests {
		_, err := Load(writeConfig(t, tc.data))
		if err == nil {
			t.Errorf("%q: expected an error", tc.data)
			continue
		}
		if !strings.Contains(err.Error(), tc.field) {
			t.Errorf("%q: error %q does not name %s", tc.data, err, tc.field)
		}
	}
}

func TestUnknownFieldRejected(t *testing.T) {
	if _, err := Parse([]byte("window:\n  colour: red\n")); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"trace", app.LevelTrace},
		{"DEBUG", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"off", LevelOff},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}
