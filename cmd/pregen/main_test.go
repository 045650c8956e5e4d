// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"bytes"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"pregen.dev/app"
	"pregen.dev/internal/config"
	"pregen.dev/io/event"
	"pregen.dev/io/key"
	"pregen.dev/io/pointer"
)

func TestCameraMove(t *testing.T) {
	c := flyCamera{speed: 2, sensitivity: 0.01}
	c.move(1, 0, 0, 0.5)
	if math.Abs(c.Z+1) > 1e-9 || math.Abs(c.X) > 1e-9 {
		t.Errorf("forward moved to (%v, %v, %v)", c.X, c.Y, c.Z)
	}
	// Diagonal movement is not faster than straight movement.
	d := flyCamera{speed: 1}
	d.move(1, 1, 0, 1)
	if l := math.Hypot(d.X, d.Z); math.Abs(l-1) > 1e-9 {
		t.Errorf("diagonal step length %v", l)
	}
}

func TestCameraPitchClamp(t *testing.T) {
	c := flyCamera{sensitivity: 0.01}
	c.rotate(0, -100000)
	if c.Pitch > maxPitch || c.Pitch < maxPitch-1e-9 {
		t.Errorf("pitch = %v; want %v", c.Pitch, maxPitch)
	}
	c.rotate(0, 100000)
	if c.Pitch != -maxPitch {
		t.Errorf("pitch = %v; want %v", c.Pitch, -maxPitch)
	}
}

func newDemo(t *testing.T) (*demo, *app.HeadlessWindow) {
	t.Helper()
	w, err := app.NewWindow("test", 800, 600, true, app.Headless)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(w.Close)
	cfg := config.DefaultConfig()
	d := &demo{
		w:   w,
		cfg: cfg,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
		cam: flyCamera{speed: cfg.Camera.Speed, sensitivity: cfg.Camera.Sensitivity},
	}
	return d, w.Native().(*app.HeadlessWindow)
}

func TestDemoEscapeCloses(t *testing.T) {
	d, hw := newDemo(t)
	hw.Push(event.KeyboardInput{Key: key.Escape, Action: event.Pressed})
	d.frame(1.0 / 60)
	if !d.w.ShouldClose() {
		t.Error("Escape did not request close")
	}
}

func TestDemoCopy(t *testing.T) {
	d, hw := newDemo(t)
	hw.Push(event.KeyboardInput{Key: key.F2, Action: event.Pressed})
	d.frame(1.0 / 60)
	if got := hw.Clipboard(); !strings.HasPrefix(got, "position=") {
		t.Errorf("clipboard = %q", got)
	}
}

func TestDemoLockToggle(t *testing.T) {
	d, hw := newDemo(t)
	right := func(a event.Action) event.Event { return event.MouseButton{Button: pointer.Right, Action: a} }
	hw.Push(right(event.Pressed), right(event.Released))
	d.frame(1.0 / 60)
	if !d.w.CursorLocked() || d.w.CursorVisible() {
		t.Fatalf("locked=%v visible=%v after right click", d.w.CursorLocked(), d.w.CursorVisible())
	}
	if x, y := d.w.CursorPosition(); x != 400 || y != 300 {
		t.Errorf("cursor at (%v, %v); want the window centre", x, y)
	}
	hw.Push(event.CursorPosition{X: 410, Y: 300})
	d.frame(1.0 / 60)
	if d.cam.Yaw <= 0 {
		t.Errorf("yaw = %v after moving right", d.cam.Yaw)
	}
	hw.Push(event.FocusLost{})
	d.frame(1.0 / 60)
	if d.w.CursorLocked() {
		t.Error("cursor still locked after focus loss")
	}
}

func TestDemoMovement(t *testing.T) {
	d, hw := newDemo(t)
	hw.Push(event.KeyboardInput{Key: key.Space, Action: event.Pressed})
	d.frame(0.5)
	if d.cam.Y != d.cfg.Camera.Speed*0.5 {
		t.Errorf("camera Y = %v", d.cam.Y)
	}
}

func TestRunHeadless(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(config.EnvBackend, "")
	t.Setenv(config.EnvLog, "")
	var out bytes.Buffer
	if err := run([]string{"-backend", "headless", "-frames", "2", "-log", "info"}, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "exiting") {
		t.Errorf("missing exit log in %q", out.String())
	}
}

func TestRunBadFlag(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var out bytes.Buffer
	if err := run([]string{"-backend", "amiga"}, &out); err == nil {
		t.Error("expected an error for an unknown backend")
	}
}
