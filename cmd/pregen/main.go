// SPDX-License-Identifier: Unlicense OR MIT

// Command pregen opens a window and flies a camera with the keyboard and
// mouse. Press the right mouse button to capture the cursor, F2 to copy
// the camera state and Escape to quit.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"pregen.dev/app"
	"pregen.dev/internal/config"
	"pregen.dev/io/event"
	"pregen.dev/io/pointer"
)

const frameTime = time.Second / 60

func main() {
	// Win32 and GLFW windows belong to the thread that created them.
	runtime.LockOSThread()
	if err := run(os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "pregen: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("pregen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "configuration `file` (default $XDG_CONFIG_HOME/pregen/config.yaml)")
	backendName := fs.String("backend", "", "window backend: "+backendList())
	level := fs.String("log", "", "log level: trace, debug, info, warn, error or off")
	frames := fs.Int("frames", 0, "exit after `n` frames; 0 runs until closed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *backendName != "" {
		cfg.Window.Backend = *backendName
	}
	if *level != "" {
		cfg.Log.Level = *level
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	lvl, _ := config.ParseLevel(cfg.Log.Level)
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: lvl}))

	w, err := app.NewWindow(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height,
		cfg.Window.Resizable, cfg.Backend(), app.WithLogger(logger))
	if err != nil {
		return err
	}
	defer w.Close()

	d := &demo{
		w:   w,
		cfg: cfg,
		log: logger,
		cam: flyCamera{
			speed:       cfg.Camera.Speed,
			sensitivity: cfg.Camera.Sensitivity,
		},
	}
	return d.loop(*frames)
}

func backendList() string {
	s := "auto"
	for _, b := range app.Backends() {
		s += ", " + b.String()
	}
	return s
}

type demo struct {
	w   *app.Window
	cfg *config.Config
	log *slog.Logger
	cam flyCamera
}

func (d *demo) loop(frames int) error {
	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()
	last := time.Now()
	for n := 0; !d.w.ShouldClose(); n++ {
		if frames > 0 && n >= frames {
			break
		}
		now := time.Now()
		dt := now.Sub(last).Seconds()
		last = now
		d.frame(dt)
		<-ticker.C
	}
	d.log.Info("exiting", "camera", d.cam.String())
	return nil
}

// frame handles one poll cycle.
func (d *demo) frame(dt float64) {
	for _, e := range d.w.Poll() {
		d.log.Log(context.Background(), app.LevelTrace, "event", "kind", e.Identity().Kind, "event", e)
		d.handle(e)
	}
	if d.w.CursorLocked() {
		d.cam.rotate(d.w.MouseDelta())
		width, height := d.w.Size()
		d.w.SetCursorPosition(float32(width)/2, float32(height)/2)
	}
	d.cam.move(
		d.axis(config.ActionForward, config.ActionBack),
		d.axis(config.ActionRight, config.ActionLeft),
		d.axis(config.ActionUp, config.ActionDown),
		dt,
	)
}

func (d *demo) handle(e event.Event) {
	switch e := e.(type) {
	case event.KeyboardInput:
		if e.Action != event.Pressed {
			return
		}
		switch e.Key {
		case d.cfg.Key(config.ActionQuit):
			d.w.SetShouldClose(true)
		case d.cfg.Key(config.ActionCopy):
			d.w.SetClipboard(d.cam.String())
			d.log.Info("camera copied to clipboard")
		}
	case event.MouseButton:
		if e.Button == pointer.Right && e.Action == event.Pressed {
			d.setLocked(!d.w.CursorLocked())
		}
	case event.FocusLost:
		if d.w.CursorLocked() {
			d.setLocked(false)
		}
	case event.Resize:
		d.log.Debug("resized", "width", e.Width, "height", e.Height, "aspect", d.w.AspectRatio())
	case event.CloseRequested:
		d.log.Info("close requested")
	}
}

func (d *demo) setLocked(lock bool) {
	d.w.LockCursor(lock)
	d.w.SetCursorVisible(!lock)
	if lock {
		width, height := d.w.Size()
		d.w.SetCursorPosition(float32(width)/2, float32(height)/2)
	}
}

// axis returns 1 while the positive binding is held, -1 while the
// negative one is, and 0 otherwise.
func (d *demo) axis(pos, neg string) float64 {
	var v float64
	if d.w.KeyPressed(d.cfg.Key(pos)) {
		v++
	}
	if d.w.KeyPressed(d.cfg.Key(neg)) {
		v--
	}
	return v
}
