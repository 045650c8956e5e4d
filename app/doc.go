// SPDX-License-Identifier: Unlicense OR MIT

/*
Package app provides a platform-independent window with a normalized input
event stream, for real-time renderers that draw into the window through a
GPU API of their choice.

# Windows

A Window is created by NewWindow and driven by calling its Poll method once
per frame. Poll never blocks; it returns the events received since the last
call, with duplicates removed, and updates the state queried by methods such
as KeyPressed, MouseDelta and Size.

For example:

	w, err := app.NewWindow("demo", 1280, 720, true, app.Auto)
	if err != nil {
		log.Fatal(err)
	}
	defer w.Close()
	for !w.ShouldClose() {
		for _, e := range w.Poll() {
			// Handle e.
		}
		// Render a frame.
	}

A Window must only be used by the goroutine that created it. On Windows and
with GLFW, that goroutine must also be locked to its OS thread with
runtime.LockOSThread.

# Backends

The platform layer is selected by a Backend. Auto picks the backend named by
the PREGEN_BACKEND environment variable, or the preferred backend for the
platform: X11 on Linux when DISPLAY is set, Wayland when only
WAYLAND_DISPLAY is, Win32 on Windows and Canvas in the browser. The GLFW backend requires cgo
and the glfw build tag. The Headless backend runs anywhere and is fed
events with HeadlessWindow.Push.

WindowHandle and DisplayHandle expose the native handles a GPU surface is
created from. The Wayland backend has none to offer and returns
ErrHandleUnavailable; it maps its surface with a blank shared memory
buffer.

# Logging

Windows log through a *slog.Logger passed with WithLogger. Without one,
nothing is logged. Per-event diagnostics use LevelTrace.
*/
package app
