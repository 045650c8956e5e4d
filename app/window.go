// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"runtime"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"pregen.dev/io/event"
	"pregen.dev/io/key"
)

// Window is a platform window and the input state derived from its
// events. A Window is owned by the goroutine driving the frame loop and
// must not be used concurrently. Backends that need the creating OS thread
// require the caller to lock it with runtime.LockOSThread.
type Window struct {
	native  NativeWindow
	backend Backend
	log     *slog.Logger
	stage   Stage
	cleanup runtime.Cleanup

	title         string
	width, height int
	scaleX        float32
	scaleY        float32
	focused       bool
	locked        bool
	cursorVisible bool
	shouldClose   bool

	pressed map[key.Key]struct{}
	deltaX  float32
	deltaY  float32
	// cursorX, cursorY is the tracked cursor position. hasCursor is false
	// until the first position is known.
	cursorX, cursorY float32
	hasCursor        bool
	// warpX, warpY is the last programmatically requested cursor position.
	warpX, warpY float32
	warped       bool
}

// Stage of a Window's lifecycle.
type Stage uint8

const (
	// StageCreated is the stage of a window being initialized.
	StageCreated Stage = iota
	// StageActive is entered once the window is shown.
	StageActive
	// StageClosing is entered when the window should close.
	StageClosing
	// StageDestroyed is entered once the native window is released.
	StageDestroyed
)

// Option configures a window.
type Option func(o *windowOptions)

type windowOptions struct {
	logger *slog.Logger
	icon   image.Image
}

// WithLogger directs window and backend diagnostics to l. The default
// logger discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *windowOptions) {
		o.logger = l
	}
}

// WithIcon sets the initial window icon.
func WithIcon(img image.Image) Option {
	return func(o *windowOptions) {
		o.icon = img
	}
}

// NewWindow creates a window with the given title and logical client area
// size on backend, and shows it. Errors are fatal: no degraded mode exists
// without a native window.
//
// The window must be released with Close. A Window that becomes
// unreachable without Close has its native window shut down by the garbage
// collector, which backends bound to an OS thread may not support.
func NewWindow(title string, width, height int, resizable bool, backend Backend, options ...Option) (*Window, error) {
	var opts windowOptions
	for _, o := range options {
		o(&opts)
	}
	if opts.logger == nil {
		opts.logger = newNopLogger()
	}
	b, err := resolveBackend(backend)
	if err != nil {
		return nil, err
	}
	newNative, ok := drivers[b]
	if !ok {
		return nil, platformError(b, "select", 0, ErrUnsupportedBackend)
	}
	lg := opts.logger.With("backend", b.String())
	lg.Debug("backend selected", "requested", backend)
	native, err := newNative(&nativeOptions{
		Title:  title,
		Width:  width,
		Height: height,
		Logger: lg,
	})
	if err != nil {
		return nil, err
	}
	w := newWindow(native, b, lg)
	w.cleanup = runtime.AddCleanup(w, NativeWindow.Shutdown, native)
	w.SetTitle(title)
	w.native.Show()
	w.native.Resize(width, height)
	w.native.SetResizable(resizable)
	if opts.icon != nil {
		w.SetIcon(opts.icon)
	}
	w.width, w.height = w.native.Size()
	w.scaleX, w.scaleY = w.native.ContentScale()
	w.focused = w.native.IsFocused()
	w.stage = StageActive
	lg.Info("window created", "title", title, "width", w.width, "height", w.height)
	return w, nil
}

func newWindow(native NativeWindow, b Backend, lg *slog.Logger) *Window {
	return &Window{
		native:        native,
		backend:       b,
		log:           lg,
		scaleX:        1,
		scaleY:        1,
		cursorVisible: true,
		pressed:       make(map[key.Key]struct{}),
	}
}

// Poll drains the pending platform events and updates the window state
// from them. The returned list holds at most one event per identity, the
// most recent, except for keyboard input which is never collapsed. Events
// are in arrival order. A Resize is directly followed by a synthesized
// FramebufferResize; without a Resize, a ScaleFactorChanged that changes
// the framebuffer size is. The FramebufferResize carries the size after
// all events are applied.
func (w *Window) Poll() []event.Event {
	w.deltaX, w.deltaY = 0, 0
	if w.stage == StageDestroyed {
		return nil
	}
	raw := w.native.Poll()
	if len(raw) == 0 {
		return nil
	}
	evs := event.Coalesce(raw)
	fw, fh := w.FramebufferSize()
	resized := false
	for _, e := range evs {
		trace(w.log, "event", "kind", e.Identity().Kind, "event", e)
		if _, ok := e.(event.Resize); ok {
			resized = true
		}
		w.apply(e)
	}
	nfw, nfh := w.FramebufferSize()
	fb := event.FramebufferResize{Width: nfw, Height: nfh}
	rescaled := nfw != fw || nfh != fh
	out := make([]event.Event, 0, len(evs)+1)
	for _, e := range evs {
		out = append(out, e)
		switch e.(type) {
		case event.Resize:
			out = append(out, fb)
		case event.ScaleFactorChanged:
			if !resized && rescaled {
				out = append(out, fb)
			}
		}
	}
	return out
}

// apply updates the derived state from e.
func (w *Window) apply(e event.Event) {
	switch e := e.(type) {
	case event.FocusGained:
		w.setFocus(true)
	case event.FocusLost:
		w.setFocus(false)
	case event.CloseRequested, event.Destroyed:
		w.SetShouldClose(true)
	case event.Resize:
		w.width, w.height = e.Width, e.Height
	case event.KeyboardInput:
		switch e.Action {
		case event.Pressed:
			w.pressed[e.Key] = struct{}{}
		case event.Released:
			delete(w.pressed, e.Key)
		}
	case event.CursorPosition:
		if w.hasCursor && !(w.warped && e.X == w.warpX && e.Y == w.warpY) {
			w.deltaX += e.X - w.cursorX
			w.deltaY += e.Y - w.cursorY
		}
		w.cursorX, w.cursorY = e.X, e.Y
		w.hasCursor = true
	case event.ScaleFactorChanged:
		w.scaleX, w.scaleY = e.ScaleX, e.ScaleY
	}
}

// setFocus records a focus change. Focus changes reset the input state
// since releases may be delivered to another window.
func (w *Window) setFocus(focused bool) {
	w.focused = focused
	clear(w.pressed)
	w.deltaX, w.deltaY = 0, 0
}

// ShouldClose reports whether the window was asked to close.
func (w *Window) ShouldClose() bool {
	return w.shouldClose
}

// SetShouldClose sets or clears the close request.
func (w *Window) SetShouldClose(close bool) {
	w.shouldClose = close
	switch {
	case close && w.stage == StageActive:
		w.stage = StageClosing
	case !close && w.stage == StageClosing:
		w.stage = StageActive
	}
}

// Size returns the logical client area size.
func (w *Window) Size() (width, height int) {
	return w.width, w.height
}

// FramebufferSize returns the client area size in physical pixels.
func (w *Window) FramebufferSize() (width, height int) {
	return scaled(w.width, w.scaleX), scaled(w.height, w.scaleY)
}

func scaled(v int, s float32) int {
	return int(math.Round(float64(v) * float64(s)))
}

// AspectRatio returns width divided by height of the client area, or 1 for
// an empty area.
func (w *Window) AspectRatio() float32 {
	if w.height == 0 {
		return 1
	}
	return float32(w.width) / float32(w.height)
}

// KeyPressed reports whether k is held down.
func (w *Window) KeyPressed(k key.Key) bool {
	_, ok := w.pressed[k]
	return ok
}

// PressedKeys returns the held keys in ascending order.
func (w *Window) PressedKeys() []key.Key {
	ks := maps.Keys(w.pressed)
	slices.Sort(ks)
	return ks
}

// MouseDelta returns the cursor movement accumulated by the last Poll.
func (w *Window) MouseDelta() (dx, dy float32) {
	return w.deltaX, w.deltaY
}

// CursorPosition returns the tracked logical cursor position.
func (w *Window) CursorPosition() (x, y float32) {
	return w.cursorX, w.cursorY
}

// Focused reports whether the window has input focus.
func (w *Window) Focused() bool {
	return w.focused
}

// CursorVisible reports the visibility last set with SetCursorVisible. It
// is independent of LockCursor, although backends hide a locked cursor.
func (w *Window) CursorVisible() bool {
	return w.cursorVisible
}

// CursorLocked reports whether the cursor is locked.
func (w *Window) CursorLocked() bool {
	return w.locked
}

// Title returns the window title.
func (w *Window) Title() string {
	return w.title
}

// Backend returns the backend driving the window.
func (w *Window) Backend() Backend {
	return w.backend
}

// ContentScale returns the physical pixels per logical pixel.
func (w *Window) ContentScale() (x, y float32) {
	return w.scaleX, w.scaleY
}

// Stage returns the lifecycle stage.
func (w *Window) Stage() Stage {
	return w.stage
}

// Native returns the backend implementation. Callers may type assert it to
// a backend type such as *HeadlessWindow.
func (w *Window) Native() NativeWindow {
	return w.native
}

// Clipboard returns the clipboard text, or the empty string if the
// clipboard is unavailable.
func (w *Window) Clipboard() string {
	if w.stage == StageDestroyed {
		return ""
	}
	return w.native.Clipboard()
}

// SetClipboard replaces the clipboard text.
func (w *Window) SetClipboard(text string) {
	if w.stage == StageDestroyed {
		return
	}
	w.native.SetClipboard(text)
}

// Focus brings the window to the front and requests input focus.
func (w *Window) Focus() {
	if w.stage == StageDestroyed {
		return
	}
	w.native.Focus()
	w.focused = w.native.IsFocused()
}

// LockCursor hides the cursor and confines it to the client area, for
// mouse-look controls.
func (w *Window) LockCursor(lock bool) {
	if w.stage == StageDestroyed {
		return
	}
	w.locked = lock
	w.native.LockCursor(lock)
}

// SetCursorVisible shows or hides the cursor over the window.
func (w *Window) SetCursorVisible(visible bool) {
	if w.stage == StageDestroyed {
		return
	}
	w.cursorVisible = visible
	w.native.SetCursorVisible(visible)
}

// SetCursorPosition moves the cursor to the logical position (x, y). It
// only applies while the window is focused and the cursor locked; the move
// is not reported as mouse delta.
func (w *Window) SetCursorPosition(x, y float32) {
	if w.stage == StageDestroyed {
		return
	}
	if !w.focused || !w.locked {
		w.log.Warn("cursor position set without focus and cursor lock", "x", x, "y", y,
			"focused", w.focused, "locked", w.locked)
		return
	}
	w.cursorX, w.cursorY = x, y
	w.hasCursor = true
	w.warpX, w.warpY = x, y
	w.warped = true
	w.native.SetCursorPosition(x, y)
}

// SetTitle sets the window title.
func (w *Window) SetTitle(title string) {
	w.title = title
	if w.stage == StageDestroyed {
		return
	}
	w.native.SetTitle(title)
}

// SetIcon sets the window icon on backends that support it.
func (w *Window) SetIcon(img image.Image) {
	if w.stage == StageDestroyed {
		return
	}
	s, ok := w.native.(iconSetter)
	if !ok {
		w.log.Debug("window icons not supported")
		return
	}
	s.SetIcon(img)
}

// WindowHandle returns the native window handle for binding a GPU surface.
func (w *Window) WindowHandle() (WindowHandle, error) {
	if w.stage == StageDestroyed {
		return nil, ErrClosed
	}
	return w.native.WindowHandle()
}

// DisplayHandle returns the native display handle for binding a GPU
// surface.
func (w *Window) DisplayHandle() (DisplayHandle, error) {
	if w.stage == StageDestroyed {
		return nil, ErrClosed
	}
	return w.native.DisplayHandle()
}

// Close releases the native window and marks the window as closing.
// Calling Close more than once is a no-op.
func (w *Window) Close() {
	w.shouldClose = true
	if w.stage == StageDestroyed {
		return
	}
	w.cleanup.Stop()
	w.native.Shutdown()
	w.stage = StageDestroyed
	w.log.Info("window closed", "title", w.title)
}

func (s Stage) String() string {
	switch s {
	case StageCreated:
		return "StageCreated"
	case StageActive:
		return "StageActive"
	case StageClosing:
		return "StageClosing"
	case StageDestroyed:
		return "StageDestroyed"
	default:
		return fmt.Sprintf("Stage(%d)", uint8(s))
	}
}
