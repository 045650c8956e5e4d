// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"image"
	"log/slog"

	"pregen.dev/io/event"
)

// HeadlessWindow is an in-memory NativeWindow for offscreen rendering and
// tests. Events are queued with Push and delivered by the next Poll.
// Setters record their arguments; they never fail.
type HeadlessWindow struct {
	log *slog.Logger

	queue     []event.Event
	visible   bool
	focused   bool
	destroyed bool

	title          string
	width, height  int
	scaleX, scaleY float32
	resizable      bool
	locked         bool
	cursorVisible  bool
	cursorX        float32
	cursorY        float32
	clipboard      string
	icon           image.Image
}

func init() {
	registerDriver(Headless, func(opts *nativeOptions) (NativeWindow, error) {
		return newHeadlessWindow(opts), nil
	})
}

func newHeadlessWindow(opts *nativeOptions) *HeadlessWindow {
	lg := opts.Logger
	if lg == nil {
		lg = newNopLogger()
	}
	return &HeadlessWindow{
		log:           lg,
		title:         opts.Title,
		width:         opts.Width,
		height:        opts.Height,
		scaleX:        1,
		scaleY:        1,
		cursorVisible: true,
	}
}

// Push queues events for the next Poll. Resize events also update the
// size, and ScaleFactorChanged events the content scale, as a platform
// would.
func (w *HeadlessWindow) Push(events ...event.Event) {
	for _, e := range events {
		switch e := e.(type) {
		case event.Resize:
			w.width, w.height = e.Width, e.Height
		case event.ScaleFactorChanged:
			w.scaleX, w.scaleY = e.ScaleX, e.ScaleY
		case event.FocusGained:
			w.focused = true
		case event.FocusLost:
			w.focused = false
		case event.CursorPosition:
			w.cursorX, w.cursorY = e.X, e.Y
		}
	}
	w.queue = append(w.queue, events...)
}

// SetContentScale changes the content scale and queues the matching
// ScaleFactorChanged event.
func (w *HeadlessWindow) SetContentScale(x, y float32) {
	w.Push(event.ScaleFactorChanged{ScaleX: x, ScaleY: y})
}

func (w *HeadlessWindow) Show() {
	if w.destroyed || w.visible {
		return
	}
	w.visible = true
	w.focused = true
}

func (w *HeadlessWindow) Focus() {
	if w.destroyed {
		return
	}
	w.visible = true
	w.focused = true
}

func (w *HeadlessWindow) Shutdown() {
	if w.destroyed {
		return
	}
	w.destroyed = true
	w.queue = nil
	w.log.Debug("headless window destroyed")
}

// Destroyed reports whether Shutdown has been called.
func (w *HeadlessWindow) Destroyed() bool {
	return w.destroyed
}

// Visible reports whether the window was shown.
func (w *HeadlessWindow) Visible() bool {
	return w.visible
}

func (w *HeadlessWindow) IsFocused() bool {
	return w.focused
}

func (w *HeadlessWindow) LockCursor(lock bool) {
	w.locked = lock
}

// CursorLocked reports the last LockCursor argument.
func (w *HeadlessWindow) CursorLocked() bool {
	return w.locked
}

func (w *HeadlessWindow) Poll() []event.Event {
	evs := w.queue
	w.queue = nil
	return evs
}

func (w *HeadlessWindow) Resize(width, height int) {
	w.width, w.height = width, height
}

func (w *HeadlessWindow) Size() (int, int) {
	return w.width, w.height
}

func (w *HeadlessWindow) Clipboard() string {
	return w.clipboard
}

func (w *HeadlessWindow) SetClipboard(text string) {
	w.clipboard = text
}

func (w *HeadlessWindow) ContentScale() (float32, float32) {
	return w.scaleX, w.scaleY
}

func (w *HeadlessWindow) CursorPosition() (float32, float32) {
	return w.cursorX, w.cursorY
}

func (w *HeadlessWindow) SetTitle(title string) {
	w.title = title
}

// Title returns the last title set.
func (w *HeadlessWindow) Title() string {
	return w.title
}

func (w *HeadlessWindow) SetResizable(resizable bool) {
	w.resizable = resizable
}

// Resizable reports the last SetResizable argument.
func (w *HeadlessWindow) Resizable() bool {
	return w.resizable
}

func (w *HeadlessWindow) SetCursorVisible(visible bool) {
	w.cursorVisible = visible
}

// CursorVisible reports the last SetCursorVisible argument.
func (w *HeadlessWindow) CursorVisible() bool {
	return w.cursorVisible
}

// SetCursorPosition moves the virtual cursor. Like a native warp, it
// produces no CursorPosition event.
func (w *HeadlessWindow) SetCursorPosition(x, y float32) {
	w.cursorX, w.cursorY = x, y
}

func (w *HeadlessWindow) SetIcon(img image.Image) {
	w.icon = img
}

// Icon returns the last icon set.
func (w *HeadlessWindow) Icon() image.Image {
	return w.icon
}

func (w *HeadlessWindow) WindowHandle() (WindowHandle, error) {
	return nil, platformError(Headless, "WindowHandle", 0, ErrHandleUnavailable)
}

func (w *HeadlessWindow) DisplayHandle() (DisplayHandle, error) {
	return nil, platformError(Headless, "DisplayHandle", 0, ErrHandleUnavailable)
}
