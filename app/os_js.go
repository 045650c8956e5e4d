// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"syscall/js"

	"pregen.dev/internal/keycode"
	"pregen.dev/io/event"
)

type canvasWindow struct {
	window js.Value
	doc    js.Value
	cnv    js.Value
	id     string
	log    *slog.Logger

	cleanfuncs []func()

	// mu guards the fields below, which the event listeners update
	// between Go calls.
	mu            sync.Mutex
	pending       []event.Event
	keys          keyTracker
	width, height int
	scale         float32
	focused       bool
	inside        bool
	locked        bool
	cursorVisible bool
	cursorX       float32
	cursorY       float32
	clipboard     string
	destroyed     bool
}

var canvasCount int

func init() {
	registerDriver(Canvas, newCanvasWindow)
}

func newCanvasWindow(opts *nativeOptions) (NativeWindow, error) {
	doc := js.Global().Get("document")
	if doc.IsUndefined() {
		return nil, platformError(Canvas, "document", 0, fmt.Errorf("no DOM available"))
	}
	canvasCount++
	w := &canvasWindow{
		window:        js.Global().Get("window"),
		doc:           doc,
		id:            fmt.Sprintf("pregen-canvas-%d", canvasCount),
		log:           opts.Logger,
		width:         opts.Width,
		height:        opts.Height,
		scale:         1,
		cursorVisible: true,
	}
	w.cnv = doc.Call("createElement", "canvas")
	w.cnv.Set("id", w.id)
	// A tabindex makes the canvas focusable, so it receives key events.
	w.cnv.Set("tabIndex", 0)
	style := w.cnv.Get("style")
	style.Set("display", "none")
	style.Set("outline", "none")
	doc.Get("body").Call("appendChild", w.cnv)
	w.setTitle(opts.Title)
	w.resizeCanvas(opts.Width, opts.Height)
	w.addEventListeners()
	w.log.Info("canvas window created", "id", w.id)
	return w, nil
}

func (w *canvasWindow) addEventListeners() {
	w.addEventListener(w.window, "resize", func(this js.Value, args []js.Value) any {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.updateScale()
		w.updateSize()
		return nil
	})
	w.addEventListener(w.cnv, "focus", func(this js.Value, args []js.Value) any {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.focused = true
		w.keys.reset()
		w.event(event.FocusGained{})
		return nil
	})
	w.addEventListener(w.cnv, "blur", func(this js.Value, args []js.Value) any {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.focused = false
		w.keys.reset()
		w.event(event.FocusLost{})
		return nil
	})
	w.addEventListener(w.doc, "visibilitychange", func(this js.Value, args []js.Value) any {
		if w.doc.Get("visibilityState").String() == "hidden" {
			w.mu.Lock()
			w.event(event.Minimized{})
			w.mu.Unlock()
		}
		return nil
	})
	w.addEventListener(w.window, "pagehide", func(this js.Value, args []js.Value) any {
		w.mu.Lock()
		w.event(event.CloseRequested{})
		w.mu.Unlock()
		return nil
	})
	w.addEventListener(w.cnv, "keydown", func(this js.Value, args []js.Value) any {
		w.keyEvent(args[0], true)
		return nil
	})
	w.addEventListener(w.cnv, "keyup", func(this js.Value, args []js.Value) any {
		w.keyEvent(args[0], false)
		return nil
	})
	w.addEventListener(w.cnv, "mousedown", func(this js.Value, args []js.Value) any {
		w.buttonEvent(args[0], true)
		return nil
	})
	w.addEventListener(w.cnv, "mouseup", func(this js.Value, args []js.Value) any {
		w.buttonEvent(args[0], false)
		return nil
	})
	w.addEventListener(w.cnv, "contextmenu", func(this js.Value, args []js.Value) any {
		args[0].Call("preventDefault")
		return nil
	})
	w.addEventListener(w.cnv, "mouseenter", func(this js.Value, args []js.Value) any {
		w.mu.Lock()
		w.inside = true
		w.mu.Unlock()
		return nil
	})
	w.addEventListener(w.cnv, "mouseleave", func(this js.Value, args []js.Value) any {
		w.mu.Lock()
		w.inside = false
		w.mu.Unlock()
		return nil
	})
	w.addEventListener(w.cnv, "mousemove", func(this js.Value, args []js.Value) any {
		e := args[0]
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.locked {
			// Locked pointers report movement only; drive a virtual cursor.
			w.cursorX = clampf(w.cursorX+float32(e.Get("movementX").Float()), 0, float32(w.width))
			w.cursorY = clampf(w.cursorY+float32(e.Get("movementY").Float()), 0, float32(w.height))
		} else {
			w.cursorX = float32(e.Get("offsetX").Float())
			w.cursorY = float32(e.Get("offsetY").Float())
		}
		w.event(event.CursorPosition{X: w.cursorX, Y: w.cursorY})
		return nil
	})
	w.addEventListener(w.cnv, "wheel", func(this js.Value, args []js.Value) any {
		e := args[0]
		e.Call("preventDefault")
		dx, dy := e.Get("deltaX").Float(), e.Get("deltaY").Float()
		switch e.Get("deltaMode").Int() {
		case 0x00: // DOM_DELTA_PIXEL
			dx /= 100
			dy /= 100
		case 0x01: // DOM_DELTA_LINE
			dx /= 3
			dy /= 3
		}
		w.mu.Lock()
		w.event(event.MouseWheel{ScrollX: float32(dx), ScrollY: float32(-dy)})
		w.mu.Unlock()
		return nil
	})
	w.addEventListener(w.doc, "pointerlockchange", func(this js.Value, args []js.Value) any {
		held := w.doc.Get("pointerLockElement").Equal(w.cnv)
		w.mu.Lock()
		locked := w.locked
		w.mu.Unlock()
		if locked && !held {
			w.log.Debug("canvas: pointer lock released by the browser")
		}
		return nil
	})
}

// addEventListener registers f and arranges for its removal on shutdown.
func (w *canvasWindow) addEventListener(this js.Value, event string, f func(this js.Value, args []js.Value) any) {
	jsf := w.funcOf(f)
	this.Call("addEventListener", event, jsf)
	w.cleanfuncs = append(w.cleanfuncs, func() {
		this.Call("removeEventListener", event, jsf)
	})
}

// funcOf is like js.FuncOf but releases the js.Func on shutdown.
func (w *canvasWindow) funcOf(f func(this js.Value, args []js.Value) any) js.Func {
	jsf := js.FuncOf(f)
	w.cleanfuncs = append(w.cleanfuncs, jsf.Release)
	return jsf
}

// event queues e. The caller holds mu.
func (w *canvasWindow) event(e event.Event) {
	if w.destroyed {
		return
	}
	w.pending = append(w.pending, e)
}

func (w *canvasWindow) keyEvent(e js.Value, pressed bool) {
	code := e.Get("code").String()
	k, ok := keycode.DOM(code)
	if ok {
		// Keep mapped keys such as Tab and Space from reaching the page.
		e.Call("preventDefault")
	}
	scancode := uint32(e.Get("keyCode").Int())
	w.mu.Lock()
	defer w.mu.Unlock()
	if pressed {
		if e.Get("repeat").Bool() || !w.keys.press(scancode) {
			return
		}
	} else {
		w.keys.release(scancode)
	}
	w.event(event.KeyboardInput{
		Key:      translateKey(w.log, Canvas, k, ok, scancode),
		Scancode: scancode,
		Action:   event.ActionOf(pressed),
	})
}

func (w *canvasWindow) buttonEvent(e js.Value, pressed bool) {
	if pressed {
		w.cnv.Call("focus")
	}
	w.mu.Lock()
	w.event(event.MouseButton{
		Button: keycode.DOMButton(e.Get("button").Int()),
		Action: event.ActionOf(pressed),
	})
	w.mu.Unlock()
}

// updateScale reads devicePixelRatio. The caller holds mu.
func (w *canvasWindow) updateScale() {
	s := float32(w.window.Get("devicePixelRatio").Float())
	if s <= 0 {
		s = 1
	}
	if s != w.scale {
		w.scale = s
		w.event(event.ScaleFactorChanged{ScaleX: s, ScaleY: s})
	}
}

// updateSize reads the displayed canvas size and sizes its backing store.
// The caller holds mu.
func (w *canvasWindow) updateSize() {
	width := w.cnv.Get("clientWidth").Int()
	height := w.cnv.Get("clientHeight").Int()
	if width == 0 && height == 0 {
		return
	}
	w.cnv.Set("width", int(math.Round(float64(float32(width)*w.scale))))
	w.cnv.Set("height", int(math.Round(float64(float32(height)*w.scale))))
	if width != w.width || height != w.height {
		w.width, w.height = width, height
		w.event(event.Resize{Width: width, Height: height})
	}
}

func (w *canvasWindow) resizeCanvas(width, height int) {
	style := w.cnv.Get("style")
	style.Set("width", fmt.Sprintf("%dpx", width))
	style.Set("height", fmt.Sprintf("%dpx", height))
	w.mu.Lock()
	defer w.mu.Unlock()
	w.updateScale()
	w.width, w.height = width, height
	w.cnv.Set("width", int(math.Round(float64(float32(width)*w.scale))))
	w.cnv.Set("height", int(math.Round(float64(float32(height)*w.scale))))
}

func (w *canvasWindow) setTitle(title string) {
	w.doc.Set("title", title)
}

func (w *canvasWindow) Show() {
	if w.isDestroyed() {
		return
	}
	w.cnv.Get("style").Set("display", "block")
	w.cnv.Call("focus")
}

func (w *canvasWindow) Focus() {
	w.Show()
}

func (w *canvasWindow) isDestroyed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.destroyed
}

func (w *canvasWindow) Shutdown() {
	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return
	}
	w.destroyed = true
	w.pending = nil
	w.mu.Unlock()
	if w.doc.Get("pointerLockElement").Equal(w.cnv) {
		w.doc.Call("exitPointerLock")
	}
	// Clean up in the opposite order of construction.
	for i := len(w.cleanfuncs) - 1; i >= 0; i-- {
		w.cleanfuncs[i]()
	}
	w.cleanfuncs = nil
	w.cnv.Call("remove")
}

func (w *canvasWindow) IsFocused() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.focused
}

func (w *canvasWindow) LockCursor(lock bool) {
	w.mu.Lock()
	if w.destroyed || w.locked == lock {
		w.mu.Unlock()
		return
	}
	w.locked = lock
	w.mu.Unlock()
	if lock {
		w.cnv.Call("requestPointerLock")
	} else if w.doc.Get("pointerLockElement").Equal(w.cnv) {
		w.doc.Call("exitPointerLock")
	}
	w.applyCursor()
}

func (w *canvasWindow) applyCursor() {
	w.mu.Lock()
	visible := w.cursorVisible
	w.mu.Unlock()
	cursor := "auto"
	if !visible {
		cursor = "none"
	}
	w.cnv.Get("style").Set("cursor", cursor)
}

func (w *canvasWindow) Poll() []event.Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	evs := w.pending
	w.pending = nil
	return evs
}

func (w *canvasWindow) Resize(width, height int) {
	if w.isDestroyed() {
		return
	}
	w.resizeCanvas(width, height)
}

func (w *canvasWindow) Size() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

// Clipboard returns the clipboard contents as of the last asynchronous
// read, and starts a new read.
func (w *canvasWindow) Clipboard() string {
	cb := js.Global().Get("navigator").Get("clipboard")
	if cb.IsUndefined() {
		w.log.Warn("canvas: clipboard API unavailable")
		return ""
	}
	var then, fail js.Func
	release := func() {
		then.Release()
		fail.Release()
	}
	then = js.FuncOf(func(this js.Value, args []js.Value) any {
		w.mu.Lock()
		w.clipboard = args[0].String()
		w.mu.Unlock()
		release()
		return nil
	})
	fail = js.FuncOf(func(this js.Value, args []js.Value) any {
		w.log.Debug("canvas: clipboard read rejected", "reason", args[0].Call("toString").String())
		release()
		return nil
	})
	cb.Call("readText").Call("then", then, fail)
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.clipboard
}

func (w *canvasWindow) SetClipboard(text string) {
	cb := js.Global().Get("navigator").Get("clipboard")
	if cb.IsUndefined() {
		w.log.Warn("canvas: clipboard API unavailable")
		return
	}
	w.mu.Lock()
	w.clipboard = text
	w.mu.Unlock()
	cb.Call("writeText", text)
}

func (w *canvasWindow) ContentScale() (float32, float32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scale, w.scale
}

func (w *canvasWindow) CursorPosition() (float32, float32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.locked && !w.inside {
		return 0, 0
	}
	return w.cursorX, w.cursorY
}

func (w *canvasWindow) SetTitle(title string) {
	if w.isDestroyed() {
		return
	}
	w.setTitle(title)
}

// SetResizable is a no-op; the page layout sizes the canvas.
func (w *canvasWindow) SetResizable(resizable bool) {
	w.log.Debug("canvas: resizability is controlled by the page", "resizable", resizable)
}

func (w *canvasWindow) SetCursorVisible(visible bool) {
	w.mu.Lock()
	w.cursorVisible = visible
	w.mu.Unlock()
	w.applyCursor()
}

// SetCursorPosition moves the virtual cursor. Browsers cannot move the
// real cursor.
func (w *canvasWindow) SetCursorPosition(x, y float32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cursorX, w.cursorY = x, y
}

func (w *canvasWindow) WindowHandle() (WindowHandle, error) {
	if w.isDestroyed() {
		return nil, ErrClosed
	}
	return WebCanvasHandle{ID: w.id}, nil
}

func (w *canvasWindow) DisplayHandle() (DisplayHandle, error) {
	if w.isDestroyed() {
		return nil, ErrClosed
	}
	return WebDisplayHandle{}, nil
}
