// SPDX-License-Identifier: Unlicense OR MIT

//go:build glfw && !js && !android && !ios

package app

import (
	"errors"
	"image"
	"log/slog"
	"runtime"
	"sync"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"

	"pregen.dev/internal/keycode"
	"pregen.dev/io/event"
)

type glfwWindow struct {
	win *glfw.Window
	log *slog.Logger

	// mu guards pending, which the GLFW callbacks fill from inside
	// glfw.PollEvents.
	mu      sync.Mutex
	pending []event.Event

	keys keyTracker
	warp warpFilter

	destroyed     bool
	locked        bool
	cursorVisible bool
}

// glfwUsers counts the live windows sharing the GLFW library.
var glfwUsers int

// glfwLogical reports whether GLFW screen coordinates are logical pixels.
// Elsewhere they are physical pixels.
var glfwLogical = runtime.GOOS == "darwin"

func init() {
	registerDriver(GLFW, newGLFWWindow)
}

func glfwError(op string, err error) error {
	var gerr *glfw.Error
	if errors.As(err, &gerr) {
		return platformError(GLFW, op, int(gerr.Code), err)
	}
	return platformError(GLFW, op, 0, err)
}

func newGLFWWindow(opts *nativeOptions) (NativeWindow, error) {
	if glfwUsers == 0 {
		if err := glfw.Init(); err != nil {
			return nil, glfwError("glfwInit", err)
		}
	}
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.FocusOnShow, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.ScaleToMonitor, glfw.True)
	win, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		if glfwUsers == 0 {
			glfw.Terminate()
		}
		return nil, glfwError("glfwCreateWindow", err)
	}
	glfwUsers++
	w := &glfwWindow{
		win:           win,
		log:           opts.Logger,
		cursorVisible: true,
	}
	w.registerCallbacks()
	w.log.Info("glfw window created", "version", glfw.GetVersionString())
	return w, nil
}

func (w *glfwWindow) event(e event.Event) {
	w.mu.Lock()
	w.pending = append(w.pending, e)
	w.mu.Unlock()
}

// logical converts GLFW screen coordinates to logical pixels.
func (w *glfwWindow) logical(x, y float64) (float32, float32) {
	if glfwLogical {
		return float32(x), float32(y)
	}
	sx, sy := w.win.GetContentScale()
	return float32(x) / sx, float32(y) / sy
}

// screen converts logical pixels to GLFW screen coordinates.
func (w *glfwWindow) screen(x, y float32) (float64, float64) {
	if glfwLogical {
		return float64(x), float64(y)
	}
	sx, sy := w.win.GetContentScale()
	return float64(x * sx), float64(y * sy)
}

func (w *glfwWindow) registerCallbacks() {
	w.win.SetCloseCallback(func(win *glfw.Window) {
		// The application decides when to close.
		win.SetShouldClose(false)
		w.event(event.CloseRequested{})
	})
	w.win.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		w.keys.reset()
		if focused {
			w.event(event.FocusGained{})
		} else {
			w.event(event.FocusLost{})
		}
	})
	w.win.SetSizeCallback(func(_ *glfw.Window, width, height int) {
		if width == 0 && height == 0 {
			// Iconified windows report a zero size.
			return
		}
		lw, lh := w.logical(float64(width), float64(height))
		w.event(event.Resize{Width: int(lw + 0.5), Height: int(lh + 0.5)})
	})
	w.win.SetIconifyCallback(func(_ *glfw.Window, iconified bool) {
		if iconified {
			w.event(event.Minimized{})
		}
	})
	w.win.SetMaximizeCallback(func(_ *glfw.Window, maximized bool) {
		if maximized {
			w.event(event.Maximized{})
		}
	})
	w.win.SetContentScaleCallback(func(_ *glfw.Window, x, y float32) {
		w.event(event.ScaleFactorChanged{ScaleX: x, ScaleY: y})
	})
	w.win.SetKeyCallback(func(_ *glfw.Window, k glfw.Key, scancode int, action glfw.Action, _ glfw.ModifierKey) {
		code := uint32(scancode)
		switch action {
		case glfw.Press:
			if !w.keys.press(code) {
				return
			}
		case glfw.Release:
			w.keys.release(code)
		default:
			return
		}
		nk, ok := keycode.GLFW(int32(k))
		w.event(event.KeyboardInput{
			Key:      translateKey(w.log, GLFW, nk, ok, code),
			Scancode: code,
			Action:   event.ActionOf(action == glfw.Press),
		})
	})
	w.win.SetMouseButtonCallback(func(_ *glfw.Window, b glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		w.event(event.MouseButton{
			Button: keycode.GLFWButton(int(b)),
			Action: event.ActionOf(action == glfw.Press),
		})
	})
	w.win.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		w.event(event.MouseWheel{ScrollX: float32(xoff), ScrollY: float32(yoff)})
	})
	w.win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		lx, ly := w.logical(x, y)
		if w.warp.suppress(lx, ly) {
			return
		}
		w.event(event.CursorPosition{X: lx, Y: ly})
	})
}

func (w *glfwWindow) Show() {
	if w.destroyed {
		return
	}
	w.win.Show()
}

func (w *glfwWindow) Focus() {
	if w.destroyed {
		return
	}
	if w.win.GetAttrib(glfw.Visible) == glfw.False {
		w.win.Show()
	}
	w.win.Focus()
}

func (w *glfwWindow) Shutdown() {
	if w.destroyed {
		return
	}
	w.destroyed = true
	w.win.Destroy()
	glfwUsers--
	if glfwUsers == 0 {
		glfw.Terminate()
	}
	w.mu.Lock()
	w.pending = nil
	w.mu.Unlock()
}

func (w *glfwWindow) IsFocused() bool {
	if w.destroyed {
		return false
	}
	return w.win.GetAttrib(glfw.Focused) == glfw.True
}

func (w *glfwWindow) LockCursor(lock bool) {
	if w.destroyed {
		return
	}
	w.locked = lock
	w.applyCursorMode()
}

func (w *glfwWindow) applyCursorMode() {
	switch {
	case w.locked:
		w.win.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
		if glfw.RawMouseMotionSupported() {
			w.win.SetInputMode(glfw.RawMouseMotion, glfw.True)
		}
	case !w.cursorVisible:
		w.win.SetInputMode(glfw.CursorMode, glfw.CursorHidden)
	default:
		w.win.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}
}

func (w *glfwWindow) Poll() []event.Event {
	if w.destroyed {
		return nil
	}
	glfw.PollEvents()
	w.mu.Lock()
	evs := w.pending
	w.pending = nil
	w.mu.Unlock()
	return evs
}

func (w *glfwWindow) Resize(width, height int) {
	if w.destroyed {
		return
	}
	sw, sh := w.screen(float32(width), float32(height))
	w.win.SetSize(int(sw+0.5), int(sh+0.5))
}

func (w *glfwWindow) Size() (int, int) {
	if w.destroyed {
		return 0, 0
	}
	width, height := w.win.GetSize()
	lw, lh := w.logical(float64(width), float64(height))
	return int(lw + 0.5), int(lh + 0.5)
}

func (w *glfwWindow) Clipboard() string {
	if w.destroyed {
		return ""
	}
	return w.win.GetClipboardString()
}

func (w *glfwWindow) SetClipboard(text string) {
	if w.destroyed {
		return
	}
	w.win.SetClipboardString(text)
}

func (w *glfwWindow) ContentScale() (float32, float32) {
	if w.destroyed {
		return 1, 1
	}
	return w.win.GetContentScale()
}

func (w *glfwWindow) CursorPosition() (float32, float32) {
	if w.destroyed {
		return 0, 0
	}
	x, y := w.logical(w.win.GetCursorPos())
	width, height := w.Size()
	if !w.locked && (x < 0 || y < 0 || x >= float32(width) || y >= float32(height)) {
		return 0, 0
	}
	return x, y
}

func (w *glfwWindow) SetTitle(title string) {
	if w.destroyed {
		return
	}
	w.win.SetTitle(title)
}

func (w *glfwWindow) SetResizable(resizable bool) {
	if w.destroyed {
		return
	}
	v := glfw.False
	if resizable {
		v = glfw.True
	}
	w.win.SetAttrib(glfw.Resizable, v)
}

func (w *glfwWindow) SetCursorVisible(visible bool) {
	if w.destroyed {
		return
	}
	w.cursorVisible = visible
	w.applyCursorMode()
}

func (w *glfwWindow) SetCursorPosition(x, y float32) {
	if w.destroyed {
		return
	}
	w.warp.set(x, y)
	w.win.SetCursorPos(w.screen(x, y))
}

func (w *glfwWindow) SetIcon(img image.Image) {
	if w.destroyed {
		return
	}
	icons := scaleIcon(img, iconSizes...)
	imgs := make([]image.Image, len(icons))
	for i, ic := range icons {
		imgs[i] = ic
	}
	w.win.SetIcon(imgs)
}

func (w *glfwWindow) WindowHandle() (WindowHandle, error) {
	if w.destroyed {
		return nil, ErrClosed
	}
	return GLFWWindowHandle{Window: uintptr(unsafe.Pointer(w.win.Handle()))}, nil
}

func (w *glfwWindow) DisplayHandle() (DisplayHandle, error) {
	if w.destroyed {
		return nil, ErrClosed
	}
	return GLFWDisplayHandle{}, nil
}
