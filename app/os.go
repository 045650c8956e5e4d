// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"image"
	"log/slog"

	"pregen.dev/io/event"
)

// NativeWindow is the interface for the platform implementation of a
// window. A NativeWindow is exclusively owned by one Window and is never
// used from more than one goroutine.
type NativeWindow interface {
	// Show makes the window visible and requests focus where the platform
	// allows it. It is a no-op for visible windows.
	Show()
	// Focus forces input focus, showing the window if hidden. Platforms
	// that cannot force focus make a best-effort request.
	Focus()
	// Shutdown releases all native resources. Calling it again is a no-op.
	Shutdown()
	// IsFocused reports the last delivered focus state. Platforms without
	// focus report true.
	IsFocused() bool
	// LockCursor hides the cursor and confines it to the client area.
	LockCursor(lock bool)

	// Poll drains the currently buffered platform events without blocking.
	// Programmatic cursor moves produce no CursorPosition events and held
	// keys produce a single Pressed event.
	Poll() []event.Event

	// Resize requests a logical client area size.
	Resize(width, height int)
	// Size returns the logical client area size.
	Size() (width, height int)

	Clipboard() string
	SetClipboard(text string)

	// ContentScale returns the physical pixels per logical pixel.
	ContentScale() (x, y float32)
	// CursorPosition returns the logical cursor position relative to the
	// client area, or (0, 0) if the cursor is outside it.
	CursorPosition() (x, y float32)

	SetTitle(title string)
	SetResizable(resizable bool)
	SetCursorVisible(visible bool)
	SetCursorPosition(x, y float32)

	// WindowHandle and DisplayHandle expose the native handles a GPU
	// surface binds to.
	WindowHandle() (WindowHandle, error)
	DisplayHandle() (DisplayHandle, error)
}

// iconSetter is implemented by backends that support window icons.
type iconSetter interface {
	SetIcon(img image.Image)
}

// nativeOptions carries the construction parameters of a backend.
type nativeOptions struct {
	Title  string
	Width  int
	Height int
	Logger *slog.Logger
}

// WindowHandle is a native window handle. The concrete types are
// X11WindowHandle, Win32WindowHandle, WebCanvasHandle and
// GLFWWindowHandle.
type WindowHandle interface {
	implementsWindowHandle()
}

// DisplayHandle is a native display connection handle. The concrete
// types are X11DisplayHandle, WindowsDisplayHandle, WebDisplayHandle and
// GLFWDisplayHandle.
type DisplayHandle interface {
	implementsDisplayHandle()
}

// X11WindowHandle identifies an X11 window.
type X11WindowHandle struct {
	Window uint32
}

// X11DisplayHandle identifies the X server connection. The backend speaks
// the X protocol directly, so only the display name and screen are
// available.
type X11DisplayHandle struct {
	Display string
	Screen  int
}

// Win32WindowHandle identifies a Win32 window.
type Win32WindowHandle struct {
	HWND      uintptr
	HInstance uintptr
}

// WindowsDisplayHandle is the Windows display handle, which carries no
// data.
type WindowsDisplayHandle struct{}

// WebCanvasHandle identifies the canvas element by its id attribute.
type WebCanvasHandle struct {
	ID string
}

// WebDisplayHandle is the browser display handle, which carries no data.
type WebDisplayHandle struct{}

// GLFWWindowHandle wraps a GLFWwindow pointer.
type GLFWWindowHandle struct {
	Window uintptr
}

// GLFWDisplayHandle is the GLFW display handle, which carries no data.
type GLFWDisplayHandle struct{}

func (X11WindowHandle) implementsWindowHandle()   {}
func (Win32WindowHandle) implementsWindowHandle() {}
func (WebCanvasHandle) implementsWindowHandle()   {}
func (GLFWWindowHandle) implementsWindowHandle()  {}

func (X11DisplayHandle) implementsDisplayHandle()     {}
func (WindowsDisplayHandle) implementsDisplayHandle() {}
func (WebDisplayHandle) implementsDisplayHandle()     {}
func (GLFWDisplayHandle) implementsDisplayHandle()    {}
