// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"errors"
	"log/slog"
	"sync"
	"unsafe"

	syscall "golang.org/x/sys/windows"

	"pregen.dev/internal/keycode"
	"pregen.dev/internal/windows"
	"pregen.dev/io/event"
	"pregen.dev/io/pointer"
)

type win32Window struct {
	hwnd syscall.Handle
	log  *slog.Logger

	pending []event.Event
	keys    keyTracker
	warp    warpFilter

	dpi           int
	visible       bool
	focused       bool
	destroyed     bool
	locked        bool
	cursorVisible bool
	resizable     bool
}

// winMap maps win32 HWNDs to *win32Windows.
var winMap sync.Map

var resources struct {
	once sync.Once
	err  error
	// handle is the module handle from GetModuleHandle.
	handle syscall.Handle
	// class is the window class from RegisterClassEx.
	class uint16
	// cursor is the arrow cursor resource.
	cursor syscall.Handle
}

func init() {
	registerDriver(Win32, newWin32Window)
}

// initResources initializes the resources global.
func initResources() error {
	windows.SetProcessDPIAware()
	hInst, err := windows.GetModuleHandle()
	if err != nil {
		return win32Error("GetModuleHandle", err)
	}
	resources.handle = hInst
	c, err := windows.LoadCursor(windows.IDC_ARROW)
	if err != nil {
		return win32Error("LoadCursor", err)
	}
	resources.cursor = c
	wcls := windows.WndClassEx{
		CbSize:        uint32(unsafe.Sizeof(windows.WndClassEx{})),
		Style:         windows.CS_HREDRAW | windows.CS_VREDRAW | windows.CS_OWNDC,
		LpfnWndProc:   syscall.NewCallback(windowProc),
		HInstance:     hInst,
		HCursor:       c,
		LpszClassName: syscall.StringToUTF16Ptr("PregenWindow"),
	}
	cls, err := windows.RegisterClassEx(&wcls)
	if err != nil {
		return win32Error("RegisterClassEx", err)
	}
	resources.class = cls
	return nil
}

// newWin32Window creates a hidden window. The calling goroutine must stay
// locked to its OS thread for the lifetime of the window, since Win32
// delivers messages to the creating thread.
func newWin32Window(opts *nativeOptions) (NativeWindow, error) {
	resources.once.Do(func() {
		resources.err = initResources()
	})
	if resources.err != nil {
		return nil, resources.err
	}
	dwStyle := uint32(windows.WS_OVERLAPPEDWINDOW)
	dwExStyle := uint32(windows.WS_EX_APPWINDOW | windows.WS_EX_WINDOWEDGE)
	hwnd, err := windows.CreateWindowEx(dwExStyle,
		resources.class,
		opts.Title,
		dwStyle|windows.WS_CLIPSIBLINGS|windows.WS_CLIPCHILDREN,
		windows.CW_USEDEFAULT, windows.CW_USEDEFAULT,
		windows.CW_USEDEFAULT, windows.CW_USEDEFAULT,
		0,
		0,
		resources.handle,
		0)
	if err != nil {
		return nil, win32Error("CreateWindowEx", err)
	}
	w := &win32Window{
		hwnd:          hwnd,
		log:           opts.Logger,
		cursorVisible: true,
		resizable:     true,
	}
	w.dpi = windows.GetWindowDPI(hwnd)
	winMap.Store(hwnd, w)
	w.Resize(opts.Width, opts.Height)
	w.log.Info("win32 window created", "hwnd", uintptr(hwnd), "dpi", w.dpi)
	return w, nil
}

func win32Error(op string, err error) error {
	var errno syscall.Errno
	code := 0
	if errors.As(err, &errno) {
		code = int(errno)
	}
	return platformError(Win32, op, code, err)
}

func windowProc(hwnd syscall.Handle, msg uint32, wParam, lParam uintptr) uintptr {
	win, exists := winMap.Load(hwnd)
	if !exists {
		return windows.DefWindowProc(hwnd, msg, wParam, lParam)
	}

	w := win.(*win32Window)

	switch msg {
	case windows.WM_CLOSE:
		// The application decides whether to close.
		w.event(event.CloseRequested{})
		return 0
	case windows.WM_DESTROY:
		winMap.Delete(hwnd)
		if !w.destroyed {
			w.event(event.Destroyed{})
		}
	case windows.WM_SETFOCUS:
		w.focused = true
		w.keys.reset()
		if w.locked {
			w.clipCursor()
		}
		w.event(event.FocusGained{})
	case windows.WM_KILLFOCUS:
		w.focused = false
		w.keys.reset()
		if w.locked {
			windows.ClipCursor(nil)
		}
		w.event(event.FocusLost{})
	case windows.WM_SIZE:
		switch wParam {
		case windows.SIZE_MINIMIZED:
			w.event(event.Minimized{})
			return 0
		case windows.SIZE_MAXIMIZED:
			w.event(event.Maximized{})
		}
		width, height := coordsFromlParam(lParam)
		w.event(event.Resize{Width: w.logical(width), Height: w.logical(height)})
		if w.locked && w.focused {
			w.clipCursor()
		}
	case windows.WM_DPICHANGED:
		w.dpi = int(wParam & 0xffff)
		s := w.scale()
		w.event(event.ScaleFactorChanged{ScaleX: s, ScaleY: s})
		// Apply the window rectangle suggested for the new DPI.
		r := (*windows.Rect)(unsafe.Pointer(lParam))
		windows.SetWindowPos(w.hwnd, 0, r.Left, r.Top, r.Right-r.Left, r.Bottom-r.Top,
			windows.SWP_NOZORDER|windows.SWP_NOACTIVATE)
		return 0
	case windows.WM_KEYDOWN, windows.WM_SYSKEYDOWN:
		w.keyEvent(wParam, lParam, true)
		if msg == windows.WM_SYSKEYDOWN {
			// Let the system handle Alt+F4 and the window menu.
			break
		}
		return 0
	case windows.WM_KEYUP, windows.WM_SYSKEYUP:
		w.keyEvent(wParam, lParam, false)
		if msg == windows.WM_SYSKEYUP {
			break
		}
		return 0
	case windows.WM_LBUTTONDOWN:
		w.event(event.MouseButton{Button: pointer.Left, Action: event.Pressed})
	case windows.WM_LBUTTONUP:
		w.event(event.MouseButton{Button: pointer.Left, Action: event.Released})
	case windows.WM_RBUTTONDOWN:
		w.event(event.MouseButton{Button: pointer.Right, Action: event.Pressed})
	case windows.WM_RBUTTONUP:
		w.event(event.MouseButton{Button: pointer.Right, Action: event.Released})
	case windows.WM_MBUTTONDOWN:
		w.event(event.MouseButton{Button: pointer.Middle, Action: event.Pressed})
	case windows.WM_MBUTTONUP:
		w.event(event.MouseButton{Button: pointer.Middle, Action: event.Released})
	case windows.WM_XBUTTONDOWN, windows.WM_XBUTTONUP:
		btn := pointer.Other(uint32(wParam>>16) & 0xffff)
		switch (wParam >> 16) & 0xffff {
		case windows.XBUTTON1:
			btn = pointer.Other(4)
		case windows.XBUTTON2:
			btn = pointer.Other(5)
		}
		w.event(event.MouseButton{Button: btn, Action: event.ActionOf(msg == windows.WM_XBUTTONDOWN)})
		return 1
	case windows.WM_MOUSEMOVE:
		x, y := coordsFromlParam(lParam)
		lx, ly := float32(x)/w.scale(), float32(y)/w.scale()
		if w.warp.suppress(lx, ly) {
			return 0
		}
		w.event(event.CursorPosition{X: lx, Y: ly})
	case windows.WM_MOUSEWHEEL:
		dist := float32(int16(wParam>>16)) / windows.WHEEL_DELTA
		w.event(event.MouseWheel{ScrollY: dist})
		return 0
	case windows.WM_MOUSEHWHEEL:
		dist := float32(int16(wParam>>16)) / windows.WHEEL_DELTA
		w.event(event.MouseWheel{ScrollX: dist})
		return 0
	case windows.WM_SETCURSOR:
		if lParam&0xffff == windows.HTCLIENT && w.cursorHidden() {
			windows.SetCursor(0)
			return 1
		}
	}
	return windows.DefWindowProc(hwnd, msg, wParam, lParam)
}

func (w *win32Window) event(e event.Event) {
	w.pending = append(w.pending, e)
}

func (w *win32Window) keyEvent(wParam, lParam uintptr, press bool) {
	flags := uint32(lParam>>16) & 0xffff
	if press && flags&windows.KF_REPEAT != 0 {
		return
	}
	scancode := flags & (0xff | windows.KF_EXTENDED)
	vk := resolveVK(uint32(wParam), flags)
	if press {
		if !w.keys.press(vk) {
			return
		}
	} else {
		w.keys.release(vk)
	}
	k, ok := keycode.Win32(vk)
	w.event(event.KeyboardInput{
		Key:      translateKey(w.log, Win32, k, ok, vk),
		Scancode: scancode,
		Action:   event.ActionOf(press),
	})
}

// resolveVK maps the generic modifier virtual keys to their left and right
// variants.
func resolveVK(vk, flags uint32) uint32 {
	extended := flags&windows.KF_EXTENDED != 0
	switch vk {
	case windows.VK_SHIFT:
		return windows.MapVirtualKey(flags&0xff, windows.MAPVK_VSC_TO_VK_EX)
	case windows.VK_CONTROL:
		if extended {
			return windows.VK_RCONTROL
		}
		return windows.VK_LCONTROL
	case windows.VK_MENU:
		if extended {
			return windows.VK_RMENU
		}
		return windows.VK_LMENU
	}
	return vk
}

func coordsFromlParam(lParam uintptr) (int, int) {
	x := int(int16(lParam & 0xffff))
	y := int(int16((lParam >> 16) & 0xffff))
	return x, y
}

func (w *win32Window) scale() float32 {
	return float32(w.dpi) / windows.USER_DEFAULT_SCREEN_DPI
}

func (w *win32Window) logical(px int) int {
	return int(float32(px)/w.scale() + .5)
}

func (w *win32Window) physical(v float32) int32 {
	return int32(v*w.scale() + .5)
}

func (w *win32Window) cursorHidden() bool {
	return w.locked || !w.cursorVisible
}

// clipCursor confines the cursor to the client area.
func (w *win32Window) clipCursor() {
	r := windows.GetClientRect(w.hwnd)
	tl := windows.Point{X: r.Left, Y: r.Top}
	br := windows.Point{X: r.Right, Y: r.Bottom}
	windows.ClientToScreen(w.hwnd, &tl)
	windows.ClientToScreen(w.hwnd, &br)
	clip := windows.Rect{Left: tl.X, Top: tl.Y, Right: br.X, Bottom: br.Y}
	if err := windows.ClipCursor(&clip); err != nil {
		w.log.Warn("win32: cursor lock failed", "error", err)
	}
}

func (w *win32Window) style() uint32 {
	style := uint32(windows.WS_OVERLAPPEDWINDOW)
	if !w.resizable {
		style &^= windows.WS_THICKFRAME | windows.WS_MAXIMIZEBOX
	}
	return style
}

func (w *win32Window) Show() {
	if w.destroyed || w.visible {
		return
	}
	w.visible = true
	windows.ShowWindow(w.hwnd, windows.SW_SHOWNORMAL)
	windows.SetForegroundWindow(w.hwnd)
	windows.SetFocus(w.hwnd)
}

func (w *win32Window) Focus() {
	if w.destroyed {
		return
	}
	if !w.visible {
		w.Show()
	}
	windows.BringWindowToTop(w.hwnd)
	if !windows.SetForegroundWindow(w.hwnd) {
		// Windows restricts focus stealing; the taskbar entry flashes instead.
		w.log.Warn("win32: focus request denied by the system")
	}
	windows.SetFocus(w.hwnd)
}

func (w *win32Window) Shutdown() {
	if w.destroyed {
		return
	}
	w.destroyed = true
	if w.locked {
		windows.ClipCursor(nil)
	}
	windows.DestroyWindow(w.hwnd)
	winMap.Delete(w.hwnd)
	w.pending = nil
}

func (w *win32Window) IsFocused() bool {
	return w.focused
}

func (w *win32Window) LockCursor(lock bool) {
	if w.destroyed {
		return
	}
	w.locked = lock
	if lock {
		if w.focused {
			w.clipCursor()
		}
		windows.SetCursor(0)
		return
	}
	windows.ClipCursor(nil)
	if w.cursorVisible {
		windows.SetCursor(resources.cursor)
	}
}

// Adapted from https://blogs.msdn.microsoft.com/oldnewthing/20060126-00/?p=32513/
func (w *win32Window) Poll() []event.Event {
	if w.destroyed {
		return nil
	}
	// Drain thread messages too; filtering on the HWND would drop them.
	for {
		var msg windows.Msg
		if !windows.PeekMessage(&msg, 0, 0, 0, windows.PM_REMOVE) {
			break
		}
		windows.TranslateMessage(&msg)
		windows.DispatchMessage(&msg)
	}
	evs := w.pending
	w.pending = nil
	return evs
}

func (w *win32Window) Resize(width, height int) {
	if w.destroyed {
		return
	}
	wr := windows.GetWindowRect(w.hwnd)
	r := windows.Rect{
		Left:   wr.Left,
		Top:    wr.Top,
		Right:  wr.Left + w.physical(float32(width)),
		Bottom: wr.Top + w.physical(float32(height)),
	}
	// Convert from client size to window size.
	windows.AdjustWindowRectEx(&r, w.style(), 0, windows.WS_EX_APPWINDOW|windows.WS_EX_WINDOWEDGE)
	windows.SetWindowPos(w.hwnd, 0, 0, 0, r.Right-r.Left, r.Bottom-r.Top,
		windows.SWP_NOMOVE|windows.SWP_NOZORDER|windows.SWP_NOACTIVATE)
}

func (w *win32Window) Size() (int, int) {
	r := windows.GetClientRect(w.hwnd)
	return w.logical(int(r.Right - r.Left)), w.logical(int(r.Bottom - r.Top))
}

func (w *win32Window) Clipboard() string {
	text, err := w.readClipboard()
	if err != nil {
		w.log.Warn("win32: clipboard read failed", "error", err)
		return ""
	}
	return text
}

func (w *win32Window) readClipboard() (string, error) {
	if err := windows.OpenClipboard(w.hwnd); err != nil {
		return "", err
	}
	defer windows.CloseClipboard()
	mem, err := windows.GetClipboardData(windows.CF_UNICODETEXT)
	if err != nil {
		return "", err
	}
	ptr, err := windows.GlobalLock(mem)
	if err != nil {
		return "", err
	}
	defer windows.GlobalUnlock(mem)
	return windows.UTF16Text(ptr), nil
}

func (w *win32Window) SetClipboard(text string) {
	if err := w.writeClipboard(text); err != nil {
		w.log.Warn("win32: clipboard write failed", "error", err)
	}
}

func (w *win32Window) writeClipboard(s string) error {
	if err := windows.OpenClipboard(w.hwnd); err != nil {
		return err
	}
	defer windows.CloseClipboard()
	if err := windows.EmptyClipboard(); err != nil {
		return err
	}
	u16, err := syscall.UTF16FromString(s)
	if err != nil {
		return err
	}
	n := len(u16) * int(unsafe.Sizeof(u16[0]))
	mem, err := windows.GlobalAlloc(n)
	if err != nil {
		return err
	}
	ptr, err := windows.GlobalLock(mem)
	if err != nil {
		windows.GlobalFree(mem)
		return err
	}
	copy(unsafe.Slice((*uint16)(ptr), len(u16)), u16)
	windows.GlobalUnlock(mem)
	if err := windows.SetClipboardData(windows.CF_UNICODETEXT, mem); err != nil {
		windows.GlobalFree(mem)
		return err
	}
	return nil
}

func (w *win32Window) ContentScale() (float32, float32) {
	s := w.scale()
	return s, s
}

func (w *win32Window) CursorPosition() (float32, float32) {
	p := windows.GetCursorPos()
	windows.ScreenToClient(w.hwnd, &p)
	r := windows.GetClientRect(w.hwnd)
	if p.X < r.Left || p.Y < r.Top || p.X >= r.Right || p.Y >= r.Bottom {
		return 0, 0
	}
	return float32(p.X) / w.scale(), float32(p.Y) / w.scale()
}

func (w *win32Window) SetTitle(title string) {
	if w.destroyed {
		return
	}
	windows.SetWindowText(w.hwnd, title)
}

func (w *win32Window) SetResizable(resizable bool) {
	if w.destroyed {
		return
	}
	cw, ch := w.Size()
	w.resizable = resizable
	style := windows.GetWindowLong(w.hwnd) &^ uintptr(windows.WS_OVERLAPPEDWINDOW)
	windows.SetWindowLong(w.hwnd, windows.GWL_STYLE, style|uintptr(w.style()))
	windows.SetWindowPos(w.hwnd, 0, 0, 0, 0, 0,
		windows.SWP_NOMOVE|windows.SWP_NOZORDER|windows.SWP_NOACTIVATE|windows.SWP_FRAMECHANGED)
	// The frame width changed; keep the client size.
	w.Resize(cw, ch)
}

func (w *win32Window) SetCursorVisible(visible bool) {
	w.cursorVisible = visible
	if w.destroyed || w.locked {
		return
	}
	if visible {
		windows.SetCursor(resources.cursor)
	} else {
		windows.SetCursor(0)
	}
}

func (w *win32Window) SetCursorPosition(x, y float32) {
	if w.destroyed {
		return
	}
	p := windows.Point{X: w.physical(x), Y: w.physical(y)}
	windows.ClientToScreen(w.hwnd, &p)
	w.warp.set(x, y)
	if err := windows.SetCursorPos(p.X, p.Y); err != nil {
		w.warp.clear()
		w.log.Warn("win32: cursor move failed", "error", err)
	}
}

func (w *win32Window) WindowHandle() (WindowHandle, error) {
	if w.destroyed {
		return nil, ErrClosed
	}
	return Win32WindowHandle{HWND: uintptr(w.hwnd), HInstance: uintptr(resources.handle)}, nil
}

func (w *win32Window) DisplayHandle() (DisplayHandle, error) {
	return WindowsDisplayHandle{}, nil
}
