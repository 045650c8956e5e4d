// SPDX-License-Identifier: Unlicense OR MIT

//go:build windows

// Package windows contains the Win32 API bindings used by the window
// backend.
package windows

import (
	"fmt"
	"unsafe"

	syscall "golang.org/x/sys/windows"
)

type Rect struct {
	Left, Top, Right, Bottom int32
}

type WndClassEx struct {
	CbSize        uint32
	Style         uint32
	LpfnWndProc   uintptr
	CnClsExtra    int32
	CbWndExtra    int32
	HInstance     syscall.Handle
	HIcon         syscall.Handle
	HCursor       syscall.Handle
	HbrBackground syscall.Handle
	LpszMenuName  *uint16
	LpszClassName *uint16
	HIconSm       syscall.Handle
}

type Msg struct {
	Hwnd     syscall.Handle
	Message  uint32
	WParam   uintptr
	LParam   uintptr
	Time     uint32
	Pt       Point
	LPrivate uint32
}

type Point struct {
	X, Y int32
}

const (
	CF_UNICODETEXT = 13

	CS_HREDRAW = 0x0002
	CS_VREDRAW = 0x0001
	CS_OWNDC   = 0x0020

	CW_USEDEFAULT = -2147483648

	GHND = 0x0042

	GWL_STYLE = ^(uintptr(16) - 1) // -16

	HTCLIENT = 1

	IDC_ARROW = 32512

	LOGPIXELSX = 88

	MAPVK_VSC_TO_VK_EX = 3

	PM_REMOVE = 0x0001

	SIZE_MAXIMIZED = 2
	SIZE_MINIMIZED = 1
	SIZE_RESTORED  = 0

	SW_SHOW       = 5
	SW_SHOWNORMAL = 1

	SWP_FRAMECHANGED  = 0x0020
	SWP_NOACTIVATE    = 0x0010
	SWP_NOMOVE        = 0x0002
	SWP_NOOWNERZORDER = 0x0200
	SWP_NOZORDER      = 0x0004

	USER_DEFAULT_SCREEN_DPI = 96

	VK_SHIFT    = 0x10
	VK_CONTROL  = 0x11
	VK_MENU     = 0x12
	VK_LSHIFT   = 0xA0
	VK_RSHIFT   = 0xA1
	VK_LCONTROL = 0xA2
	VK_RCONTROL = 0xA3
	VK_LMENU    = 0xA4
	VK_RMENU    = 0xA5

	WHEEL_DELTA = 120

	WM_CLOSE       = 0x0010
	WM_DESTROY     = 0x0002
	WM_DPICHANGED  = 0x02E0
	WM_KEYDOWN     = 0x0100
	WM_KEYUP       = 0x0101
	WM_KILLFOCUS   = 0x0008
	WM_LBUTTONDOWN = 0x0201
	WM_LBUTTONUP   = 0x0202
	WM_MBUTTONDOWN = 0x0207
	WM_MBUTTONUP   = 0x0208
	WM_MOUSEHWHEEL = 0x020E
	WM_MOUSEMOVE   = 0x0200
	WM_MOUSEWHEEL  = 0x020A
	WM_RBUTTONDOWN = 0x0204
	WM_RBUTTONUP   = 0x0205
	WM_SETCURSOR   = 0x0020
	WM_SETFOCUS    = 0x0007
	WM_SIZE        = 0x0005
	WM_SYSKEYDOWN  = 0x0104
	WM_SYSKEYUP    = 0x0105
	WM_XBUTTONDOWN = 0x020B
	WM_XBUTTONUP   = 0x020C

	WS_CAPTION          = 0x00C00000
	WS_CLIPCHILDREN     = 0x00010000
	WS_CLIPSIBLINGS     = 0x04000000
	WS_MAXIMIZEBOX      = 0x00010000
	WS_MINIMIZEBOX      = 0x00020000
	WS_OVERLAPPED       = 0x00000000
	WS_OVERLAPPEDWINDOW = WS_OVERLAPPED | WS_CAPTION | WS_SYSMENU | WS_THICKFRAME |
		WS_MINIMIZEBOX | WS_MAXIMIZEBOX
	WS_SYSMENU    = 0x00080000
	WS_THICKFRAME = 0x00040000

	WS_EX_APPWINDOW  = 0x00040000
	WS_EX_WINDOWEDGE = 0x00000100

	XBUTTON1 = 0x0001
	XBUTTON2 = 0x0002

	// Flags in the high word of a key message lParam.
	KF_EXTENDED = 0x0100
	KF_REPEAT   = 0x4000

	// DPI_AWARENESS_CONTEXT_PER_MONITOR_AWARE_V2
	DPI_AWARENESS_CONTEXT_V2 = ^uintptr(4 - 1) // -4
)

var (
	kernel32          = syscall.NewLazySystemDLL("kernel32.dll")
	_GetModuleHandleW = kernel32.NewProc("GetModuleHandleW")
	_GlobalAlloc      = kernel32.NewProc("GlobalAlloc")
	_GlobalFree       = kernel32.NewProc("GlobalFree")
	_GlobalLock       = kernel32.NewProc("GlobalLock")
	_GlobalUnlock     = kernel32.NewProc("GlobalUnlock")

	user32                         = syscall.NewLazySystemDLL("user32.dll")
	_AdjustWindowRectEx            = user32.NewProc("AdjustWindowRectEx")
	_ClientToScreen                = user32.NewProc("ClientToScreen")
	_ClipCursor                    = user32.NewProc("ClipCursor")
	_CloseClipboard                = user32.NewProc("CloseClipboard")
	_CreateWindowEx                = user32.NewProc("CreateWindowExW")
	_DefWindowProc                 = user32.NewProc("DefWindowProcW")
	_DestroyWindow                 = user32.NewProc("DestroyWindow")
	_DispatchMessage               = user32.NewProc("DispatchMessageW")
	_EmptyClipboard                = user32.NewProc("EmptyClipboard")
	_GetClientRect                 = user32.NewProc("GetClientRect")
	_GetClipboardData              = user32.NewProc("GetClipboardData")
	_GetCursorPos                  = user32.NewProc("GetCursorPos")
	_GetDC                         = user32.NewProc("GetDC")
	_GetDpiForWindow               = user32.NewProc("GetDpiForWindow")
	_GetForegroundWindow           = user32.NewProc("GetForegroundWindow")
	_GetWindowLong                 = user32.NewProc("GetWindowLongPtrW")
	_GetWindowRect                 = user32.NewProc("GetWindowRect")
	_LoadCursor                    = user32.NewProc("LoadCursorW")
	_MapVirtualKey                 = user32.NewProc("MapVirtualKeyW")
	_OpenClipboard                 = user32.NewProc("OpenClipboard")
	_PeekMessage                   = user32.NewProc("PeekMessageW")
	_RegisterClassExW              = user32.NewProc("RegisterClassExW")
	_ReleaseDC                     = user32.NewProc("ReleaseDC")
	_ScreenToClient                = user32.NewProc("ScreenToClient")
	_SetClipboardData              = user32.NewProc("SetClipboardData")
	_SetCursor                     = user32.NewProc("SetCursor")
	_SetCursorPos                  = user32.NewProc("SetCursorPos")
	_SetFocus                      = user32.NewProc("SetFocus")
	_SetForegroundWindow           = user32.NewProc("SetForegroundWindow")
	_SetProcessDPIAware            = user32.NewProc("SetProcessDPIAware")
	_SetProcessDpiAwarenessContext = user32.NewProc("SetProcessDpiAwarenessContext")
	_SetWindowLong                 = user32.NewProc("SetWindowLongPtrW")
	_SetWindowPos                  = user32.NewProc("SetWindowPos")
	_SetWindowText                 = user32.NewProc("SetWindowTextW")
	_ShowWindow                    = user32.NewProc("ShowWindow")
	_TranslateMessage              = user32.NewProc("TranslateMessage")
	_UnregisterClass               = user32.NewProc("UnregisterClassW")
	_UpdateWindow                  = user32.NewProc("UpdateWindow")
	_BringWindowToTop              = user32.NewProc("BringWindowToTop")

	gdi32          = syscall.NewLazySystemDLL("gdi32")
	_GetDeviceCaps = gdi32.NewProc("GetDeviceCaps")
)

func AdjustWindowRectEx(r *Rect, dwStyle uint32, bMenu int, dwExStyle uint32) {
	_AdjustWindowRectEx.Call(uintptr(unsafe.Pointer(r)), uintptr(dwStyle), uintptr(bMenu), uintptr(dwExStyle))
}

func BringWindowToTop(hwnd syscall.Handle) {
	_BringWindowToTop.Call(uintptr(hwnd))
}

func ClientToScreen(hwnd syscall.Handle, p *Point) {
	_ClientToScreen.Call(uintptr(hwnd), uintptr(unsafe.Pointer(p)))
}

// ClipCursor confines the cursor to r in screen coordinates. A nil r
// releases the cursor.
func ClipCursor(r *Rect) error {
	res, _, err := _ClipCursor.Call(uintptr(unsafe.Pointer(r)))
	if res == 0 {
		return fmt.Errorf("ClipCursor: %w", err)
	}
	return nil
}

func CloseClipboard() error {
	r, _, err := _CloseClipboard.Call()
	if r == 0 {
		return fmt.Errorf("CloseClipboard: %w", err)
	}
	return nil
}

func CreateWindowEx(dwExStyle uint32, lpClassName uint16, lpWindowName string, dwStyle uint32, x, y, w, h int32, hWndParent, hMenu, hInstance syscall.Handle, lpParam uintptr) (syscall.Handle, error) {
	wname := syscall.StringToUTF16Ptr(lpWindowName)
	hwnd, _, err := _CreateWindowEx.Call(
		uintptr(dwExStyle),
		uintptr(lpClassName),
		uintptr(unsafe.Pointer(wname)),
		uintptr(dwStyle),
		uintptr(x), uintptr(y),
		uintptr(w), uintptr(h),
		uintptr(hWndParent),
		uintptr(hMenu),
		uintptr(hInstance),
		uintptr(lpParam))
	if hwnd == 0 {
		return 0, fmt.Errorf("CreateWindowEx failed: %w", err)
	}
	return syscall.Handle(hwnd), nil
}

func DefWindowProc(hwnd syscall.Handle, msg uint32, wparam, lparam uintptr) uintptr {
	r, _, _ := _DefWindowProc.Call(uintptr(hwnd), uintptr(msg), wparam, lparam)
	return r
}

func DestroyWindow(hwnd syscall.Handle) {
	_DestroyWindow.Call(uintptr(hwnd))
}

func DispatchMessage(m *Msg) {
	_DispatchMessage.Call(uintptr(unsafe.Pointer(m)))
}

func EmptyClipboard() error {
	r, _, err := _EmptyClipboard.Call()
	if r == 0 {
		return fmt.Errorf("EmptyClipboard: %w", err)
	}
	return nil
}

func GetClientRect(hwnd syscall.Handle) Rect {
	var r Rect
	_GetClientRect.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&r)))
	return r
}

func GetClipboardData(format uint32) (syscall.Handle, error) {
	r, _, err := _GetClipboardData.Call(uintptr(format))
	if r == 0 {
		return 0, fmt.Errorf("GetClipboardData: %w", err)
	}
	return syscall.Handle(r), nil
}

func GetCursorPos() Point {
	var p Point
	_GetCursorPos.Call(uintptr(unsafe.Pointer(&p)))
	return p
}

func GetDC(hwnd syscall.Handle) (syscall.Handle, error) {
	hdc, _, err := _GetDC.Call(uintptr(hwnd))
	if hdc == 0 {
		return 0, fmt.Errorf("GetDC failed: %w", err)
	}
	return syscall.Handle(hdc), nil
}

func GetDeviceCaps(hdc syscall.Handle, index int32) int {
	c, _, _ := _GetDeviceCaps.Call(uintptr(hdc), uintptr(index))
	return int(c)
}

// GetWindowDPI returns the DPI of the monitor displaying hwnd. Systems
// without per-monitor DPI report the system DPI.
func GetWindowDPI(hwnd syscall.Handle) int {
	if err := _GetDpiForWindow.Find(); err == nil {
		dpi, _, _ := _GetDpiForWindow.Call(uintptr(hwnd))
		if dpi != 0 {
			return int(dpi)
		}
	}
	return GetSystemDPI()
}

// GetSystemDPI returns the DPI of the primary screen.
func GetSystemDPI() int {
	hdc, err := GetDC(0)
	if err != nil {
		return USER_DEFAULT_SCREEN_DPI
	}
	defer ReleaseDC(hdc)
	return GetDeviceCaps(hdc, LOGPIXELSX)
}

func GetForegroundWindow() syscall.Handle {
	r, _, _ := _GetForegroundWindow.Call()
	return syscall.Handle(r)
}

func GetModuleHandle() (syscall.Handle, error) {
	h, _, err := _GetModuleHandleW.Call(uintptr(0))
	if h == 0 {
		return 0, fmt.Errorf("GetModuleHandleW failed: %w", err)
	}
	return syscall.Handle(h), nil
}

func GetWindowLong(hwnd syscall.Handle) uintptr {
	style, _, _ := _GetWindowLong.Call(uintptr(hwnd), GWL_STYLE)
	return style
}

func GetWindowRect(hwnd syscall.Handle) Rect {
	var r Rect
	_GetWindowRect.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&r)))
	return r
}

func GlobalAlloc(size int) (syscall.Handle, error) {
	r, _, err := _GlobalAlloc.Call(GHND, uintptr(size))
	if r == 0 {
		return 0, fmt.Errorf("GlobalAlloc: %w", err)
	}
	return syscall.Handle(r), nil
}

func GlobalFree(h syscall.Handle) {
	_GlobalFree.Call(uintptr(h))
}

func GlobalLock(h syscall.Handle) (unsafe.Pointer, error) {
	r, _, err := _GlobalLock.Call(uintptr(h))
	if r == 0 {
		return nil, fmt.Errorf("GlobalLock: %w", err)
	}
	return unsafe.Pointer(r), nil
}

func GlobalUnlock(h syscall.Handle) {
	_GlobalUnlock.Call(uintptr(h))
}

func LoadCursor(curID uint16) (syscall.Handle, error) {
	h, _, err := _LoadCursor.Call(0, uintptr(curID))
	if h == 0 {
		return 0, fmt.Errorf("LoadCursorW failed: %w", err)
	}
	return syscall.Handle(h), nil
}

func MapVirtualKey(code, mapType uint32) uint32 {
	r, _, _ := _MapVirtualKey.Call(uintptr(code), uintptr(mapType))
	return uint32(r)
}

func OpenClipboard(hwnd syscall.Handle) error {
	r, _, err := _OpenClipboard.Call(uintptr(hwnd))
	if r == 0 {
		return fmt.Errorf("OpenClipboard: %w", err)
	}
	return nil
}

func PeekMessage(m *Msg, hwnd syscall.Handle, wMsgFilterMin, wMsgFilterMax, wRemoveMsg uint32) bool {
	r, _, _ := _PeekMessage.Call(uintptr(unsafe.Pointer(m)), uintptr(hwnd), uintptr(wMsgFilterMin), uintptr(wMsgFilterMax), uintptr(wRemoveMsg))
	return r != 0
}

func RegisterClassEx(cls *WndClassEx) (uint16, error) {
	a, _, err := _RegisterClassExW.Call(uintptr(unsafe.Pointer(cls)))
	if a == 0 {
		return 0, fmt.Errorf("RegisterClassExW failed: %w", err)
	}
	return uint16(a), nil
}

func ReleaseDC(hdc syscall.Handle) {
	_ReleaseDC.Call(uintptr(hdc))
}

func ScreenToClient(hwnd syscall.Handle, p *Point) {
	_ScreenToClient.Call(uintptr(hwnd), uintptr(unsafe.Pointer(p)))
}

func SetClipboardData(format uint32, mem syscall.Handle) error {
	r, _, err := _SetClipboardData.Call(uintptr(format), uintptr(mem))
	if r == 0 {
		return fmt.Errorf("SetClipboardData: %w", err)
	}
	return nil
}

func SetCursor(h syscall.Handle) {
	_SetCursor.Call(uintptr(h))
}

func SetCursorPos(x, y int32) error {
	r, _, err := _SetCursorPos.Call(uintptr(x), uintptr(y))
	if r == 0 {
		return fmt.Errorf("SetCursorPos: %w", err)
	}
	return nil
}

func SetFocus(hwnd syscall.Handle) {
	_SetFocus.Call(uintptr(hwnd))
}

func SetForegroundWindow(hwnd syscall.Handle) bool {
	r, _, _ := _SetForegroundWindow.Call(uintptr(hwnd))
	return r != 0
}

// SetProcessDPIAware enables per-monitor DPI awareness where available and
// system DPI awareness otherwise.
func SetProcessDPIAware() {
	if err := _SetProcessDpiAwarenessContext.Find(); err == nil {
		if r, _, _ := _SetProcessDpiAwarenessContext.Call(DPI_AWARENESS_CONTEXT_V2); r != 0 {
			return
		}
	}
	_SetProcessDPIAware.Call()
}

func SetWindowLong(hwnd syscall.Handle, idx uintptr, style uintptr) {
	_SetWindowLong.Call(uintptr(hwnd), idx, style)
}

func SetWindowPos(hwnd syscall.Handle, hwndInsertAfter uint32, x, y, dx, dy int32, style uintptr) {
	_SetWindowPos.Call(uintptr(hwnd), uintptr(hwndInsertAfter),
		uintptr(x), uintptr(y),
		uintptr(dx), uintptr(dy),
		style,
	)
}

func SetWindowText(hwnd syscall.Handle, title string) {
	wname := syscall.StringToUTF16Ptr(title)
	_SetWindowText.Call(uintptr(hwnd), uintptr(unsafe.Pointer(wname)))
}

func ShowWindow(hwnd syscall.Handle, nCmdShow int32) {
	_ShowWindow.Call(uintptr(hwnd), uintptr(nCmdShow))
}

func TranslateMessage(m *Msg) {
	_TranslateMessage.Call(uintptr(unsafe.Pointer(m)))
}

func UnregisterClass(cls uint16, hInst syscall.Handle) {
	_UnregisterClass.Call(uintptr(cls), uintptr(hInst))
}

func UpdateWindow(hwnd syscall.Handle) {
	_UpdateWindow.Call(uintptr(hwnd))
}

// UTF16Text copies the NUL-terminated UTF-16 text at p into a string.
func UTF16Text(p unsafe.Pointer) string {
	return syscall.UTF16PtrToString((*uint16)(p))
}
