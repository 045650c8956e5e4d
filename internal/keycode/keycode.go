// SPDX-License-Identifier: Unlicense OR MIT

// Package keycode translates native key and button codes into the shared
// key and pointer vocabularies. The tables are platform independent so they
// can be tested everywhere; the backends pick the table matching their
// native event source.
package keycode

import (
	"strings"

	"pregen.dev/io/key"
	"pregen.dev/io/pointer"
)

// X11 keysyms.
var x11Keys = map[uint32]key.Key{
	0x0020: key.Space,
	0x0027: key.Apostrophe,
	0x002c: key.Comma,
	0x002d: key.Minus,
	0x002e: key.Period,
	0x002f: key.Slash,
	0x003b: key.Semicolon,
	0x003d: key.Equals,
	0x005b: key.LeftBracket,
	0x005c: key.Backslash,
	0x005d: key.RightBracket,
	0x0060: key.Grave,
	0xfe20: key.Tab, // ISO_Left_Tab
	0xff08: key.Backspace,
	0xff09: key.Tab,
	0xff0d: key.Enter,
	0xff1b: key.Escape,
	0xff50: key.Home,
	0xff51: key.Left,
	0xff52: key.Up,
	0xff53: key.Right,
	0xff54: key.Down,
	0xff55: key.PageUp,
	0xff56: key.PageDown,
	0xff57: key.End,
	0xff63: key.Insert,
	0xff8d: key.Enter, // KP_Enter
	0xff95: key.Home,  // KP_Home
	0xff96: key.Left,  // KP_Left
	0xff97: key.Up,    // KP_Up
	0xff98: key.Right, // KP_Right
	0xff99: key.Down,  // KP_Down
	0xff9a: key.PageUp,
	0xff9b: key.PageDown,
	0xff9c: key.End,
	0xff9e: key.Insert,
	0xff9f: key.Delete,
	0xffe1: key.LShift,
	0xffe2: key.RShift,
	0xffe3: key.LCtrl,
	0xffe4: key.RCtrl,
	0xffe5: key.CapsLock,
	0xffe7: key.LSuper, // Meta_L
	0xffe8: key.RSuper, // Meta_R
	0xffe9: key.LAlt,
	0xffea: key.RAlt,
	0xffeb: key.LSuper,
	0xffec: key.RSuper,
	0xffff: key.Delete,
}

// X11 translates an X11 keysym. Letters are accepted in either case.
func X11(sym uint32) (key.Key, bool) {
	if sym < 0x80 {
		if k, ok := key.Letter(rune(sym)); ok {
			return k, true
		}
		if k, ok := key.Digit(rune(sym)); ok {
			return k, true
		}
	}
	// F1 .. F12 are contiguous.
	if 0xffbe <= sym && sym <= 0xffc9 {
		return key.Function(int(sym-0xffbe) + 1)
	}
	k, ok := x11Keys[sym]
	return k, ok
}

// Linux input event codes, as delivered by Wayland and evdev.
var evdevKeys = map[uint32]key.Key{
	1:   key.Escape,
	2:   key.Num1,
	3:   key.Num2,
	4:   key.Num3,
	5:   key.Num4,
	6:   key.Num5,
	7:   key.Num6,
	8:   key.Num7,
	9:   key.Num8,
	10:  key.Num9,
	11:  key.Num0,
	12:  key.Minus,
	13:  key.Equals,
	14:  key.Backspace,
	15:  key.Tab,
	16:  key.Q,
	17:  key.W,
	18:  key.E,
	19:  key.R,
	20:  key.T,
	21:  key.Y,
	22:  key.U,
	23:  key.I,
	24:  key.O,
	25:  key.P,
	26:  key.LeftBracket,
	27:  key.RightBracket,
	28:  key.Enter,
	29:  key.LCtrl,
	30:  key.A,
	31:  key.S,
	32:  key.D,
	33:  key.F,
	34:  key.G,
	35:  key.H,
	36:  key.J,
	37:  key.K,
	38:  key.L,
	39:  key.Semicolon,
	40:  key.Apostrophe,
	41:  key.Grave,
	42:  key.LShift,
	43:  key.Backslash,
	44:  key.Z,
	45:  key.X,
	46:  key.C,
	47:  key.V,
	48:  key.B,
	49:  key.N,
	50:  key.M,
	51:  key.Comma,
	52:  key.Period,
	53:  key.Slash,
	54:  key.RShift,
	56:  key.LAlt,
	57:  key.Space,
	58:  key.CapsLock,
	59:  key.F1,
	60:  key.F2,
	61:  key.F3,
	62:  key.F4,
	63:  key.F5,
	64:  key.F6,
	65:  key.F7,
	66:  key.F8,
	67:  key.F9,
	68:  key.F10,
	87:  key.F11,
	88:  key.F12,
	96:  key.Enter, // KEY_KPENTER
	97:  key.RCtrl,
	100: key.RAlt,
	102: key.Home,
	103: key.Up,
	104: key.PageUp,
	105: key.Left,
	106: key.Right,
	107: key.End,
	108: key.Down,
	109: key.PageDown,
	110: key.Insert,
	111: key.Delete,
	125: key.LSuper,
	126: key.RSuper,
}

// Evdev translates a Linux input event key code.
func Evdev(code uint32) (key.Key, bool) {
	k, ok := evdevKeys[code]
	return k, ok
}

// EvdevButton translates a Linux input event button code (BTN_LEFT and
// friends). Other buttons keep their evdev code.
func EvdevButton(code uint32) pointer.Button {
	switch code {
	case 0x110:
		return pointer.Left
	case 0x111:
		return pointer.Right
	case 0x112:
		return pointer.Middle
	}
	return pointer.Other(code)
}

// Win32 virtual key codes. Generic VK_SHIFT, VK_CONTROL and VK_MENU must be
// resolved to their left/right variants before lookup.
var win32Keys = map[uint32]key.Key{
	0x08: key.Backspace,
	0x09: key.Tab,
	0x0d: key.Enter,
	0x14: key.CapsLock,
	0x1b: key.Escape,
	0x20: key.Space,
	0x21: key.PageUp,
	0x22: key.PageDown,
	0x23: key.End,
	0x24: key.Home,
	0x25: key.Left,
	0x26: key.Up,
	0x27: key.Right,
	0x28: key.Down,
	0x2d: key.Insert,
	0x2e: key.Delete,
	0x5b: key.LSuper,
	0x5c: key.RSuper,
	0xa0: key.LShift,
	0xa1: key.RShift,
	0xa2: key.LCtrl,
	0xa3: key.RCtrl,
	0xa4: key.LAlt,
	0xa5: key.RAlt,
	0xba: key.Semicolon,
	0xbb: key.Equals,
	0xbc: key.Comma,
	0xbd: key.Minus,
	0xbe: key.Period,
	0xbf: key.Slash,
	0xc0: key.Grave,
	0xdb: key.LeftBracket,
	0xdc: key.Backslash,
	0xdd: key.RightBracket,
	0xde: key.Apostrophe,
	0xe2: key.Backslash, // VK_OEM_102
}

// Win32 translates a Windows virtual key code.
func Win32(vk uint32) (key.Key, bool) {
	if '0' <= vk && vk <= '9' {
		return key.Digit(rune(vk))
	}
	if 'A' <= vk && vk <= 'Z' {
		return key.Letter(rune(vk))
	}
	// VK_F1 .. VK_F12.
	if 0x70 <= vk && vk <= 0x7b {
		return key.Function(int(vk-0x70) + 1)
	}
	k, ok := win32Keys[vk]
	return k, ok
}

// DOM KeyboardEvent.code values.
var domKeys = map[string]key.Key{
	"ArrowLeft":    key.Left,
	"ArrowRight":   key.Right,
	"ArrowUp":      key.Up,
	"ArrowDown":    key.Down,
	"ShiftLeft":    key.LShift,
	"ShiftRight":   key.RShift,
	"ControlLeft":  key.LCtrl,
	"ControlRight": key.RCtrl,
	"AltLeft":      key.LAlt,
	"AltRight":     key.RAlt,
	"MetaLeft":     key.LSuper,
	"MetaRight":    key.RSuper,
	"OSLeft":       key.LSuper,
	"OSRight":      key.RSuper,
	"CapsLock":     key.CapsLock,
	"Space":        key.Space,
	"Enter":        key.Enter,
	"NumpadEnter":  key.Enter,
	"Escape":       key.Escape,
	"Tab":          key.Tab,
	"Backspace":    key.Backspace,
	"Insert":       key.Insert,
	"Delete":       key.Delete,
	"Home":         key.Home,
	"End":          key.End,
	"PageUp":       key.PageUp,
	"PageDown":     key.PageDown,
	"Minus":        key.Minus,
	"Equal":        key.Equals,
	"BracketLeft":  key.LeftBracket,
	"BracketRight": key.RightBracket,
	"Backslash":    key.Backslash,
	"Semicolon":    key.Semicolon,
	"Quote":        key.Apostrophe,
	"Backquote":    key.Grave,
	"Comma":        key.Comma,
	"Period":       key.Period,
	"Slash":        key.Slash,
}

// DOM translates a KeyboardEvent.code string.
func DOM(code string) (key.Key, bool) {
	if s, ok := strings.CutPrefix(code, "Key"); ok && len(s) == 1 {
		return key.Letter(rune(s[0]))
	}
	if s, ok := strings.CutPrefix(code, "Digit"); ok && len(s) == 1 {
		return key.Digit(rune(s[0]))
	}
	if s, ok := strings.CutPrefix(code, "F"); ok && len(s) > 0 && len(s) <= 2 {
		n := 0
		for _, r := range s {
			if r < '0' || r > '9' {
				return key.Unknown, false
			}
			n = n*10 + int(r-'0')
		}
		return key.Function(n)
	}
	k, ok := domKeys[code]
	return k, ok
}

// DOMButton translates a MouseEvent.button index.
func DOMButton(b int) pointer.Button {
	switch b {
	case 0:
		return pointer.Left
	case 1:
		return pointer.Middle
	case 2:
		return pointer.Right
	}
	return pointer.Other(uint32(b))
}

// X11Button translates an X11 core button number. Buttons 4 to 7 are
// scroll wheel clicks and are reported separately by the backend.
func X11Button(b uint8) pointer.Button {
	switch b {
	case 1:
		return pointer.Left
	case 2:
		return pointer.Middle
	case 3:
		return pointer.Right
	}
	return pointer.Other(uint32(b))
}

// GLFW key tokens that are not printable ASCII.
var glfwKeys = map[int32]key.Key{
	32:  key.Space,
	39:  key.Apostrophe,
	44:  key.Comma,
	45:  key.Minus,
	46:  key.Period,
	47:  key.Slash,
	59:  key.Semicolon,
	61:  key.Equals,
	91:  key.LeftBracket,
	92:  key.Backslash,
	93:  key.RightBracket,
	96:  key.Grave,
	256: key.Escape,
	257: key.Enter,
	258: key.Tab,
	259: key.Backspace,
	260: key.Insert,
	261: key.Delete,
	262: key.Right,
	263: key.Left,
	264: key.Down,
	265: key.Up,
	266: key.PageUp,
	267: key.PageDown,
	268: key.Home,
	269: key.End,
	280: key.CapsLock,
	335: key.Enter, // GLFW_KEY_KP_ENTER
	340: key.LShift,
	341: key.LCtrl,
	342: key.LAlt,
	343: key.LSuper,
	344: key.RShift,
	345: key.RCtrl,
	346: key.RAlt,
	347: key.RSuper,
}

// GLFW translates a GLFW key token. Printable keys use their US ASCII
// value.
func GLFW(k int32) (key.Key, bool) {
	switch {
	case 'A' <= k && k <= 'Z':
		return key.Letter(rune(k))
	case '0' <= k && k <= '9':
		return key.Digit(rune(k))
	case 290 <= k && k <= 301:
		return key.Function(int(k-290) + 1)
	}
	k2, ok := glfwKeys[k]
	return k2, ok
}

// GLFWButton translates a GLFW mouse button index.
func GLFWButton(b int) pointer.Button {
	switch b {
	case 0:
		return pointer.Left
	case 1:
		return pointer.Right
	case 2:
		return pointer.Middle
	}
	return pointer.Other(uint32(b))
}
