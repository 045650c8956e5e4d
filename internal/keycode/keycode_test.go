// SPDX-License-Identifier: Unlicense OR MIT

package keycode

import (
	"testing"

	"pregen.dev/io/key"
	"pregen.dev/io/pointer"
)

func TestX11(t *testing.T) {
	tests := []struct {
		sym  uint32
		want key.Key
		ok   bool
	}{
		{'a', key.A, true},
		{'W', key.W, true},
		{'0', key.Num0, true},
		{0xff1b, key.Escape, true},
		{0xffbe, key.F1, true},
		{0xffc9, key.F12, true},
		{0xffe1, key.LShift, true},
		{0xffe4, key.RCtrl, true},
		{0xff51, key.Left, true},
		{0x0060, key.Grave, true},
		{0x1008ff13, key.Unknown, false},
	}
	for _, tc := range tests {
		got, ok := X11(tc.sym)
		if got != tc.want || ok != tc.ok {
			t.Errorf("X11(%#x) = %v, %v; want %v, %v", tc.sym, got, ok, tc.want, tc.ok)
		}
	}
}

func TestEvdev(t *testing.T) {
	tests := []struct {
		code uint32
		want key.Key
	}{
		{17, key.W},
		{30, key.A},
		{31, key.S},
		{32, key.D},
		{57, key.Space},
		{42, key.LShift},
		{1, key.Escape},
		{11, key.Num0},
		{88, key.F12},
		{103, key.Up},
	}
	for _, tc := range tests {
		if got, ok := Evdev(tc.code); !ok || got != tc.want {
			t.Errorf("Evdev(%d) = %v, %v; want %v", tc.code, got, ok, tc.want)
		}
	}
	if _, ok := Evdev(0x2ff); ok {
		t.Errorf("Evdev(0x2ff) succeeded")
	}
	if got := EvdevButton(0x110); got != pointer.Left {
		t.Errorf("EvdevButton(BTN_LEFT) = %v", got)
	}
	if got := EvdevButton(0x113); got != pointer.Other(0x113) {
		t.Errorf("EvdevButton(BTN_SIDE) = %v", got)
	}
}

func TestWin32(t *testing.T) {
	tests := []struct {
		vk   uint32
		want key.Key
	}{
		{'A', key.A},
		{'9', key.Num9},
		{0x70, key.F1},
		{0x7b, key.F12},
		{0xa0, key.LShift},
		{0xa5, key.RAlt},
		{0xdb, key.LeftBracket},
		{0x2e, key.Delete},
	}
	for _, tc := range tests {
		if got, ok := Win32(tc.vk); !ok || got != tc.want {
			t.Errorf("Win32(%#x) = %v, %v; want %v", tc.vk, got, ok, tc.want)
		}
	}
	// Generic VK_SHIFT is not in the table.
	if _, ok := Win32(0x10); ok {
		t.Errorf("Win32(VK_SHIFT) succeeded")
	}
}

func TestDOM(t *testing.T) {
	tests := []struct {
		code string
		want key.Key
		ok   bool
	}{
		{"KeyW", key.W, true},
		{"Digit5", key.Num5, true},
		{"F1", key.F1, true},
		{"F12", key.F12, true},
		{"F13", key.Unknown, false},
		{"Fn", key.Unknown, false},
		{"ShiftLeft", key.LShift, true},
		{"Quote", key.Apostrophe, true},
		{"IntlYen", key.Unknown, false},
	}
	for _, tc := range tests {
		got, ok := DOM(tc.code)
		if got != tc.want || ok != tc.ok {
			t.Errorf("DOM(%q) = %v, %v; want %v, %v", tc.code, got, ok, tc.want, tc.ok)
		}
	}
	if DOMButton(2) != pointer.Right || DOMButton(1) != pointer.Middle {
		t.Errorf("DOMButton mapping is wrong")
	}
	if X11Button(3) != pointer.Right || X11Button(8) != pointer.Other(8) {
		t.Errorf("X11Button mapping is wrong")
	}
}

func TestGLFW(t *testing.T) {
	tests := []struct {
		code int32
		want key.Key
		ok   bool
	}{
		{'W', key.W, true},
		{'0', key.Num0, true},
		{290, key.F1, true},
		{301, key.F12, true},
		{302, key.Unknown, false},
		{340, key.LShift, true},
		{347, key.RSuper, true},
		{39, key.Apostrophe, true},
		{335, key.Enter, true},
		{-1, key.Unknown, false},
	}
	for _, tc := range tests {
		got, ok := GLFW(tc.code)
		if got != tc.want || ok != tc.ok {
			t.Errorf("GLFW(%d) = %v, %v; want %v, %v", tc.code, got, ok, tc.want, tc.ok)
		}
	}
	if GLFWButton(1) != pointer.Right || GLFWButton(3) != pointer.Other(3) {
		t.Errorf("GLFWButton mapping is wrong")
	}
}
