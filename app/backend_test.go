// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"errors"
	"testing"

	"golang.org/x/exp/slices"
)

func TestParseBackend(t *testing.T) {
	for _, b := range []Backend{Auto, Headless, GLFW, X11, Wayland, Win32, Canvas} {
		got, err := ParseBackend(b.String())
		if err != nil {
			t.Errorf("ParseBackend(%q): %v", b.String(), err)
			continue
		}
		if got != b {
			t.Errorf("ParseBackend(%q) = %v", b.String(), got)
		}
	}
	if b, err := ParseBackend(" Wayland "); err != nil || b != Wayland {
		t.Errorf("ParseBackend is not case and space insensitive: %v, %v", b, err)
	}
	if _, err := ParseBackend("cocoa"); err == nil {
		t.Error("ParseBackend accepted an unknown backend")
	}
}

func TestBackendsSorted(t *testing.T) {
	bs := Backends()
	if !slices.IsSorted(bs) {
		t.Errorf("Backends() = %v is not sorted", bs)
	}
	if !slices.Contains(bs, Headless) {
		t.Errorf("Backends() = %v lacks %v", bs, Headless)
	}
	if !Preferred().Available() {
		t.Errorf("Preferred() = %v is not available", Preferred())
	}
}

func TestResolveBackend(t *testing.T) {
	t.Setenv(EnvBackend, "headless")
	if b, err := resolveBackend(Auto); err != nil || b != Headless {
		t.Errorf("resolveBackend(Auto) = %v, %v; want %v", b, err, Headless)
	}
	if b, err := resolveBackend(X11); err != nil || b != X11 {
		t.Errorf("explicit backend overridden: %v, %v", b, err)
	}
	t.Setenv(EnvBackend, "auto")
	if b, err := resolveBackend(Auto); err != nil || b != Preferred() {
		t.Errorf("resolveBackend(Auto) = %v, %v; want %v", b, err, Preferred())
	}
	t.Setenv(EnvBackend, "nonsense")
	if _, err := resolveBackend(Auto); err == nil {
		t.Error("invalid environment value accepted")
	}
}

func TestPreferredDisplay(t *testing.T) {
	saved := drivers
	defer func() { drivers = saved }()
	headless := func(o *nativeOptions) (NativeWindow, error) {
		return newHeadlessWindow(o), nil
	}
	drivers = map[Backend]newNativeFunc{
		Wayland:  headless,
		X11:      headless,
		Headless: headless,
	}
	tests := []struct {
		wayland, x11 string
		want         Backend
	}{
		{"wayland-0", "", Wayland},
		{"wayland-0", ":0", X11},
		{"", ":0", X11},
		{"", "", X11},
	}
	for _, tc := range tests {
		t.Setenv("WAYLAND_DISPLAY", tc.wayland)
		t.Setenv("DISPLAY", tc.x11)
		if got := Preferred(); got != tc.want {
			t.Errorf("WAYLAND_DISPLAY=%q DISPLAY=%q: Preferred() = %v; want %v", tc.wayland, tc.x11, got, tc.want)
		}
	}
	delete(drivers, X11)
	t.Setenv("WAYLAND_DISPLAY", "wayland-0")
	t.Setenv("DISPLAY", ":0")
	if got := Preferred(); got != Wayland {
		t.Errorf("Preferred() without X11 = %v; want %v", got, Wayland)
	}
}

func TestPlatformError(t *testing.T) {
	err := platformError(X11, "XOpenDisplay", 7, ErrUnsupportedBackend)
	if got, want := err.Error(), "x11: XOpenDisplay failed (code 7): backend not supported on this platform"; got != want {
		t.Errorf("Error() = %q; want %q", got, want)
	}
	if !errors.Is(err, ErrUnsupportedBackend) {
		t.Error("PlatformError does not unwrap")
	}
}

func TestKeyTracker(t *testing.T) {
	var kt keyTracker
	if !kt.press(30) {
		t.Error("first press not reported")
	}
	if kt.press(30) {
		t.Error("repeat press reported")
	}
	kt.release(30)
	if !kt.press(30) {
		t.Error("press after release not reported")
	}
	kt.reset()
	if !kt.press(30) {
		t.Error("press after reset not reported")
	}
}

func TestWarpFilter(t *testing.T) {
	var f warpFilter
	if f.suppress(1, 1) {
		t.Error("suppressed without a pending warp")
	}
	f.set(100, 50)
	if f.suppress(10, 10) {
		t.Error("suppressed an unrelated motion")
	}
	if !f.suppress(100.4, 50) {
		t.Error("warp echo not suppressed")
	}
	if f.suppress(100, 50) {
		t.Error("warp suppressed twice")
	}
}

func TestClampf(t *testing.T) {
	tests := []struct{ v, want float32 }{{-3, 0}, {5, 5}, {12, 10}}
	for _, tc := range tests {
		if got := clampf(tc.v, 0, 10); got != tc.want {
			t.Errorf("clampf(%v, 0, 10) = %v; want %v", tc.v, got, tc.want)
		}
	}
}
