// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Backend selects a platform implementation of NativeWindow.
type Backend uint8

const (
	// Auto selects the backend named by the PREGEN_BACKEND environment
	// variable, or the preferred backend for the platform.
	Auto Backend = iota
	// Headless is an in-memory backend without a native window.
	Headless
	// GLFW uses the GLFW desktop toolkit. It requires cgo and the glfw
	// build tag.
	GLFW
	// X11 speaks the X11 protocol directly.
	X11
	// Wayland speaks the Wayland protocol directly.
	Wayland
	// Win32 drives the Win32 message pump.
	Win32
	// Canvas renders into an HTML canvas element under js/wasm.
	Canvas
)

// EnvBackend is the environment variable consulted by Auto.
const EnvBackend = "PREGEN_BACKEND"

// newNativeFunc constructs a hidden native window.
type newNativeFunc func(opts *nativeOptions) (NativeWindow, error)

// drivers holds the backends compiled in for this platform. Platform files
// register themselves from init.
var drivers = make(map[Backend]newNativeFunc)

// preferredOrder lists backends in descending preference. The first
// available entry is chosen by Preferred.
var preferredOrder = []Backend{Win32, Canvas, Wayland, X11, GLFW, Headless}

var backendNames = map[Backend]string{
	Auto:     "auto",
	Headless: "headless",
	GLFW:     "glfw",
	X11:      "x11",
	Wayland:  "wayland",
	Win32:    "win32",
	Canvas:   "canvas",
}

func registerDriver(b Backend, f newNativeFunc) {
	drivers[b] = f
}

func (b Backend) String() string {
	if n, ok := backendNames[b]; ok {
		return n
	}
	return fmt.Sprintf("Backend(%d)", uint8(b))
}

// ParseBackend returns the backend named s, as printed by String.
func ParseBackend(s string) (Backend, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for b, n := range backendNames {
		if n == s {
			return b, nil
		}
	}
	return Auto, fmt.Errorf("app: unknown backend %q", s)
}

// Backends returns the backends compiled in for this platform, sorted.
func Backends() []Backend {
	bs := maps.Keys(drivers)
	slices.Sort(bs)
	return bs
}

// Available reports whether b is compiled in for this platform.
func (b Backend) Available() bool {
	_, ok := drivers[b]
	return ok
}

// Preferred returns the best backend for this platform. On Linux, X11
// is preferred when DISPLAY is set, including under XWayland, and Wayland
// only when WAYLAND_DISPLAY alone is set: the Wayland backend provides no
// native handles for GPU surfaces.
func Preferred() Backend {
	for _, b := range preferredOrder {
		if !b.Available() {
			continue
		}
		if b == Wayland && (os.Getenv("WAYLAND_DISPLAY") == "" || (os.Getenv("DISPLAY") != "" && X11.Available())) {
			continue
		}
		return b
	}
	return Headless
}

// resolveBackend turns Auto into a concrete backend.
func resolveBackend(b Backend) (Backend, error) {
	if b != Auto {
		return b, nil
	}
	if s := os.Getenv(EnvBackend); s != "" {
		env, err := ParseBackend(s)
		if err != nil {
			return Auto, fmt.Errorf("app: %s: %w", EnvBackend, err)
		}
		if env != Auto {
			return env, nil
		}
	}
	return Preferred(), nil
}
