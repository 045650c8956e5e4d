// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"log/slog"
	"math"

	"pregen.dev/io/key"
)

// keyTracker enforces the key repeat policy of NativeWindow.Poll: one
// Pressed event when a key goes down and one Released event when it comes
// up, whatever the platform repeats in between. Keys are tracked by native
// code.
type keyTracker struct {
	held map[uint32]bool
}

// press records code as held and reports whether this is a new press.
func (t *keyTracker) press(code uint32) bool {
	if t.held == nil {
		t.held = make(map[uint32]bool)
	}
	if t.held[code] {
		return false
	}
	t.held[code] = true
	return true
}

// release records code as released. Releases are always delivered, also
// for keys pressed before the window had focus.
func (t *keyTracker) release(code uint32) {
	delete(t.held, code)
}

// reset forgets all held keys. Backends call it on focus changes since the
// matching releases may go to another window.
func (t *keyTracker) reset() {
	clear(t.held)
}

// warpFilter suppresses the cursor motion event caused by a programmatic
// cursor move.
type warpFilter struct {
	pending bool
	x, y    float32
}

func (f *warpFilter) set(x, y float32) {
	f.pending = true
	f.x, f.y = x, y
}

// suppress reports whether a motion to (x, y) is the echo of the pending
// warp, and clears it if so.
func (f *warpFilter) suppress(x, y float32) bool {
	if !f.pending {
		return false
	}
	// Native coordinates are integral on most platforms.
	if math.Abs(float64(x-f.x)) < 1 && math.Abs(float64(y-f.y)) < 1 {
		f.pending = false
		return true
	}
	return false
}

func (f *warpFilter) clear() {
	f.pending = false
}

// translateKey returns k when ok, or key.Other(code) after logging the
// unmapped code.
func translateKey(l *slog.Logger, b Backend, k key.Key, ok bool, code uint32) key.Key {
	if ok {
		return k
	}
	l.Debug("unknown key code", "backend", b, "code", code)
	return key.Other(code)
}

func clampf(v, lo, hi float32) float32 {
	return max(lo, min(v, hi))
}
