// SPDX-License-Identifier: Unlicense OR MIT

// Package event contains the normalized window events shared by every
// platform backend.
package event

import (
	"fmt"

	"pregen.dev/io/key"
	"pregen.dev/io/pointer"
)

// Event is implemented by every window event. Events with equal
// identities describe the same occurrence and may be coalesced.
type Event interface {
	Identity() Identity
}

// Kind is the discriminant of an Event.
type Kind uint8

const (
	KindCloseRequested Kind = iota + 1
	KindDestroyed
	KindFocusGained
	KindFocusLost
	KindMinimized
	KindMaximized
	KindKeyboardInput
	KindMouseButton
	KindMouseWheel
	KindCursorPosition
	KindScaleFactorChanged
	KindResize
	KindFramebufferResize
)

// Identity is the deduplication key of an event: its Kind plus, for
// keyboard, mouse button and cursor events, the payload that tells two
// occurrences apart.
type Identity struct {
	Kind     Kind
	Key      key.Key
	Scancode uint32
	Button   pointer.Button
	Action   Action
	X, Y     float32
}

// Action is the state transition of a key or button.
type Action uint8

const (
	Pressed Action = iota + 1
	Released
)

// ActionOf returns Pressed for true and Released for false.
func ActionOf(pressed bool) Action {
	if pressed {
		return Pressed
	}
	return Released
}

// CloseRequested is sent when the user or the window manager asks the
// window to close.
type CloseRequested struct{}

// Destroyed is sent when the native window was destroyed out from under
// the application.
type Destroyed struct{}

// FocusGained is sent when the window receives keyboard focus.
type FocusGained struct{}

// FocusLost is sent when the window loses keyboard focus.
type FocusLost struct{}

// Minimized is sent when the window is iconified or hidden.
type Minimized struct{}

// Maximized is sent when the window is maximized.
type Maximized struct{}

// KeyboardInput is a single key transition. Held keys produce exactly one
// Pressed and one Released event.
type KeyboardInput struct {
	Key key.Key
	// Scancode is the raw platform scancode.
	Scancode uint32
	Action   Action
}

// MouseButton is a single button transition.
type MouseButton struct {
	Button pointer.Button
	Action Action
}

// MouseWheel reports scrolling in notches. Positive ScrollY scrolls up,
// positive ScrollX scrolls right.
type MouseWheel struct {
	ScrollX, ScrollY float32
}

// CursorPosition reports the cursor position in logical pixels relative
// to the client area origin.
type CursorPosition struct {
	X, Y float32
}

// ScaleFactorChanged reports a new content scale.
type ScaleFactorChanged struct {
	ScaleX, ScaleY float32
}

// Resize reports a new logical client area size.
type Resize struct {
	Width, Height int
}

// FramebufferResize reports a new physical pixel size. It is synthesized
// by the window for every Resize.
type FramebufferResize struct {
	Width, Height int
}

func (CloseRequested) Identity() Identity { return Identity{Kind: KindCloseRequested} }
func (Destroyed) Identity() Identity      { return Identity{Kind: KindDestroyed} }
func (FocusGained) Identity() Identity    { return Identity{Kind: KindFocusGained} }
func (FocusLost) Identity() Identity      { return Identity{Kind: KindFocusLost} }
func (Minimized) Identity() Identity      { return Identity{Kind: KindMinimized} }
func (Maximized) Identity() Identity      { return Identity{Kind: KindMaximized} }
func (MouseWheel) Identity() Identity     { return Identity{Kind: KindMouseWheel} }
func (Resize) Identity() Identity         { return Identity{Kind: KindResize} }

func (ScaleFactorChanged) Identity() Identity {
	return Identity{Kind: KindScaleFactorChanged}
}

func (FramebufferResize) Identity() Identity {
	return Identity{Kind: KindFramebufferResize}
}

func (e KeyboardInput) Identity() Identity {
	return Identity{Kind: KindKeyboardInput, Key: e.Key, Scancode: e.Scancode, Action: e.Action}
}

func (e MouseButton) Identity() Identity {
	return Identity{Kind: KindMouseButton, Button: e.Button, Action: e.Action}
}

func (e CursorPosition) Identity() Identity {
	return Identity{Kind: KindCursorPosition, X: e.X, Y: e.Y}
}

// Coalesce removes events whose identity reappears later in events,
// keeping the most recent occurrence. Keyboard input is never coalesced.
// The result preserves the relative order of the retained events and
// shares no memory with events.
func Coalesce(events []Event) []Event {
	if len(events) == 0 {
		return nil
	}
	seen := make(map[Identity]bool, len(events))
	kept := make([]Event, 0, len(events))
	// Walk backwards so the first occurrence seen is the most recent.
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		id := e.Identity()
		if id.Kind != KindKeyboardInput {
			if seen[id] {
				continue
			}
			seen[id] = true
		}
		kept = append(kept, e)
	}
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return kept
}

func (k Kind) String() string {
	switch k {
	case KindCloseRequested:
		return "CloseRequested"
	case KindDestroyed:
		return "Destroyed"
	case KindFocusGained:
		return "FocusGained"
	case KindFocusLost:
		return "FocusLost"
	case KindMinimized:
		return "Minimized"
	case KindMaximized:
		return "Maximized"
	case KindKeyboardInput:
		return "KeyboardInput"
	case KindMouseButton:
		return "MouseButton"
	case KindMouseWheel:
		return "MouseWheel"
	case KindCursorPosition:
		return "CursorPosition"
	case KindScaleFactorChanged:
		return "ScaleFactorChanged"
	case KindResize:
		return "Resize"
	case KindFramebufferResize:
		return "FramebufferResize"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

func (a Action) String() string {
	switch a {
	case Pressed:
		return "Pressed"
	case Released:
		return "Released"
	}
	return fmt.Sprintf("Action(%d)", uint8(a))
}
