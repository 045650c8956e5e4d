// SPDX-License-Identifier: Unlicense OR MIT

/*
Package key defines the platform independent keyboard vocabulary.

Every platform backend maps its native key codes into Key. Codes without a
named Key are reported through Other, so no key press is ever lost:

	k := key.Other(0x1008ff13)
	code, ok := k.Code() // 0x1008ff13, true
*/
package key

import (
	"fmt"
	"strconv"
	"strings"
)

// Key identifies a physical or logical keyboard key. The zero Key is
// Unknown.
type Key uint64

// otherBit marks a Key carrying a native code that has no named Key.
const otherBit Key = 1 << 32

const (
	Unknown Key = iota

	// Arrow keys.
	Left
	Right
	Up
	Down

	// Modifier keys.
	LShift
	RShift
	LCtrl
	RCtrl
	LAlt
	RAlt
	LSuper
	RSuper
	CapsLock

	// Letters.
	A
	B
	C
	D
	E
	F
	G
	H
	I
	J
	K
	L
	M
	N
	O
	P
	Q
	R
	S
	T
	U
	V
	W
	X
	Y
	Z

	// Digits.
	Num0
	Num1
	Num2
	Num3
	Num4
	Num5
	Num6
	Num7
	Num8
	Num9

	// Function keys.
	F1
	F2
	F3
	F4
	F5
	F6
	F7
	F8
	F9
	F10
	F11
	F12

	// Action and navigation keys.
	Space
	Enter
	Escape
	Tab
	Backspace
	Insert
	Delete
	Home
	End
	PageUp
	PageDown

	// Punctuation.
	Minus
	Equals
	LeftBracket
	RightBracket
	Backslash
	Semicolon
	Apostrophe
	Grave
	Comma
	Period
	Slash

	lastNamed
)

var names = [...]string{
	Unknown:      "Unknown",
	Left:         "Left",
	Right:        "Right",
	Up:           "Up",
	Down:         "Down",
	LShift:       "LShift",
	RShift:       "RShift",
	LCtrl:        "LCtrl",
	RCtrl:        "RCtrl",
	LAlt:         "LAlt",
	RAlt:         "RAlt",
	LSuper:       "LSuper",
	RSuper:       "RSuper",
	CapsLock:     "CapsLock",
	A:            "A",
	B:            "B",
	C:            "C",
	D:            "D",
	E:            "E",
	F:            "F",
	G:            "G",
	H:            "H",
	I:            "I",
	J:            "J",
	K:            "K",
	L:            "L",
	M:            "M",
	N:            "N",
	O:            "O",
	P:            "P",
	Q:            "Q",
	R:            "R",
	S:            "S",
	T:            "T",
	U:            "U",
	V:            "V",
	W:            "W",
	X:            "X",
	Y:            "Y",
	Z:            "Z",
	Num0:         "0",
	Num1:         "1",
	Num2:         "2",
	Num3:         "3",
	Num4:         "4",
	Num5:         "5",
	Num6:         "6",
	Num7:         "7",
	Num8:         "8",
	Num9:         "9",
	F1:           "F1",
	F2:           "F2",
	F3:           "F3",
	F4:           "F4",
	F5:           "F5",
	F6:           "F6",
	F7:           "F7",
	F8:           "F8",
	F9:           "F9",
	F10:          "F10",
	F11:          "F11",
	F12:          "F12",
	Space:        "Space",
	Enter:        "Enter",
	Escape:       "Escape",
	Tab:          "Tab",
	Backspace:    "Backspace",
	Insert:       "Insert",
	Delete:       "Delete",
	Home:         "Home",
	End:          "End",
	PageUp:       "PageUp",
	PageDown:     "PageDown",
	Minus:        "Minus",
	Equals:       "Equals",
	LeftBracket:  "LeftBracket",
	RightBracket: "RightBracket",
	Backslash:    "Backslash",
	Semicolon:    "Semicolon",
	Apostrophe:   "Apostrophe",
	Grave:        "Grave",
	Comma:        "Comma",
	Period:       "Period",
	Slash:        "Slash",
}

// Other returns the Key for a native code that has no named Key.
func Other(code uint32) Key {
	return otherBit | Key(code)
}

// Code returns the native code of an Other key. The boolean is false for
// named keys.
func (k Key) Code() (uint32, bool) {
	if k&otherBit == 0 {
		return 0, false
	}
	return uint32(k), true
}

// Letter returns the key for an ASCII letter, in either case.
func Letter(r rune) (Key, bool) {
	switch {
	case 'a' <= r && r <= 'z':
		return A + Key(r-'a'), true
	case 'A' <= r && r <= 'Z':
		return A + Key(r-'A'), true
	}
	return Unknown, false
}

// Digit returns the key for an ASCII digit.
func Digit(r rune) (Key, bool) {
	if '0' <= r && r <= '9' {
		return Num0 + Key(r-'0'), true
	}
	return Unknown, false
}

// Function returns the key F<n> for 1 <= n <= 12.
func Function(n int) (Key, bool) {
	if 1 <= n && n <= 12 {
		return F1 + Key(n-1), true
	}
	return Unknown, false
}

func (k Key) String() string {
	if code, ok := k.Code(); ok {
		return fmt.Sprintf("Other(%#x)", code)
	}
	if k < lastNamed {
		return names[k]
	}
	return fmt.Sprintf("Key(%d)", uint64(k))
}

// Parse returns the Key named s, using the names produced by String. Names
// are matched case-insensitively and Other keys are accepted in the
// "Other(0x1f)" form.
func Parse(s string) (Key, error) {
	s = strings.TrimSpace(s)
	if inner, ok := strings.CutPrefix(s, "Other("); ok {
		inner, ok = strings.CutSuffix(inner, ")")
		if !ok {
			return Unknown, fmt.Errorf("key: malformed %q", s)
		}
		code, err := strconv.ParseUint(inner, 0, 32)
		if err != nil {
			return Unknown, fmt.Errorf("key: malformed %q: %w", s, err)
		}
		return Other(uint32(code)), nil
	}
	for k := Key(1); k < lastNamed; k++ {
		if strings.EqualFold(names[k], s) {
			return k, nil
		}
	}
	return Unknown, fmt.Errorf("key: unknown key name %q", s)
}
