// SPDX-License-Identifier: Unlicense OR MIT

// Package pointer defines the platform independent mouse button vocabulary.
package pointer

import "fmt"

// Button identifies a mouse button. Buttons beyond the three common ones
// are reported through Other with the platform's button code.
type Button uint64

const otherBit Button = 1 << 32

const (
	// Left is the primary button.
	Left Button = iota + 1
	// Right is the secondary button.
	Right
	// Middle is the tertiary button, usually the wheel.
	Middle
)

// Other returns the Button for a platform button code.
func Other(code uint32) Button {
	return otherBit | Button(code)
}

// Code returns the platform code of an Other button.
func (b Button) Code() (uint32, bool) {
	if b&otherBit == 0 {
		return 0, false
	}
	return uint32(b), true
}

func (b Button) String() string {
	switch b {
	case Left:
		return "Left"
	case Right:
		return "Right"
	case Middle:
		return "Middle"
	}
	if code, ok := b.Code(); ok {
		return fmt.Sprintf("Other(%d)", code)
	}
	return fmt.Sprintf("Button(%d)", uint64(b))
}
