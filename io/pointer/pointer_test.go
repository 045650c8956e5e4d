// SPDX-License-Identifier: Unlicense OR MIT

package pointer

import (
	"testing"
)

func TestButtonString(t *testing.T) {
	for _, tc := range []struct {
		b   Button
		res string
	}{
		{Left, "Left"},
		{Right, "Right"},
		{Middle, "Middle"},
		{Other(8), "Other(8)"},
		{Other(0), "Other(0)"},
	} {
		t.Run(tc.res, func(t *testing.T) {
			if got, want := tc.b.String(), tc.res; got != want {
				t.Errorf("got %q; want %q", got, want)
			}
		})
	}
}

func TestOtherCode(t *testing.T) {
	if _, ok := Left.Code(); ok {
		t.Error("Left reported an Other code")
	}
	code, ok := Other(276).Code()
	if !ok || code != 276 {
		t.Errorf("Other(276).Code() = %d, %v", code, ok)
	}
	if Other(1) == Left {
		t.Error("Other(1) collides with Left")
	}
}
