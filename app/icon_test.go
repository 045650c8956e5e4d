// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScaleIcon(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 0xff, A: 0xff})
		}
	}
	icons := scaleIcon(src, 4, 16)
	if len(icons) != 2 {
		t.Fatalf("got %d icons", len(icons))
	}
	for i, want := range []int{4, 16} {
		b := icons[i].Bounds()
		if b.Dx() != want || b.Dy() != want {
			t.Errorf("icon %d is %v; want %dx%d", i, b, want, want)
		}
		if c := icons[i].NRGBAAt(want/2, want/2); c.R < 0xf0 || c.A < 0xf0 || c.G > 0x10 || c.B > 0x10 {
			t.Errorf("icon %d center = %v", i, c)
		}
	}
}

func TestARGBIcon(t *testing.T) {
	ic := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	ic.SetNRGBA(0, 0, color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x44})
	ic.SetNRGBA(1, 0, color.NRGBA{R: 0xff, A: 0xff})
	got := argbIcon([]*image.NRGBA{ic})
	want := []uint{2, 1, 0x44112233, 0xffff0000}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("argbIcon mismatch (-want +got):\n%s", diff)
	}
}
