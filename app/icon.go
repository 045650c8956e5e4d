// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"image"

	"golang.org/x/image/draw"
)

// iconSizes are the icon resolutions handed to window managers.
var iconSizes = []int{16, 32, 48, 64}

// scaleIcon returns img resampled to each of sizes.
func scaleIcon(img image.Image, sizes ...int) []*image.NRGBA {
	icons := make([]*image.NRGBA, 0, len(sizes))
	for _, s := range sizes {
		dst := image.NewNRGBA(image.Rect(0, 0, s, s))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		icons = append(icons, dst)
	}
	return icons
}

// argbIcon encodes icons in the _NET_WM_ICON layout: for every icon its
// width and height followed by one ARGB value per pixel, row by row.
func argbIcon(icons []*image.NRGBA) []uint {
	var n int
	for _, ic := range icons {
		b := ic.Bounds()
		n += 2 + b.Dx()*b.Dy()
	}
	data := make([]uint, 0, n)
	for _, ic := range icons {
		b := ic.Bounds()
		data = append(data, uint(b.Dx()), uint(b.Dy()))
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := ic.NRGBAAt(x, y)
				data = append(data, uint(c.A)<<24|uint(c.R)<<16|uint(c.G)<<8|uint(c.B))
			}
		}
	}
	return data
}
