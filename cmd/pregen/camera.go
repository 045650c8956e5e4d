// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"fmt"
	"math"
)

// flyCamera is a free-flying camera steered by yaw and pitch.
type flyCamera struct {
	X, Y, Z    float64
	Yaw, Pitch float64

	speed       float64
	sensitivity float64
}

const maxPitch = math.Pi/2 - 0.01

// rotate applies a mouse delta in logical pixels.
func (c *flyCamera) rotate(dx, dy float32) {
	c.Yaw += float64(dx) * c.sensitivity
	c.Pitch -= float64(dy) * c.sensitivity
	c.Pitch = max(-maxPitch, min(c.Pitch, maxPitch))
	c.Yaw = math.Remainder(c.Yaw, 2*math.Pi)
}

// move translates the camera for dt seconds. forward and right are
// relative to the heading; up is along the world Y axis. Each is -1, 0
// or 1.
func (c *flyCamera) move(forward, right, up, dt float64) {
	if forward == 0 && right == 0 && up == 0 {
		return
	}
	sin, cos := math.Sincos(c.Yaw)
	dx := forward*sin + right*cos
	dz := -forward*cos + right*sin
	dy := up
	if l := math.Sqrt(dx*dx + dy*dy + dz*dz); l > 1 {
		dx, dy, dz = dx/l, dy/l, dz/l
	}
	step := c.speed * dt
	c.X += dx * step
	c.Y += dy * step
	c.Z += dz * step
}

func (c *flyCamera) String() string {
	return fmt.Sprintf("position=(%.3f, %.3f, %.3f) yaw=%.4f pitch=%.4f", c.X, c.Y, c.Z, c.Yaw, c.Pitch)
}
