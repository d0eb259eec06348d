// Package geom holds the small vector types shared by the simulation layer.
package geom

import "math"

// Vec2 is a continuous position or displacement measured in tiles.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Scale returns v scaled by s on both axes.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// IsZero reports whether both components are exactly zero.
func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Round snaps both components to the nearest integer.
func (v Vec2) Round() Vec2 {
	return Vec2{X: math.Round(v.X), Y: math.Round(v.Y)}
}

// Coord represents a tile coordinate. Z is the floor.
type Coord struct {
	X, Y, Z int
}

// Add returns c + o.
func (c Coord) Add(o Coord) Coord {
	return Coord{X: c.X + o.X, Y: c.Y + o.Y, Z: c.Z + o.Z}
}

// Vec2 converts the tile coordinate to a continuous position, dropping Z.
func (c Coord) Vec2() Vec2 {
	return Vec2{X: float64(c.X), Y: float64(c.Y)}
}

// ToCoord rounds a continuous position to the tile it is closest to.
func ToCoord(v Vec2, z int) Coord {
	r := v.Round()
	return Coord{X: int(r.X), Y: int(r.Y), Z: z}
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
