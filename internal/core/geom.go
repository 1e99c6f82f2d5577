// Package core provides fundamental types and utilities for the invaders platform.
// It contains no external dependencies (especially no Bubble Tea) to keep game
// logic pure and testable.
package core

import "math"

// Vec2 is a 2D vector in world units. Y grows upward.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// V creates a vector.
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v multiplied by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// AABB is an axis-aligned bounding box stored as center + half-extent.
// It is the only collision primitive in the simulation.
type AABB struct {
	Center Vec2
	Half   Vec2
}

// NewAABB creates a box centered at center with the given half-extent.
func NewAABB(center, half Vec2) AABB {
	return AABB{Center: center, Half: half}
}

// Min returns the bottom-left corner.
func (b AABB) Min() Vec2 {
	return b.Center.Sub(b.Half)
}

// Max returns the top-right corner.
func (b AABB) Max() Vec2 {
	return b.Center.Add(b.Half)
}

// Moved returns the same box recentered at c. The half-extent never changes.
func (b AABB) Moved(c Vec2) AABB {
	return AABB{Center: c, Half: b.Half}
}

// Intersects reports whether the two boxes overlap on both axes.
// Touching edges (zero gap) count as an intersection.
func (b AABB) Intersects(o AABB) bool {
	bMin, bMax := b.Min(), b.Max()
	oMin, oMax := o.Min(), o.Max()
	return bMin.X <= oMax.X && bMax.X >= oMin.X &&
		bMin.Y <= oMax.Y && bMax.Y >= oMin.Y
}

// Rect represents an integer cell rectangle on a Screen.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge (exclusive).
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge (exclusive).
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// ClampF restricts a float64 value to be within [lo, hi].
func ClampF(val, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, val))
}

// Clamp restricts an int to be within [lo, hi].
func Clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// InRange reports whether lo <= val <= hi.
func InRange(val, lo, hi float64) bool {
	return val >= lo && val <= hi
}
