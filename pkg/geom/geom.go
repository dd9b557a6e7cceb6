// Package geom provides the small set of geometric value types shared by the
// layout engine, the connection router, the viewport controller and the
// renderers.
//
// All coordinates are float64 pixels. Canvas space is the unbounded
// coordinate system node positions are computed in; screen space is canvas
// space after the viewport transform has been applied.
package geom

import "math"

// Point is a location in canvas or screen space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Round returns p with both coordinates rounded to whole pixels.
func (p Point) Round() Point {
	return Point{X: math.Round(p.X), Y: math.Round(p.Y)}
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Empty reports whether either dimension is not positive.
func (s Size) Empty() bool { return s.Width <= 0 || s.Height <= 0 }

// Box is an axis-aligned rectangle anchored at its top-left corner.
type Box struct {
	X, Y          float64
	Width, Height float64
}

// NewBox builds a box from a top-left anchor and a size.
func NewBox(p Point, s Size) Box {
	return Box{X: p.X, Y: p.Y, Width: s.Width, Height: s.Height}
}

// Right returns the x coordinate of the right edge.
func (b Box) Right() float64 { return b.X + b.Width }

// Bottom returns the y coordinate of the bottom edge.
func (b Box) Bottom() float64 { return b.Y + b.Height }

// CenterX returns the horizontal center of the box.
func (b Box) CenterX() float64 { return b.X + b.Width/2 }

// CenterY returns the vertical center of the box.
func (b Box) CenterY() float64 { return b.Y + b.Height/2 }

// Center returns the center point of the box.
func (b Box) Center() Point { return Point{X: b.CenterX(), Y: b.CenterY()} }

// BottomCenter returns the midpoint of the bottom edge.
func (b Box) BottomCenter() Point { return Point{X: b.CenterX(), Y: b.Bottom()} }

// TopCenter returns the midpoint of the top edge.
func (b Box) TopCenter() Point { return Point{X: b.CenterX(), Y: b.Y} }

// Contains reports whether p lies inside the box. The right and bottom
// edges are exclusive so adjacent boxes never both claim a point.
func (b Box) Contains(p Point) bool {
	return p.X >= b.X && p.X < b.Right() && p.Y >= b.Y && p.Y < b.Bottom()
}

// Union returns the smallest box containing both b and o.
func (b Box) Union(o Box) Box {
	x0, y0 := math.Min(b.X, o.X), math.Min(b.Y, o.Y)
	x1, y1 := math.Max(b.Right(), o.Right()), math.Max(b.Bottom(), o.Bottom())
	return Box{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Distance returns the euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Clamp limits v to the closed interval [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
