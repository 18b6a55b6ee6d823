package geom

import "math"

// Epsilon is the tolerance below which an overlap counts as touching rather
// than intersecting. It absorbs floating-point residue left by a push-out.
const Epsilon = 1e-9

// Point is a coordinate in board space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale returns p multiplied by s on both axes.
func (p Point) Scale(s float64) Point { return Point{X: p.X * s, Y: p.Y * s} }

// Len returns the Euclidean length of p seen as a vector from the origin.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return q.Sub(p).Len() }

// Angle returns the angle of p as seen from the origin, in radians.
func (p Point) Angle() float64 { return math.Atan2(p.Y, p.X) }

// Polar returns the point at distance r and angle a from the origin.
func Polar(r, a float64) Point {
	return Point{X: r * math.Cos(a), Y: r * math.Sin(a)}
}

// Lerp interpolates between p and q; t=0 yields p and t=1 yields q.
func Lerp(p, q Point, t float64) Point {
	return Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

// Size is a width/height pair.
type Size struct {
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Half returns the size halved on both axes.
func (s Size) Half() Point { return Point{X: s.W / 2, Y: s.H / 2} }

// IsZero reports whether either dimension is non-positive.
func (s Size) IsZero() bool { return s.W <= 0 || s.H <= 0 }

// Rect is an axis-aligned box with a top-left origin.
type Rect struct {
	X, Y float64
	W, H float64
}

// RectAt builds the rectangle of the given size whose top-left corner is p.
func RectAt(p Point, s Size) Rect { return Rect{X: p.X, Y: p.Y, W: s.W, H: s.H} }

// Min returns the top-left corner.
func (r Rect) Min() Point { return Point{X: r.X, Y: r.Y} }

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Center returns the center point.
func (r Rect) Center() Point { return Point{X: r.X + r.W/2, Y: r.Y + r.H/2} }

// Size returns the width and height.
func (r Rect) Size() Size { return Size{W: r.W, H: r.H} }

// Translate returns r moved by d.
func (r Rect) Translate(d Point) Rect {
	r.X += d.X
	r.Y += d.Y
	return r
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	x0 := math.Min(r.X, o.X)
	y0 := math.Min(r.Y, o.Y)
	x1 := math.Max(r.Right(), o.Right())
	y1 := math.Max(r.Bottom(), o.Bottom())
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Overlap returns the penetration depth of a into b on each axis after both
// axes are inflated by gap. A component is positive only when the inflated
// rectangles intersect on that axis.
func Overlap(a, b Rect, gap Size) (dx, dy float64) {
	dx = math.Min(a.Right(), b.Right()) - math.Max(a.X, b.X) + gap.W
	dy = math.Min(a.Bottom(), b.Bottom()) - math.Max(a.Y, b.Y) + gap.H
	return dx, dy
}

// Intersects reports whether a and b intersect once inflated by gap.
func Intersects(a, b Rect, gap Size) bool {
	dx, dy := Overlap(a, b, gap)
	return dx > Epsilon && dy > Epsilon
}

// PushOut returns the translation that moves a out of b along the axis with
// the smaller overlap. The direction points away from b: positive when a sits
// at or beyond b's position on that axis. ok is false when the inflated
// rectangles do not intersect.
//
// Overlap on one axis is resolved independently of the other; simultaneous
// overlaps are not jointly minimized.
func PushOut(a, b Rect, gap Size) (d Point, ok bool) {
	dx, dy := Overlap(a, b, gap)
	if dx <= Epsilon || dy <= Epsilon {
		return Point{}, false
	}
	if dx <= dy {
		if a.X < b.X {
			dx = -dx
		}
		return Point{X: dx}, true
	}
	if a.Y < b.Y {
		dy = -dy
	}
	return Point{Y: dy}, true
}

// Clamp restricts v to [lo, hi]. When lo > hi, hi wins.
func Clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// Near reports whether a and b differ by at most eps.
func Near(a, b, eps float64) bool { return math.Abs(a-b) <= eps }
