// Package geom provides the board-space primitives shared by the layout engine.
//
// Board space is independent of screen pixels: the hub sits at the origin and a
// viewport transform maps board coordinates to the screen. Rectangles use a
// top-left origin, matching how cards store their position.
//
// # Overlap
//
// [Overlap] measures how far two rectangles intrude into each other once both
// axes are inflated by a gap margin, and [PushOut] turns that measurement into a
// single-axis translation that separates them:
//
//	a := geom.Rect{X: 190, Y: 0, W: 200, H: 140}
//	b := geom.Rect{X: 0, Y: 0, W: 200, H: 140}
//	d, ok := geom.PushOut(a, b, geom.Size{W: 4, H: 4})
//	// ok == true, d == Point{X: 14, Y: 0}
package geom
