// Package collision resolves card overlaps on the board.
//
// [Resolve] is a bounded, iterative push-out solver: given where a card was
// dropped, it nudges the card out of every obstacle and out of the hub
// exclusion zone, repeating until a round makes no change or the iteration
// cap is reached. The result is a best-effort heuristic, not a geometric
// guarantee; three or more mutually overlapping obstacles can cycle, in which
// case the capped result is used as-is.
package collision

import (
	"github.com/matzehuels/orbitboard/pkg/geom"
	"github.com/matzehuels/orbitboard/pkg/orbit"
)

// Defaults for [Options].
const (
	DefaultMaxIterations = 12
	DefaultGap           = 4.0
)

// Obstacle is a card footprint taken from a snapshot of the board. It lives
// for a single resolution pass.
type Obstacle struct {
	ID       string
	Position geom.Point
	Size     geom.Size
}

// Rect returns the obstacle footprint.
func (o Obstacle) Rect() geom.Rect { return geom.RectAt(o.Position, o.Size) }

// Options configures [Resolve].
type Options struct {
	MaxIterations int
	Gap           geom.Size
	HubRadius     float64
	MinGap        float64
}

// DefaultOptions returns the stock solver settings.
func DefaultOptions() Options {
	return Options{
		MaxIterations: DefaultMaxIterations,
		Gap:           geom.Size{W: DefaultGap, H: DefaultGap},
		HubRadius:     orbit.HubRadius,
		MinGap:        orbit.MinGap,
	}
}

// OptionsFrom derives solver options from ring geometry.
func OptionsFrom(p orbit.Params) Options {
	o := DefaultOptions()
	o.HubRadius = p.HubRadius
	o.MinGap = p.MinGap
	return o
}

// MinDistance returns the minimum hub-to-center distance for a card of size s.
func (o Options) MinDistance(s geom.Size) float64 {
	return o.HubRadius + o.MinGap + s.W/2
}

// Result is the outcome of a resolution pass.
type Result struct {
	Position   geom.Point
	Iterations int
	// Converged is false when the iteration cap was hit while pushes were
	// still happening.
	Converged bool
}

// Resolve returns the position closest to desired, by repeated push-out, at
// which a card of the given size clears every obstacle other than movingID and
// keeps its minimum distance from the hub. It is pure and deterministic.
func Resolve(movingID string, desired geom.Point, obstacles []Obstacle, size geom.Size, opts Options) Result {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	minDist := opts.MinDistance(size)
	pos := desired

	for round := 1; round <= opts.MaxIterations; round++ {
		pushed := false

		for _, o := range obstacles {
			if o.ID == movingID {
				continue
			}
			if d, ok := geom.PushOut(geom.RectAt(pos, size), o.Rect(), opts.Gap); ok {
				pos = pos.Add(d)
				pushed = true
			}
		}

		if p, ok := clearHub(pos, size, minDist); ok {
			pos = p
			pushed = true
		}

		if !pushed {
			return Result{Position: pos, Iterations: round, Converged: true}
		}
	}
	return Result{Position: pos, Iterations: opts.MaxIterations, Converged: false}
}

// clearHub projects the card center radially out to minDist when it sits
// closer to the hub. A center exactly on the origin has no direction and is
// left alone.
func clearHub(pos geom.Point, size geom.Size, minDist float64) (geom.Point, bool) {
	center := pos.Add(size.Half())
	d := center.Len()
	if d == 0 || d >= minDist-geom.Epsilon {
		return pos, false
	}
	return center.Scale(minDist / d).Sub(size.Half()), true
}

// NeedsCorrection reports whether resolved is far enough from desired that the
// move should be animated rather than committed directly.
func NeedsCorrection(desired, resolved geom.Point, threshold float64) bool {
	return desired.Dist(resolved) > threshold
}
