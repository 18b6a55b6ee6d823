// Package orbit computes radial placements around the board hub.
//
// Top-level cards sit on a ring centered on the hub, one per equal sector.
// Children of an expanded folder fan out on a half circle around the folder,
// oriented away from the hub so they never fold back over it.
package orbit

import (
	"math"

	"github.com/matzehuels/orbitboard/pkg/geom"
)

// Layout constants in board units.
const (
	// HubRadius is the radius of the fixed hub node at the origin.
	HubRadius = 36.0

	// MinGap is the guaranteed clearance between the hub edge and the
	// nearest card edge.
	MinGap = 50.0

	// DefaultOrbitRadius is the configured ring radius for top-level cards.
	DefaultOrbitRadius = 280.0

	// BurstRadius is the distance of folder children from the folder center.
	BurstRadius = 250.0

	// ContentPadding pads the content bounds used for fit zoom.
	ContentPadding = 40.0
)

// Card dimensions.
var (
	CardSize     = geom.Size{W: 200, H: 140}
	BookmarkSize = geom.Size{W: 232, H: 140}
	FolderSize   = geom.Size{W: 200, H: 140}
)

// Params holds the tunable geometry of the ring.
type Params struct {
	HubRadius   float64
	MinGap      float64
	OrbitRadius float64
	BurstRadius float64
	CardSize    geom.Size
	Padding     float64
}

// DefaultParams returns the stock ring geometry.
func DefaultParams() Params {
	return Params{
		HubRadius:   HubRadius,
		MinGap:      MinGap,
		OrbitRadius: DefaultOrbitRadius,
		BurstRadius: BurstRadius,
		CardSize:    CardSize,
		Padding:     ContentPadding,
	}
}

// MinDistance returns the smallest allowed distance between the hub origin and
// the center of a card of the given size.
func (p Params) MinDistance(s geom.Size) float64 {
	return p.HubRadius + p.MinGap + s.W/2
}

// Radius returns the ring radius actually used for top-level placement. It is
// never smaller than MinDistance for a standard card, whatever OrbitRadius says.
func (p Params) Radius() float64 {
	return math.Max(p.OrbitRadius, p.MinDistance(p.CardSize))
}

// Position returns the point at sector index of total equal sectors on a
// circle of the given radius. total <= 0 yields angle 0.
func Position(index, total int, radius float64) geom.Point {
	angle := 0.0
	if total > 0 {
		angle = 2 * math.Pi * float64(index) / float64(total)
	}
	return geom.Polar(radius, angle)
}

// CardPosition returns the top-left corner that centers a card of size s on
// ring slot index of total.
func (p Params) CardPosition(index, total int, s geom.Size) geom.Point {
	return Position(index, total, p.Radius()).Sub(s.Half())
}
