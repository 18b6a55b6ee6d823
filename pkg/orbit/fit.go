package orbit

import (
	"math"

	"github.com/matzehuels/orbitboard/pkg/geom"
)

// ContentBounds returns the board-space box the default view must show: the
// hub, the ring, a card hanging off the ring, and padding, centered on the hub.
func (p Params) ContentBounds() geom.Rect {
	halfW := p.HubRadius + p.Radius() + p.CardSize.W + p.Padding
	halfH := p.HubRadius + p.Radius() + p.CardSize.H + p.Padding
	return geom.Rect{X: -halfW, Y: -halfH, W: 2 * halfW, H: 2 * halfH}
}

// FitZoom returns the largest zoom not above maxZoom at which bounds fit in a
// container of the given size.
func FitZoom(container geom.Size, bounds geom.Rect, maxZoom float64) float64 {
	if bounds.W <= 0 || bounds.H <= 0 {
		return maxZoom
	}
	return math.Min(maxZoom, math.Min(container.W/bounds.W, container.H/bounds.H))
}
