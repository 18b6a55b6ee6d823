package collision

import (
	"github.com/matzehuels/orbitboard/pkg/geom"
	"github.com/matzehuels/orbitboard/pkg/orbit"
)

// Child is a folder child whose position is always derived from the burst
// layout, never read from the store.
type Child struct {
	ID   string
	Size geom.Size
}

// BurstObstacles projects the children of an expanded folder, whose top-left
// corner is folderPos, into obstacles placed on the folder's burst fan.
func BurstObstacles(folderPos geom.Point, folderSize geom.Size, children []Child, opts orbit.BurstOptions) []Obstacle {
	center := geom.RectAt(folderPos, folderSize).Center()
	out := make([]Obstacle, 0, len(children))
	for i, c := range children {
		childCenter := center.Add(orbit.BurstOffset(center, i, len(children), opts))
		out = append(out, Obstacle{
			ID:       c.ID,
			Position: childCenter.Sub(c.Size.Half()),
			Size:     c.Size,
		})
	}
	return out
}

// Settled reports whether no pair of obstacles intersects once inflated by
// gap. It is the postcondition a fully converged board satisfies.
func Settled(obstacles []Obstacle, gap geom.Size) bool {
	for i := range obstacles {
		for j := i + 1; j < len(obstacles); j++ {
			if geom.Intersects(obstacles[i].Rect(), obstacles[j].Rect(), gap) {
				return false
			}
		}
	}
	return true
}
