package orbit

import (
	"math"

	"github.com/matzehuels/orbitboard/pkg/geom"
)

// BurstOptions tunes the folder fan.
type BurstOptions struct {
	// Radius is the child distance from the folder center.
	Radius float64

	// CenterSingle places a lone child on the outward direction instead of at
	// the start of the arc.
	CenterSingle bool
}

// BurstAngle returns the angle of child i of total around a folder whose
// center sits at folderCenter. The children span the half circle centered on
// the outward direction from the hub.
func BurstAngle(folderCenter geom.Point, i, total int, centerSingle bool) float64 {
	hubAngle := folderCenter.Angle()
	if total == 1 && centerSingle {
		return hubAngle
	}
	return hubAngle - math.Pi/2 + float64(i)/float64(max(1, total))*math.Pi
}

// BurstOffset returns child i's center relative to the folder center.
func BurstOffset(folderCenter geom.Point, i, total int, opts BurstOptions) geom.Point {
	r := opts.Radius
	if r <= 0 {
		r = BurstRadius
	}
	return geom.Polar(r, BurstAngle(folderCenter, i, total, opts.CenterSingle))
}

// BurstPositions returns the board-space centers of every child of a folder.
func BurstPositions(folderCenter geom.Point, total int, opts BurstOptions) []geom.Point {
	if total <= 0 {
		return nil
	}
	out := make([]geom.Point, total)
	for i := range total {
		out[i] = folderCenter.Add(BurstOffset(folderCenter, i, total, opts))
	}
	return out
}
