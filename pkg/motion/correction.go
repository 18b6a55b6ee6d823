package motion

import (
	"time"

	"github.com/matzehuels/orbitboard/pkg/geom"
)

// Correction defaults.
const (
	DefaultCorrectionDuration  = 220 * time.Millisecond
	DefaultCorrectionThreshold = 2.0
)

// EaseOutCubic maps linear progress t in [0,1] to a decelerating curve.
func EaseOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

// Correction eases a card from its dropped position to its resolved one.
type Correction struct {
	CardID   string
	From, To geom.Point
	Start    time.Time
	Duration time.Duration
}

// NewCorrection starts a correction at start. A non-positive duration falls
// back to the default.
func NewCorrection(cardID string, from, to geom.Point, start time.Time, d time.Duration) *Correction {
	if d <= 0 {
		d = DefaultCorrectionDuration
	}
	return &Correction{CardID: cardID, From: from, To: to, Start: start, Duration: d}
}

// Step returns the eased position at now. The final frame lands exactly on To.
func (c *Correction) Step(now time.Time) (geom.Point, bool) {
	t := float64(now.Sub(c.Start)) / float64(c.Duration)
	if t >= 1 {
		return c.To, true
	}
	if t < 0 {
		t = 0
	}
	return geom.Lerp(c.From, c.To, EaseOutCubic(t)), false
}

// Phase reports Settling.
func (c *Correction) Phase() Phase { return Settling }
