package motion

import (
	"math"
	"time"

	"github.com/matzehuels/orbitboard/pkg/geom"
)

// MomentumOptions tunes the release slide. Velocities are in board units per
// second.
type MomentumOptions struct {
	// SpeedThreshold is the release speed at or above which a slide starts.
	SpeedThreshold float64
	// Damping scales the release velocity before sliding.
	Damping float64
	// Friction multiplies the velocity after every frame.
	Friction float64
	// VelocityMin ends the slide once both velocity components fall below it.
	VelocityMin float64
	// Frame is the fixed step applied per tick.
	Frame time.Duration
	// MinDt floors the release sample interval.
	MinDt time.Duration
}

// DefaultMomentum returns the stock slide tuning.
func DefaultMomentum() MomentumOptions {
	return MomentumOptions{
		SpeedThreshold: 15,
		Damping:        0.2,
		Friction:       0.92,
		VelocityMin:    1.5,
		Frame:          16 * time.Millisecond,
		MinDt:          8 * time.Millisecond,
	}
}

// Sample is a timestamped drag position.
type Sample struct {
	Pos geom.Point
	At  time.Time
}

// Velocity returns the per-second velocity between two samples. The elapsed
// time is floored at minDt so a release in the same instant as the last
// sample cannot divide by zero.
func Velocity(last, release Sample, minDt time.Duration) geom.Point {
	dt := max(release.At.Sub(last.At), minDt)
	if dt <= 0 {
		return geom.Point{}
	}
	return release.Pos.Sub(last.Pos).Scale(1 / dt.Seconds())
}

// ShouldSlide reports whether a release at velocity v carries momentum.
func (o MomentumOptions) ShouldSlide(v geom.Point) bool {
	return v.Len() >= o.SpeedThreshold
}

// Route returns the phase a card released at velocity v enters: Sliding when
// it carries momentum, Settling when it goes straight to the resolver.
func (o MomentumOptions) Route(v geom.Point) Phase {
	if o.ShouldSlide(v) {
		return Sliding
	}
	return Settling
}

// Tracker keeps the most recent drag sample of a card.
type Tracker struct {
	last Sample
	ok   bool
}

// Record stores a drag sample.
func (t *Tracker) Record(pos geom.Point, at time.Time) {
	t.last = Sample{Pos: pos, At: at}
	t.ok = true
}

// Last returns the most recent sample, if any.
func (t *Tracker) Last() (Sample, bool) { return t.last, t.ok }

// Release computes the release velocity against the last recorded sample. A
// tracker without samples releases at rest.
func (t *Tracker) Release(pos geom.Point, at time.Time, minDt time.Duration) geom.Point {
	if !t.ok {
		return geom.Point{}
	}
	return Velocity(t.last, Sample{Pos: pos, At: at}, minDt)
}

// Slide moves a released card with decaying velocity.
type Slide struct {
	CardID string
	Pos    geom.Point
	Vel    geom.Point
	opts   MomentumOptions
}

// NewSlide starts a slide from pos with the damped release velocity.
func NewSlide(cardID string, pos, release geom.Point, opts MomentumOptions) *Slide {
	return &Slide{
		CardID: cardID,
		Pos:    pos,
		Vel:    release.Scale(opts.Damping),
		opts:   opts,
	}
}

// Step advances one fixed frame.
func (s *Slide) Step(time.Time) (geom.Point, bool) {
	dt := s.opts.Frame.Seconds()
	s.Pos = s.Pos.Add(s.Vel.Scale(dt))
	s.Vel = s.Vel.Scale(s.opts.Friction)
	done := math.Abs(s.Vel.X) < s.opts.VelocityMin && math.Abs(s.Vel.Y) < s.opts.VelocityMin
	return s.Pos, done
}

// Phase reports Sliding.
func (s *Slide) Phase() Phase { return Sliding }
