package motion

import (
	"slices"
	"time"

	"github.com/matzehuels/orbitboard/pkg/geom"
)

// Phase is where a card sits in its interaction lifecycle.
type Phase int

const (
	Idle Phase = iota
	Dragging
	Sliding
	Settling
)

func (p Phase) String() string {
	switch p {
	case Dragging:
		return "dragging"
	case Sliding:
		return "sliding"
	case Settling:
		return "settling"
	default:
		return "idle"
	}
}

// Animation is a per-card, frame-stepped motion.
type Animation interface {
	// Step advances the animation to now and returns the current position
	// and whether the animation has finished.
	Step(now time.Time) (geom.Point, bool)
	Phase() Phase
}

// DoneFunc receives the terminal position of an animation.
type DoneFunc func(cardID string, final geom.Point)

// Frame is the transient position of one animated card after a tick.
type Frame struct {
	CardID string
	Pos    geom.Point
	Done   bool
}

type running struct {
	anim   Animation
	onDone DoneFunc
}

// Animator runs at most one animation per card. It is not safe for
// concurrent use; callers serialize access the way a UI thread would.
type Animator struct {
	active map[string]*running
}

// NewAnimator returns an empty animator.
func NewAnimator() *Animator {
	return &Animator{active: make(map[string]*running)}
}

// Start runs anim for cardID, discarding any animation already running for
// that card without calling its callback.
func (a *Animator) Start(cardID string, anim Animation, onDone DoneFunc) {
	a.active[cardID] = &running{anim: anim, onDone: onDone}
}

// Cancel drops the animation for cardID. It reports whether one was running.
func (a *Animator) Cancel(cardID string) bool {
	_, ok := a.active[cardID]
	delete(a.active, cardID)
	return ok
}

// CancelAll drops every running animation.
func (a *Animator) CancelAll() {
	clear(a.active)
}

// Phase returns the phase of the animation running for cardID.
func (a *Animator) Phase(cardID string) Phase {
	if r, ok := a.active[cardID]; ok {
		return r.anim.Phase()
	}
	return Idle
}

// Len returns the number of running animations.
func (a *Animator) Len() int { return len(a.active) }

// Tick advances every animation by one frame, in card id order. Finished
// animations are removed and their callbacks run after all cards have
// stepped.
func (a *Animator) Tick(now time.Time) []Frame {
	ids := make([]string, 0, len(a.active))
	for id := range a.active {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	frames := make([]Frame, 0, len(ids))
	type finished struct {
		id  string
		pos geom.Point
		fn  DoneFunc
	}
	var done []finished

	for _, id := range ids {
		r := a.active[id]
		pos, ok := r.anim.Step(now)
		frames = append(frames, Frame{CardID: id, Pos: pos, Done: ok})
		if ok {
			delete(a.active, id)
			done = append(done, finished{id: id, pos: pos, fn: r.onDone})
		}
	}

	for _, f := range done {
		if f.fn != nil {
			f.fn(f.id, f.pos)
		}
	}
	return frames
}
