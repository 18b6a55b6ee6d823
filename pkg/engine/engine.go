// Package engine drives card placement on the board.
//
// An [Engine] turns pointer input into committed card positions. A drag
// produces live positions only; on release the engine either starts a
// momentum slide or resolves the drop point directly, and a resolved point
// far from the drop point is reached through an eased correction. Only the
// final position of an interaction is written to the [CardStore].
//
// The engine owns no timer. The host calls [Engine.Tick] once per frame.
package engine

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orbitboard/pkg/board"
	"github.com/matzehuels/orbitboard/pkg/collision"
	"github.com/matzehuels/orbitboard/pkg/geom"
	"github.com/matzehuels/orbitboard/pkg/motion"
	"github.com/matzehuels/orbitboard/pkg/observability"
	"github.com/matzehuels/orbitboard/pkg/orbit"
	"github.com/matzehuels/orbitboard/pkg/viewport"
)

// ErrNotDraggable is returned when a drag names a card that is not on the
// board's top level.
var ErrNotDraggable = errors.New("card is not a top-level card")

// ErrNoHydrate is returned by [Engine.Hydrate] when the card store cannot
// replace its contents.
var ErrNoHydrate = errors.New("card store does not support hydrate")

// CardStore is the card collaborator the engine reads obstacles from and
// commits final positions to.
type CardStore interface {
	TopLevelCards() []board.Card
	FolderChildren(folderID string) []board.Card
	SetCardPosition(id string, p geom.Point) error
}

// Hydrator is a CardStore that can replace the whole board at once.
type Hydrator interface {
	Hydrate(snap board.Snapshot)
}

// ViewportStore holds the committed viewport.
type ViewportStore interface {
	Viewport() viewport.Viewport
	SetViewport(v viewport.Viewport)
}

// Options configures an Engine.
type Options struct {
	Collision collision.Options
	Momentum  motion.MomentumOptions
	Burst     orbit.BurstOptions
	Viewport  viewport.Options

	// CorrectionDuration is the length of the eased move to a resolved point.
	CorrectionDuration time.Duration
	// CorrectionThreshold is the distance above which a resolved point is
	// eased to rather than committed directly.
	CorrectionThreshold float64

	// Sizer reports the container size for the camera. Nil uses the
	// viewport fallback size.
	Sizer viewport.ContainerSizer

	// Logger receives debug output. Nil discards it.
	Logger *log.Logger
}

// DefaultOptions returns the stock engine configuration.
func DefaultOptions() Options {
	return Options{
		Collision:           collision.DefaultOptions(),
		Momentum:            motion.DefaultMomentum(),
		Burst:               orbit.BurstOptions{Radius: orbit.BurstRadius},
		Viewport:            viewport.DefaultOptions(),
		CorrectionDuration:  motion.DefaultCorrectionDuration,
		CorrectionThreshold: motion.DefaultCorrectionThreshold,
	}
}

// Release describes what happened when a card was let go.
type Release struct {
	CardID   string
	Velocity geom.Point
	// Phase is Sliding, Settling or Idle; Idle means the position was
	// committed immediately.
	Phase motion.Phase
	// Resolved is the committed or target position, set unless sliding.
	Resolved collision.Result
}

// Engine serializes every interaction behind one mutex so that a TUI and an
// HTTP server may share it.
type Engine struct {
	mu sync.Mutex

	cards  CardStore
	views  ViewportStore
	opts   Options
	logger *log.Logger

	anim     *motion.Animator
	trackers map[string]*motion.Tracker
	dragging map[string]bool
	live     map[string]geom.Point
	now      time.Time

	camera *viewport.Controller
}

// New returns an engine over the given stores.
func New(cards CardStore, views ViewportStore, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Collision.MaxIterations <= 0 {
		opts.Collision = collision.DefaultOptions()
	}
	if opts.Momentum.Frame <= 0 {
		opts.Momentum = motion.DefaultMomentum()
	}
	if opts.Viewport.MaxZoom <= 0 {
		opts.Viewport = viewport.DefaultOptions()
	}
	return &Engine{
		cards:    cards,
		views:    views,
		opts:     opts,
		logger:   opts.Logger,
		anim:     motion.NewAnimator(),
		trackers: make(map[string]*motion.Tracker),
		dragging: make(map[string]bool),
		live:     make(map[string]geom.Point),
		camera:   viewport.NewController(views.Viewport(), opts.Sizer, opts.Viewport),
	}
}

// =============================================================================
// Drag
// =============================================================================

// BeginDrag starts dragging a card from pos. Any animation running for the
// card is cancelled without committing.
func (e *Engine) BeginDrag(id string, pos geom.Point, at time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.topLevel(id); !ok {
		return fmt.Errorf("%w: %s", ErrNotDraggable, id)
	}
	if e.anim.Cancel(id) {
		e.logger.Debug("drag interrupted animation", "card", id)
	}
	tr := &motion.Tracker{}
	tr.Record(pos, at)
	e.trackers[id] = tr
	e.dragging[id] = true
	e.live[id] = pos
	return nil
}

// DragTo moves a dragged card. A card not yet being dragged starts a drag.
func (e *Engine) DragTo(id string, pos geom.Point, at time.Time) error {
	e.mu.Lock()
	if e.dragging[id] {
		e.trackers[id].Record(pos, at)
		e.live[id] = pos
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()
	return e.BeginDrag(id, pos, at)
}

// ReleaseDrag lets go of a card at pos. A release at or above the momentum
// threshold starts a slide; anything slower is resolved immediately.
func (e *Engine) ReleaseDrag(id string, pos geom.Point, at time.Time) (Release, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tr, ok := e.trackers[id]
	if !ok {
		tr = &motion.Tracker{}
	}
	delete(e.trackers, id)
	delete(e.dragging, id)
	e.now = at

	v := tr.Release(pos, at, e.opts.Momentum.MinDt)
	if e.opts.Momentum.Route(v) == motion.Sliding {
		speed := v.Len()
		e.logger.Debug("momentum slide", "card", id, "speed", speed)
		observability.Layout().OnSlide(id, speed)
		e.live[id] = pos
		e.anim.Start(id, motion.NewSlide(id, pos, v, e.opts.Momentum), e.settle)
		return Release{CardID: id, Velocity: v, Phase: motion.Sliding}, nil
	}

	res, phase, err := e.resolveLocked(id, pos)
	return Release{CardID: id, Velocity: v, Phase: phase, Resolved: res}, err
}

// Drop places a card at pos without momentum, as a slow release would.
func (e *Engine) Drop(id string, pos geom.Point, at time.Time) (Release, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.topLevel(id); !ok {
		return Release{}, fmt.Errorf("%w: %s", ErrNotDraggable, id)
	}
	e.anim.Cancel(id)
	delete(e.trackers, id)
	delete(e.dragging, id)
	e.now = at
	res, phase, err := e.resolveLocked(id, pos)
	return Release{CardID: id, Phase: phase, Resolved: res}, err
}

// settle is the slide completion callback. It runs inside Tick with the lock
// held.
func (e *Engine) settle(id string, final geom.Point) {
	if _, _, err := e.resolveLocked(id, final); err != nil {
		e.logger.Warn("settle failed", "card", id, "err", err)
	}
}

// resolveLocked resolves desired against a fresh obstacle snapshot, then
// either commits or starts a correction.
func (e *Engine) resolveLocked(id string, desired geom.Point) (collision.Result, motion.Phase, error) {
	card, ok := e.topLevel(id)
	if !ok {
		delete(e.live, id)
		return collision.Result{}, motion.Idle, fmt.Errorf("%w: %s", ErrNotDraggable, id)
	}

	res := collision.Resolve(id, desired, e.obstacles(id), card.Size(), e.opts.Collision)
	moved := desired.Dist(res.Position)
	observability.Layout().OnResolve(id, res.Iterations, res.Converged, moved)
	e.logger.Debug("resolved drop", "card", id, "iterations", res.Iterations, "converged", res.Converged, "moved", moved)

	if collision.NeedsCorrection(desired, res.Position, e.opts.CorrectionThreshold) {
		e.live[id] = desired
		corr := motion.NewCorrection(id, desired, res.Position, e.now, e.opts.CorrectionDuration)
		e.anim.Start(id, corr, e.commit)
		return res, motion.Settling, nil
	}
	return res, motion.Idle, e.commitErr(id, res.Position)
}

func (e *Engine) commit(id string, p geom.Point) {
	if err := e.commitErr(id, p); err != nil {
		e.logger.Warn("commit failed", "card", id, "err", err)
	}
}

func (e *Engine) commitErr(id string, p geom.Point) error {
	delete(e.live, id)
	if err := e.cards.SetCardPosition(id, p); err != nil {
		return fmt.Errorf("commit %s: %w", id, err)
	}
	observability.Layout().OnCommit(id, p.X, p.Y)
	e.logger.Debug("committed position", "card", id, "x", p.X, "y", p.Y)
	return nil
}

func (e *Engine) topLevel(id string) (board.Card, bool) {
	for _, c := range e.cards.TopLevelCards() {
		if c.ID == id {
			return c, true
		}
	}
	return board.Card{}, false
}

// obstacles snapshots every top-level card and the burst children of every
// expanded folder other than the moving one.
func (e *Engine) obstacles(movingID string) []collision.Obstacle {
	top := e.cards.TopLevelCards()
	out := make([]collision.Obstacle, 0, len(top))
	for _, c := range top {
		out = append(out, collision.Obstacle{ID: c.ID, Position: c.Position, Size: c.Size()})
	}
	for _, c := range top {
		if !c.IsFolder() || !c.IsExpanded || c.ID == movingID {
			continue
		}
		out = append(out, collision.BurstObstacles(c.Position, c.Size(), children(e.cards.FolderChildren(c.ID)), e.opts.Burst)...)
	}
	return out
}

func children(cards []board.Card) []collision.Child {
	out := make([]collision.Child, len(cards))
	for i, c := range cards {
		out[i] = collision.Child{ID: c.ID, Size: c.Size()}
	}
	return out
}

// Obstacles returns the obstacle snapshot a drop of movingID would resolve
// against.
func (e *Engine) Obstacles(movingID string) []collision.Obstacle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.obstacles(movingID)
}

// BurstPositions returns the top-left corners of the children of an expanded
// folder, keyed by child id. Collapsed folders yield nothing.
func (e *Engine) BurstPositions(folderID string) map[string]geom.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	folder, ok := e.topLevel(folderID)
	if !ok || !folder.IsFolder() || !folder.IsExpanded {
		return nil
	}
	pos := folder.Position
	if p, ok := e.live[folderID]; ok {
		pos = p
	}
	obs := collision.BurstObstacles(pos, folder.Size(), children(e.cards.FolderChildren(folderID)), e.opts.Burst)
	out := make(map[string]geom.Point, len(obs))
	for _, o := range obs {
		out[o.ID] = o.Position
	}
	return out
}

// =============================================================================
// Frames
// =============================================================================

// Tick advances every running animation to now. Finished slides are resolved
// and finished corrections committed before Tick returns.
func (e *Engine) Tick(now time.Time) []motion.Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = now
	frames := e.anim.Tick(now)
	for _, f := range frames {
		if f.Done {
			continue
		}
		e.live[f.CardID] = f.Pos
	}
	return frames
}

// Animating reports whether any card is sliding or settling.
func (e *Engine) Animating() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.anim.Len() > 0
}

// Phase returns the interaction phase of a card.
func (e *Engine) Phase(id string) motion.Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dragging[id] {
		return motion.Dragging
	}
	return e.anim.Phase(id)
}

// Position returns where a card should be drawn: its live position during an
// interaction, its committed position otherwise.
func (e *Engine) Position(id string) (geom.Point, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p, ok := e.live[id]; ok {
		return p, true
	}
	if c, ok := e.topLevel(id); ok {
		return c.Position, true
	}
	return geom.Point{}, false
}

// Live returns a copy of every transient position.
func (e *Engine) Live() map[string]geom.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]geom.Point, len(e.live))
	for id, p := range e.live {
		out[id] = p
	}
	return out
}

// Cancel abandons any interaction with a card. Nothing is committed.
func (e *Engine) Cancel(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.anim.Cancel(id)
	delete(e.trackers, id)
	delete(e.dragging, id)
	delete(e.live, id)
}

// CancelAll abandons every interaction, as on unmount.
func (e *Engine) CancelAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.anim.CancelAll()
	clear(e.trackers)
	clear(e.dragging)
	clear(e.live)
}

// Hydrate replaces the whole board with snap. Every running animation and
// drag is dropped first so that nothing stale is committed over the new
// board, then the camera is reloaded from the store.
func (e *Engine) Hydrate(snap board.Snapshot) error {
	h, ok := e.cards.(Hydrator)
	if !ok {
		return ErrNoHydrate
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if n := e.anim.Len(); n > 0 {
		e.logger.Debug("hydrate cancelled animations", "count", n)
	}
	e.anim.CancelAll()
	clear(e.trackers)
	clear(e.dragging)
	clear(e.live)
	h.Hydrate(snap)
	e.camera.Set(e.views.Viewport())
	return nil
}

// =============================================================================
// Camera
// =============================================================================

// Screen returns the camera transform to draw with.
func (e *Engine) Screen() viewport.Screen {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.camera.Screen()
}

// PanBy moves the live camera. Nothing is committed until EndPan.
func (e *Engine) PanBy(dx, dy float64) viewport.Screen {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.camera.PanBy(dx, dy)
}

// ZoomAt changes the live zoom around a screen anchor.
func (e *Engine) ZoomAt(zoom float64, anchor geom.Point) viewport.Screen {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.camera.ZoomAt(zoom, anchor)
}

// EndPan clamps the live camera and commits it to the viewport store.
func (e *Engine) EndPan() viewport.Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.camera.EndPan()
	e.views.SetViewport(v)
	e.logger.Debug("committed viewport", "viewport", v.String())
	return v
}

// Recenter commits the centered viewport.
func (e *Engine) Recenter() viewport.Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.camera.Recenter()
	e.views.SetViewport(v)
	return v
}

// Resize re-measures the container.
func (e *Engine) Resize() geom.Size {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.camera.Resize()
}

// SetSizer replaces the container source, as when the host window changes.
func (e *Engine) SetSizer(s viewport.ContainerSizer) geom.Size {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.camera.SetSizer(s)
}

// SyncViewport reloads the committed viewport from the store, as after a
// hydrate.
func (e *Engine) SyncViewport() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.camera.Set(e.views.Viewport())
}
