package viewport

import (
	"math"

	"github.com/matzehuels/orbitboard/pkg/geom"
	"github.com/matzehuels/orbitboard/pkg/orbit"
)

// ContainerSizer reports the current size of the surface the board is drawn
// in. A zero size means it has not been measured yet.
type ContainerSizer interface {
	ContainerSize() geom.Size
}

// FixedSize is a ContainerSizer that never changes.
type FixedSize geom.Size

// ContainerSize implements ContainerSizer.
func (s FixedSize) ContainerSize() geom.Size { return geom.Size(s) }

// Options configures a Controller.
type Options struct {
	MinZoom float64
	MaxZoom float64
	// PanMargin is the fraction of the container size the pan may stray from
	// the centered position on each axis.
	PanMargin float64
	// SnapDistance is how close to center, in screen pixels on both axes, a
	// committed pan must be to snap back to Centered.
	SnapDistance float64
	// Fallback is used while the container has no measured size.
	Fallback geom.Size
	// Content is the board-space box the centered view must fit.
	Content geom.Rect
}

// DefaultOptions returns the stock camera limits.
func DefaultOptions() Options {
	return Options{
		MinZoom:      0.2,
		MaxZoom:      1.0,
		PanMargin:    0.2,
		SnapDistance: 2,
		Fallback:     geom.Size{W: 800, H: 600},
		Content:      orbit.DefaultParams().ContentBounds(),
	}
}

// Resolve maps v onto a container of the given size. A centered viewport
// places the hub in the middle at the fit zoom, capped by v.Zoom.
func Resolve(v Viewport, container geom.Size, opts Options) Screen {
	if v.IsCentered() {
		zoom := orbit.FitZoom(container, opts.Content, opts.MaxZoom)
		if v.Zoom > 0 {
			zoom = math.Min(zoom, v.Zoom)
		}
		return Screen{
			X:    container.W / 2,
			Y:    container.H / 2,
			Zoom: geom.Clamp(zoom, opts.MinZoom, opts.MaxZoom),
		}
	}
	return Screen{X: v.X, Y: v.Y, Zoom: geom.Clamp(v.Zoom, opts.MinZoom, opts.MaxZoom)}
}

// Clamp turns a live camera into a committable viewport: zoom is bounded,
// the pan offset is held within the margin around center, and an offset
// within SnapDistance of center becomes Centered.
func Clamp(s Screen, container geom.Size, opts Options) Viewport {
	zoom := geom.Clamp(s.Zoom, opts.MinZoom, opts.MaxZoom)
	cx, cy := container.W/2, container.H/2
	mx, my := container.W*opts.PanMargin, container.H*opts.PanMargin

	x := geom.Clamp(s.X, cx-mx, cx+mx)
	y := geom.Clamp(s.Y, cy-my, cy+my)

	if math.Abs(x-cx) <= opts.SnapDistance && math.Abs(y-cy) <= opts.SnapDistance {
		return Centered(zoom)
	}
	return Explicit(x, y, zoom)
}

// Controller owns the committed viewport and the live camera of an in-flight
// pan. Live updates never touch the committed value; only EndPan does. It is
// not safe for concurrent use.
type Controller struct {
	opts      Options
	sizer     ContainerSizer
	size      geom.Size
	committed Viewport
	live      Screen
	panning   bool
}

// NewController returns a controller starting at initial. sizer may be nil,
// in which case the fallback size is used until Resize is given one.
func NewController(initial Viewport, sizer ContainerSizer, opts Options) *Controller {
	c := &Controller{opts: opts, sizer: sizer, committed: initial}
	c.Resize()
	return c
}

// Options returns the controller limits.
func (c *Controller) Options() Options { return c.opts }

// Resize re-measures the container. Bounds derived from the size are
// recomputed on next use.
func (c *Controller) Resize() geom.Size {
	if c.sizer != nil {
		c.size = c.sizer.ContainerSize()
	}
	return c.Container()
}

// SetSizer replaces the container source and re-measures.
func (c *Controller) SetSizer(s ContainerSizer) geom.Size {
	c.sizer = s
	return c.Resize()
}

// Container returns the measured container size, or the fallback when the
// container reports no size.
func (c *Controller) Container() geom.Size {
	if c.size.IsZero() {
		return c.opts.Fallback
	}
	return c.size
}

// Viewport returns the committed viewport.
func (c *Controller) Viewport() Viewport { return c.committed }

// Set replaces the committed viewport and abandons any pan in progress.
func (c *Controller) Set(v Viewport) {
	c.committed = v
	c.panning = false
}

// Panning reports whether a pan is in progress.
func (c *Controller) Panning() bool { return c.panning }

// Screen returns the camera to draw with: the live one while panning, the
// resolved committed one otherwise.
func (c *Controller) Screen() Screen {
	if c.panning {
		return c.live
	}
	return Resolve(c.committed, c.Container(), c.opts)
}

// BeginPan starts a pan from the current camera.
func (c *Controller) BeginPan() Screen {
	if !c.panning {
		c.live = Resolve(c.committed, c.Container(), c.opts)
		c.panning = true
	}
	return c.live
}

// PanBy moves the live camera by a screen-space delta.
func (c *Controller) PanBy(dx, dy float64) Screen {
	c.BeginPan()
	c.live.X += dx
	c.live.Y += dy
	return c.live
}

// PanTo moves the live camera to an absolute offset.
func (c *Controller) PanTo(x, y float64) Screen {
	c.BeginPan()
	c.live.X, c.live.Y = x, y
	return c.live
}

// ZoomAt sets the live zoom, keeping the board point under the screen point
// anchor fixed. The zoom is not clamped until the pan ends.
func (c *Controller) ZoomAt(zoom float64, anchor geom.Point) Screen {
	c.BeginPan()
	if zoom <= 0 {
		return c.live
	}
	b := c.live.ToBoard(anchor)
	c.live.Zoom = zoom
	c.live.X = anchor.X - b.X*zoom
	c.live.Y = anchor.Y - b.Y*zoom
	return c.live
}

// EndPan clamps the live camera, commits it and returns the committed value.
// Without a pan in progress it returns the committed viewport unchanged.
func (c *Controller) EndPan() Viewport {
	if !c.panning {
		return c.committed
	}
	c.committed = Clamp(c.live, c.Container(), c.opts)
	c.panning = false
	return c.committed
}

// Recenter commits the centered viewport at the current zoom cap.
func (c *Controller) Recenter() Viewport {
	zoom := c.committed.Zoom
	if c.panning {
		zoom = c.live.Zoom
	}
	if zoom > 0 {
		zoom = geom.Clamp(zoom, c.opts.MinZoom, c.opts.MaxZoom)
	}
	c.committed = Centered(zoom)
	c.panning = false
	return c.committed
}
