// Package viewport manages the board camera.
//
// A [Viewport] is either Explicit, a concrete pan offset and zoom, or
// Centered, the default view that keeps the hub in the middle of whatever
// container the board is shown in. Centered is a first-class state; the
// legacy wire format, where x=y=0 stands for it, is handled only by the JSON
// methods.
//
// Screen coordinates follow screen = board·zoom + (X, Y). The hub, at board
// origin, therefore lands on screen point (X, Y).
//
// A [Controller] tracks the live camera while the user pans and commits a
// clamped viewport when the pan ends.
package viewport

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/matzehuels/orbitboard/pkg/geom"
)

// Mode discriminates the two viewport variants.
type Mode uint8

const (
	// ModeCentered resolves against the container at render time.
	ModeCentered Mode = iota
	// ModeExplicit carries a literal pan offset.
	ModeExplicit
)

func (m Mode) String() string {
	if m == ModeExplicit {
		return "explicit"
	}
	return "centered"
}

// Viewport is the committed camera. The zero value is Centered at fit zoom.
type Viewport struct {
	Mode Mode
	// X and Y are the screen-space pan offset. They are ignored when
	// centered.
	X, Y float64
	// Zoom is the scale factor. For a centered viewport it is an upper bound
	// on the fit zoom; zero or less means fit.
	Zoom float64
}

// Explicit returns a viewport with a literal pan offset.
func Explicit(x, y, zoom float64) Viewport {
	return Viewport{Mode: ModeExplicit, X: x, Y: y, Zoom: zoom}
}

// Centered returns the hub-centered viewport capped at zoom.
func Centered(zoom float64) Viewport {
	return Viewport{Mode: ModeCentered, Zoom: zoom}
}

// Default is the viewport of a fresh board.
func Default() Viewport { return Centered(1) }

// IsCentered reports whether v is the centered variant.
func (v Viewport) IsCentered() bool { return v.Mode == ModeCentered }

func (v Viewport) String() string {
	if v.IsCentered() {
		return fmt.Sprintf("centered(zoom=%.2f)", v.Zoom)
	}
	return fmt.Sprintf("explicit(%.1f, %.1f, zoom=%.2f)", v.X, v.Y, v.Zoom)
}

// ErrInvalidViewport is returned when a wire viewport lacks a numeric x, y or
// zoom.
var ErrInvalidViewport = errors.New("viewport: x, y and zoom must be numbers")

// Partial is a wire viewport whose fields may each be absent.
type Partial struct {
	X    *float64 `json:"x,omitempty"`
	Y    *float64 `json:"y,omitempty"`
	Zoom *float64 `json:"zoom,omitempty"`
}

// Apply merges p over v.
func (p Partial) Apply(v Viewport) Viewport { return v.Merge(p.X, p.Y, p.Zoom) }

// FromWire builds a viewport from its flat {x, y, zoom} form, where x=y=0
// means centered.
func FromWire(x, y, zoom float64) Viewport {
	if x == 0 && y == 0 {
		return Centered(zoom)
	}
	return Explicit(x, y, zoom)
}

// Wire returns the flat {x, y, zoom} form of v.
func (v Viewport) Wire() (x, y, zoom float64) {
	if v.IsCentered() {
		return 0, 0, v.Zoom
	}
	return v.X, v.Y, v.Zoom
}

// Merge overrides the wire fields of v that are non-nil.
func (v Viewport) Merge(x, y, zoom *float64) Viewport {
	wx, wy, wz := v.Wire()
	if x != nil {
		wx = *x
	}
	if y != nil {
		wy = *y
	}
	if zoom != nil {
		wz = *zoom
	}
	return FromWire(wx, wy, wz)
}

// MarshalJSON writes {x, y, zoom}. A centered viewport is written as x=y=0.
func (v Viewport) MarshalJSON() ([]byte, error) {
	x, y, zoom := v.Wire()
	return json.Marshal(struct {
		X    float64 `json:"x"`
		Y    float64 `json:"y"`
		Zoom float64 `json:"zoom"`
	}{x, y, zoom})
}

// UnmarshalJSON reads {x, y, zoom}; all three are required. x=y=0 reads back
// as centered.
func (v *Viewport) UnmarshalJSON(data []byte) error {
	var w Partial
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidViewport, err)
	}
	if w.X == nil || w.Y == nil || w.Zoom == nil {
		return ErrInvalidViewport
	}
	*v = FromWire(*w.X, *w.Y, *w.Zoom)
	return nil
}

// Screen is a resolved camera transform.
type Screen struct {
	X, Y float64
	Zoom float64
}

// ToScreen maps a board point to screen space.
func (s Screen) ToScreen(p geom.Point) geom.Point {
	return geom.Pt(p.X*s.Zoom+s.X, p.Y*s.Zoom+s.Y)
}

// ToBoard maps a screen point back to board space.
func (s Screen) ToBoard(p geom.Point) geom.Point {
	if s.Zoom == 0 {
		return geom.Pt(p.X-s.X, p.Y-s.Y)
	}
	return geom.Pt((p.X-s.X)/s.Zoom, (p.Y-s.Y)/s.Zoom)
}
