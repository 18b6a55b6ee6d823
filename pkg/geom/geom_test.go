package geom

import (
	"math"
	"testing"
)

func TestRectAccessors(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 200, H: 140}

	if r.Right() != 210 {
		t.Errorf("Right() = %v, want 210", r.Right())
	}
	if r.Bottom() != 160 {
		t.Errorf("Bottom() = %v, want 160", r.Bottom())
	}
	if c := r.Center(); c != Pt(110, 90) {
		t.Errorf("Center() = %v, want (110, 90)", c)
	}
	if s := r.Size(); s != (Size{W: 200, H: 140}) {
		t.Errorf("Size() = %v", s)
	}
}

func TestOverlap(t *testing.T) {
	gap := Size{W: 4, H: 4}
	tests := []struct {
		name           string
		a, b           Rect
		wantDX, wantDY float64
	}{
		{
			name:   "horizontal intrusion",
			a:      Rect{X: 190, Y: 0, W: 200, H: 140},
			b:      Rect{X: 0, Y: 0, W: 200, H: 140},
			wantDX: 14,
			wantDY: 144,
		},
		{
			name:   "touching edges count as gap overlap",
			a:      Rect{X: 200, Y: 0, W: 200, H: 140},
			b:      Rect{X: 0, Y: 0, W: 200, H: 140},
			wantDX: 4,
			wantDY: 144,
		},
		{
			name:   "far apart",
			a:      Rect{X: 500, Y: 500, W: 10, H: 10},
			b:      Rect{X: 0, Y: 0, W: 10, H: 10},
			wantDX: -486,
			wantDY: -486,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dx, dy := Overlap(tt.a, tt.b, gap)
			if dx != tt.wantDX || dy != tt.wantDY {
				t.Errorf("Overlap() = (%v, %v), want (%v, %v)", dx, dy, tt.wantDX, tt.wantDY)
			}
		})
	}
}

func TestPushOut(t *testing.T) {
	gap := Size{W: 4, H: 4}
	tests := []struct {
		name   string
		a, b   Rect
		want   Point
		wantOK bool
	}{
		{
			name:   "push right",
			a:      Rect{X: 190, Y: 0, W: 200, H: 140},
			b:      Rect{X: 0, Y: 0, W: 200, H: 140},
			want:   Pt(14, 0),
			wantOK: true,
		},
		{
			name:   "push left",
			a:      Rect{X: -190, Y: 0, W: 200, H: 140},
			b:      Rect{X: 0, Y: 0, W: 200, H: 140},
			want:   Pt(-14, 0),
			wantOK: true,
		},
		{
			name:   "push down",
			a:      Rect{X: 0, Y: 130, W: 200, H: 140},
			b:      Rect{X: 0, Y: 0, W: 200, H: 140},
			want:   Pt(0, 14),
			wantOK: true,
		},
		{
			name:   "push up",
			a:      Rect{X: 10, Y: -130, W: 200, H: 140},
			b:      Rect{X: 0, Y: 0, W: 200, H: 140},
			want:   Pt(0, -14),
			wantOK: true,
		},
		{
			name:   "identical rects push positive",
			a:      Rect{X: 0, Y: 0, W: 100, H: 100},
			b:      Rect{X: 0, Y: 0, W: 100, H: 100},
			want:   Pt(104, 0),
			wantOK: true,
		},
		{
			name:   "separated by more than gap",
			a:      Rect{X: 205, Y: 0, W: 200, H: 140},
			b:      Rect{X: 0, Y: 0, W: 200, H: 140},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PushOut(tt.a, tt.b, gap)
			if ok != tt.wantOK {
				t.Fatalf("PushOut() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("PushOut() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPushOutSeparates(t *testing.T) {
	gap := Size{W: 4, H: 4}
	a := Rect{X: 37.3, Y: 12.9, W: 200, H: 140}
	b := Rect{X: 0, Y: 0, W: 232, H: 140}

	d, ok := PushOut(a, b, gap)
	if !ok {
		t.Fatal("expected overlap")
	}
	if Intersects(a.Translate(d), b, gap) {
		t.Errorf("rect still intersects after push-out by %v", d)
	}
}

func TestPointHelpers(t *testing.T) {
	p := Pt(3, 4)
	if p.Len() != 5 {
		t.Errorf("Len() = %v, want 5", p.Len())
	}
	if d := Pt(1, 1).Dist(Pt(4, 5)); d != 5 {
		t.Errorf("Dist() = %v, want 5", d)
	}
	if a := Pt(0, 2).Angle(); a != math.Pi/2 {
		t.Errorf("Angle() = %v, want π/2", a)
	}
	if m := Lerp(Pt(0, 0), Pt(10, -10), 0.25); m != Pt(2.5, -2.5) {
		t.Errorf("Lerp() = %v", m)
	}
	q := Polar(2, math.Pi)
	if !Near(q.X, -2, 1e-12) || !Near(q.Y, 0, 1e-12) {
		t.Errorf("Polar() = %v, want (-2, 0)", q)
	}
}

func TestUnion(t *testing.T) {
	u := Rect{X: 0, Y: 0, W: 10, H: 10}.Union(Rect{X: -5, Y: 5, W: 10, H: 20})
	want := Rect{X: -5, Y: 0, W: 15, H: 25}
	if u != want {
		t.Errorf("Union() = %v, want %v", u, want)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float64
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}
