package collision

import (
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/orbitboard/pkg/geom"
	"github.com/matzehuels/orbitboard/pkg/orbit"
)

var card = geom.Size{W: 200, H: 140}

func TestResolveSideBySide(t *testing.T) {
	obstacles := []Obstacle{
		{ID: "a", Position: geom.Pt(0, 0), Size: card},
	}
	res := Resolve("b", geom.Pt(190, 0), obstacles, card, DefaultOptions())

	if res.Position.X < 204 {
		t.Errorf("final x = %v, want >= 204", res.Position.X)
	}
	if res.Position.Y != 0 {
		t.Errorf("final y = %v, want 0", res.Position.Y)
	}
	if !res.Converged {
		t.Error("expected convergence")
	}
	if res.Iterations != 2 {
		t.Errorf("Iterations = %d, want 2", res.Iterations)
	}
}

func TestResolveIgnoresSelf(t *testing.T) {
	obstacles := []Obstacle{
		{ID: "me", Position: geom.Pt(500, 500), Size: card},
	}
	res := Resolve("me", geom.Pt(500, 500), obstacles, card, DefaultOptions())
	if res.Position != geom.Pt(500, 500) {
		t.Errorf("Position = %v, want unchanged", res.Position)
	}
	if res.Iterations != 1 {
		t.Errorf("Iterations = %d, want 1", res.Iterations)
	}
}

func TestResolveHubClearance(t *testing.T) {
	opts := DefaultOptions()
	minDist := opts.MinDistance(card)

	tests := []struct {
		name    string
		desired geom.Point
	}{
		{"just right of hub", geom.Pt(-90, -70)},
		{"above hub", geom.Pt(-100, -120)},
		{"diagonal", geom.Pt(-40, -20)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve("x", tt.desired, nil, card, opts)
			center := geom.RectAt(res.Position, card).Center()
			if center.Len() < minDist-1e-6 {
				t.Errorf("center distance %v < %v", center.Len(), minDist)
			}
			inCenter := geom.RectAt(tt.desired, card).Center()
			if !geom.Near(center.Angle(), inCenter.Angle(), 1e-9) {
				t.Errorf("angle changed: %v -> %v", inCenter.Angle(), center.Angle())
			}
		})
	}
}

func TestResolveHubCenterDegenerate(t *testing.T) {
	// A card centered exactly on the hub has no push direction.
	desired := geom.Pt(-100, -70)
	res := Resolve("x", desired, nil, card, DefaultOptions())
	if res.Position != desired {
		t.Errorf("Position = %v, want %v", res.Position, desired)
	}
	if !res.Converged {
		t.Error("expected convergence")
	}
}

func TestResolveIterationCap(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxIterations = 1
	obstacles := []Obstacle{{ID: "a", Position: geom.Pt(0, 0), Size: card}}

	res := Resolve("b", geom.Pt(190, 0), obstacles, card, opts)
	if res.Converged {
		t.Error("expected cap to stop the solver before convergence")
	}
	if res.Iterations != 1 {
		t.Errorf("Iterations = %d, want 1", res.Iterations)
	}
	if res.Position != geom.Pt(204, 0) {
		t.Errorf("Position = %v, want (204, 0)", res.Position)
	}
}

func TestResolveZeroIterationsUsesDefault(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxIterations = 0
	res := Resolve("b", geom.Pt(190, 0), []Obstacle{{ID: "a", Size: card}}, card, opts)
	if !res.Converged {
		t.Error("expected default cap to allow convergence")
	}
}

func TestResolveProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	opts := DefaultOptions()
	minDist := opts.MinDistance(card)
	converged := 0

	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.IntN(5)
		obstacles := make([]Obstacle, 0, n)
		for i := 0; i < n; i++ {
			obstacles = append(obstacles, Obstacle{
				ID:       string(rune('a' + i)),
				Position: geom.Pt(rng.Float64()*1600-800, rng.Float64()*1600-800),
				Size:     card,
			})
		}
		desired := geom.Pt(rng.Float64()*1200-600, rng.Float64()*1200-600)

		res := Resolve("moving", desired, obstacles, card, opts)
		if !res.Converged {
			continue
		}
		converged++

		center := geom.RectAt(res.Position, card).Center()
		if center.Len() != 0 && center.Len() < minDist-1e-6 {
			t.Fatalf("trial %d: hub clearance %v < %v", trial, center.Len(), minDist)
		}
		for _, o := range obstacles {
			if geom.Intersects(geom.RectAt(res.Position, card), o.Rect(), opts.Gap) {
				t.Fatalf("trial %d: overlaps %s after convergence", trial, o.ID)
			}
		}

		again := Resolve("moving", res.Position, obstacles, card, opts)
		if again.Position != res.Position {
			t.Fatalf("trial %d: not idempotent: %v -> %v", trial, res.Position, again.Position)
		}
	}

	if converged < 60 {
		t.Errorf("only %d/200 trials converged", converged)
	}
}

func TestNeedsCorrection(t *testing.T) {
	tests := []struct {
		name string
		to   geom.Point
		want bool
	}{
		{"unchanged", geom.Pt(0, 0), false},
		{"within threshold", geom.Pt(1, 1), false},
		{"beyond threshold", geom.Pt(14, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsCorrection(geom.Pt(0, 0), tt.to, 2); got != tt.want {
				t.Errorf("NeedsCorrection() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBurstObstacles(t *testing.T) {
	children := []Child{{ID: "c1", Size: card}}
	obs := BurstObstacles(geom.Pt(180, -70), card, children, orbit.BurstOptions{Radius: 250})

	if len(obs) != 1 {
		t.Fatalf("len = %d, want 1", len(obs))
	}
	if obs[0].ID != "c1" {
		t.Errorf("ID = %q", obs[0].ID)
	}
	want := geom.Pt(180, -320)
	if !geom.Near(obs[0].Position.X, want.X, 1e-9) || !geom.Near(obs[0].Position.Y, want.Y, 1e-9) {
		t.Errorf("Position = %v, want %v", obs[0].Position, want)
	}
}

func TestSettled(t *testing.T) {
	gap := geom.Size{W: 4, H: 4}
	apart := []Obstacle{
		{ID: "a", Position: geom.Pt(0, 0), Size: card},
		{ID: "b", Position: geom.Pt(204, 0), Size: card},
	}
	if !Settled(apart, gap) {
		t.Error("expected settled board")
	}
	tight := []Obstacle{
		{ID: "a", Position: geom.Pt(0, 0), Size: card},
		{ID: "b", Position: geom.Pt(190, 0), Size: card},
	}
	if Settled(tight, gap) {
		t.Error("expected overlapping board")
	}
}
