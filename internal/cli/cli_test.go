package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/orbitboard/pkg/board"
	"github.com/matzehuels/orbitboard/pkg/geom"
	"github.com/matzehuels/orbitboard/pkg/orbit"
	"github.com/matzehuels/orbitboard/pkg/storage"
)

// testEnv points the CLI at a state file in a temp dir.
type testEnv struct {
	dir    string
	config string
	state  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:    dir,
		config: filepath.Join(dir, "config.toml"),
		state:  filepath.Join(dir, "state.json"),
	}
	cfg := "[storage]\nbackend = \"file\"\npath = " + strconvQuote(env.state) + "\n\n[preview]\ncache = \"none\"\n"
	if err := os.WriteFile(env.config, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return env
}

func strconvQuote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func (e *testEnv) run(t *testing.T, args ...string) error {
	t.Helper()
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(append([]string{"--config", e.config}, args...))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func (e *testEnv) mustRun(t *testing.T, args ...string) {
	t.Helper()
	if err := e.run(t, args...); err != nil {
		t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
}

func (e *testEnv) snapshot(t *testing.T) board.Snapshot {
	t.Helper()
	fs, err := storage.NewFileStore(e.state)
	if err != nil {
		t.Fatal(err)
	}
	snap, err := fs.Load(context.Background())
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	return snap
}

func cardByTitle(t *testing.T, snap board.Snapshot, title string) board.Card {
	t.Helper()
	for _, c := range snap.Cards {
		if c.Title == title {
			return c
		}
	}
	t.Fatalf("no card titled %q in %+v", title, snap.Cards)
	return board.Card{}
}

func TestCardsAndLayout(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun(t, "cards", "add", "--title", "Alpha", "--tag", "go", "--color", board.ColorMint)
	env.mustRun(t, "cards", "add", "--title", "Beta", "--url", "https://example.com")
	env.mustRun(t, "cards", "add", "--title", "Box", "--folder")
	env.mustRun(t, "layout")

	snap := env.snapshot(t)
	if len(snap.Cards) != 3 {
		t.Fatalf("got %d cards, want 3", len(snap.Cards))
	}
	r := board.New().Params().Radius()
	for _, c := range snap.Cards {
		if !geom.Near(c.Center().Len(), r, 1e-6) {
			t.Errorf("card %s center at distance %v, want %v", c.Title, c.Center().Len(), r)
		}
	}
	alpha, beta, box := cardByTitle(t, snap, "Alpha"), cardByTitle(t, snap, "Beta"), cardByTitle(t, snap, "Box")
	if alpha.Color != board.ColorMint || len(alpha.Tags) != 1 || !beta.IsBookmark() || !box.IsFolder() {
		t.Errorf("cards not created as requested: %+v", snap.Cards)
	}

	env.mustRun(t, "cards", "link", alpha.ID, beta.ID)
	env.mustRun(t, "cards", "move", beta.ID, box.ID)
	env.mustRun(t, "cards", "toggle", box.ID)

	snap = env.snapshot(t)
	alpha, beta, box = cardByTitle(t, snap, "Alpha"), cardByTitle(t, snap, "Beta"), cardByTitle(t, snap, "Box")
	if !alpha.HasLink(beta.ID) {
		t.Error("link was not saved")
	}
	if beta.ParentID != box.ID || len(box.Children) != 1 || !box.IsExpanded {
		t.Errorf("folder state = %+v / %+v", box, beta)
	}

	env.mustRun(t, "cards", "rm", box.ID)
	snap = env.snapshot(t)
	if len(snap.Cards) != 2 || cardByTitle(t, snap, "Beta").ParentID != "" {
		t.Errorf("deleting a folder should release its child: %+v", snap.Cards)
	}
}

func TestLayoutOnNewBoard(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "layout", "--add", "4")

	snap := env.snapshot(t)
	if len(snap.Cards) != 4 {
		t.Fatalf("got %d cards, want 4", len(snap.Cards))
	}
	r := board.New().Params().Radius()
	for i, c := range snap.Cards {
		want := orbit.Position(i, 4, r)
		if d := c.Center().Dist(want); d > 1e-6 {
			t.Errorf("card %d center = %v, want slot %v", i, c.Center(), want)
		}
	}

	// The saved board is hydrated from now on; layout again keeps the slots.
	env.mustRun(t, "layout")
	again := env.snapshot(t)
	for i, c := range again.Cards {
		if c.Position != snap.Cards[i].Position {
			t.Errorf("card %d moved from %v to %v", i, snap.Cards[i].Position, c.Position)
		}
	}
}

func TestCardsErrors(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "cards", "add", "--title", "Solo")
	solo := cardByTitle(t, env.snapshot(t), "Solo")

	tests := []struct {
		name string
		args []string
	}{
		{"unknown card", []string{"cards", "rm", "missing"}},
		{"self link", []string{"cards", "link", solo.ID, solo.ID}},
		{"toggle non-folder", []string{"cards", "toggle", solo.ID}},
		{"bad position", []string{"cards", "add", "--at", "12"}},
		{"add into non-folder", []string{"cards", "add", "--in", solo.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := env.run(t, tt.args...); err == nil {
				t.Errorf("%v succeeded, want error", tt.args)
			}
		})
	}
	if got := len(env.snapshot(t).Cards); got != 1 {
		t.Errorf("failed commands changed the board: %d cards", got)
	}
}

func TestResolvePushesCardOffNeighbour(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "cards", "add", "--title", "Fixed", "--at", "400,0")
	env.mustRun(t, "cards", "add", "--title", "Moving", "--at", "-600,0")
	moving := cardByTitle(t, env.snapshot(t), "Moving")

	env.mustRun(t, "resolve", moving.ID, "410", "10")

	snap := env.snapshot(t)
	fixed, moved := cardByTitle(t, snap, "Fixed"), cardByTitle(t, snap, "Moving")
	if fixed.Position != geom.Pt(400, 0) {
		t.Errorf("fixed card moved to %v", fixed.Position)
	}
	if geom.Intersects(fixed.Rect(), moved.Rect(), geom.Size{}) {
		t.Errorf("resolved card %v still overlaps %v", moved.Rect(), fixed.Rect())
	}
}

func TestResolveThrowSettles(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "cards", "add", "--title", "Thrown", "--at", "500,0")
	id := cardByTitle(t, env.snapshot(t), "Thrown").ID

	env.mustRun(t, "resolve", id, "500", "0", "--vx", "2000")

	got := cardByTitle(t, env.snapshot(t), "Thrown").Position
	if got.X <= 500 {
		t.Errorf("thrown card at %v, want it to slide right of 500", got)
	}
}

func TestExportImportPositions(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "cards", "add", "--title", "Alpha", "--at", "300,0")
	id := cardByTitle(t, env.snapshot(t), "Alpha").ID

	out := filepath.Join(env.dir, "positions.json")
	env.mustRun(t, "export", "-f", "positions", "-o", out)

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var pos board.Positions
	if err := json.Unmarshal(data, &pos); err != nil {
		t.Fatalf("positions file: %v", err)
	}
	if len(pos.Cards) != 1 || pos.Cards[0].ID != id || pos.ExportedAt.IsZero() {
		t.Errorf("positions = %+v", pos)
	}

	in := filepath.Join(env.dir, "move.json")
	body := `{"cards":[{"id":` + strconvQuote(id) + `,"position":{"x":-250,"y":80}},{"id":"ghost","position":{"x":1,"y":1}}],"viewport":{"zoom":0.5}}`
	if err := os.WriteFile(in, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	env.mustRun(t, "import", in)

	snap := env.snapshot(t)
	if got := cardByTitle(t, snap, "Alpha").Position; got != geom.Pt(-250, 80) {
		t.Errorf("imported position = %v", got)
	}
	if _, _, z := snap.Viewport.Wire(); z != 0.5 {
		t.Errorf("imported zoom = %v, want 0.5", z)
	}

	dot := filepath.Join(env.dir, "board.dot")
	env.mustRun(t, "export", "-f", "dot", "-o", dot)
	data, _ = os.ReadFile(dot)
	if !strings.HasPrefix(string(data), "digraph G {") || !strings.Contains(string(data), "Alpha") {
		t.Errorf("dot export = %q", data)
	}

	if err := env.run(t, "export", "-f", "png"); err == nil {
		t.Error("unknown export format should fail")
	}
}

func TestInvalidConfig(t *testing.T) {
	env := newTestEnv(t)
	if err := os.WriteFile(env.config, []byte("[layout]\nhub_radius = -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := env.run(t, "cards", "list"); err == nil {
		t.Error("invalid config should fail before the command runs")
	}
}
