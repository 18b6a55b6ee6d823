package cli

import (
	"testing"

	"github.com/matzehuels/orbitboard/pkg/board"
)

func TestSummarize(t *testing.T) {
	b := board.New()
	a := b.AddCard(board.NewCard{Title: "A"})
	c := b.AddCard(board.NewCard{Title: "C"})
	b.AddCard(board.NewCard{Title: "Box", Type: board.TypeFolder})
	if err := b.Link(a.ID, c.ID); err != nil {
		t.Fatal(err)
	}

	got := summarize(b, true)
	want := boardSummary{cards: 3, folders: 1, links: 1, fresh: true}
	if got != want {
		t.Errorf("summarize() = %+v, want %+v", got, want)
	}
}

func TestPlural(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 cards"},
		{1, "1 card"},
		{7, "7 cards"},
	}
	for _, tt := range tests {
		if got := plural(tt.n, "card"); got != tt.want {
			t.Errorf("plural(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
