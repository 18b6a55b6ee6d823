package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/orbitboard/pkg/board"
)

var tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

// cardTable renders cards with their positions as a bordered table.
func cardTable(cards []board.Card) string {
	rows := make([][]string, 0, len(cards))
	for _, c := range cards {
		kind := string(c.Type)
		if c.IsFolder() {
			state := "collapsed"
			if c.IsExpanded {
				state = "expanded"
			}
			kind = fmt.Sprintf("folder (%d, %s)", len(c.Children), state)
		} else if c.IsBookmark() {
			kind = "bookmark"
		}
		rows = append(rows, []string{
			c.ID,
			truncate(c.Title, 28),
			kind,
			fmt.Sprintf("%.0f, %.0f", c.Position.X, c.Position.Y),
			strings.Join(c.Links, ", "),
			formatRelativeTime(c.UpdatedAt),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Title", "Kind", "Position", "Links", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return tableHeaderStyle
			case col == 0:
				return StyleHighlight
			case col == 3:
				return StyleNumber
			case col == 5:
				return StyleDim
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

// countLinks counts user links among edges.
func countLinks(edges []board.Edge) int {
	n := 0
	for _, e := range edges {
		if e.Kind == board.EdgeLink {
			n++
		}
	}
	return n
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
