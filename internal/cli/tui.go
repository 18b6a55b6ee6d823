package cli

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orbitboard/pkg/geom"
	"github.com/matzehuels/orbitboard/pkg/viewport"
)

// Terminal cells are mapped to board pixels at this ratio.
const (
	cellWidth  = 8.0
	cellHeight = 16.0
)

const zoomStep = 1.15

// Board view styles
var (
	boardHubStyle      = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	boardStatusStyle   = lipgloss.NewStyle().Foreground(colorGray)
	boardHelpStyle     = lipgloss.NewStyle().Foreground(colorDim)
	boardSelectedStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
)

// boardCommand creates the board command for the interactive board.
func (c *CLI) boardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Open the board in the terminal",
		Long: `Open the board in the terminal.

Drag cards with the mouse; release quickly to throw them. Drag empty space to
pan and scroll to zoom. Cards never settle on top of the hub or each other.

Keys:
  enter  expand or collapse the selected folder
  x      delete the selected card
  c      toggle the tag cloud
  r      recenter the view
  s      save
  q      save and quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBoard(cmd.Context())
		},
	}
}

func (c *CLI) runBoard(ctx context.Context) error {
	s, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	m := NewBoardModel(ctx, s)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("board ui: %w", err)
	}
	if bm, ok := final.(BoardModel); ok && bm.err != nil {
		return bm.err
	}
	printStats(summarize(s.board, false))
	return nil
}

// =============================================================================
// BoardModel - Interactive board
// =============================================================================

// termSizer reports the terminal size in board pixels.
type termSizer struct{ cols, rows int }

func (t termSizer) ContainerSize() geom.Size {
	return geom.Size{W: float64(t.cols) * cellWidth, H: float64(t.rows) * cellHeight}
}

type frameMsg time.Time

type savedMsg struct{ err error }

// BoardModel is the bubbletea model for the interactive board.
type BoardModel struct {
	ctx context.Context
	s   *session

	cols, rows int

	selected string
	dragging string
	grab     geom.Point
	panning  bool
	last     geom.Point

	status string
	dirty  bool
	err    error
}

// NewBoardModel creates a board model over an open session.
func NewBoardModel(ctx context.Context, s *session) BoardModel {
	return BoardModel{ctx: ctx, s: s, status: "ready"}
}

func frame() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m BoardModel) Init() tea.Cmd {
	return frame()
}

func (m BoardModel) save() tea.Cmd {
	ctx, s := m.ctx, m.s
	return func() tea.Msg { return savedMsg{err: s.save(ctx)} }
}

func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		if len(m.s.engine.Tick(time.Time(msg))) > 0 {
			m.dirty = true
		}
		return m, frame()

	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, max(msg.Height-2, 1)
		m.s.engine.SetSizer(termSizer{cols: m.cols, rows: m.rows})

	case savedMsg:
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error()
		} else {
			m.status = "board written"
			m.dirty = false
		}

	case tea.MouseMsg:
		return m.mouse(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.s.engine.CancelAll()
			if !m.dirty {
				return m, tea.Quit
			}
			if err := m.s.save(m.ctx); err != nil {
				m.err = err
			}
			return m, tea.Quit
		case "s":
			return m, m.save()
		case "r":
			m.s.engine.Recenter()
			m.status = "recentered"
			m.dirty = true
		case "c":
			if m.s.board.ToggleCloud() {
				m.status = "tag cloud on"
			} else {
				m.status = "tag cloud off"
			}
			m.dirty = true
		case "enter", " ":
			if m.selected == "" {
				break
			}
			open, err := m.s.board.ToggleFolder(m.selected)
			switch {
			case err != nil:
				m.status = err.Error()
			case open:
				m.status = "expanded " + m.selected
			default:
				m.status = "collapsed " + m.selected
			}
			m.dirty = m.dirty || err == nil
		case "x", "delete":
			if m.selected == "" {
				break
			}
			m.s.engine.Cancel(m.selected)
			if n := m.s.board.DeleteSelected(); n > 0 {
				m.status = "deleted " + m.selected
				m.dirty = true
			}
			m.selected = ""
		}
	}
	return m, nil
}

func (m BoardModel) mouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	px := geom.Pt((float64(msg.X)+0.5)*cellWidth, (float64(msg.Y)+0.5)*cellHeight)
	now := time.Now()
	e := m.s.engine

	switch {
	case msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown:
		z := e.Screen().Zoom * zoomStep
		if msg.Button == tea.MouseButtonWheelDown {
			z = e.Screen().Zoom / zoomStep
		}
		e.ZoomAt(z, px)
		e.EndPan()
		m.dirty = true

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		screen := e.Screen()
		at := screen.ToBoard(px)
		if id, corner, ok := m.hit(at); ok {
			m.selected = id
			m.s.board.Select(id, false)
			m.dragging = id
			m.grab = at.Sub(corner)
			if err := e.BeginDrag(id, corner, now); err != nil {
				m.status = err.Error()
				m.dragging = ""
			}
			break
		}
		m.selected = ""
		m.s.board.ClearSelection()
		m.panning = true
		m.last = px

	case msg.Action == tea.MouseActionMotion:
		switch {
		case m.dragging != "":
			at := e.Screen().ToBoard(px).Sub(m.grab)
			if err := e.DragTo(m.dragging, at, now); err != nil {
				m.status = err.Error()
				m.dragging = ""
			}
		case m.panning:
			e.PanBy(px.X-m.last.X, px.Y-m.last.Y)
			m.last = px
		}

	case msg.Action == tea.MouseActionRelease:
		switch {
		case m.dragging != "":
			at := e.Screen().ToBoard(px).Sub(m.grab)
			rel, err := e.ReleaseDrag(m.dragging, at, now)
			if err != nil {
				m.status = err.Error()
			} else {
				m.status = fmt.Sprintf("%s %s", m.dragging, rel.Phase)
			}
			m.dragging = ""
			m.dirty = true
		case m.panning:
			e.EndPan()
			m.panning = false
			m.dirty = true
		}
	}
	return m, nil
}

// hit returns the topmost top-level card under a board point and its drawn
// top-left corner.
func (m BoardModel) hit(at geom.Point) (string, geom.Point, bool) {
	cards := m.s.board.TopLevelCards()
	for i := len(cards) - 1; i >= 0; i-- {
		c := cards[i]
		pos, _ := m.s.engine.Position(c.ID)
		r := geom.RectAt(pos, c.Size())
		if at.X >= r.X && at.X <= r.Right() && at.Y >= r.Y && at.Y <= r.Bottom() {
			return c.ID, pos, true
		}
	}
	return "", geom.Point{}, false
}

// =============================================================================
// Rendering
// =============================================================================

type canvas struct {
	cols, rows int
	cells      [][]rune
}

func newCanvas(cols, rows int) *canvas {
	cells := make([][]rune, rows)
	for i := range cells {
		cells[i] = []rune(strings.Repeat(" ", cols))
	}
	return &canvas{cols: cols, rows: rows, cells: cells}
}

func (c *canvas) set(x, y int, r rune) {
	if x >= 0 && y >= 0 && x < c.cols && y < c.rows {
		c.cells[y][x] = r
	}
}

func (c *canvas) text(x, y int, s string, width int) {
	for i, r := range []rune(s) {
		if i >= width {
			break
		}
		c.set(x+i, y, r)
	}
}

// box draws a bordered box with a title. heavy marks the selection.
func (c *canvas) box(x0, y0, x1, y1 int, title string, heavy bool) {
	h, v, tl, tr, bl, br := '─', '│', '┌', '┐', '└', '┘'
	if heavy {
		h, v, tl, tr, bl, br = '━', '┃', '┏', '┓', '┗', '┛'
	}
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			c.set(x, y, ' ')
		}
		c.set(x, y0, h)
		c.set(x, y1, h)
	}
	for y := y0; y <= y1; y++ {
		c.set(x0, y, v)
		c.set(x1, y, v)
	}
	c.set(x0, y0, tl)
	c.set(x1, y0, tr)
	c.set(x0, y1, bl)
	c.set(x1, y1, br)
	if y1-y0 >= 2 && x1-x0 >= 3 {
		c.text(x0+1, y0+1, title, x1-x0-1)
	}
}

func (c *canvas) String() string {
	lines := make([]string, len(c.cells))
	for i, row := range c.cells {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n")
}

// cellRect maps a board rect to terminal cells.
func cellRect(screen viewport.Screen, r geom.Rect) (x0, y0, x1, y1 int) {
	a := screen.ToScreen(r.Min())
	b := screen.ToScreen(geom.Pt(r.Right(), r.Bottom()))
	x0, y0 = int(math.Floor(a.X/cellWidth)), int(math.Floor(a.Y/cellHeight))
	x1, y1 = int(math.Floor(b.X/cellWidth)), int(math.Floor(b.Y/cellHeight))
	return x0, y0, max(x1, x0+2), max(y1, y0+1)
}

func (m BoardModel) View() string {
	if m.cols == 0 {
		return "loading board..."
	}
	screen := m.s.engine.Screen()
	cv := newCanvas(m.cols, m.rows)

	params := m.s.board.Params()
	hub := geom.Rect{X: -params.HubRadius, Y: -params.HubRadius, W: 2 * params.HubRadius, H: 2 * params.HubRadius}
	hx0, hy0, hx1, hy1 := cellRect(screen, hub)
	cv.box(hx0, hy0, hx1, hy1, "hub", false)

	for _, c := range m.s.board.TopLevelCards() {
		pos, _ := m.s.engine.Position(c.ID)
		title := c.Title
		if c.IsFolder() {
			title = fmt.Sprintf("%s (%d)", c.Title, len(c.Children))
		}
		x0, y0, x1, y1 := cellRect(screen, geom.RectAt(pos, c.Size()))
		cv.box(x0, y0, x1, y1, title, c.ID == m.selected)

		if !c.IsFolder() || !c.IsExpanded {
			continue
		}
		burst := m.s.engine.BurstPositions(c.ID)
		for _, child := range m.s.board.FolderChildren(c.ID) {
			p, ok := burst[child.ID]
			if !ok {
				continue
			}
			x0, y0, x1, y1 := cellRect(screen, geom.RectAt(p, child.Size()))
			cv.box(x0, y0, x1, y1, child.Title, false)
		}
	}

	var b strings.Builder
	b.WriteString(cv.String())
	b.WriteString("\n")
	b.WriteString(m.statusLine(screen))
	b.WriteString("\n")
	b.WriteString(boardHelpStyle.Render("drag cards · drag space to pan · scroll to zoom · ⏎ folder · x delete · c cloud · r recenter · s save · q quit"))
	return b.String()
}

func (m BoardModel) statusLine(screen viewport.Screen) string {
	parts := []string{
		boardHubStyle.Render("◉"),
		fmt.Sprintf("%d cards", m.s.board.Len()),
		fmt.Sprintf("zoom %.2f", screen.Zoom),
	}
	if m.selected != "" {
		parts = append(parts, boardSelectedStyle.Render(m.selected))
	}
	if m.dirty {
		parts = append(parts, StyleWarning.Render("unsaved"))
	} else {
		parts = append(parts, StyleSuccess.Render("saved"))
	}
	parts = append(parts, m.status)
	return boardStatusStyle.Render(strings.Join(parts, "  "))
}

var _ tea.Model = BoardModel{}
