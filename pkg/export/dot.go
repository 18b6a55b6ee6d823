package export

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/orbitboard/pkg/board"
	"github.com/matzehuels/orbitboard/pkg/geom"
	"github.com/matzehuels/orbitboard/pkg/orbit"
)

// Board is what a diagram is drawn from. *board.Store implements it.
type Board interface {
	Cards() []board.Card
	Edges() []board.Edge
}

// Options configures diagram output.
type Options struct {
	// Detailed adds the card type, tags and URL to labels.
	Detailed bool

	// Pinned fixes every node at its board position (neato layout).
	Pinned bool

	// Burst places children of expanded folders on their burst arc and
	// draws a dashed edge from the folder. Collapsed folders hide children.
	Burst orbit.BurstOptions
}

// pointsPerPixel converts board pixels to Graphviz points. Board y grows
// downward, Graphviz y grows upward.
const pointsPerPixel = 0.75

// ToDOT converts a board to Graphviz DOT.
func ToDOT(b Board, opts Options) string {
	cards := b.Cards()
	byID := make(map[string]board.Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if opts.Pinned {
		buf.WriteString("  layout=neato;\n")
		buf.WriteString("  splines=true;\n")
	} else {
		buf.WriteString("  layout=twopi;\n")
		buf.WriteString("  root=" + strconv.Quote(board.HubID) + ";\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowhead=none, color=\"#9ca3af\"];\n")
	buf.WriteString("\n")

	hub := []string{`label=""`, "shape=circle", "fillcolor=\"#111827\"", fmt.Sprintf("width=%.2f", 2*orbit.HubRadius*pointsPerPixel/72)}
	if opts.Pinned {
		hub = append(hub, pos(geom.Point{}))
	}
	fmt.Fprintf(&buf, "  %q [%s];\n", board.HubID, strings.Join(hub, ", "))

	visible := make(map[string]bool, len(cards))
	burst := make(map[string]geom.Point)
	for _, c := range cards {
		if !c.IsTopLevel() {
			continue
		}
		visible[c.ID] = true
		if c.IsFolder() && c.IsExpanded {
			kids := presentChildren(c, byID)
			for i, p := range orbit.BurstPositions(c.Center(), len(kids), opts.Burst) {
				visible[kids[i]] = true
				burst[kids[i]] = p
			}
		}
	}

	for _, c := range cards {
		if !visible[c.ID] {
			continue
		}
		center := c.Center()
		if p, ok := burst[c.ID]; ok {
			center = p
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", c.ID, strings.Join(fmtAttrs(c, center, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range b.Edges() {
		if e.Kind == board.EdgeLink && (!visible[e.From] || !visible[e.To]) {
			continue
		}
		switch e.Kind {
		case board.EdgeHub:
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		case board.EdgeLink:
			fmt.Fprintf(&buf, "  %q -> %q [color=\"#6366f1\", arrowhead=normal];\n", e.From, e.To)
		}
	}
	for _, c := range cards {
		if !visible[c.ID] || !c.IsFolder() || !c.IsExpanded {
			continue
		}
		for _, kid := range presentChildren(c, byID) {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", c.ID, kid)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func presentChildren(folder board.Card, byID map[string]board.Card) []string {
	var out []string
	for _, id := range folder.Children {
		if _, ok := byID[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func fmtLabel(c board.Card, detailed bool) string {
	title := c.Title
	if c.Image != "" && !strings.HasPrefix(c.Image, "http") {
		title = c.Image + " " + title
	}
	if !detailed {
		return title
	}

	parts := []string{string(c.Type)}
	if c.IsBookmark() {
		parts = append(parts, c.URL)
	}
	if len(c.Tags) > 0 {
		parts = append(parts, "#"+strings.Join(c.Tags, " #"))
	}
	if c.IsFolder() {
		parts = append(parts, fmt.Sprintf("%d cards", len(c.Children)))
	}
	return title + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(c board.Card, center geom.Point, opts Options) []string {
	size := c.Size()
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(c, opts.Detailed)),
		fmt.Sprintf("width=%.2f", size.W*pointsPerPixel/72),
		fmt.Sprintf("height=%.2f", size.H*pointsPerPixel/72),
		"fixedsize=true",
	}
	if c.Color != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", board.ColorHex(c.Color)))
	}
	if c.IsFolder() {
		attrs = append(attrs, `style="rounded,filled,bold"`)
	}
	if opts.Pinned {
		attrs = append(attrs, pos(center))
	}
	return attrs
}

func pos(p geom.Point) string {
	// 0 - y keeps the hub at +0 rather than -0.
	return fmt.Sprintf("pos=\"%.1f,%.1f!\"", p.X*pointsPerPixel, (0-p.Y)*pointsPerPixel)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag so the SVG scales from a zero
// origin with matching width and height.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
