// Package export draws a board as a Graphviz diagram.
//
// [ToDOT] emits the hub, every visible card, hub spokes and user links.
// With [Options.Pinned] each node carries a fixed pos attribute taken from
// the board coordinates, so the neato engine reproduces the on-screen layout
// instead of computing its own. [RenderSVG] runs Graphviz in-process through
// go-graphviz; no system binary is needed.
package export
