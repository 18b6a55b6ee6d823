// Package motion drives the per-card animations that follow a drag.
//
// Two animations exist. A [Slide] carries a released card forward with a
// decaying velocity; a [Correction] eases a card from where it was dropped to
// where the collision resolver says it belongs. Both are plain values created
// when an interaction starts and dropped when it settles; neither is ever
// persisted.
//
// # Frames
//
// Nothing in this package owns a timer. The host calls [Animator.Tick] once
// per display frame (the TUI does it from a 16ms tea.Tick, tests with a
// synthetic clock) and every running animation advances one step. When an
// animation finishes, its completion callback runs after the frame, so the
// callback may start the next animation for the same card.
//
// # Ownership
//
// An [Animator] holds at most one animation per card. Starting a new one, or
// cancelling, discards the previous animation without running its callback:
// intermediate positions are never committed.
//
// # Interaction phases
//
//	Idle → Dragging → Sliding → Settling → Idle
//	            └──────────────→ Settling ──┘   (slow release)
package motion
