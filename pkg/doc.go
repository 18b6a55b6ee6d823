// Package pkg provides the libraries behind Orbitboard, a spatial card board
// where cards orbit a fixed hub and never settle on top of each other.
//
// # Overview
//
// The pkg directory is organized into three areas:
//
//  1. Layout core: [geom], [orbit], [collision], [motion] and [viewport] are
//     pure geometry and kinetics with no I/O.
//  2. Board state: [board] owns the cards, [engine] turns pointer input into
//     committed positions, and [storage] persists snapshots.
//  3. Surfaces: [server] exposes the shared board over HTTP, [preview]
//     fetches bookmark previews through [httputil] and [cache], and [export]
//     draws the board with Graphviz.
//
// # Architecture
//
// A card drop flows through the packages like this:
//
//	pointer drag / release
//	         ↓
//	    [engine] (momentum slide or direct drop)
//	         ↓
//	    [collision] (push out of cards, keep clear of the hub)
//	         ↓
//	    [motion] (eased correction to the resolved point)
//	         ↓
//	    [board] (final position committed)
//	         ↓
//	    [storage] (snapshot saved: file, memory, Redis or MongoDB)
//
// # Quick Start
//
//	b := board.New()
//	card := b.AddCard(board.NewCard{Title: "Idea"})
//	b.InitialLayout()
//
//	e := engine.New(b, b, engine.DefaultOptions())
//	rel, _ := e.Drop(card.ID, geom.Pt(-90, -70), time.Now())
//	for e.Animating() {
//	    e.Tick(time.Now())
//	}
//	fmt.Println(rel.Resolved.Position)
//
// # Supporting Packages
//
//   - [config]: TOML configuration for every tunable
//   - [errors]: coded errors shared by the CLI and server
//   - [observability]: hooks for layout, storage, cache and HTTP events
//   - [buildinfo]: version information set at link time
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/orbitboard/pkg/geom
// [orbit]: https://pkg.go.dev/github.com/matzehuels/orbitboard/pkg/orbit
// [collision]: https://pkg.go.dev/github.com/matzehuels/orbitboard/pkg/collision
// [motion]: https://pkg.go.dev/github.com/matzehuels/orbitboard/pkg/motion
// [viewport]: https://pkg.go.dev/github.com/matzehuels/orbitboard/pkg/viewport
// [board]: https://pkg.go.dev/github.com/matzehuels/orbitboard/pkg/board
// [engine]: https://pkg.go.dev/github.com/matzehuels/orbitboard/pkg/engine
// [storage]: https://pkg.go.dev/github.com/matzehuels/orbitboard/pkg/storage
// [server]: https://pkg.go.dev/github.com/matzehuels/orbitboard/pkg/server
// [preview]: https://pkg.go.dev/github.com/matzehuels/orbitboard/pkg/preview
// [httputil]: https://pkg.go.dev/github.com/matzehuels/orbitboard/pkg/httputil
// [cache]: https://pkg.go.dev/github.com/matzehuels/orbitboard/pkg/cache
// [export]: https://pkg.go.dev/github.com/matzehuels/orbitboard/pkg/export
// [config]: https://pkg.go.dev/github.com/matzehuels/orbitboard/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/orbitboard/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/orbitboard/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/orbitboard/pkg/buildinfo
package pkg
