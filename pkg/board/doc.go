// Package board holds the cards of an orbit board and their persisted shape.
//
// A [Store] keeps cards and folders in insertion order together with the
// selection, the committed viewport and the cloud flag. Top-level cards orbit
// the hub; cards with a ParentID live inside a folder and are positioned by
// the folder's burst layout when it is expanded.
//
// # Layout phase
//
// A fresh store is [Uninitialized]. [Store.InitialLayout] moves it through
// [LayingOut] to [Stable], placing each top-level card on its orbital slot.
// [Store.Hydrate] jumps straight to [Stable], so positions loaded from
// storage are never replaced by the initial layout.
//
// # Persistence
//
// [Snapshot] is the JSON document exchanged with storage backends and the
// HTTP state endpoint:
//
//	{"cards": [...], "viewport": {"x": 0, "y": 0, "zoom": 1}, "cloudEnabled": true}
package board
