// Package server exposes the global board over HTTP.
//
// There is exactly one board, shared by every client. It is loaded lazily
// from a [storage.Store] on first use and written back on every save; the
// last write wins.
//
// Routes:
//
//	GET  /api/tools/state          {cards, viewport, cloudEnabled}
//	POST /api/tools/state          replace the well-formed fields, persist
//	POST /api/bookmark-preview     {url} -> {url, title, description, image}
//	GET  /healthz                  liveness
//
// A POST to /api/tools/state replaces each field only when it is present and
// well formed; the others keep their stored values.
package server
