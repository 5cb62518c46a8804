// Package libraryapi provides the HTTP catalog adapter for media servers
// that expose a library REST surface.
//
// The adapter maps HTTP status codes onto the services sentinel errors so the
// executor can classify per-item failures uniformly with the SQLite backend.
package libraryapi
