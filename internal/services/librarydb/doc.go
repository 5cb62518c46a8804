// Package librarydb provides the SQLite-backed catalog adapter.
//
// The database holds an exported snapshot of the media library. Trash moves
// are reversible: a trashed row keeps its data and gains a trashed_at stamp,
// so a restore is a single update. A file lock serializes live runs against
// the same database.
package librarydb
