// Package catalog defines the media catalog surface consumed by the
// deduplication pipeline.
//
// The core never talks to a library backend directly. It works on read-only
// Item snapshots fetched through an Adapter and hands removals back through
// the same interface. Backends live in internal/services.
package catalog
