// Command sweeper scans a media catalog for near-duplicate items, builds a
// removal plan, and optionally executes it against the catalog backend.
package main
