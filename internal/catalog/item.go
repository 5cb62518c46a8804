package catalog

import (
	"sort"
	"strings"
)

// Item is a read-only snapshot of one catalog entry taken at scan time.
// A fresh snapshot is fetched for every run; Items are never reused across
// runs because the live catalog may have changed underneath them.
type Item struct {
	// ID is the catalog's opaque unique identifier for the entry.
	ID string `json:"id"`
	// DisplayName is the human-facing title as stored in the catalog.
	DisplayName string `json:"display_name"`
	// SizeBytes is the stored media size. Always >= 0.
	SizeBytes int64 `json:"size_bytes"`
	// Tags carries catalog labels. Order is not meaningful.
	Tags []string `json:"tags,omitempty"`
	// Fingerprint is the opaque content-derived audio identifier, empty when
	// the upstream fingerprint sync has not processed this entry.
	Fingerprint string `json:"fingerprint,omitempty"`
}

// HasTag reports whether the item carries the given tag, compared
// case-insensitively.
func (i Item) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if strings.EqualFold(strings.TrimSpace(t), tag) {
			return true
		}
	}
	return false
}

// SortByID orders items by ascending id. Every pass over catalog items in the
// pipeline sorts first so repeated runs over identical input are
// reproducible.
func SortByID(items []Item) {
	sort.Slice(items, func(a, b int) bool { return items[a].ID < items[b].ID })
}
