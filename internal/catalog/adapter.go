package catalog

import "context"

// Adapter is the catalog backend surface the pipeline depends on.
//
// FetchAllItems returns the full snapshot for one run. A fetch failure is
// fatal for the run; there are no partial scans. MoveToTrash performs a
// reversible removal of a single entry and reports failures tagged with the
// services sentinel errors so callers can classify them.
type Adapter interface {
	FetchAllItems(ctx context.Context) ([]Item, error)
	MoveToTrash(ctx context.Context, itemID string) error
}
