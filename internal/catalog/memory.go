package catalog

import (
	"context"
	"sync"

	"sweeper/internal/services"
)

// MemoryAdapter is an in-memory catalog backend. It backs tests and offline
// planning against exported snapshots.
type MemoryAdapter struct {
	mu      sync.Mutex
	items   map[string]Item
	trashed map[string]Item

	// FailTrash, when set, is consulted before each MoveToTrash call and its
	// error returned verbatim. Lets tests inject per-item failures.
	FailTrash func(itemID string) error
}

// NewMemoryAdapter seeds an adapter with the provided items.
func NewMemoryAdapter(items []Item) *MemoryAdapter {
	byID := make(map[string]Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return &MemoryAdapter{
		items:   byID,
		trashed: make(map[string]Item),
	}
}

// FetchAllItems returns the live (non-trashed) items sorted by id.
func (m *MemoryAdapter) FetchAllItems(ctx context.Context) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, services.Wrap(services.ErrTransient, "memory catalog", "fetch", "context cancelled", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Item, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, item)
	}
	SortByID(out)
	return out, nil
}

// MoveToTrash relocates an item into the trash set. Unknown ids report
// services.ErrNotFound, matching the live backend semantics.
func (m *MemoryAdapter) MoveToTrash(ctx context.Context, itemID string) error {
	if err := ctx.Err(); err != nil {
		return services.Wrap(services.ErrTransient, "memory catalog", "move to trash", "context cancelled", err)
	}
	if m.FailTrash != nil {
		if err := m.FailTrash(itemID); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[itemID]
	if !ok {
		return services.Wrap(services.ErrNotFound, "memory catalog", "move to trash", "item "+itemID, nil)
	}
	delete(m.items, itemID)
	m.trashed[itemID] = item
	return nil
}

// TrashedCount reports how many items have been moved to the trash.
func (m *MemoryAdapter) TrashedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.trashed)
}

// LiveCount reports how many items remain live.
func (m *MemoryAdapter) LiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
