package librarydb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"sweeper/internal/catalog"
	"sweeper/internal/services"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS items (
    id           TEXT PRIMARY KEY,
    display_name TEXT NOT NULL,
    size_bytes   INTEGER NOT NULL DEFAULT 0,
    tags         TEXT,
    fingerprint  TEXT,
    trashed_at   TEXT
);
CREATE INDEX IF NOT EXISTS idx_items_trashed_at ON items(trashed_at);
`

// Store is a catalog adapter backed by a local SQLite snapshot database.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
	path string
}

// Open connects to the snapshot database at path, creating it and its schema
// when absent. The accompanying lock file guards against two live runs
// mutating the same database concurrently.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure database directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire catalog lock: %w", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrValidation, "library db", "open", "another sweeper run holds the catalog lock", nil)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, lock: lock, path: path}, nil
}

// Close releases the database connection and the run lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var firstErr error
	if s.db != nil {
		firstErr = s.db.Close()
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// FetchAllItems returns every non-trashed item sorted by id. A query failure
// is fatal for the run; there are no partial snapshots.
func (s *Store) FetchAllItems(ctx context.Context) ([]catalog.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, display_name, size_bytes, tags, fingerprint
         FROM items WHERE trashed_at IS NULL ORDER BY id ASC`)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "library db", "fetch items", "", err)
	}
	defer rows.Close()

	var items []catalog.Item
	for rows.Next() {
		var (
			item        catalog.Item
			tagsJSON    sql.NullString
			fingerprint sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.DisplayName, &item.SizeBytes, &tagsJSON, &fingerprint); err != nil {
			return nil, services.Wrap(services.ErrTransient, "library db", "scan item", "", err)
		}
		if tagsJSON.Valid && tagsJSON.String != "" {
			// Malformed tags degrade scoring for this item only; the scan
			// itself continues.
			_ = json.Unmarshal([]byte(tagsJSON.String), &item.Tags)
		}
		if fingerprint.Valid {
			item.Fingerprint = fingerprint.String
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrTransient, "library db", "iterate items", "", err)
	}
	return items, nil
}

// MoveToTrash stamps the item as trashed. Unknown or already-trashed ids
// report services.ErrNotFound.
func (s *Store) MoveToTrash(ctx context.Context, itemID string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`UPDATE items SET trashed_at = ? WHERE id = ? AND trashed_at IS NULL`, now, itemID)
	if err != nil {
		return services.Wrap(services.ErrTransient, "library db", "move to trash", "item "+itemID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return services.Wrap(services.ErrTransient, "library db", "move to trash", "rows affected", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "library db", "move to trash", "item "+itemID, nil)
	}
	return nil
}

// Restore clears the trash stamp for an item, undoing a prior MoveToTrash.
func (s *Store) Restore(ctx context.Context, itemID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE items SET trashed_at = NULL WHERE id = ? AND trashed_at IS NOT NULL`, itemID)
	if err != nil {
		return services.Wrap(services.ErrTransient, "library db", "restore", "item "+itemID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return services.Wrap(services.ErrTransient, "library db", "restore", "rows affected", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "library db", "restore", "item "+itemID, nil)
	}
	return nil
}

// UpsertItem inserts or replaces a snapshot row. Used by snapshot importers
// and tests.
func (s *Store) UpsertItem(ctx context.Context, item catalog.Item) error {
	var tagsJSON any
	if len(item.Tags) > 0 {
		data, err := json.Marshal(item.Tags)
		if err != nil {
			return services.Wrap(services.ErrValidation, "library db", "upsert item", "encode tags", err)
		}
		tagsJSON = string(data)
	}
	var fingerprint any
	if item.Fingerprint != "" {
		fingerprint = item.Fingerprint
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO items (id, display_name, size_bytes, tags, fingerprint, trashed_at)
         VALUES (?, ?, ?, ?, ?, NULL)
         ON CONFLICT(id) DO UPDATE SET
             display_name = excluded.display_name,
             size_bytes = excluded.size_bytes,
             tags = excluded.tags,
             fingerprint = excluded.fingerprint`,
		item.ID, item.DisplayName, item.SizeBytes, tagsJSON, fingerprint)
	if err != nil {
		return services.Wrap(services.ErrTransient, "library db", "upsert item", "item "+item.ID, err)
	}
	return nil
}

// TrashedCount reports how many rows carry a trash stamp.
func (s *Store) TrashedCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM items WHERE trashed_at IS NOT NULL`).Scan(&count)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "library db", "count trashed", "", err)
	}
	return count, nil
}

var _ catalog.Adapter = (*Store)(nil)
