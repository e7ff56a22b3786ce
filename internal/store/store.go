package store

import (
	"context"
	"errors"

	"github.com/nhle/marksync/internal/model"
)

// ErrNotFound is returned when a bookmark mutation targets a row that does
// not exist.
var ErrNotFound = errors.New("bookmark not found")

// Store defines the persistence interface for the local bookmark tree, the
// per-provider sync snapshots, and the notification history. Bookmarks and
// snapshots are keyed by provider instance ID, so multiple configured
// instances of the same provider type hold disjoint rows.
type Store interface {
	// === Bookmarks (the local bookmark tree) ===

	// UpsertBookmark inserts the bookmark or, when the (provider_id,
	// item_id) row already exists, refreshes its mutable fields in place.
	// Re-applying a partially applied plan is therefore safe.
	UpsertBookmark(ctx context.Context, bm model.SyncedBookmark) error
	DeleteBookmark(ctx context.Context, providerID, itemID string) error
	ListBookmarks(ctx context.Context, providerID string) ([]model.SyncedBookmark, error)

	// === Snapshots (last successfully synced set, keyed by instance) ===

	LoadSnapshot(ctx context.Context, providerID string) ([]model.SyncedBookmark, error)
	ReplaceSnapshot(ctx context.Context, providerID string, bookmarks []model.SyncedBookmark) error

	// === Notification history ===

	RecordNotification(ctx context.Context, n model.NotificationRecord) error
	ListNotifications(ctx context.Context, limit int) ([]model.NotificationRecord, error)

	Close() error
}
