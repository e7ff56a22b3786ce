package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/marksync/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// UpsertBookmark inserts a bookmark row or refreshes an existing one. New
// rows default to the end of the instance's folder; existing rows keep
// their position and creation time.
func (s *SQLiteStore) UpsertBookmark(ctx context.Context, bm model.SyncedBookmark) error {
	now := time.Now().UTC()
	if bm.CreatedAt.IsZero() {
		bm.CreatedAt = now
	}
	if bm.UpdatedAt.IsZero() {
		bm.UpdatedAt = now
	}

	if bm.Position == 0 {
		var maxPos sql.NullInt64
		err := s.db.GetContext(ctx, &maxPos,
			"SELECT MAX(position) FROM bookmarks WHERE provider_id = ?",
			bm.ProviderID,
		)
		if err != nil {
			return fmt.Errorf("reading max position for %s: %w", bm.ProviderID, err)
		}
		bm.Position = int(maxPos.Int64) + 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bookmarks (
			provider_id, item_id, title, url, status, priority, position,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(provider_id, item_id) DO UPDATE SET
			title = excluded.title,
			url = excluded.url,
			status = excluded.status,
			priority = excluded.priority,
			updated_at = excluded.updated_at`,
		bm.ProviderID, bm.ItemID, bm.Title, bm.URL, bm.Status,
		bm.Priority, bm.Position, bm.CreatedAt.UTC(), bm.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upserting bookmark %s/%s: %w", bm.ProviderID, bm.ItemID, err)
	}

	return nil
}

// DeleteBookmark removes a bookmark row.
func (s *SQLiteStore) DeleteBookmark(
	ctx context.Context,
	providerID string,
	itemID string,
) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM bookmarks WHERE provider_id = ? AND item_id = ?",
		providerID, itemID,
	)
	if err != nil {
		return fmt.Errorf("deleting bookmark %s/%s: %w", providerID, itemID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete of %s/%s: %w", providerID, itemID, err)
	}
	if affected == 0 {
		return fmt.Errorf("deleting bookmark %s/%s: %w", providerID, itemID, ErrNotFound)
	}

	return nil
}

// ListBookmarks retrieves all bookmarks owned by the given provider
// instance, in stored position order.
func (s *SQLiteStore) ListBookmarks(
	ctx context.Context,
	providerID string,
) ([]model.SyncedBookmark, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT provider_id, item_id, title, url, status, priority, position,
		       created_at, updated_at
		FROM bookmarks WHERE provider_id = ? ORDER BY position`,
		providerID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying bookmarks for %s: %w", providerID, err)
	}
	defer rows.Close()

	return scanBookmarks(rows)
}

// LoadSnapshot retrieves the instance's last successfully synced bookmark
// set, in stored position order.
func (s *SQLiteStore) LoadSnapshot(
	ctx context.Context,
	providerID string,
) ([]model.SyncedBookmark, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT provider_id, item_id, title, url, status, priority, position,
		       created_at, updated_at
		FROM snapshots WHERE provider_id = ? ORDER BY position`,
		providerID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying snapshot for %s: %w", providerID, err)
	}
	defer rows.Close()

	return scanBookmarks(rows)
}

// ReplaceSnapshot atomically swaps the instance's snapshot for the given
// bookmark set. No partial snapshot is ever visible to a later sync cycle.
func (s *SQLiteStore) ReplaceSnapshot(
	ctx context.Context,
	providerID string,
	bookmarks []model.SyncedBookmark,
) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM snapshots WHERE provider_id = ?", providerID,
	); err != nil {
		return fmt.Errorf("clearing snapshot for %s: %w", providerID, err)
	}

	const query = `
		INSERT INTO snapshots (
			provider_id, item_id, title, url, status, priority, position,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing snapshot insert: %w", err)
	}
	defer stmt.Close()

	for _, bm := range bookmarks {
		_, err = stmt.ExecContext(ctx,
			bm.ProviderID, bm.ItemID, bm.Title, bm.URL, bm.Status,
			bm.Priority, bm.Position, bm.CreatedAt.UTC(), bm.UpdatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("inserting snapshot row %s/%s: %w",
				bm.ProviderID, bm.ItemID, err)
		}
	}

	return tx.Commit()
}

// RecordNotification inserts a notification history row.
func (s *SQLiteStore) RecordNotification(
	ctx context.Context,
	n model.NotificationRecord,
) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, provider_id, kind, title, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.ProviderID, n.Kind, n.Title, n.Message, n.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording notification: %w", err)
	}

	return nil
}

// ListNotifications retrieves up to limit notification records, newest
// first. A non-positive limit returns everything.
func (s *SQLiteStore) ListNotifications(
	ctx context.Context,
	limit int,
) ([]model.NotificationRecord, error) {
	query := "SELECT id, provider_id, kind, title, message, created_at " +
		"FROM notifications ORDER BY created_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	var records []model.NotificationRecord
	for rows.Next() {
		var n model.NotificationRecord
		err := rows.Scan(&n.ID, &n.ProviderID, &n.Kind, &n.Title,
			&n.Message, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning notification row: %w", err)
		}
		records = append(records, n)
	}

	return records, rows.Err()
}

// scanBookmarks drains a bookmark result set.
func scanBookmarks(rows *sqlx.Rows) ([]model.SyncedBookmark, error) {
	var bookmarks []model.SyncedBookmark
	for rows.Next() {
		var bm model.SyncedBookmark
		err := rows.Scan(
			&bm.ProviderID, &bm.ItemID, &bm.Title, &bm.URL, &bm.Status,
			&bm.Priority, &bm.Position, &bm.CreatedAt, &bm.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning bookmark row: %w", err)
		}
		bookmarks = append(bookmarks, bm)
	}

	return bookmarks, rows.Err()
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
