package store

// migration is a single versioned schema change.
type migration struct {
	version int
	sql     string
}

// migrations are applied in order; each runs at most once per database.
var migrations = []migration{
	{
		version: 1,
		sql: `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS bookmarks (
			provider_id TEXT NOT NULL,
			item_id TEXT NOT NULL,
			title TEXT NOT NULL,
			url TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			priority INTEGER NOT NULL DEFAULT 0,
			position INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (provider_id, item_id)
		);

		CREATE INDEX IF NOT EXISTS idx_bookmarks_provider_position
			ON bookmarks(provider_id, position);

		CREATE TABLE IF NOT EXISTS snapshots (
			provider_id TEXT NOT NULL,
			item_id TEXT NOT NULL,
			title TEXT NOT NULL,
			url TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			priority INTEGER NOT NULL DEFAULT 0,
			position INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (provider_id, item_id)
		);

		INSERT INTO schema_version (version) VALUES (1);
		`,
	},
	{
		version: 2,
		sql: `
		CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			provider_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_notifications_created_at
			ON notifications(created_at DESC);

		INSERT INTO schema_version (version) VALUES (2);
		`,
	},
}
