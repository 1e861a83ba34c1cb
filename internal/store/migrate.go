package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS statements (
		id           TEXT PRIMARY KEY,
		sequence     INTEGER NOT NULL UNIQUE,
		actor_key    TEXT NOT NULL,
		actor        TEXT NOT NULL,
		verb_id      TEXT NOT NULL,
		verb_display TEXT NOT NULL,
		object_id    TEXT NOT NULL,
		object_type  TEXT NOT NULL DEFAULT '',
		result       TEXT,
		timestamp    INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS statements_object_id ON statements (object_id)`,
	`CREATE INDEX IF NOT EXISTS statements_timestamp ON statements (timestamp)`,
	`CREATE TABLE IF NOT EXISTS items (
		item_id        TEXT PRIMARY KEY,
		stability      REAL NOT NULL,
		difficulty     REAL NOT NULL,
		elapsed_days   INTEGER NOT NULL DEFAULT 0,
		scheduled_days INTEGER NOT NULL DEFAULT 0,
		reps           INTEGER NOT NULL DEFAULT 0,
		lapses         INTEGER NOT NULL DEFAULT 0,
		state          TEXT NOT NULL,
		last_review    INTEGER,
		next_review    INTEGER,
		activity_types TEXT NOT NULL DEFAULT '[]'
	)`,
	`CREATE INDEX IF NOT EXISTS items_next_review ON items (next_review)`,
	`CREATE TABLE IF NOT EXISTS progress_snapshots (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		course_id TEXT NOT NULL,
		sequence  INTEGER NOT NULL,
		timestamp INTEGER NOT NULL,
		data      TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS progress_snapshots_course ON progress_snapshots (course_id, sequence)`,
}

// migrate creates every table and index that does not exist yet.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "exec %.40q", stmt)
		}
	}
	return nil
}
