package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// The global sequence is shared by statements and progress snapshots, so
// records from different tables can be ordered against each other.

// createSequence ensures the tracking table exists and is seeded.
func createSequence(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return errors.Wrap(err, "create sequence table")
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return errors.Wrap(err, "seed sequence")
	}
	return nil
}

// nextSequence atomically returns the next sequence number and increments
// the counter. When q is a transaction the increment rolls back with it.
func nextSequence(ctx context.Context, q querier) (int64, error) {
	var seq int64
	err := q.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, errors.Wrap(err, "next sequence")
	}
	return seq, nil
}
