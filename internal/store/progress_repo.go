package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/pkg/errors"

	"github.com/abhisek/coursetrail/internal/progress"
)

const progressTable = "progress_snapshots"

// ProgressSnapshot is a point-in-time capture of a learner's progress in
// one course.
type ProgressSnapshot struct {
	ID        int64
	CourseID  string
	Sequence  int64
	Timestamp time.Time
	Data      *progress.Snapshot
}

// ProgressRepo manages progress snapshots per course.
type ProgressRepo struct {
	db querier
}

// Save stores a new snapshot, assigning its sequence number.
func (r *ProgressRepo) Save(ctx context.Context, snap *ProgressSnapshot) error {
	if snap.CourseID == "" {
		return errors.New("save progress: course id is required")
	}
	data := snap.Data
	if data == nil {
		data = progress.NewSnapshot()
	}
	b, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "marshal progress")
	}
	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now().UTC()
	}
	seq, err := nextSequence(ctx, r.db)
	if err != nil {
		return err
	}

	query, args := builder().Insert(progressTable).
		Columns("course_id", "sequence", "timestamp", "data").
		Values(snap.CourseID, seq, toMillis(snap.Timestamp), string(b)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "save progress")
	}
	if snap.ID, err = res.LastInsertId(); err != nil {
		return errors.Wrap(err, "save progress")
	}
	snap.Sequence = seq
	return nil
}

// Latest returns the most recent snapshot for courseID, or nil if none
// exist.
func (r *ProgressRepo) Latest(ctx context.Context, courseID string) (*ProgressSnapshot, error) {
	b := builder()
	query, args := b.Select("id", "course_id", "sequence", "timestamp", "data").
		From(b.Table(progressTable)).
		Where(entsql.EQ("course_id", courseID)).
		OrderBy(entsql.Desc("sequence")).
		Limit(1).
		Query()

	var (
		snap ProgressSnapshot
		ts   int64
		data string
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&snap.ID, &snap.CourseID, &snap.Sequence, &ts, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "query latest progress")
	}
	snap.Timestamp = fromMillis(ts)
	snap.Data = progress.NewSnapshot()
	if err := json.Unmarshal([]byte(data), snap.Data); err != nil {
		return nil, errors.Wrap(err, "unmarshal progress")
	}
	return &snap, nil
}

// LatestOrEmpty returns the latest snapshot data for courseID, or an empty
// snapshot when nothing was saved yet.
func (r *ProgressRepo) LatestOrEmpty(ctx context.Context, courseID string) (*progress.Snapshot, error) {
	snap, err := r.Latest(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return progress.NewSnapshot(), nil
	}
	return snap.Data, nil
}

// Prune deletes all but the keep most recent snapshots of courseID.
func (r *ProgressRepo) Prune(ctx context.Context, courseID string, keep int) error {
	b := builder()
	query, args := b.Select("sequence").
		From(b.Table(progressTable)).
		Where(entsql.EQ("course_id", courseID)).
		OrderBy(entsql.Desc("sequence")).
		Offset(keep).
		Limit(1).
		Query()

	var threshold int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&threshold)
	if errors.Is(err, sql.ErrNoRows) {
		return nil // fewer than keep snapshots exist
	}
	if err != nil {
		return errors.Wrap(err, "query progress for prune")
	}

	query, args = builder().Delete(progressTable).
		Where(entsql.And(
			entsql.EQ("course_id", courseID),
			entsql.LTE("sequence", threshold),
		)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "prune progress")
	}
	return nil
}
