package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/pkg/errors"

	"github.com/abhisek/coursetrail/internal/spacedrep"
)

const itemsTable = "items"

var itemColumns = []string{
	"item_id", "stability", "difficulty", "elapsed_days", "scheduled_days",
	"reps", "lapses", "state", "last_review", "next_review", "activity_types",
}

// ItemRepo stores scheduler item states. It implements spacedrep.ItemRepo.
type ItemRepo struct {
	db querier
}

var _ spacedrep.ItemRepo = (*ItemRepo)(nil)

// Get returns spacedrep.ErrItemNotFound for an unknown id.
func (r *ItemRepo) Get(ctx context.Context, itemID string) (spacedrep.ItemState, error) {
	b := builder()
	query, args := b.Select(itemColumns...).
		From(b.Table(itemsTable)).
		Where(entsql.EQ("item_id", itemID)).
		Query()
	items, err := r.scan(ctx, query, args)
	if err != nil {
		return spacedrep.ItemState{}, err
	}
	if len(items) == 0 {
		return spacedrep.ItemState{}, errors.Wrapf(spacedrep.ErrItemNotFound, "%q", itemID)
	}
	return items[0], nil
}

// Put inserts or replaces the item.
func (r *ItemRepo) Put(ctx context.Context, it spacedrep.ItemState) error {
	state, err := it.State.MarshalText()
	if err != nil {
		return errors.Wrap(err, "marshal state")
	}
	activities := it.ActivityTypes
	if activities == nil {
		activities = []string{}
	}
	types, err := json.Marshal(activities)
	if err != nil {
		return errors.Wrap(err, "marshal activity types")
	}

	query, args := builder().Insert(itemsTable).
		Columns(itemColumns...).
		Values(it.ItemID, it.Stability, it.Difficulty, it.ElapsedDays, it.ScheduledDays,
			it.Reps, it.Lapses, string(state), nullMillis(it.LastReview), nullMillis(it.NextReview), string(types)).
		OnConflict(entsql.ConflictColumns("item_id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "save item %q", it.ItemID)
	}
	return nil
}

// List returns every item ordered by next review time.
func (r *ItemRepo) List(ctx context.Context) ([]spacedrep.ItemState, error) {
	b := builder()
	query, args := b.Select(itemColumns...).
		From(b.Table(itemsTable)).
		OrderBy("next_review", "item_id").
		Query()
	return r.scan(ctx, query, args)
}

// Delete removes an item. Deleting an unknown item is not an error.
func (r *ItemRepo) Delete(ctx context.Context, itemID string) error {
	query, args := builder().Delete(itemsTable).Where(entsql.EQ("item_id", itemID)).Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "delete item %q", itemID)
	}
	return nil
}

func (r *ItemRepo) scan(ctx context.Context, query string, args []any) ([]spacedrep.ItemState, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query items")
	}
	defer rows.Close()

	var out []spacedrep.ItemState
	for rows.Next() {
		var (
			it         spacedrep.ItemState
			state      string
			last, next sql.NullInt64
			types      string
		)
		if err := rows.Scan(&it.ItemID, &it.Stability, &it.Difficulty, &it.ElapsedDays, &it.ScheduledDays,
			&it.Reps, &it.Lapses, &state, &last, &next, &types); err != nil {
			return nil, errors.Wrap(err, "scan item")
		}
		if err := it.State.UnmarshalText([]byte(state)); err != nil {
			return nil, errors.Wrapf(err, "item %q", it.ItemID)
		}
		if err := json.Unmarshal([]byte(types), &it.ActivityTypes); err != nil {
			return nil, errors.Wrapf(err, "item %q activity types", it.ItemID)
		}
		if len(it.ActivityTypes) == 0 {
			it.ActivityTypes = nil
		}
		if last.Valid {
			it.LastReview = fromMillis(last.Int64)
		}
		if next.Valid {
			it.NextReview = fromMillis(next.Int64)
		}
		out = append(out, it)
	}
	return out, errors.Wrap(rows.Err(), "iterate items")
}

func nullMillis(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(t), Valid: true}
}
