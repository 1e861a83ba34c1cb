package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/abhisek/coursetrail/internal/statement"
)

const statementsTable = "statements"

var statementColumns = []string{
	"id", "sequence", "actor", "verb_id", "verb_display",
	"object_id", "object_type", "result", "timestamp",
}

// StatementRepo is the append-only statement log.
type StatementRepo struct {
	db querier
}

// Append assigns a sequence number to s and stores it. A nil id is
// replaced with a fresh one and a zero timestamp with the current time.
func (r *StatementRepo) Append(ctx context.Context, s *statement.Statement) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now().UTC()
	}
	actor, err := json.Marshal(s.Actor)
	if err != nil {
		return errors.Wrap(err, "marshal actor")
	}
	var result sql.NullString
	if s.Result != nil {
		b, err := json.Marshal(s.Result)
		if err != nil {
			return errors.Wrap(err, "marshal result")
		}
		result = sql.NullString{String: string(b), Valid: true}
	}

	seq, err := nextSequence(ctx, r.db)
	if err != nil {
		return err
	}

	query, args := builder().Insert(statementsTable).
		Columns(append(statementColumns, "actor_key")...).
		Values(s.ID.String(), seq, string(actor), s.Verb.ID, s.Verb.Display,
			s.Object.ID, s.Object.Type, result, toMillis(s.Timestamp), s.Actor.Key()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "save statement")
	}
	s.Sequence = seq
	return nil
}

// Get returns the statement with the given id, or ErrNotFound.
func (r *StatementRepo) Get(ctx context.Context, id uuid.UUID) (statement.Statement, error) {
	b := builder()
	query, args := b.Select(statementColumns...).
		From(b.Table(statementsTable)).
		Where(entsql.EQ("id", id.String())).
		Query()
	out, err := r.scan(ctx, query, args)
	if err != nil {
		return statement.Statement{}, err
	}
	if len(out) == 0 {
		return statement.Statement{}, errors.Wrapf(ErrNotFound, "statement %s", id)
	}
	return out[0], nil
}

// Query returns the statements matching q.
func (r *StatementRepo) Query(ctx context.Context, q StatementQuery) ([]statement.Statement, error) {
	b := builder()
	sel := b.Select(statementColumns...).From(b.Table(statementsTable))
	applyStatementFilter(sel, q)
	if q.Ascending {
		sel.OrderBy(entsql.Asc("sequence"))
	} else {
		sel.OrderBy(entsql.Desc("sequence"))
	}
	if q.Limit > 0 {
		sel.Limit(q.Limit)
	}
	query, args := sel.Query()
	return r.scan(ctx, query, args)
}

// Count returns how many statements match q. Limit is ignored.
func (r *StatementRepo) Count(ctx context.Context, q StatementQuery) (int, error) {
	b := builder()
	sel := b.Select(entsql.Count("*")).From(b.Table(statementsTable))
	applyStatementFilter(sel, q)
	query, args := sel.Query()

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count statements")
	}
	return n, nil
}

func applyStatementFilter(sel *entsql.Selector, q StatementQuery) {
	if q.ObjectPrefix != "" {
		sel.Where(entsql.HasPrefix("object_id", q.ObjectPrefix))
	}
	if q.Verb != "" {
		sel.Where(entsql.EQ("verb_id", q.Verb))
	}
	if q.ActorKey != "" {
		sel.Where(entsql.EQ("actor_key", q.ActorKey))
	}
	if !q.Since.IsZero() {
		sel.Where(entsql.GTE("timestamp", toMillis(q.Since)))
	}
	if !q.Until.IsZero() {
		sel.Where(entsql.LTE("timestamp", toMillis(q.Until)))
	}
	if q.AfterSeq > 0 {
		sel.Where(entsql.GT("sequence", q.AfterSeq))
	}
}

func (r *StatementRepo) scan(ctx context.Context, query string, args []any) ([]statement.Statement, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query statements")
	}
	defer rows.Close()

	var out []statement.Statement
	for rows.Next() {
		var (
			s      statement.Statement
			id     string
			actor  string
			result sql.NullString
			ts     int64
		)
		if err := rows.Scan(&id, &s.Sequence, &actor, &s.Verb.ID, &s.Verb.Display,
			&s.Object.ID, &s.Object.Type, &result, &ts); err != nil {
			return nil, errors.Wrap(err, "scan statement")
		}
		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, errors.Wrapf(err, "parse statement id %q", id)
		}
		if err := json.Unmarshal([]byte(actor), &s.Actor); err != nil {
			return nil, errors.Wrap(err, "unmarshal actor")
		}
		if result.Valid {
			s.Result = &statement.Result{}
			if err := json.Unmarshal([]byte(result.String), s.Result); err != nil {
				return nil, errors.Wrap(err, "unmarshal result")
			}
		}
		s.Timestamp = fromMillis(ts)
		out = append(out, s)
	}
	return out, errors.Wrap(rows.Err(), "iterate statements")
}
