package store

import "time"

// StatementQuery filters the statement log. Zero fields do not filter.
type StatementQuery struct {
	ObjectPrefix string    // object id prefix, e.g. "fsrs:"
	Verb         string    // verb IRI
	ActorKey     string    // statement.Actor.Key()
	Since        time.Time // timestamp >= Since
	Until        time.Time // timestamp <= Until
	AfterSeq     int64     // sequence > AfterSeq
	Limit        int       // max results (0 = unlimited)
	// Ascending returns oldest first; the default is newest first.
	Ascending bool
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
