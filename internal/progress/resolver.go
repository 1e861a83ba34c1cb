package progress

import (
	"time"

	"github.com/abhisek/coursetrail/internal/course"
)

// Source tells which lookup key produced an objective's mastery record.
type Source string

const (
	SourceNone   Source = "none"    // no record found
	SourceID     Source = "id"      // matched the objective id
	SourceAltKey Source = "alt-key" // matched an alternate key
)

// ObjectiveFact is the resolved mastery state of one objective.
type ObjectiveFact struct {
	ID            string    `json:"id"`
	Mastery       float64   `json:"mastery"`
	Satisfied     bool      `json:"satisfied"`
	Attempts      int       `json:"attempts"`
	LastAttempted time.Time `json:"lastAttempted,omitzero"`
	MasteryScore  float64   `json:"masteryScore"`
	Source        Source    `json:"source"`
	MatchedKey    string    `json:"matchedKey,omitempty"`
}

// EffectiveMasteryScore applies the threshold precedence: objective
// override, then unit override, then the global default.
func EffectiveMasteryScore(o course.Objective, u course.Unit, def float64) float64 {
	switch {
	case o.MasteryScore != nil:
		return clamp01(*o.MasteryScore)
	case u.MasteryScore != nil:
		return clamp01(*u.MasteryScore)
	default:
		return def
	}
}

// ResolveObjective finds the mastery record for o by trying its lookup
// keys in order and stopping at the first hit. Without a hit the fact is
// the zero state: mastery 0, satisfied only for a zero threshold.
func ResolveObjective(o course.Objective, snap *Snapshot, masteryScore float64) ObjectiveFact {
	fact := ObjectiveFact{
		ID:           o.ID,
		MasteryScore: masteryScore,
		Source:       SourceNone,
		Satisfied:    0 >= masteryScore,
	}
	if snap == nil || len(snap.Objectives) == 0 {
		return fact
	}

	for i, key := range o.LookupKeys() {
		rec, ok := snap.Objectives[key]
		if !ok {
			continue
		}
		fact.Mastery = clamp01(rec.Mastery)
		fact.Attempts = max(rec.Attempts, 0)
		fact.LastAttempted = rec.LastAttempted
		fact.MatchedKey = key
		fact.Source = SourceAltKey
		if i == 0 {
			fact.Source = SourceID
		}
		if rec.Satisfied != nil {
			fact.Satisfied = *rec.Satisfied
		} else {
			fact.Satisfied = fact.Mastery >= masteryScore
		}
		return fact
	}
	return fact
}
