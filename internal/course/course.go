package course

import (
	"encoding/json"
	"slices"

	"github.com/pkg/errors"
)

// DefaultMasteryScore is the mastery threshold used when neither the
// objective nor its unit configures one.
const DefaultMasteryScore = 0.8

// MoveOn is the policy deciding what a learner must achieve in a unit
// before it counts as done for progression.
type MoveOn string

const (
	MoveOnNotApplicable      MoveOn = "NotApplicable"
	MoveOnCompleted          MoveOn = "Completed"
	MoveOnPassed             MoveOn = "Passed"
	MoveOnCompletedAndPassed MoveOn = "CompletedAndPassed"
)

// AllMoveOn returns every move-on policy in declaration order.
func AllMoveOn() []MoveOn {
	return []MoveOn{
		MoveOnNotApplicable,
		MoveOnCompleted,
		MoveOnPassed,
		MoveOnCompletedAndPassed,
	}
}

// IsValid reports whether m is one of the known policies. The empty value
// is valid and means NotApplicable.
func (m MoveOn) IsValid() bool {
	switch m {
	case "", MoveOnNotApplicable, MoveOnCompleted, MoveOnPassed, MoveOnCompletedAndPassed:
		return true
	}
	return false
}

// CompletionCriteria configures how a unit's completion is computed from
// its objectives and lesson signals. Every field is optional; a nil pointer
// means the corresponding check is not applied.
type CompletionCriteria struct {
	MasteryScore        *float64 `json:"masteryScore,omitempty"`
	MasteryPercentage   *float64 `json:"masteryPercentage,omitempty"`
	MinMasteredCount    *int     `json:"minMasteredCount,omitempty"`
	RequireAllContent   bool     `json:"requireAllContent,omitempty"`
	RequireAllExercises bool     `json:"requireAllExercises,omitempty"`
}

// Objective is a trackable learning goal inside a unit.
type Objective struct {
	ID string `json:"id"`
	// AltKeys are alternate identifiers under which external mastery
	// records may be stored, in lookup priority order.
	AltKeys      []string `json:"altKeys,omitempty"`
	MasteryScore *float64 `json:"masteryScore,omitempty"`
}

// LookupKeys returns the ordered identifiers used to find this objective's
// mastery record: its own id first, then each non-empty alternate key.
func (o Objective) LookupKeys() []string {
	keys := make([]string, 0, 1+len(o.AltKeys))
	keys = append(keys, o.ID)
	for _, k := range o.AltKeys {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// objectiveJSON is the wire form of an Objective. nodeId and kubitId are
// accepted on read for documents written before altKeys existed.
type objectiveJSON struct {
	ID           string   `json:"id"`
	AltKeys      []string `json:"altKeys,omitempty"`
	NodeID       string   `json:"nodeId,omitempty"`
	KubitID      string   `json:"kubitId,omitempty"`
	MasteryScore *float64 `json:"masteryScore,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler. Legacy nodeId and kubitId
// fields are appended to AltKeys, in that order, when not already present.
func (o *Objective) UnmarshalJSON(data []byte) error {
	var raw objectiveJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "decode objective")
	}
	*o = Objective{
		ID:           raw.ID,
		AltKeys:      raw.AltKeys,
		MasteryScore: raw.MasteryScore,
	}
	for _, legacy := range []string{raw.NodeID, raw.KubitID} {
		if legacy != "" && !slices.Contains(o.AltKeys, legacy) {
			o.AltKeys = append(o.AltKeys, legacy)
		}
	}
	return nil
}

// Unit is an assignable unit: the smallest launchable, trackable lesson.
type Unit struct {
	ID            string              `json:"id"`
	Title         string              `json:"title,omitempty"`
	Order         int                 `json:"order,omitempty"`
	Prerequisites []string            `json:"prerequisites,omitempty"`
	Objectives    []Objective         `json:"objectives,omitempty"`
	Completion    *CompletionCriteria `json:"completionCriteria,omitempty"`
	MoveOn        MoveOn              `json:"moveOn,omitempty"`
	MasteryScore  *float64            `json:"masteryScore,omitempty"`
}

// MoveOnCriteria returns the unit's move-on policy, treating an unset
// policy as NotApplicable.
func (u Unit) MoveOnCriteria() MoveOn {
	if u.MoveOn == "" {
		return MoveOnNotApplicable
	}
	return u.MoveOn
}

// Course is a flat, normalized course definition.
type Course struct {
	ID      string `json:"id"`
	Title   string `json:"title,omitempty"`
	Version string `json:"version,omitempty"`
	Units   []Unit `json:"units"`
}
