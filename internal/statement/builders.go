package statement

import (
	"strings"
	"time"
)

// Object types.
const (
	TypeUnit      = "unit"
	TypeObjective = "objective"
	TypeItem      = "item"
)

// ItemPrefix namespaces scheduler item object ids.
const ItemPrefix = "fsrs:"

// Result extension keys recorded on review milestones.
const (
	extBase            = "urn:coursetrail:ext:"
	ExtMilestone       = extBase + "milestone"
	ExtRating          = extBase + "rating"
	ExtActivityType    = extBase + "activityType"
	ExtPreviousMastery = extBase + "previousMastery"
	ExtMastery         = extBase + "mastery"
	ExtPreviousState   = extBase + "previousState"
	ExtState           = extBase + "state"
	ExtReps            = extBase + "reps"
)

// ItemObjectID returns the object id of a scheduler item.
func ItemObjectID(itemID string) string {
	return ItemPrefix + itemID
}

// ItemIDFromObject reverses ItemObjectID.
func ItemIDFromObject(objectID string) (string, bool) {
	return strings.CutPrefix(objectID, ItemPrefix)
}

// UnitObjectID returns the object id of a course unit.
func UnitObjectID(courseID, unitID string) string {
	return courseID + "/" + unitID
}

// ObjectiveObjectID returns the object id of an objective.
func ObjectiveObjectID(courseID, objectiveID string) string {
	return courseID + "/objectives/" + objectiveID
}

// Review describes one scheduler review that produced a milestone.
type Review struct {
	ItemID          string
	Milestone       string
	Rating          string
	ActivityType    string
	Correct         bool
	PreviousMastery float64
	Mastery         float64
	PreviousState   string
	State           string
	Reps            int
}

var milestoneVerbs = map[string]Verb{
	"first-review":      Initialized,
	"mastery-threshold": Mastered,
	"state-transition":  Progressed,
	"periodic":          Experienced,
}

// MilestoneVerb returns the verb recorded for a milestone kind.
func MilestoneVerb(kind string) Verb {
	if v, ok := milestoneVerbs[kind]; ok {
		return v
	}
	return Experienced
}

// ForReview builds the audit statement for a review milestone.
func ForReview(actor Actor, r Review, at time.Time) Statement {
	correct := r.Correct
	score := r.Mastery
	return New(actor, MilestoneVerb(r.Milestone), Object{ID: ItemObjectID(r.ItemID), Type: TypeItem}, &Result{
		Score:   &score,
		Success: &correct,
		Extensions: map[string]any{
			ExtMilestone:       r.Milestone,
			ExtRating:          r.Rating,
			ExtActivityType:    r.ActivityType,
			ExtPreviousMastery: r.PreviousMastery,
			ExtMastery:         r.Mastery,
			ExtPreviousState:   r.PreviousState,
			ExtState:           r.State,
			ExtReps:            r.Reps,
		},
	}, at)
}

// UnitCompleted records an explicit unit completion.
func UnitCompleted(actor Actor, courseID, unitID string, at time.Time) Statement {
	done := true
	return New(actor, Completed, Object{ID: UnitObjectID(courseID, unitID), Type: TypeUnit},
		&Result{Completion: &done}, at)
}

// UnitPassed records that a unit reached the passed status with the given
// average mastery.
func UnitPassed(actor Actor, courseID, unitID string, score float64, at time.Time) Statement {
	success := true
	return New(actor, Passed, Object{ID: UnitObjectID(courseID, unitID), Type: TypeUnit},
		&Result{Score: &score, Success: &success}, at)
}

// UnitLaunched records that a unit became the active one.
func UnitLaunched(actor Actor, courseID, unitID string, at time.Time) Statement {
	return New(actor, Launched, Object{ID: UnitObjectID(courseID, unitID), Type: TypeUnit}, nil, at)
}

// ObjectiveResult records an objective attempt. Satisfied attempts are
// recorded as mastered, others as progressed.
func ObjectiveResult(actor Actor, courseID, objectiveID string, mastery float64, satisfied bool, at time.Time) Statement {
	verb := Progressed
	if satisfied {
		verb = Mastered
	}
	return New(actor, verb, Object{ID: ObjectiveObjectID(courseID, objectiveID), Type: TypeObjective},
		&Result{Score: &mastery, Success: &satisfied}, at)
}

// Lesson signal extension keys.
const (
	ExtContentCompleted   = extBase + "contentCompleted"
	ExtExercisesCompleted = extBase + "exercisesCompleted"
)
