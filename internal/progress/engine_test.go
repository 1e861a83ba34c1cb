package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/coursetrail/internal/course"
)

// chainCourse is A -> B -> C, where B requires A and C requires B.
func chainCourse() course.Course {
	return course.Course{
		ID:    "chain",
		Title: "Three unit chain",
		Units: []course.Unit{
			{
				ID:         "A",
				Order:      1,
				Objectives: []course.Objective{{ID: "a1"}, {ID: "a2"}},
				Completion: &course.CompletionCriteria{MasteryPercentage: ptr(1.0)},
				MoveOn:     course.MoveOnCompletedAndPassed,
			},
			{
				ID:            "B",
				Order:         2,
				Prerequisites: []string{"A"},
				Objectives:    []course.Objective{{ID: "b1"}},
				Completion:    &course.CompletionCriteria{MasteryPercentage: ptr(1.0), RequireAllContent: true},
				MoveOn:        course.MoveOnCompleted,
			},
			{
				ID:            "C",
				Order:         3,
				Prerequisites: []string{"B"},
				Objectives:    []course.Objective{{ID: "c1"}},
				MoveOn:        course.MoveOnCompleted,
			},
		},
	}
}

func mastered(m float64) ObjectiveRecord {
	return ObjectiveRecord{Mastery: m, Satisfied: ptr(true), Attempts: 1}
}

func TestEvaluate_ChainScenario(t *testing.T) {
	engine := NewEngine(chainCourse(), Options{})

	empty := engine.Evaluate(NewSnapshot())
	assert.Equal(t, StatusAvailable, empty.Units["A"].Status)
	assert.Equal(t, StatusLocked, empty.Units["B"].Status)
	assert.Equal(t, StatusLocked, empty.Units["C"].Status)
	assert.Equal(t, StatusAvailable, empty.Course.Status)
	assert.Equal(t, []string{"A"}, empty.Units["B"].Prerequisites.Unmet)

	snap := NewSnapshot()
	snap.Objectives["a1"] = mastered(0.9)
	snap.Objectives["a2"] = mastered(0.9)

	got := engine.Evaluate(snap)
	a := got.Units["A"]
	assert.True(t, a.Completion.IsComplete)
	assert.True(t, a.Pass.IsPassed)
	assert.InDelta(t, 0.9, a.Pass.AverageMastery, 1e-9)
	assert.Equal(t, 0.8, a.Pass.Threshold)
	assert.Equal(t, StatusPassed, a.Status)

	assert.True(t, got.Units["B"].Prerequisites.Met)
	assert.Equal(t, StatusAvailable, got.Units["B"].Status)
	assert.Equal(t, StatusLocked, got.Units["C"].Status)
	assert.Equal(t, StatusInProgress, got.Course.Status)
	assert.Equal(t, []string{"A", "B", "C"}, got.Order)
}

func TestEvaluate_Deterministic(t *testing.T) {
	engine := NewEngine(chainCourse(), Options{})
	snap := NewSnapshot()
	snap.Objectives["a1"] = ObjectiveRecord{Mastery: 0.7, Attempts: 3, LastAttempted: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}
	snap.CurrentUnit = "A"
	snap.SetSignal("B", LessonSignal{ContentCompleted: true})

	first := engine.Evaluate(snap)
	second := engine.Evaluate(snap)
	assert.Equal(t, first, second)
}

func TestEvaluate_DoesNotMutateSnapshot(t *testing.T) {
	engine := NewEngine(chainCourse(), Options{})
	snap := NewSnapshot()
	snap.Objectives["a1"] = mastered(0.9)
	before := snap.Clone()

	engine.Evaluate(snap)
	assert.Equal(t, before, snap)
}

func TestEvaluate_MissingPrerequisiteLocksUnderLockPolicy(t *testing.T) {
	c := course.Course{ID: "c", Units: []course.Unit{
		{ID: "orphan", Prerequisites: []string{"ghost"}, Objectives: []course.Objective{{ID: "o"}}},
	}}
	snap := NewSnapshot()
	snap.Objectives["o"] = mastered(1)
	snap.MarkCompleted("orphan")

	got := NewEngine(c, Options{MissingPrerequisites: MissingLock}).Evaluate(snap)
	u := got.Units["orphan"]
	assert.Equal(t, StatusLocked, u.Status)
	assert.Equal(t, []string{"ghost"}, u.Prerequisites.Missing)
	assert.Equal(t, []string{"ghost"}, u.Prerequisites.Unmet)
	assert.True(t, u.Completion.IsComplete, "explicit completion still recorded while locked")

	got = NewEngine(c, Options{MissingPrerequisites: MissingIgnore}).Evaluate(snap)
	u = got.Units["orphan"]
	assert.Equal(t, StatusCompleted, u.Status)
	assert.Equal(t, []string{"ghost"}, u.Prerequisites.Missing)
	assert.Empty(t, u.Prerequisites.Unmet)
}

func TestEvaluate_DefaultMissingPolicyLocks(t *testing.T) {
	c := course.Course{ID: "c", Units: []course.Unit{{ID: "u", Prerequisites: []string{"nope"}}}}
	got := NewEngine(c, Options{}).Evaluate(nil)
	assert.Equal(t, StatusLocked, got.Units["u"].Status)
	assert.Equal(t, StatusLocked, got.Course.Status)
}

func TestEvaluate_UnlockOnCompletionFallback(t *testing.T) {
	c := course.Course{ID: "c", Units: []course.Unit{
		{ID: "A", Objectives: []course.Objective{{ID: "a1"}, {ID: "a2"}}},
		{ID: "B", Prerequisites: []string{"A"}},
	}}
	engine := NewEngine(c, Options{})

	snap := NewSnapshot()
	snap.Objectives["a1"] = ObjectiveRecord{Mastery: 0.85, Attempts: 1}
	snap.Objectives["a2"] = ObjectiveRecord{Mastery: 0.5, Attempts: 1}
	got := engine.Evaluate(snap)
	assert.Equal(t, StatusInProgress, got.Units["A"].Status)
	assert.Equal(t, StatusLocked, got.Units["B"].Status)

	snap.Objectives["a2"] = ObjectiveRecord{Mastery: 0.8, Attempts: 2}
	got = engine.Evaluate(snap)
	assert.Equal(t, FallbackAllObjectives, got.Units["A"].Completion.Fallback)
	assert.Equal(t, StatusCompleted, got.Units["A"].Status)
	assert.Equal(t, StatusAvailable, got.Units["B"].Status)
}

func TestEvaluate_MoveOnOrdering(t *testing.T) {
	objectives := []course.Objective{{ID: "o1"}, {ID: "o2"}}
	highButIncomplete := NewSnapshot()
	highButIncomplete.Objectives["o1"] = ObjectiveRecord{Mastery: 1, Satisfied: ptr(true), Attempts: 1}
	highButIncomplete.Objectives["o2"] = ObjectiveRecord{Mastery: 0.7, Satisfied: ptr(false), Attempts: 1}

	tests := []struct {
		moveOn course.MoveOn
		want   Status
	}{
		// average 0.85 passes, but only one of two objectives is mastered
		{course.MoveOnPassed, StatusPassed},
		{course.MoveOnCompletedAndPassed, StatusInProgress},
		{course.MoveOnCompleted, StatusInProgress},
		{course.MoveOnNotApplicable, StatusInProgress},
	}
	for _, tt := range tests {
		t.Run(string(tt.moveOn), func(t *testing.T) {
			c := course.Course{ID: "c", Units: []course.Unit{{ID: "u", Objectives: objectives, MoveOn: tt.moveOn}}}
			got := NewEngine(c, Options{}).Evaluate(highButIncomplete)
			u := got.Units["u"]
			assert.Equal(t, tt.want, u.Status)
		})
	}
}

func TestEvaluate_CompletedAndPassedNeedsBoth(t *testing.T) {
	c := course.Course{ID: "c", Units: []course.Unit{{
		ID:         "u",
		Objectives: []course.Objective{{ID: "o"}},
		MoveOn:     course.MoveOnCompletedAndPassed,
	}}}
	snap := NewSnapshot()
	snap.MarkCompleted("u")
	snap.Objectives["o"] = ObjectiveRecord{Mastery: 0.5, Attempts: 1}

	u := NewEngine(c, Options{}).Evaluate(snap).Units["u"]
	assert.True(t, u.Completion.IsComplete)
	assert.True(t, u.Completion.Explicit)
	assert.False(t, u.Completion.Computed)
	assert.False(t, u.Pass.IsPassed)
	assert.Equal(t, StatusInProgress, u.Status)
	assert.False(t, u.MoveOn.Satisfied)
}

func TestEvaluate_PassedIgnoresCompletion(t *testing.T) {
	c := course.Course{ID: "c", Units: []course.Unit{{
		ID:         "u",
		Objectives: []course.Objective{{ID: "o"}},
		Completion: &course.CompletionCriteria{RequireAllContent: true},
		MoveOn:     course.MoveOnPassed,
	}}}
	snap := NewSnapshot()
	snap.Objectives["o"] = ObjectiveRecord{Mastery: 0.95}

	u := NewEngine(c, Options{}).Evaluate(snap).Units["u"]
	assert.False(t, u.Completion.IsComplete)
	assert.Equal(t, StatusPassed, u.Status)
}

func TestEvaluate_PassThresholdPrecedence(t *testing.T) {
	c := course.Course{ID: "c", Units: []course.Unit{
		{ID: "criteria", Objectives: []course.Objective{{ID: "o"}}, MasteryScore: ptr(0.5),
			Completion: &course.CompletionCriteria{MasteryScore: ptr(0.95)}},
		{ID: "unit", Objectives: []course.Objective{{ID: "o"}}, MasteryScore: ptr(0.5)},
		{ID: "global", Objectives: []course.Objective{{ID: "o"}}},
	}}
	snap := NewSnapshot()
	snap.Objectives["o"] = ObjectiveRecord{Mastery: 0.7}

	got := NewEngine(c, Options{DefaultMasteryScore: 0.6}).Evaluate(snap)
	assert.Equal(t, 0.95, got.Units["criteria"].Pass.Threshold)
	assert.False(t, got.Units["criteria"].Pass.IsPassed)
	assert.Equal(t, 0.5, got.Units["unit"].Pass.Threshold)
	assert.True(t, got.Units["unit"].Pass.IsPassed)
	assert.Equal(t, 0.6, got.Units["global"].Pass.Threshold)
	assert.True(t, got.Units["global"].Pass.IsPassed)
}

func TestEvaluate_NoObjectivesNeverPasses(t *testing.T) {
	c := course.Course{ID: "c", Units: []course.Unit{{ID: "u", MoveOn: course.MoveOnPassed}}}
	snap := NewSnapshot()
	snap.SetSignal("u", LessonSignal{ContentCompleted: true})

	u := NewEngine(c, Options{}).Evaluate(snap).Units["u"]
	assert.False(t, u.Pass.IsPassed)
	assert.True(t, u.Started)
	assert.Equal(t, StatusInProgress, u.Status)
}

func TestEvaluate_StartedSignals(t *testing.T) {
	c := course.Course{ID: "c", Units: []course.Unit{
		{ID: "current", Objectives: []course.Objective{{ID: "x"}}},
		{ID: "attempted", Objectives: []course.Objective{{ID: "y"}}},
		{ID: "signalled", Objectives: []course.Objective{{ID: "z"}}},
		{ID: "untouched", Objectives: []course.Objective{{ID: "w"}}},
	}}
	snap := NewSnapshot()
	snap.SetCurrent("current")
	snap.Objectives["y"] = ObjectiveRecord{Mastery: 0.1, Attempts: 1}
	snap.SetSignal("signalled", LessonSignal{ExercisesCompleted: true})
	snap.Objectives["w"] = ObjectiveRecord{Mastery: 0.1}

	got := NewEngine(c, Options{}).Evaluate(snap)
	assert.Equal(t, StatusInProgress, got.Units["current"].Status)
	assert.Equal(t, StatusInProgress, got.Units["attempted"].Status)
	assert.Equal(t, StatusInProgress, got.Units["signalled"].Status)
	assert.Equal(t, StatusAvailable, got.Units["untouched"].Status)
}

func TestEvaluate_MoveOnPrerequisitePolicy(t *testing.T) {
	c := course.Course{ID: "c", Units: []course.Unit{
		{ID: "A", Objectives: []course.Objective{{ID: "a"}}, MoveOn: course.MoveOnPassed},
		{ID: "B", Prerequisites: []string{"A"}},
	}}
	snap := NewSnapshot()
	// Explicitly completed but not passed.
	snap.MarkCompleted("A")
	snap.Objectives["a"] = ObjectiveRecord{Mastery: 0.2}

	byCompletion := NewEngine(c, Options{Prerequisites: PrerequisiteCompletion}).Evaluate(snap)
	assert.Equal(t, StatusAvailable, byCompletion.Units["B"].Status)

	byMoveOn := NewEngine(c, Options{Prerequisites: PrerequisiteMoveOn}).Evaluate(snap)
	assert.Equal(t, StatusLocked, byMoveOn.Units["B"].Status)
	assert.Equal(t, []string{"A"}, byMoveOn.Units["B"].Prerequisites.Unmet)
}

func TestEvaluate_CycleIsTotal(t *testing.T) {
	c := course.Course{ID: "c", Units: []course.Unit{
		{ID: "X", Prerequisites: []string{"Y"}},
		{ID: "Y", Prerequisites: []string{"X"}},
	}}
	snap := NewSnapshot()
	snap.MarkCompleted("X")

	got := NewEngine(c, Options{}).Evaluate(snap)
	require.Len(t, got.Units, 2)
	// X's prerequisite Y is not complete, so X stays locked; Y reads X's
	// pass-1 completion and unlocks.
	assert.Equal(t, StatusLocked, got.Units["X"].Status)
	assert.Equal(t, StatusAvailable, got.Units["Y"].Status)
}

func TestEvaluate_UnreachableUnitStillEvaluated(t *testing.T) {
	c := course.Course{ID: "c", Units: []course.Unit{
		{ID: "A"},
		{ID: "island", Prerequisites: []string{"island-parent"}},
		{ID: "island-parent", Prerequisites: []string{"ghost"}},
	}}
	got := NewEngine(c, Options{}).Evaluate(NewSnapshot())
	assert.Len(t, got.Units, 3)
	assert.Equal(t, StatusLocked, got.Units["island"].Status)
	assert.Equal(t, StatusLocked, got.Units["island-parent"].Status)
}

func TestEvaluate_EmptyCourse(t *testing.T) {
	got := NewEngine(course.Course{ID: "empty"}, Options{}).Evaluate(nil)
	assert.Empty(t, got.Units)
	assert.Equal(t, StatusLocked, got.Course.Status)
	assert.Equal(t, "empty", got.Course.ID)
}

func TestEvaluation_OrderedAndCounts(t *testing.T) {
	got := NewEngine(chainCourse(), Options{}).Evaluate(nil)
	ordered := got.Ordered()
	require.Len(t, ordered, 3)
	assert.Equal(t, "A", ordered[0].UnitID)
	assert.Equal(t, map[Status]int{StatusAvailable: 1, StatusLocked: 2}, got.Counts())
}

func TestEvaluation_Changes(t *testing.T) {
	before := Evaluation{
		Units: map[string]UnitEvaluation{"a": {Status: StatusAvailable}, "b": {Status: StatusLocked}},
		Order: []string{"a", "b"},
	}
	after := Evaluation{
		Units: map[string]UnitEvaluation{
			"a": {Status: StatusPassed},
			"b": {Status: StatusLocked},
			"c": {Status: StatusAvailable},
		},
		Order: []string{"a", "b", "c"},
	}

	assert.Equal(t, []StatusChange{
		{UnitID: "a", From: StatusAvailable, To: StatusPassed},
		{UnitID: "c", From: StatusLocked, To: StatusAvailable},
	}, after.Changes(before))
	assert.Empty(t, after.Changes(after))
}
