package course

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func validCourse() Course {
	return Course{
		ID:      "course-1",
		Version: "1.2.0",
		Units: []Unit{
			{ID: "a", Objectives: []Objective{{ID: "a1"}, {ID: "a2"}}},
			{ID: "b", Prerequisites: []string{"a"}, MoveOn: MoveOnCompleted},
			{ID: "c", Prerequisites: []string{"b"}, MasteryScore: ptr(0.7)},
		},
	}
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, Validate(validCourse()))
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	c := validCourse()
	c.Version = "not-a-version"
	c.Units = append(c.Units,
		Unit{ID: "a"},
		Unit{ID: "d", Prerequisites: []string{"ghost", "d"}},
		Unit{ID: "e", MoveOn: "Sometimes", MasteryScore: ptr(1.5),
			Completion: &CompletionCriteria{MasteryPercentage: ptr(-0.1), MinMasteredCount: ptr(-1)},
			Objectives: []Objective{{ID: "x"}, {ID: "x", MasteryScore: ptr(2.0)}},
		},
	)

	err := Validate(c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCourse))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "course-1", verr.CourseID)
	assert.GreaterOrEqual(t, len(verr.Problems), 10, "every problem is listed")

	msg := err.Error()
	for _, want := range []string{
		`course version "not-a-version"`,
		`duplicate unit ID: "a"`,
		`unit "d" references nonexistent prerequisite "ghost"`,
		`unit "d" lists itself as a prerequisite`,
		`unit "e": unknown moveOn "Sometimes" (want one of NotApplicable, Completed, Passed, CompletedAndPassed)`,
		`unit "e": masteryScore must be in [0, 1]`,
		`unit "e": masteryPercentage must be in [0, 1]`,
		`unit "e": minMasteredCount must be >= 0`,
		`unit "e": duplicate objective ID "x"`,
		`unit "e" objective "x": masteryScore must be in [0, 1]`,
	} {
		assert.Contains(t, msg, want)
	}
}

func TestValidate_DetectsCycle(t *testing.T) {
	c := Course{ID: "cyc", Units: []Unit{
		{ID: "root"},
		{ID: "x", Prerequisites: []string{"root", "z"}},
		{ID: "y", Prerequisites: []string{"x"}},
		{ID: "z", Prerequisites: []string{"y"}},
	}}

	err := Validate(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prerequisite cycle detected involving units: x, y, z")
	assert.NotContains(t, err.Error(), "root,")
}

func TestValidate_EmptyCourseID(t *testing.T) {
	err := Validate(Course{Units: []Unit{{ID: "a"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "course id is empty")
}

func TestValidate_AcceptsPrefixedVersion(t *testing.T) {
	c := validCourse()
	c.Version = "v2.0.1"
	assert.NoError(t, Validate(c))
}
