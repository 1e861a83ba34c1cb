package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/coursetrail/internal/course"
)

func TestEvaluateCompletion_Checks(t *testing.T) {
	tests := []struct {
		name     string
		criteria *course.CompletionCriteria
		avg      float64
		mastered int
		total    int
		signal   LessonSignal
		want     bool
		checks   []Check
	}{
		{
			name:     "mastery score met",
			criteria: &course.CompletionCriteria{MasteryScore: ptr(0.7)},
			avg:      0.75, mastered: 1, total: 2,
			want: true, checks: []Check{CheckMasteryScore},
		},
		{
			name:     "mastery score missed",
			criteria: &course.CompletionCriteria{MasteryScore: ptr(0.7)},
			avg:      0.69, mastered: 2, total: 2,
			want: false, checks: []Check{CheckMasteryScore},
		},
		{
			name:     "percentage met",
			criteria: &course.CompletionCriteria{MasteryPercentage: ptr(0.5)},
			mastered: 2, total: 4,
			want: true, checks: []Check{CheckMasteryPercentage},
		},
		{
			name:     "percentage skipped without objectives falls back to signals",
			criteria: &course.CompletionCriteria{MasteryPercentage: ptr(1.0)},
			signal:   LessonSignal{ExercisesCompleted: true},
			want:     true, checks: []Check{},
		},
		{
			name:     "min count",
			criteria: &course.CompletionCriteria{MinMasteredCount: ptr(3)},
			mastered: 2, total: 5,
			want: false, checks: []Check{CheckMinMasteredCount},
		},
		{
			name:     "all checks are combined with and",
			criteria: &course.CompletionCriteria{MasteryPercentage: ptr(1.0), RequireAllContent: true, RequireAllExercises: true},
			mastered: 1, total: 1,
			signal: LessonSignal{ContentCompleted: true},
			want:   false, checks: []Check{CheckMasteryPercentage, CheckContent, CheckExercises},
		},
		{
			name:     "content and exercises done",
			criteria: &course.CompletionCriteria{RequireAllContent: true, RequireAllExercises: true},
			signal:   LessonSignal{ContentCompleted: true, ExercisesCompleted: true},
			want:     true, checks: []Check{CheckContent, CheckExercises},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateCompletion(tt.criteria, tt.avg, tt.mastered, tt.total, tt.signal)
			assert.Equal(t, tt.want, got.IsComplete)
			assert.Equal(t, tt.want, got.Computed)
			assert.Equal(t, tt.checks, got.Checks)
		})
	}
}

func TestEvaluateCompletion_RequirementFlags(t *testing.T) {
	got := EvaluateCompletion(&course.CompletionCriteria{RequireAllContent: true}, 0, 0, 0, LessonSignal{})
	assert.True(t, got.RequiresContent)
	assert.False(t, got.RequiresExercises)
	assert.Equal(t, FallbackNone, got.Fallback)
}

// The zero-check fallback switches rule on objective count alone. Both
// branches are pinned here.
func TestEvaluateCompletion_FallbackWithObjectives(t *testing.T) {
	all := EvaluateCompletion(nil, 0.9, 3, 3, LessonSignal{})
	assert.True(t, all.IsComplete)
	assert.Equal(t, FallbackAllObjectives, all.Fallback)

	some := EvaluateCompletion(nil, 0.9, 2, 3, LessonSignal{ContentCompleted: true, ExercisesCompleted: true})
	assert.False(t, some.IsComplete, "lesson signals do not count when objectives exist")
	assert.Equal(t, FallbackAllObjectives, some.Fallback)
}

func TestEvaluateCompletion_FallbackWithoutObjectives(t *testing.T) {
	none := EvaluateCompletion(&course.CompletionCriteria{}, 0, 0, 0, LessonSignal{})
	assert.False(t, none.IsComplete)
	assert.Equal(t, FallbackAnyLessonSignal, none.Fallback)

	content := EvaluateCompletion(nil, 0, 0, 0, LessonSignal{ContentCompleted: true})
	assert.True(t, content.IsComplete)

	exercises := EvaluateCompletion(nil, 0, 0, 0, LessonSignal{ExercisesCompleted: true})
	assert.True(t, exercises.IsComplete)
}
