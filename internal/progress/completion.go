package progress

import "github.com/abhisek/coursetrail/internal/course"

// Check names one independent completion test.
type Check string

const (
	CheckMasteryScore      Check = "masteryScore"
	CheckMasteryPercentage Check = "masteryPercentage"
	CheckMinMasteredCount  Check = "minMasteredCount"
	CheckContent           Check = "content"
	CheckExercises         Check = "exercises"
)

// Fallback names the rule used when no completion check was configured.
type Fallback string

const (
	FallbackNone            Fallback = ""
	FallbackAllObjectives   Fallback = "allObjectivesMastered"
	FallbackAnyLessonSignal Fallback = "anyLessonSignal"
)

// CompletionFact is the completion verdict for a unit with the checks
// that produced it. Computed is the verdict of the checks alone; Explicit
// is set when an external completion record forced IsComplete to true.
type CompletionFact struct {
	IsComplete        bool           `json:"isComplete"`
	Computed          bool           `json:"computed"`
	Explicit          bool           `json:"explicit"`
	Checks            []Check        `json:"checks"`
	Results           map[Check]bool `json:"results,omitempty"`
	Fallback          Fallback       `json:"fallback,omitempty"`
	RequiresContent   bool           `json:"requiresContent"`
	RequiresExercises bool           `json:"requiresExercises"`
}

// EvaluateCompletion applies criteria to a unit's objective totals and
// lesson signal. All constructed checks must pass. When none is
// constructed, a unit with objectives is complete iff every objective is
// mastered, and a unit without objectives is complete iff either lesson
// signal is set.
func EvaluateCompletion(criteria *course.CompletionCriteria, masteryAverage float64, masteredCount, total int, signal LessonSignal) CompletionFact {
	fact := CompletionFact{
		Checks:  []Check{},
		Results: make(map[Check]bool),
	}
	add := func(c Check, ok bool) {
		fact.Checks = append(fact.Checks, c)
		fact.Results[c] = ok
	}

	if cc := criteria; cc != nil {
		if cc.MasteryScore != nil {
			add(CheckMasteryScore, masteryAverage >= *cc.MasteryScore)
		}
		if cc.MasteryPercentage != nil && total > 0 {
			add(CheckMasteryPercentage, float64(masteredCount)/float64(total) >= *cc.MasteryPercentage)
		}
		if cc.MinMasteredCount != nil {
			add(CheckMinMasteredCount, masteredCount >= *cc.MinMasteredCount)
		}
		if cc.RequireAllContent {
			fact.RequiresContent = true
			add(CheckContent, signal.ContentCompleted)
		}
		if cc.RequireAllExercises {
			fact.RequiresExercises = true
			add(CheckExercises, signal.ExercisesCompleted)
		}
	}

	if len(fact.Checks) == 0 {
		// Two fallbacks keyed on objective count; kept for compatibility.
		if total > 0 {
			fact.Fallback = FallbackAllObjectives
			fact.Computed = masteredCount == total
		} else {
			fact.Fallback = FallbackAnyLessonSignal
			fact.Computed = signal.Any()
		}
		fact.IsComplete = fact.Computed
		return fact
	}

	fact.Computed = true
	for _, c := range fact.Checks {
		if !fact.Results[c] {
			fact.Computed = false
			break
		}
	}
	fact.IsComplete = fact.Computed
	return fact
}
