package progress

import "github.com/abhisek/coursetrail/internal/course"

// Status is a unit's or course's derived progress state.
type Status string

const (
	StatusLocked     Status = "locked"
	StatusAvailable  Status = "available"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusPassed     Status = "passed"
)

// IsFinished reports whether s is completed or passed.
func (s Status) IsFinished() bool {
	return s == StatusCompleted || s == StatusPassed
}

// Label returns the display label for a status.
func (s Status) Label() string {
	switch s {
	case StatusLocked:
		return "Locked"
	case StatusAvailable:
		return "Available"
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	case StatusPassed:
		return "Passed"
	default:
		return "Unknown"
	}
}

// PrerequisiteFacts describes how a unit's prerequisites were judged.
type PrerequisiteFacts struct {
	Requested []string `json:"requested"`
	Unmet     []string `json:"unmet"`
	Missing   []string `json:"missing"`
	Met       bool     `json:"met"`
}

// ObjectiveFacts aggregates a unit's resolved objectives.
type ObjectiveFacts struct {
	Total          int             `json:"total"`
	Mastered       int             `json:"mastered"`
	MasteryAverage float64         `json:"masteryAverage"`
	Details        []ObjectiveFact `json:"details"`
}

// PassFacts is the pass verdict of a unit.
type PassFacts struct {
	IsPassed       bool    `json:"isPassed"`
	Threshold      float64 `json:"threshold"`
	AverageMastery float64 `json:"averageMastery"`
}

// MoveOnFacts is the move-on verdict of a unit.
type MoveOnFacts struct {
	Criteria  course.MoveOn `json:"criteria"`
	Satisfied bool          `json:"satisfied"`
}

// UnitEvaluation is the full derived state of one unit.
type UnitEvaluation struct {
	UnitID        string            `json:"unitId"`
	Title         string            `json:"title,omitempty"`
	Status        Status            `json:"status"`
	Started       bool              `json:"started"`
	Prerequisites PrerequisiteFacts `json:"prerequisites"`
	Objectives    ObjectiveFacts    `json:"objectives"`
	Completion    CompletionFact    `json:"completion"`
	Pass          PassFacts         `json:"pass"`
	MoveOn        MoveOnFacts       `json:"moveOn"`
}

// CourseEvaluation is the course-level summary.
type CourseEvaluation struct {
	ID     string `json:"id"`
	Title  string `json:"title,omitempty"`
	Status Status `json:"status"`
}

// Evaluation is the engine's output. It is built fresh on every call.
type Evaluation struct {
	Course CourseEvaluation          `json:"course"`
	Units  map[string]UnitEvaluation `json:"units"`
	// Order lists unit ids in course order.
	Order []string `json:"order"`
}

// Ordered returns the unit evaluations in course order.
func (e Evaluation) Ordered() []UnitEvaluation {
	out := make([]UnitEvaluation, 0, len(e.Order))
	for _, id := range e.Order {
		out = append(out, e.Units[id])
	}
	return out
}

// StatusChange is a unit whose status differs between two evaluations.
type StatusChange struct {
	UnitID string
	From   Status
	To     Status
}

// Changes lists the units whose status differs from before to e, in e's
// course order. Units absent from before count as locked there.
func (e Evaluation) Changes(before Evaluation) []StatusChange {
	var out []StatusChange
	for _, id := range e.Order {
		from := StatusLocked
		if u, ok := before.Units[id]; ok {
			from = u.Status
		}
		if to := e.Units[id].Status; to != from {
			out = append(out, StatusChange{UnitID: id, From: from, To: to})
		}
	}
	return out
}

// Counts returns how many units hold each status.
func (e Evaluation) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, u := range e.Units {
		counts[u.Status]++
	}
	return counts
}
