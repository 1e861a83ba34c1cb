package progress

import (
	"maps"
	"slices"
	"time"
)

// ObjectiveRecord is the best-known mastery state for one objective, as
// stored by the surrounding application.
type ObjectiveRecord struct {
	Mastery float64 `json:"mastery"`
	// Satisfied is the stored verdict. When nil, satisfaction is derived
	// from Mastery against the effective mastery score.
	Satisfied     *bool     `json:"satisfied,omitempty"`
	Attempts      int       `json:"attempts,omitempty"`
	LastAttempted time.Time `json:"lastAttempted,omitzero"`
}

// LessonSignal reports whether a unit's content and exercises were
// finished, as observed by the content layer.
type LessonSignal struct {
	ContentCompleted   bool `json:"contentCompleted,omitempty"`
	ExercisesCompleted bool `json:"exercisesCompleted,omitempty"`
}

// Any reports whether either signal is set.
func (s LessonSignal) Any() bool {
	return s.ContentCompleted || s.ExercisesCompleted
}

// Snapshot is the learner's progress as read by the engine. The engine
// never mutates it.
type Snapshot struct {
	// Objectives maps an objective id, or any of its alternate keys, to
	// the stored record.
	Objectives     map[string]ObjectiveRecord `json:"objectives,omitempty"`
	CompletedUnits []string                   `json:"completedUnits,omitempty"`
	CurrentUnit    string                     `json:"currentUnit,omitempty"`
	Signals        map[string]LessonSignal    `json:"signals,omitempty"`
}

// NewSnapshot returns an empty snapshot with initialized maps.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Objectives: make(map[string]ObjectiveRecord),
		Signals:    make(map[string]LessonSignal),
	}
}

// Clone returns a deep copy of s.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return NewSnapshot()
	}
	out := &Snapshot{
		Objectives:     maps.Clone(s.Objectives),
		CompletedUnits: slices.Clone(s.CompletedUnits),
		CurrentUnit:    s.CurrentUnit,
		Signals:        maps.Clone(s.Signals),
	}
	if out.Objectives == nil {
		out.Objectives = make(map[string]ObjectiveRecord)
	}
	if out.Signals == nil {
		out.Signals = make(map[string]LessonSignal)
	}
	for k, r := range out.Objectives {
		if r.Satisfied != nil {
			v := *r.Satisfied
			r.Satisfied = &v
			out.Objectives[k] = r
		}
	}
	return out
}

// IsCompleted reports whether unitID was explicitly marked completed.
func (s *Snapshot) IsCompleted(unitID string) bool {
	return slices.Contains(s.CompletedUnits, unitID)
}

// MarkCompleted records an explicit completion for unitID. It reports
// whether the snapshot changed.
func (s *Snapshot) MarkCompleted(unitID string) bool {
	if s.IsCompleted(unitID) {
		return false
	}
	s.CompletedUnits = append(s.CompletedUnits, unitID)
	return true
}

// SetCurrent records unitID as the learner's active unit.
func (s *Snapshot) SetCurrent(unitID string) {
	s.CurrentUnit = unitID
}

// RecordObjective stores an attempt result for an objective key, bumping
// the attempt counter. A nil satisfied leaves satisfaction to be derived.
func (s *Snapshot) RecordObjective(key string, mastery float64, satisfied *bool, at time.Time) ObjectiveRecord {
	if s.Objectives == nil {
		s.Objectives = make(map[string]ObjectiveRecord)
	}
	rec := s.Objectives[key]
	rec.Mastery = clamp01(mastery)
	rec.Satisfied = satisfied
	rec.Attempts++
	rec.LastAttempted = at
	s.Objectives[key] = rec
	return rec
}

// SetSignal stores the lesson signal for unitID.
func (s *Snapshot) SetSignal(unitID string, sig LessonSignal) {
	if s.Signals == nil {
		s.Signals = make(map[string]LessonSignal)
	}
	s.Signals[unitID] = sig
}

// signal returns the lesson signal for unitID, zero if absent.
func (s *Snapshot) signal(unitID string) LessonSignal {
	if s == nil || s.Signals == nil {
		return LessonSignal{}
	}
	return s.Signals[unitID]
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
