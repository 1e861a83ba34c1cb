package progress

import (
	"github.com/abhisek/coursetrail/internal/course"
)

// Engine derives unit and course status from a progress snapshot. It holds
// no mutable state; Evaluate may be called concurrently.
type Engine struct {
	index *course.Index
	opts  Options
}

// NewEngine indexes c once and returns an engine for it. The course is not
// validated: dangling prerequisites become missing facts and cycles are
// evaluated from pass-1 facts without recursion.
func NewEngine(c course.Course, opts Options) *Engine {
	return &Engine{
		index: course.BuildIndex(c),
		opts:  opts.withDefaults(),
	}
}

// Index returns the engine's course index.
func (e *Engine) Index() *course.Index { return e.index }

// Options returns the effective options.
func (e *Engine) Options() Options { return e.opts }

// unitFacts is the pass-1 result for one unit, computed in isolation.
type unitFacts struct {
	started    bool
	objectives ObjectiveFacts
	completion CompletionFact
	pass       PassFacts
	moveOn     MoveOnFacts
}

// Evaluate maps the snapshot onto a status tree. Pass 1 computes each
// unit's objective, completion, pass and move-on facts; pass 2 resolves
// prerequisites against those facts and derives the final status.
func (e *Engine) Evaluate(snap *Snapshot) Evaluation {
	if snap == nil {
		snap = NewSnapshot()
	}
	units := e.index.Units()

	facts := make(map[string]unitFacts, len(units))
	for _, u := range units {
		facts[u.ID] = e.evaluateUnit(u, snap)
	}

	out := Evaluation{
		Units: make(map[string]UnitEvaluation, len(units)),
		Order: make([]string, 0, len(units)),
	}
	statuses := make([]Status, 0, len(units))
	for _, u := range units {
		f := facts[u.ID]
		prereqs := e.resolvePrerequisites(u, facts)
		status := deriveStatus(f, prereqs.Met)

		out.Units[u.ID] = UnitEvaluation{
			UnitID:        u.ID,
			Title:         u.Title,
			Status:        status,
			Started:       f.started,
			Prerequisites: prereqs,
			Objectives:    f.objectives,
			Completion:    f.completion,
			Pass:          f.pass,
			MoveOn:        f.moveOn,
		}
		out.Order = append(out.Order, u.ID)
		statuses = append(statuses, status)
	}

	out.Course = CourseEvaluation{
		ID:     e.index.CourseID(),
		Title:  e.index.Title(),
		Status: AggregateStatus(statuses),
	}
	return out
}

// evaluateUnit is pass 1 for a single unit.
func (e *Engine) evaluateUnit(u course.Unit, snap *Snapshot) unitFacts {
	objectives := ObjectiveFacts{
		Total:   len(u.Objectives),
		Details: make([]ObjectiveFact, 0, len(u.Objectives)),
	}
	attempted := false
	var sum float64
	for _, o := range u.Objectives {
		score := EffectiveMasteryScore(o, u, e.opts.DefaultMasteryScore)
		fact := ResolveObjective(o, snap, score)
		objectives.Details = append(objectives.Details, fact)
		sum += fact.Mastery
		if fact.Satisfied {
			objectives.Mastered++
		}
		if fact.Attempts > 0 {
			attempted = true
		}
	}
	if objectives.Total > 0 {
		objectives.MasteryAverage = sum / float64(objectives.Total)
	}

	signal := snap.signal(u.ID)
	completion := EvaluateCompletion(u.Completion, objectives.MasteryAverage, objectives.Mastered, objectives.Total, signal)
	if snap.IsCompleted(u.ID) {
		completion.Explicit = true
		completion.IsComplete = true
	}

	threshold := e.opts.DefaultMasteryScore
	switch {
	case u.Completion != nil && u.Completion.MasteryScore != nil:
		threshold = clamp01(*u.Completion.MasteryScore)
	case u.MasteryScore != nil:
		threshold = clamp01(*u.MasteryScore)
	}
	pass := PassFacts{
		Threshold:      threshold,
		AverageMastery: objectives.MasteryAverage,
		IsPassed:       objectives.Total > 0 && objectives.MasteryAverage >= threshold,
	}

	criteria := u.MoveOnCriteria()
	moveOn := MoveOnFacts{Criteria: criteria}
	switch criteria {
	case course.MoveOnCompleted:
		moveOn.Satisfied = completion.IsComplete
	case course.MoveOnPassed:
		moveOn.Satisfied = pass.IsPassed
	case course.MoveOnCompletedAndPassed:
		moveOn.Satisfied = completion.IsComplete && pass.IsPassed
	default:
		moveOn.Satisfied = true
	}

	started := completion.Explicit ||
		(snap.CurrentUnit != "" && snap.CurrentUnit == u.ID) ||
		attempted ||
		signal.Any()

	return unitFacts{
		started:    started,
		objectives: objectives,
		completion: completion,
		pass:       pass,
		moveOn:     moveOn,
	}
}

// resolvePrerequisites is the first step of pass 2. It reads only pass-1
// facts, so iteration order and cycles do not affect the result.
func (e *Engine) resolvePrerequisites(u course.Unit, facts map[string]unitFacts) PrerequisiteFacts {
	p := PrerequisiteFacts{
		Requested: make([]string, 0, len(u.Prerequisites)),
		Unmet:     []string{},
		Missing:   []string{},
	}
	for _, id := range u.Prerequisites {
		p.Requested = append(p.Requested, id)
		f, ok := facts[id]
		if !ok {
			p.Missing = append(p.Missing, id)
			if e.opts.MissingPrerequisites == MissingLock {
				p.Unmet = append(p.Unmet, id)
			}
			continue
		}
		satisfied := f.completion.IsComplete
		if e.opts.Prerequisites == PrerequisiteMoveOn {
			satisfied = f.moveOn.Satisfied
		}
		if !satisfied {
			p.Unmet = append(p.Unmet, id)
		}
	}
	p.Met = len(p.Unmet) == 0
	return p
}

// deriveStatus is the second step of pass 2.
func deriveStatus(f unitFacts, prerequisitesMet bool) Status {
	if !prerequisitesMet {
		return StatusLocked
	}

	var done bool
	finished := StatusCompleted
	switch f.moveOn.Criteria {
	case course.MoveOnPassed:
		done, finished = f.pass.IsPassed, StatusPassed
	case course.MoveOnCompletedAndPassed:
		done, finished = f.completion.IsComplete && f.pass.IsPassed, StatusPassed
	default:
		done = f.completion.IsComplete
	}

	switch {
	case done:
		return finished
	case f.started:
		return StatusInProgress
	default:
		return StatusAvailable
	}
}
