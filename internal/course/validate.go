package course

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/mod/semver"
)

// ErrInvalidCourse matches every validation failure returned by Validate.
var ErrInvalidCourse = errors.New("invalid course")

// ValidationError lists every structural problem found in one course.
type ValidationError struct {
	CourseID string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q:\n  %s", ErrInvalidCourse, e.CourseID, strings.Join(e.Problems, "\n  "))
}

// Is makes errors.Is(err, ErrInvalidCourse) hold.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidCourse
}

// Validate performs all structural checks on c. It returns one error
// describing every problem found, or nil if the course is valid.
//
// The evaluation engine never calls Validate; it is an optional pre-pass
// for callers that want malformed definitions surfaced before evaluation.
func Validate(c Course) error {
	var errs []string

	if c.ID == "" {
		errs = append(errs, "course id is empty")
	}
	if c.Version != "" && !semver.IsValid(canonicalVersion(c.Version)) {
		errs = append(errs, fmt.Sprintf("course version %q is not a semantic version", c.Version))
	}

	idSet := make(map[string]bool, len(c.Units))
	for _, u := range c.Units {
		if u.ID == "" {
			errs = append(errs, "unit with empty id")
			continue
		}
		if idSet[u.ID] {
			errs = append(errs, fmt.Sprintf("duplicate unit ID: %q", u.ID))
		}
		idSet[u.ID] = true
	}

	for _, u := range c.Units {
		errs = append(errs, validateUnit(u, idSet)...)
	}

	if cycle := cycleMembers(c.Units); len(cycle) > 0 {
		errs = append(errs, fmt.Sprintf("prerequisite cycle detected involving units: %s", strings.Join(cycle, ", ")))
	}

	if len(errs) > 0 {
		return &ValidationError{CourseID: c.ID, Problems: errs}
	}
	return nil
}

func validateUnit(u Unit, idSet map[string]bool) []string {
	var errs []string
	prefix := fmt.Sprintf("unit %q", u.ID)

	for _, prereqID := range u.Prerequisites {
		switch {
		case prereqID == u.ID:
			errs = append(errs, fmt.Sprintf("%s lists itself as a prerequisite", prefix))
		case !idSet[prereqID]:
			errs = append(errs, fmt.Sprintf("%s references nonexistent prerequisite %q", prefix, prereqID))
		}
	}

	if !u.MoveOn.IsValid() {
		errs = append(errs, fmt.Sprintf("%s: unknown moveOn %q (want one of %s)", prefix, u.MoveOn, joinMoveOn(AllMoveOn())))
	}
	if u.MasteryScore != nil && !inUnitRange(*u.MasteryScore) {
		errs = append(errs, fmt.Sprintf("%s: masteryScore must be in [0, 1], got %f", prefix, *u.MasteryScore))
	}

	if cc := u.Completion; cc != nil {
		if cc.MasteryScore != nil && !inUnitRange(*cc.MasteryScore) {
			errs = append(errs, fmt.Sprintf("%s: completion masteryScore must be in [0, 1], got %f", prefix, *cc.MasteryScore))
		}
		if cc.MasteryPercentage != nil && !inUnitRange(*cc.MasteryPercentage) {
			errs = append(errs, fmt.Sprintf("%s: masteryPercentage must be in [0, 1], got %f", prefix, *cc.MasteryPercentage))
		}
		if cc.MinMasteredCount != nil && *cc.MinMasteredCount < 0 {
			errs = append(errs, fmt.Sprintf("%s: minMasteredCount must be >= 0, got %d", prefix, *cc.MinMasteredCount))
		}
	}

	objSet := make(map[string]bool, len(u.Objectives))
	for _, o := range u.Objectives {
		if o.ID == "" {
			errs = append(errs, fmt.Sprintf("%s: objective with empty id", prefix))
			continue
		}
		if objSet[o.ID] {
			errs = append(errs, fmt.Sprintf("%s: duplicate objective ID %q", prefix, o.ID))
		}
		objSet[o.ID] = true
		if o.MasteryScore != nil && !inUnitRange(*o.MasteryScore) {
			errs = append(errs, fmt.Sprintf("%s objective %q: masteryScore must be in [0, 1], got %f", prefix, o.ID, *o.MasteryScore))
		}
	}
	return errs
}

// cycleMembers runs Kahn's algorithm over the prerequisite edges between
// known units and returns the ids left with unresolved in-degree, in course
// order. Dangling prerequisites are ignored here; they are reported
// separately.
func cycleMembers(units []Unit) []string {
	known := make(map[string]bool, len(units))
	for _, u := range units {
		known[u.ID] = true
	}

	inDegree := make(map[string]int, len(units))
	adjList := make(map[string][]string)
	for _, u := range units {
		inDegree[u.ID] = 0
	}
	for _, u := range units {
		for _, prereqID := range u.Prerequisites {
			if !known[prereqID] {
				continue
			}
			inDegree[u.ID]++
			adjList[prereqID] = append(adjList[prereqID], u.ID)
		}
	}

	var queue []string
	for _, u := range units {
		if inDegree[u.ID] == 0 {
			queue = append(queue, u.ID)
		}
	}

	visited := make(map[string]bool, len(units))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		for _, depID := range adjList[id] {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}

	var cycle []string
	seen := make(map[string]bool)
	for _, u := range units {
		if !visited[u.ID] && !seen[u.ID] {
			cycle = append(cycle, u.ID)
			seen[u.ID] = true
		}
	}
	return cycle
}

func joinMoveOn(values []MoveOn) string {
	names := make([]string, len(values))
	for i, m := range values {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}

func canonicalVersion(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}
