package course

import (
	"slices"
	"sort"
)

// Index holds a course's units with precomputed lookups. It is built once
// per engine and never mutated afterwards.
type Index struct {
	id         string
	title      string
	units      []Unit
	byID       map[string]int
	dependents map[string][]string
}

// BuildIndex constructs the lookup structure for c in O(units + objectives).
// It does not validate the graph: a later unit with an id already seen
// replaces the earlier one in place, and prerequisites naming unknown units
// are kept as-is.
func BuildIndex(c Course) *Index {
	ix := &Index{
		id:         c.ID,
		title:      c.Title,
		byID:       make(map[string]int, len(c.Units)),
		dependents: make(map[string][]string),
	}

	// Insertion order, with duplicates overwriting their first slot.
	for _, u := range c.Units {
		u.Prerequisites = slices.Clone(u.Prerequisites)
		u.Objectives = slices.Clone(u.Objectives)
		if i, ok := ix.byID[u.ID]; ok {
			ix.units[i] = u
			continue
		}
		ix.byID[u.ID] = len(ix.units)
		ix.units = append(ix.units, u)
	}

	// Order ascending; ties keep insertion order.
	sort.SliceStable(ix.units, func(i, j int) bool {
		return ix.units[i].Order < ix.units[j].Order
	})
	for i, u := range ix.units {
		ix.byID[u.ID] = i
	}

	for _, u := range ix.units {
		for _, prereqID := range u.Prerequisites {
			ix.dependents[prereqID] = append(ix.dependents[prereqID], u.ID)
		}
	}

	return ix
}

// CourseID returns the indexed course's id.
func (ix *Index) CourseID() string { return ix.id }

// Title returns the indexed course's title.
func (ix *Index) Title() string { return ix.title }

// Len returns the number of distinct units.
func (ix *Index) Len() int { return len(ix.units) }

// Unit returns the unit with the given id.
func (ix *Index) Unit(id string) (Unit, bool) {
	i, ok := ix.byID[id]
	if !ok {
		return Unit{}, false
	}
	return ix.units[i], true
}

// Has reports whether id names a unit of the course.
func (ix *Index) Has(id string) bool {
	_, ok := ix.byID[id]
	return ok
}

// Units returns all units sorted by order, ties broken by insertion order.
func (ix *Index) Units() []Unit {
	return slices.Clone(ix.units)
}

// Dependents returns the ids of units that list id as a prerequisite.
func (ix *Index) Dependents(id string) []string {
	return slices.Clone(ix.dependents[id])
}
