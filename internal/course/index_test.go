package course

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitIDs(units []Unit) []string {
	ids := make([]string, len(units))
	for i, u := range units {
		ids[i] = u.ID
	}
	return ids
}

func TestBuildIndex_OrdersByOrderThenInsertion(t *testing.T) {
	c := Course{ID: "c", Units: []Unit{
		{ID: "late", Order: 5},
		{ID: "tie-first", Order: 1},
		{ID: "early", Order: 0},
		{ID: "tie-second", Order: 1},
	}}

	ix := BuildIndex(c)

	assert.Equal(t, []string{"early", "tie-first", "tie-second", "late"}, unitIDs(ix.Units()))
	assert.Equal(t, 4, ix.Len())
	assert.False(t, ix.Has("missing"))
}

func TestBuildIndex_DuplicateOverwrites(t *testing.T) {
	c := Course{ID: "c", Units: []Unit{
		{ID: "a", Title: "first"},
		{ID: "b"},
		{ID: "a", Title: "second"},
	}}

	ix := BuildIndex(c)

	require.Equal(t, 2, ix.Len())
	u, ok := ix.Unit("a")
	require.True(t, ok)
	assert.Equal(t, "second", u.Title)
	assert.Equal(t, []string{"a", "b"}, unitIDs(ix.Units()))
}

func TestBuildIndex_KeepsDanglingPrerequisites(t *testing.T) {
	c := Course{ID: "c", Units: []Unit{
		{ID: "a", Prerequisites: []string{"ghost"}},
		{ID: "b", Prerequisites: []string{"a"}},
	}}

	ix := BuildIndex(c)

	u, _ := ix.Unit("a")
	assert.Equal(t, []string{"ghost"}, u.Prerequisites)
	assert.False(t, ix.Has("ghost"))
	assert.Equal(t, []string{"b"}, ix.Dependents("a"))
	assert.Equal(t, []string{"a"}, ix.Dependents("ghost"))
}

func TestBuildIndex_IsolatedFromCallerMutation(t *testing.T) {
	prereqs := []string{"a"}
	c := Course{ID: "c", Units: []Unit{{ID: "a"}, {ID: "b", Prerequisites: prereqs}}}

	ix := BuildIndex(c)
	prereqs[0] = "changed"

	u, _ := ix.Unit("b")
	assert.Equal(t, []string{"a"}, u.Prerequisites)
}

func TestObjective_LookupKeys(t *testing.T) {
	o := Objective{ID: "obj", AltKeys: []string{"node-1", "", "kubit-1"}}
	assert.Equal(t, []string{"obj", "node-1", "kubit-1"}, o.LookupKeys())
}

func TestUnit_MoveOnCriteriaDefaultsToNotApplicable(t *testing.T) {
	assert.Equal(t, MoveOnNotApplicable, Unit{}.MoveOnCriteria())
	assert.Equal(t, MoveOnPassed, Unit{MoveOn: MoveOnPassed}.MoveOnCriteria())
}
