package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_MarkCompleted(t *testing.T) {
	s := NewSnapshot()
	assert.True(t, s.MarkCompleted("u1"))
	assert.False(t, s.MarkCompleted("u1"))
	assert.True(t, s.IsCompleted("u1"))
	assert.Equal(t, []string{"u1"}, s.CompletedUnits)
}

func TestSnapshot_RecordObjective(t *testing.T) {
	s := &Snapshot{}
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	rec := s.RecordObjective("o", 1.4, nil, at)
	assert.Equal(t, 1.0, rec.Mastery)
	assert.Equal(t, 1, rec.Attempts)
	assert.Nil(t, rec.Satisfied)

	rec = s.RecordObjective("o", 0.4, ptr(true), at.Add(time.Hour))
	assert.Equal(t, 0.4, rec.Mastery)
	assert.Equal(t, 2, rec.Attempts)
	require.NotNil(t, rec.Satisfied)
	assert.True(t, *rec.Satisfied)
	assert.Equal(t, rec, s.Objectives["o"])
}

func TestSnapshot_CloneIsDeep(t *testing.T) {
	s := NewSnapshot()
	s.RecordObjective("o", 0.5, ptr(false), time.Time{})
	s.MarkCompleted("u")
	s.SetSignal("u", LessonSignal{ContentCompleted: true})

	c := s.Clone()
	require.Equal(t, s, c)

	*c.Objectives["o"].Satisfied = true
	c.CompletedUnits[0] = "changed"
	c.Signals["u"] = LessonSignal{}

	assert.False(t, *s.Objectives["o"].Satisfied)
	assert.Equal(t, []string{"u"}, s.CompletedUnits)
	assert.True(t, s.Signals["u"].ContentCompleted)
}

func TestSnapshot_NilSafeSignal(t *testing.T) {
	var s *Snapshot
	assert.False(t, s.signal("u").Any())
	assert.NotNil(t, s.Clone().Objectives)
}
