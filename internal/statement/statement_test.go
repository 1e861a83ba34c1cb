package statement

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActor(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
		wantKey string
	}{
		{name: "mbox", payload: `{"name":"Ada","mbox":"mailto:ada@example.com"}`, wantKey: "mailto:ada@example.com"},
		{name: "account", payload: `{"account":{"homePage":"https://lms.example","name":"u-17"}}`, wantKey: "https://lms.example|u-17"},
		{name: "no identifier", payload: `{"name":"Ada"}`, wantErr: true},
		{name: "both identifiers", payload: `{"mbox":"mailto:a@b.c","account":{"homePage":"h","name":"n"}}`, wantErr: true},
		{name: "mbox without scheme", payload: `{"mbox":"ada@example.com"}`, wantErr: true},
		{name: "account missing name", payload: `{"account":{"homePage":"https://lms.example"}}`, wantErr: true},
		{name: "group", payload: `{"objectType":"Group","mbox":"mailto:g@example.com"}`, wantErr: true},
		{name: "malformed json", payload: `{"mbox":`, wantErr: true},
		{name: "not an object", payload: `"ada"`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ParseActor([]byte(tt.payload))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidActor), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Agent", a.ObjectType)
			assert.Equal(t, tt.wantKey, a.Key())
		})
	}
}

func TestForReview(t *testing.T) {
	actor := Actor{Mbox: "mailto:ada@example.com"}
	at := time.Date(2025, 5, 1, 10, 0, 0, 0, time.FixedZone("x", 3600))

	s := ForReview(actor, Review{
		ItemID:          "fractions-1",
		Milestone:       "mastery-threshold",
		Rating:          "Good",
		ActivityType:    "quiz",
		Correct:         true,
		PreviousMastery: 0.7,
		Mastery:         0.85,
		PreviousState:   "Learning",
		State:           "Review",
		Reps:            4,
	}, at)

	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.Equal(t, "fsrs:fractions-1", s.Object.ID)
	assert.Equal(t, TypeItem, s.Object.Type)
	assert.Equal(t, Mastered, s.Verb)
	assert.Equal(t, time.UTC, s.Timestamp.Location())
	require.NotNil(t, s.Result)
	assert.Equal(t, 0.85, *s.Result.Score)
	assert.Equal(t, "Good", s.Result.Extensions[ExtRating])
	assert.Equal(t, 0.7, s.Result.Extensions[ExtPreviousMastery])
	assert.Equal(t, "Learning", s.Result.Extensions[ExtPreviousState])

	id, ok := ItemIDFromObject(s.Object.ID)
	assert.True(t, ok)
	assert.Equal(t, "fractions-1", id)
}

func TestMilestoneVerb(t *testing.T) {
	assert.Equal(t, Initialized, MilestoneVerb("first-review"))
	assert.Equal(t, Progressed, MilestoneVerb("state-transition"))
	assert.Equal(t, Experienced, MilestoneVerb("periodic"))
	assert.Equal(t, Experienced, MilestoneVerb("unknown"))
}

func TestProgressBuilders(t *testing.T) {
	actor := Actor{Account: &Account{HomePage: "https://lms.example", Name: "u-1"}}
	at := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	done := UnitCompleted(actor, "algebra", "u2", at)
	assert.Equal(t, Completed, done.Verb)
	assert.Equal(t, "algebra/u2", done.Object.ID)
	assert.True(t, *done.Result.Completion)

	launched := UnitLaunched(actor, "algebra", "u3", at)
	assert.Equal(t, Launched, launched.Verb)
	assert.Nil(t, launched.Result)

	obj := ObjectiveResult(actor, "algebra", "o1", 0.4, false, at)
	assert.Equal(t, Progressed, obj.Verb)
	assert.Equal(t, "algebra/objectives/o1", obj.Object.ID)
	assert.Equal(t, Mastered, ObjectiveResult(actor, "algebra", "o1", 0.9, true, at).Verb)
}

func TestStatement_JSONShape(t *testing.T) {
	s := UnitLaunched(Actor{Mbox: "mailto:a@b.c"}, "c", "u", time.Unix(0, 0))
	b, err := json.Marshal(s)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.NotContains(t, m, "result")
	assert.NotContains(t, m, "sequence")
	assert.Equal(t, "c/u", m["object"].(map[string]any)["id"])
}
