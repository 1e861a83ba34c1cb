package spacedrep

import (
	"slices"
	"time"
)

// Starting parameters for an item that has never been reviewed.
const (
	InitialStability  = 1.0
	InitialDifficulty = 5.0
)

// Bounds enforced by the update rule.
const (
	MinStability  = 0.1
	MinDifficulty = 1.0
	MaxDifficulty = 10.0
)

const day = 24 * time.Hour

// ItemState is the scheduling state of one learnable item.
type ItemState struct {
	ItemID        string    `json:"itemId"`
	Stability     float64   `json:"stability"`
	Difficulty    float64   `json:"difficulty"`
	ElapsedDays   int       `json:"elapsedDays"`
	ScheduledDays int       `json:"scheduledDays"`
	Reps          int       `json:"reps"`
	Lapses        int       `json:"lapses"`
	State         State     `json:"state"`
	LastReview    time.Time `json:"lastReview,omitzero"`
	NextReview    time.Time `json:"nextReview,omitzero"`
	// ActivityTypes lists the distinct activity types the item was
	// reviewed with, in first-use order.
	ActivityTypes []string `json:"activityTypes,omitempty"`
}

// NewItem returns the state of an item that was never reviewed.
func NewItem(itemID string) ItemState {
	return ItemState{
		ItemID:     itemID,
		Stability:  InitialStability,
		Difficulty: InitialDifficulty,
		State:      StateNew,
	}
}

// IsNew reports whether the item has no recorded review.
func (s ItemState) IsNew() bool {
	return (s.State == StateNew || !s.State.isValid()) && s.Reps == 0 && s.Lapses == 0 && s.LastReview.IsZero()
}

// IsDue reports whether the item is due at t.
func (s ItemState) IsDue(t time.Time) bool {
	return !s.NextReview.After(t)
}

// WithActivity returns a copy of s with activity recorded. Empty activity
// types are ignored.
func (s ItemState) WithActivity(activity string) ItemState {
	types := slices.Clone(s.ActivityTypes)
	if activity != "" && !slices.Contains(types, activity) {
		types = append(types, activity)
	}
	s.ActivityTypes = types
	return s
}

// daysSince returns fractional days from from to to, never negative.
func daysSince(from, to time.Time) float64 {
	if from.IsZero() || !to.After(from) {
		return 0
	}
	return to.Sub(from).Hours() / 24
}
