package spacedrep

import "testing"

func TestClassify(t *testing.T) {
	review := ItemState{ItemID: "x", Stability: 3, Difficulty: 5, Reps: 4, State: StateReview, LastReview: epoch}
	learning := review
	learning.State = StateLearning
	relearning := review
	relearning.State = StateRelearning
	tenth := review
	tenth.Reps = 10

	tests := []struct {
		name string
		tr   Transition
		want Milestone
	}{
		{
			name: "first review beats threshold crossing",
			tr:   Transition{Prior: NewItem("x"), Next: review, PreviousMastery: 0, Mastery: 1},
			want: MilestoneFirstReview,
		},
		{
			name: "threshold crossed upward",
			tr:   Transition{Prior: review, Next: review, PreviousMastery: 0.6, Mastery: 0.85},
			want: MilestoneMasteryThreshold,
		},
		{
			name: "full mastery crossed",
			tr:   Transition{Prior: review, Next: review, PreviousMastery: 0.9, Mastery: 1},
			want: MilestoneMasteryThreshold,
		},
		{
			name: "threshold beats state transition",
			tr:   Transition{Prior: learning, Next: review, PreviousMastery: 0.5, Mastery: 0.8},
			want: MilestoneMasteryThreshold,
		},
		{
			name: "downward crossing is not a milestone",
			tr:   Transition{Prior: review, Next: review, PreviousMastery: 0.9, Mastery: 0.5},
			want: MilestoneNone,
		},
		{
			name: "into review",
			tr:   Transition{Prior: learning, Next: review, PreviousMastery: 0.9, Mastery: 0.95},
			want: MilestoneStateTransition,
		},
		{
			name: "into learning",
			tr:   Transition{Prior: relearning, Next: learning, PreviousMastery: 0.3, Mastery: 0.5},
			want: MilestoneStateTransition,
		},
		{
			name: "into relearning is not a milestone",
			tr:   Transition{Prior: review, Next: relearning, PreviousMastery: 0.9, Mastery: 0.95},
			want: MilestoneNone,
		},
		{
			name: "periodic",
			tr:   Transition{Prior: review, Next: tenth, PreviousMastery: 1, Mastery: 1},
			want: MilestonePeriodic,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.tr, MilestoneConfig{}); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassify_Config(t *testing.T) {
	review := ItemState{ItemID: "x", Stability: 3, Reps: 6, State: StateReview, LastReview: epoch}
	tr := Transition{Prior: review, Next: review, PreviousMastery: 0.6, Mastery: 0.7}

	if got := Classify(tr, MilestoneConfig{MasteryThreshold: 0.65}); got != MilestoneMasteryThreshold {
		t.Errorf("custom threshold: got %q", got)
	}
	if got := Classify(tr, MilestoneConfig{PeriodicInterval: 3}); got != MilestonePeriodic {
		t.Errorf("custom interval: got %q", got)
	}
	if got := Classify(tr, MilestoneConfig{PeriodicInterval: -1}); got != MilestoneNone {
		t.Errorf("disabled interval: got %q", got)
	}
}
