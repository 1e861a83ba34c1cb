package spacedrep

// Milestone is a review outcome worth recording in the statement log.
type Milestone string

const (
	MilestoneNone             Milestone = ""
	MilestoneFirstReview      Milestone = "first-review"
	MilestoneMasteryThreshold Milestone = "mastery-threshold"
	MilestoneStateTransition  Milestone = "state-transition"
	MilestonePeriodic         Milestone = "periodic"
)

// MilestoneConfig tunes milestone classification.
type MilestoneConfig struct {
	MasteryThreshold float64 // zero -> 0.8
	PeriodicInterval int     // zero -> 10, negative disables
}

// DefaultMilestoneConfig returns the default classification settings.
func DefaultMilestoneConfig() MilestoneConfig {
	return MilestoneConfig{MasteryThreshold: 0.8, PeriodicInterval: 10}
}

func (c MilestoneConfig) withDefaults() MilestoneConfig {
	d := DefaultMilestoneConfig()
	if c.MasteryThreshold == 0 {
		c.MasteryThreshold = d.MasteryThreshold
	}
	if c.PeriodicInterval == 0 {
		c.PeriodicInterval = d.PeriodicInterval
	}
	return c
}

// Transition is everything classification looks at for one review.
type Transition struct {
	Prior           ItemState
	Next            ItemState
	PreviousMastery float64
	Mastery         float64
}

// Classify returns the highest-priority milestone for t, or MilestoneNone.
// Priority: first review, mastery threshold crossing, state transition
// into learning or review, periodic review count.
func Classify(t Transition, cfg MilestoneConfig) Milestone {
	cfg = cfg.withDefaults()
	switch {
	case t.Prior.IsNew():
		return MilestoneFirstReview
	case crossed(t.PreviousMastery, t.Mastery, cfg.MasteryThreshold), crossed(t.PreviousMastery, t.Mastery, 1):
		return MilestoneMasteryThreshold
	case t.Prior.State != t.Next.State && (t.Next.State == StateReview || t.Next.State == StateLearning):
		return MilestoneStateTransition
	case cfg.PeriodicInterval > 0 && t.Next.Reps > 0 && t.Next.Reps%cfg.PeriodicInterval == 0:
		return MilestonePeriodic
	default:
		return MilestoneNone
	}
}

func crossed(prev, next, threshold float64) bool {
	return prev < threshold && next >= threshold
}
