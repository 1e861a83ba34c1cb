package spacedrep

import (
	"math"
	"slices"
	"time"

	"github.com/pkg/errors"
)

// Update applies one rating to prior and returns the new state. prior is
// not modified. Out-of-range stability and difficulty are clamped.
//
// Elapsed days come from LastReview when it is set. Items persisted
// without a review timestamp fall back to the previous scheduled interval.
func Update(prior ItemState, r Rating, now time.Time) (ItemState, error) {
	if !r.IsValid() {
		return prior, errors.Wrapf(ErrInvalidRating, "%d", int(r))
	}

	next := prior
	next.ActivityTypes = slices.Clone(prior.ActivityTypes)
	if !next.State.isValid() {
		next.State = StateNew
	}
	next.Stability = math.Max(MinStability, prior.Stability)
	next.Difficulty = clampDifficulty(prior.Difficulty)

	switch {
	case !prior.LastReview.IsZero():
		next.ElapsedDays = int(math.Floor(daysSince(prior.LastReview, now)))
	case prior.Reps > 0:
		next.ElapsedDays = max(0, prior.ScheduledDays)
	default:
		next.ElapsedDays = 0
	}

	if r == Again {
		next.Lapses++
		next.Difficulty = math.Min(MaxDifficulty, next.Difficulty+0.5)
		next.Stability = math.Max(MinStability, next.Stability*0.5)
		next.State = StateRelearning
	} else {
		grade := float64(r - 2)
		next.Reps++
		next.Stability = math.Max(MinStability, next.Stability*(1+grade*0.5))
		next.Difficulty = clampDifficulty(next.Difficulty - 0.1*grade)
		switch {
		case next.Stability < 1:
			next.State = StateLearning
		case next.State == StateNew || next.State == StateLearning:
			next.State = StateReview
		}
	}

	next.ScheduledDays = max(1, int(math.Round(next.Stability)))
	next.LastReview = now
	next.NextReview = now.Add(time.Duration(next.ScheduledDays) * day)
	return next, nil
}

func clampDifficulty(d float64) float64 {
	return math.Min(MaxDifficulty, math.Max(MinDifficulty, d))
}
