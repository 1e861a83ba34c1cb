package spacedrep

import (
	"math"
	"time"
)

// decayRate calibrates retention to 0.9 when elapsed days equal stability.
var decayRate = math.Log(10.0 / 9.0)

// Retention returns the recall probability after days at the given
// stability.
func Retention(days, stability float64) float64 {
	if stability <= 0 {
		return 0
	}
	return math.Exp(-(math.Max(0, days) / stability) * decayRate)
}

// Mastery estimates how well the item is known at now. It is computed on
// every call and always lies in [0,1]. An item never reviewed has mastery
// zero.
func Mastery(s ItemState, now time.Time) float64 {
	if s.IsNew() {
		return 0
	}
	days := daysSince(s.LastReview, now)
	if s.LastReview.IsZero() {
		days = float64(s.ElapsedDays)
	}
	return MasteryAt(days, s.Stability, s.ScheduledDays, len(s.ActivityTypes))
}

// MasteryAt is Mastery over raw inputs.
func MasteryAt(days, stability float64, scheduledDays, activityTypes int) float64 {
	retention := Retention(days, stability)
	bonus := math.Min(0.02*float64(max(0, activityTypes)), 0.10)

	var penalty float64
	if scheduledDays > 0 {
		if overdue := math.Max(0, days) / float64(scheduledDays); overdue > 1 {
			penalty = math.Min(0.1*(overdue-1), 0.2)
		}
	}
	return clamp01(retention + bonus - penalty)
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
