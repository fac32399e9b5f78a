package aura

import "github.com/rcliao/vibecast/internal/model"

// Scoring rules.
const (
	DailyGain        = 1 // points for opening on the day after the last open
	MissedDayPenalty = 5 // points lost per day since the last open
	ResetThreshold   = 3 // missed days that zero the score
)

// Transition names the rule applied by Step.
type Transition string

const (
	TransitionNone    Transition = "none"    // same day, or the clock went backwards
	TransitionInitial Transition = "initial" // fresh default state
	TransitionStreak  Transition = "streak"  // opened the next day
	TransitionDecay   Transition = "decay"   // missed days, below the reset threshold
	TransitionReset   Transition = "reset"   // missed days reached the reset threshold
)

// Step applies the daily transition to prev for an open on today.
// A today on or before prev.LastOpenedDate returns prev unchanged.
func Step(prev model.AuraState, today model.Date) (model.AuraState, Transition) {
	days := today.DaysSince(prev.LastOpenedDate)

	switch {
	case days <= 0:
		return prev, TransitionNone

	case days == 1:
		return model.AuraState{
			AuraScore:             min(prev.AuraScore+DailyGain, model.MaxAuraScore),
			LastOpenedDate:        today,
			StreakCount:           prev.StreakCount + 1,
			ConsecutiveMissedDays: 0,
		}, TransitionStreak

	default:
		next := model.AuraState{
			AuraScore:             max(prev.AuraScore-MissedDayPenalty*days, model.MinAuraScore),
			LastOpenedDate:        today,
			StreakCount:           0,
			ConsecutiveMissedDays: prev.ConsecutiveMissedDays + days,
		}
		if next.ConsecutiveMissedDays >= ResetThreshold {
			next.AuraScore = 0
			next.ConsecutiveMissedDays = 0
			return next, TransitionReset
		}
		return next, TransitionDecay
	}
}
