// Package model defines the engagement data types and their persisted shapes.
package model

import (
	"errors"
	"fmt"
)

// Score bounds.
const (
	MinAuraScore = 0
	MaxAuraScore = 100
)

// AuraState is the per-device engagement record.
type AuraState struct {
	AuraScore             int  `json:"auraScore"`
	LastOpenedDate        Date `json:"lastOpenedDate"`
	StreakCount           int  `json:"streakCount"`
	ConsecutiveMissedDays int  `json:"consecutiveMissedDays"`
}

// DefaultAuraState is the state of a device that has never opened the app
// before today.
func DefaultAuraState(today Date) AuraState {
	return AuraState{LastOpenedDate: today}
}

// Validate checks the invariants a stored state must satisfy.
func (s AuraState) Validate() error {
	var errs []error
	if s.AuraScore < MinAuraScore || s.AuraScore > MaxAuraScore {
		errs = append(errs, fmt.Errorf("auraScore %d out of range [%d,%d]", s.AuraScore, MinAuraScore, MaxAuraScore))
	}
	if s.LastOpenedDate.IsZero() {
		errs = append(errs, errors.New("lastOpenedDate is missing"))
	}
	if s.StreakCount < 0 {
		errs = append(errs, fmt.Errorf("streakCount %d is negative", s.StreakCount))
	}
	if s.ConsecutiveMissedDays < 0 {
		errs = append(errs, fmt.Errorf("consecutiveMissedDays %d is negative", s.ConsecutiveMissedDays))
	}
	if s.StreakCount > 0 && s.ConsecutiveMissedDays > 0 {
		errs = append(errs, errors.New("streakCount and consecutiveMissedDays are both non-zero"))
	}
	return errors.Join(errs...)
}

// ClampScore bounds a score to [MinAuraScore, MaxAuraScore].
func ClampScore(score int) int {
	return max(MinAuraScore, min(score, MaxAuraScore))
}
