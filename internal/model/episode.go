package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout matches the ISO-8601 form the mobile client wrote
// (JavaScript toISOString: UTC with milliseconds).
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Mood reactions offered after an episode finishes.
const (
	MoodCalm      = "😌"
	MoodMindBlown = "🧠"
	MoodHyped     = "💥"
	MoodMoved     = "😭"
	MoodSleepy    = "😴"
)

// Moods lists the reactions in display order.
var Moods = []string{MoodCalm, MoodMindBlown, MoodHyped, MoodMoved, MoodSleepy}

// ValidMoods are the allowed mood reactions.
var ValidMoods = map[string]bool{
	MoodCalm:      true,
	MoodMindBlown: true,
	MoodHyped:     true,
	MoodMoved:     true,
	MoodSleepy:    true,
}

// MoodAliases maps ASCII names to reactions for terminals that cannot type emoji.
var MoodAliases = map[string]string{
	"calm":       MoodCalm,
	"mind-blown": MoodMindBlown,
	"hyped":      MoodHyped,
	"moved":      MoodMoved,
	"sleepy":     MoodSleepy,
}

// ResolveMood accepts either a reaction symbol or one of MoodAliases.
func ResolveMood(s string) (string, error) {
	s = strings.TrimSpace(s)
	if ValidMoods[s] {
		return s, nil
	}
	if m, ok := MoodAliases[strings.ToLower(s)]; ok {
		return m, nil
	}
	return "", fmt.Errorf("invalid mood %q (valid: %s, or calm, mind-blown, hyped, moved, sleepy)", s, strings.Join(Moods, " "))
}

// Timestamp is an instant persisted as an ISO-8601 string.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(TimestampLayout) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// EpisodeEntry records a mood reaction to a finished episode.
// AuraScore is a snapshot taken when the reaction was recorded.
type EpisodeEntry struct {
	EpisodeName  string    `json:"episodeName"`
	Host         string    `json:"host"`
	AuraScore    int       `json:"auraScore"`
	MoodReaction string    `json:"moodReaction"`
	Timestamp    Timestamp `json:"timestamp"`
}

// Validate checks an entry before it is appended to the ledger.
func (e EpisodeEntry) Validate() error {
	var errs []error
	if strings.TrimSpace(e.EpisodeName) == "" {
		errs = append(errs, errors.New("episodeName is required"))
	}
	if !ValidMoods[e.MoodReaction] {
		errs = append(errs, fmt.Errorf("invalid moodReaction %q", e.MoodReaction))
	}
	if e.AuraScore < MinAuraScore || e.AuraScore > MaxAuraScore {
		errs = append(errs, fmt.Errorf("auraScore %d out of range", e.AuraScore))
	}
	if e.Timestamp.IsZero() {
		errs = append(errs, errors.New("timestamp is required"))
	}
	return errors.Join(errs...)
}
