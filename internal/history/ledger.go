// Package history keeps the append-only ledger of episode mood reactions.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/rcliao/vibecast/internal/kv"
	"github.com/rcliao/vibecast/internal/logger"
	"github.com/rcliao/vibecast/internal/model"
)

// Key is the store key holding the serialized ledger.
const Key = "VibeCastEpisodeHistory"

// Origin tells where a snapshot of the ledger came from.
type Origin string

const (
	OriginLoaded      Origin = "loaded"
	OriginEmpty       Origin = "empty"       // nothing stored yet
	OriginRecovered   Origin = "recovered"   // stored value was malformed
	OriginUnavailable Origin = "unavailable" // the store could not be read
)

// Snapshot is the ledger as read at one point in time.
type Snapshot struct {
	Entries []model.EpisodeEntry `json:"entries"`
	Origin  Origin               `json:"origin"`
}

// Ledger appends and reads episode reactions.
type Ledger struct {
	guard *kv.Guard
	log   *logger.Logger
}

// New returns a ledger persisting through guard.
func New(guard *kv.Guard, log *logger.Logger) *Ledger {
	if log == nil {
		log = logger.Nop()
	}
	return &Ledger{guard: guard, log: log.With("service", "HistoryLedger")}
}

// Append adds e to the end of the ledger. An invalid entry is an error;
// store failures are logged and reported as saved=false. A stored ledger
// that cannot be decoded is left untouched and the entry is not saved.
func (l *Ledger) Append(ctx context.Context, e model.EpisodeEntry) (saved bool, err error) {
	if err := e.Validate(); err != nil {
		return false, fmt.Errorf("invalid entry: %w", err)
	}

	var n int
	err = l.guard.Update(ctx, Key, func(cur []byte, found bool) ([]byte, bool) {
		n = 0
		entries, origin := l.decode(cur, found)
		if origin == OriginRecovered {
			l.log.Error("stored history is malformed, reaction not saved", "episode", e.EpisodeName)
			return nil, false
		}
		entries = append(entries, e)

		b, err := json.Marshal(entries)
		if err != nil {
			l.log.Error("encode history", "error", err)
			return nil, false
		}
		n = len(entries)
		return b, true
	})
	if err != nil {
		l.log.Warn("reaction not saved", "episode", e.EpisodeName, "error", err)
		return false, nil
	}

	if n == 0 {
		return false, nil
	}
	l.log.Info("reaction saved", "episode", e.EpisodeName, "mood", e.MoodReaction, "entries", n)
	return true, nil
}

// Load returns the ledger in insertion order; empty when nothing is stored
// or the store cannot be read.
func (l *Ledger) Load(ctx context.Context) []model.EpisodeEntry {
	return l.Snapshot(ctx).Entries
}

// Snapshot is Load plus the origin of the entries.
func (l *Ledger) Snapshot(ctx context.Context) Snapshot {
	cur, found, err := l.guard.Get(ctx, Key)
	if err != nil {
		l.log.Warn("history store unavailable", "error", err)
		return Snapshot{Entries: []model.EpisodeEntry{}, Origin: OriginUnavailable}
	}
	entries, origin := l.decode(cur, found)
	return Snapshot{Entries: entries, Origin: origin}
}

func (l *Ledger) decode(cur []byte, found bool) ([]model.EpisodeEntry, Origin) {
	if !found {
		return []model.EpisodeEntry{}, OriginEmpty
	}
	var entries []model.EpisodeEntry
	if err := json.Unmarshal(cur, &entries); err != nil {
		l.log.Warn("malformed history, reading as empty", "error", err, "bytes", len(cur))
		return []model.EpisodeEntry{}, OriginRecovered
	}
	if entries == nil {
		entries = []model.EpisodeEntry{}
	}
	return entries, OriginLoaded
}

// Summary aggregates the ledger for the history screen.
type Summary struct {
	Episodes     int                 `json:"episodes"`
	ByMood       map[string]int      `json:"by_mood"`
	AverageAura  float64             `json:"average_aura"`
	TopMood      string              `json:"top_mood,omitempty"`
	LastReaction *model.EpisodeEntry `json:"last_reaction,omitempty"`
}

// Summarize computes a Summary over entries.
func Summarize(entries []model.EpisodeEntry) Summary {
	s := Summary{Episodes: len(entries), ByMood: map[string]int{}}
	if len(entries) == 0 {
		return s
	}

	total := 0
	for _, e := range entries {
		s.ByMood[e.MoodReaction]++
		total += e.AuraScore
	}
	s.AverageAura = math.Round(float64(total)/float64(len(entries))*100) / 100

	// Ties go to the mood listed first in model.Moods.
	best := 0
	for _, m := range model.Moods {
		if c := s.ByMood[m]; c > best {
			best, s.TopMood = c, m
		}
	}

	last := entries[len(entries)-1]
	s.LastReaction = &last
	return s
}
