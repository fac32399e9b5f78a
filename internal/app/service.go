// Package app wires the store, aura engine and history ledger into the
// single service object a session works through.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rcliao/vibecast/internal/aura"
	"github.com/rcliao/vibecast/internal/config"
	"github.com/rcliao/vibecast/internal/history"
	"github.com/rcliao/vibecast/internal/kv"
	"github.com/rcliao/vibecast/internal/logger"
	"github.com/rcliao/vibecast/internal/model"
)

// Service is constructed once per session and owns every stateful component.
type Service struct {
	store   kv.Store
	guard   *kv.Guard
	aura    *aura.Engine
	ledger  *history.Ledger
	loc     *time.Location
	clock   func() time.Time
	log     *logger.Logger
	backend string
}

// Open builds a Service on the backend named by cfg.
func Open(cfg *config.Config, log *logger.Logger) (*Service, error) {
	if log == nil {
		log = logger.Nop()
	}

	var store kv.Store
	var err error
	switch cfg.Backend {
	case config.BackendSQLite:
		store, err = kv.NewSQLiteStore(cfg.SQLite.Path, cfg.SQLite.Retain)
	case config.BackendRedis:
		store, err = kv.NewRedisStore(kv.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	case config.BackendMemory:
		store = kv.NewMemStore()
	default:
		err = fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}

	loc, err := cfg.Location()
	if err != nil {
		store.Close()
		return nil, err
	}

	s := New(store, cfg.Timeout, loc, log)
	s.backend = cfg.Backend
	return s, nil
}

// New builds a Service over an already opened store.
func New(store kv.Store, timeout time.Duration, loc *time.Location, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if loc == nil {
		loc = time.Local
	}
	guard := kv.NewGuard(store, timeout)
	return &Service{
		store:  store,
		guard:  guard,
		aura:   aura.New(guard, log),
		ledger: history.New(guard, log),
		loc:    loc,
		clock:  time.Now,
		log:    log,
	}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) { s.clock = now }

// Now is the current time in the configured zone.
func (s *Service) Now() time.Time { return s.clock().In(s.loc) }

// Store exposes the underlying store for backend-specific commands.
func (s *Service) Store() kv.Store { return s.store }

// Backend names the configured store backend; empty when built with New.
func (s *Service) Backend() string { return s.backend }

func (s *Service) Close() error { return s.store.Close() }

// View is what the home screen shows after the app comes to the foreground.
type View struct {
	aura.Result
	Presentation aura.Presentation `json:"presentation"`
}

// Foreground advances the aura for today and derives its presentation.
// host, when set, picks the speaker of the motivational quote.
func (s *Service) Foreground(ctx context.Context, host string) View {
	res := s.aura.Advance(ctx, s.Now())
	return View{Result: res, Presentation: aura.Present(res.State.AuraScore, host)}
}

// Peek returns the stored state and its presentation without advancing.
func (s *Service) Peek(ctx context.Context, host string) View {
	res := s.aura.Current(ctx, s.Now())
	return View{Result: res, Presentation: aura.Present(res.State.AuraScore, host)}
}

// ReactParams describe a mood reaction to a finished episode.
type ReactParams struct {
	EpisodeName string
	Host        string
	Mood        string // symbol or alias, see model.ResolveMood
}

// React records a reaction, snapshotting the current aura score.
func (s *Service) React(ctx context.Context, p ReactParams) (model.EpisodeEntry, bool, error) {
	mood, err := model.ResolveMood(p.Mood)
	if err != nil {
		return model.EpisodeEntry{}, false, err
	}

	now := s.Now()
	cur := s.aura.Current(ctx, now)
	e := model.EpisodeEntry{
		EpisodeName:  p.EpisodeName,
		Host:         p.Host,
		AuraScore:    cur.State.AuraScore,
		MoodReaction: mood,
		Timestamp:    model.Timestamp{Time: now.UTC().Truncate(time.Millisecond)},
	}
	saved, err := s.ledger.Append(ctx, e)
	return e, saved, err
}

// History returns the ledger snapshot.
func (s *Service) History(ctx context.Context) history.Snapshot {
	return s.ledger.Snapshot(ctx)
}

// Summary aggregates the ledger.
func (s *Service) Summary(ctx context.Context) history.Summary {
	return history.Summarize(s.ledger.Load(ctx))
}

// Export is a portable copy of a device's engagement data.
type Export struct {
	ExportedAt model.Timestamp      `json:"exportedAt"`
	Aura       *model.AuraState     `json:"aura,omitempty"`
	History    []model.EpisodeEntry `json:"history"`
}

// Export collects the stored aura state (when one exists) and the ledger.
func (s *Service) Export(ctx context.Context) Export {
	doc := Export{
		ExportedAt: model.Timestamp{Time: s.Now().UTC().Truncate(time.Millisecond)},
		History:    s.ledger.Load(ctx),
	}
	if cur := s.aura.Current(ctx, s.Now()); cur.Origin == aura.OriginLoaded {
		st := cur.State
		doc.Aura = &st
	}
	return doc
}

// ImportResult counts what Import wrote.
type ImportResult struct {
	Imported     int  `json:"imported"`
	Skipped      int  `json:"skipped"`
	AuraRestored bool `json:"aura_restored"`
}

// Import appends doc's history entries in order. When withAura is set and
// doc carries a valid state, that state replaces the stored one.
func (s *Service) Import(ctx context.Context, doc Export, withAura bool) (ImportResult, error) {
	var r ImportResult
	for _, e := range doc.History {
		saved, err := s.ledger.Append(ctx, e)
		if err != nil {
			s.log.Warn("skipping invalid history entry", "episode", e.EpisodeName, "error", err)
			r.Skipped++
			continue
		}
		if !saved {
			return r, fmt.Errorf("history store unavailable after %d entries", r.Imported)
		}
		r.Imported++
	}

	if withAura && doc.Aura != nil {
		if err := doc.Aura.Validate(); err != nil {
			return r, fmt.Errorf("invalid aura state: %w", err)
		}
		b, err := json.Marshal(doc.Aura)
		if err != nil {
			return r, err
		}
		err = s.guard.Update(ctx, aura.StateKey, func([]byte, bool) ([]byte, bool) { return b, true })
		if err != nil {
			return r, fmt.Errorf("restore aura: %w", err)
		}
		r.AuraRestored = true
	}
	return r, nil
}
