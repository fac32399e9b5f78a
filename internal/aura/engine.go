// Package aura computes the daily engagement score and streak, and derives
// the display strings shown for a score.
package aura

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rcliao/vibecast/internal/kv"
	"github.com/rcliao/vibecast/internal/logger"
	"github.com/rcliao/vibecast/internal/model"
)

// StateKey is the store key holding the serialized AuraState.
const StateKey = "VibeCastAuraData"

// Origin tells where the state a Result started from came from.
type Origin string

const (
	OriginLoaded      Origin = "loaded"      // decoded from the store
	OriginFirstRun    Origin = "first_run"   // nothing stored yet
	OriginRecovered   Origin = "recovered"   // stored value was malformed
	OriginUnavailable Origin = "unavailable" // the store could not be read
)

// Result is the outcome of Advance or Current.
type Result struct {
	State               model.AuraState `json:"state"`
	Origin              Origin          `json:"origin"`
	Transition          Transition      `json:"transition"`
	DaysSinceLastOpened int             `json:"days_since_last_opened"`
	Persisted           bool            `json:"persisted"`
}

// Engine owns the aura state of one device.
type Engine struct {
	guard *kv.Guard
	log   *logger.Logger
}

// New returns an engine persisting through guard.
func New(guard *kv.Guard, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{guard: guard, log: log.With("service", "AuraEngine")}
}

// Advance records an app open at now and returns the resulting state.
// It never fails: unreadable or malformed stored state degrades to the
// default state, and a failed write is reported through Persisted.
func (e *Engine) Advance(ctx context.Context, now time.Time) Result {
	today := model.DateOf(now)
	var res Result

	err := e.guard.Update(ctx, StateKey, func(cur []byte, found bool) ([]byte, bool) {
		prev, origin := e.decode(cur, found)
		res = Result{Origin: origin}

		if origin != OriginLoaded {
			res.State = model.DefaultAuraState(today)
			res.Transition = TransitionInitial
		} else {
			res.DaysSinceLastOpened = today.DaysSince(prev.LastOpenedDate)
			res.State, res.Transition = Step(prev, today)
			if res.Transition == TransitionNone {
				if res.DaysSinceLastOpened < 0 {
					e.log.Warn("clock is behind last opened date, keeping state",
						"today", today.String(), "last_opened", prev.LastOpenedDate.String())
				}
				return nil, false
			}
		}

		b, err := json.Marshal(res.State)
		if err != nil {
			e.log.Error("encode aura state", "error", err)
			return nil, false
		}
		return b, true
	})

	switch {
	case err == nil:
		res.Persisted = res.Transition != TransitionNone
	case kv.IsOp(err, "set"):
		e.log.Warn("aura state not persisted", "transition", res.Transition, "error", err)
	default:
		e.log.Warn("aura store unavailable, using default state", "error", err)
		res = Result{
			State:      model.DefaultAuraState(today),
			Origin:     OriginUnavailable,
			Transition: TransitionInitial,
		}
	}

	if res.Persisted {
		e.log.Info("aura updated",
			"transition", res.Transition,
			"score", res.State.AuraScore,
			"streak", res.State.StreakCount)
	}
	e.log.Debug("advanced aura",
		"today", today.String(),
		"origin", res.Origin,
		"transition", res.Transition,
		"score", res.State.AuraScore,
		"streak", res.State.StreakCount,
		"missed", res.State.ConsecutiveMissedDays,
		"persisted", res.Persisted)
	return res
}

// Current returns the stored state without advancing it. now only supplies
// the date of the default state when nothing usable is stored.
func (e *Engine) Current(ctx context.Context, now time.Time) Result {
	today := model.DateOf(now)

	cur, found, err := e.guard.Get(ctx, StateKey)
	if err != nil {
		e.log.Warn("aura store unavailable, using default state", "error", err)
		return Result{State: model.DefaultAuraState(today), Origin: OriginUnavailable, Transition: TransitionNone}
	}

	prev, origin := e.decode(cur, found)
	if origin != OriginLoaded {
		prev = model.DefaultAuraState(today)
	}
	return Result{
		State:               prev,
		Origin:              origin,
		Transition:          TransitionNone,
		DaysSinceLastOpened: today.DaysSince(prev.LastOpenedDate),
		Persisted:           found && origin == OriginLoaded,
	}
}

func (e *Engine) decode(cur []byte, found bool) (model.AuraState, Origin) {
	if !found {
		return model.AuraState{}, OriginFirstRun
	}
	var st model.AuraState
	if err := json.Unmarshal(cur, &st); err != nil {
		e.log.Warn("malformed aura state, resetting", "error", err, "bytes", len(cur))
		return model.AuraState{}, OriginRecovered
	}
	if err := st.Validate(); err != nil {
		e.log.Warn("invalid aura state, resetting", "error", err)
		return model.AuraState{}, OriginRecovered
	}
	return st, OriginLoaded
}
