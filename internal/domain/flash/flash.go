// Package flash computes short-rolling-window winners from a bounded
// tail of the event log.
//
// The engine deliberately bypasses the lifetime aggregates: a cumulative
// counter cannot answer "what's hot right now". Because the tail read is
// bounded, very old high-activity periods are invisible here, which is
// the intended behavior.
package flash

import (
	"bytes"
	"context"
	"sort"
	"time"

	json "github.com/goccy/go-json"

	"github.com/veloce/artrank/internal/domain/aggregate"
	"github.com/veloce/artrank/internal/domain/model"
	"github.com/veloce/artrank/pkg/logger"
)

// Medal kinds awarded from in-window thresholds.
type Medal string

// Flash medals. Viral takes priority over breakout for entities.
const (
	MedalViral      Medal = "viral"
	MedalBreakout   Medal = "breakout"
	MedalPowerVoter Medal = "power_voter"
)

// Default engine configuration constants.
const (
	defaultWindow    = 24 * time.Hour
	defaultMaxWindow = 7 * 24 * time.Hour
	defaultTailBytes = 1 << 20 // 1 MiB of log tail

	defaultViralShareMin   = 10
	defaultBreakoutVoteMin = 15
	defaultPowerVoteMin    = 5
	defaultPowerLikeMin    = 5
	defaultPowerShareMin   = 2
)

// TailReader reads the trailing portion of the event log.
type TailReader interface {
	ReadTail(ctx context.Context, maxBytes int64) ([]byte, error)
}

// EntityWinner is an entity that cleared a flash medal threshold.
type EntityWinner struct {
	EntityID string `json:"entity_id"`
	Medal    Medal  `json:"medal"`
	Shares   int64  `json:"shares"`
	Votes    int64  `json:"votes"`
	Events   int64  `json:"events"`
}

// ActorWinner is a fan that cleared the power-voter thresholds.
type ActorWinner struct {
	ActorID string `json:"actor_id"`
	Medal   Medal  `json:"medal"`
	Votes   int64  `json:"votes"`
	Likes   int64  `json:"likes"`
	Shares  int64  `json:"shares"`
}

// Winners is the result of one flash-window scan.
type Winners struct {
	Window   time.Duration  `json:"-"`
	Entities []EntityWinner `json:"entities"`
	Actors   []ActorWinner  `json:"actors"`

	// Scan accounting, useful for stats and tests.
	Scanned int `json:"scanned"`
	Skipped int `json:"skipped"`
}

// Engine scans the event log tail and awards threshold medals.
type Engine struct {
	tail TailReader

	maxWindow time.Duration
	tailBytes int64

	viralShareMin   int64
	breakoutVoteMin int64
	powerVoteMin    int64
	powerLikeMin    int64
	powerShareMin   int64

	logger logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithMaxWindow clamps the largest window a caller may request.
func WithMaxWindow(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.maxWindow = d
		}
	}
}

// WithTailBytes bounds how much of the log tail one scan reads.
func WithTailBytes(n int64) Option {
	return func(e *Engine) {
		if n > 0 {
			e.tailBytes = n
		}
	}
}

// WithEntityThresholds sets the viral share and breakout vote minimums.
func WithEntityThresholds(viralShares, breakoutVotes int64) Option {
	return func(e *Engine) {
		if viralShares > 0 {
			e.viralShareMin = viralShares
		}
		if breakoutVotes > 0 {
			e.breakoutVoteMin = breakoutVotes
		}
	}
}

// WithActorThresholds sets the power-voter minimums.
func WithActorThresholds(votes, likes, shares int64) Option {
	return func(e *Engine) {
		if votes > 0 {
			e.powerVoteMin = votes
		}
		if likes > 0 {
			e.powerLikeMin = likes
		}
		if shares > 0 {
			e.powerShareMin = shares
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates a flash engine reading from the given log tail.
func New(tail TailReader, opts ...Option) *Engine {
	e := &Engine{
		tail:            tail,
		maxWindow:       defaultMaxWindow,
		tailBytes:       defaultTailBytes,
		viralShareMin:   defaultViralShareMin,
		breakoutVoteMin: defaultBreakoutVoteMin,
		powerVoteMin:    defaultPowerVoteMin,
		powerLikeMin:    defaultPowerLikeMin,
		powerShareMin:   defaultPowerShareMin,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Get().Named("flash")
	}
	return e
}

// Winners scans the log tail and returns entity and actor medal winners
// for events whose occurred-at falls inside [now-window, now]. The
// window is clamped to the configured maximum; zero or negative selects
// the default. Limit caps each winner list; limit <= 0 means no cap.
func (e *Engine) Winners(ctx context.Context, now time.Time, window time.Duration, limit int) (Winners, error) {
	if window <= 0 {
		window = defaultWindow
	}
	if window > e.maxWindow {
		window = e.maxWindow
	}
	cutoff := now.Add(-window)

	raw, err := e.tail.ReadTail(ctx, e.tailBytes)
	if err != nil {
		return Winners{}, err
	}

	entities := make(map[string]*aggregate.Aggregate)
	actors := make(map[string]*aggregate.Aggregate)
	res := Winners{Window: window}

	for _, line := range bytes.Split(raw, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		res.Scanned++

		var ev model.Event
		if err := json.Unmarshal(line, &ev); err != nil || !ev.Type.Valid() || ev.EntityID == "" {
			// A malformed line is skipped, not fatal.
			res.Skipped++
			continue
		}
		if ev.OccurredAt.Before(cutoff) || ev.OccurredAt.After(now) {
			continue
		}

		ent, ok := entities[ev.EntityID]
		if !ok {
			ent = aggregate.New(ev.EntityID)
			entities[ev.EntityID] = ent
		}
		ent.Apply(ev)

		if ev.ActorID != "" {
			act, ok := actors[ev.ActorID]
			if !ok {
				act = aggregate.New(ev.ActorID)
				actors[ev.ActorID] = act
			}
			act.Apply(ev)
		}
	}

	res.Entities = e.entityWinners(entities, limit)
	res.Actors = e.actorWinners(actors, limit)

	if res.Skipped > 0 {
		e.logger.Warn(ctx, "skipped malformed event log lines",
			logger.Int("skipped", res.Skipped),
			logger.Int("scanned", res.Scanned),
		)
	}
	return res, nil
}

// entityMedal applies the entity thresholds. Viral is checked first.
func (e *Engine) entityMedal(a *aggregate.Aggregate) (Medal, bool) {
	if a.Count(model.EventShare) >= e.viralShareMin {
		return MedalViral, true
	}
	if a.Count(model.EventVote) >= e.breakoutVoteMin {
		return MedalBreakout, true
	}
	return "", false
}

func (e *Engine) entityWinners(tallies map[string]*aggregate.Aggregate, limit int) []EntityWinner {
	var out []EntityWinner
	for _, a := range tallies {
		medal, ok := e.entityMedal(a)
		if !ok {
			continue
		}
		out = append(out, EntityWinner{
			EntityID: a.ID,
			Medal:    medal,
			Shares:   a.Count(model.EventShare),
			Votes:    a.Count(model.EventVote),
			Events:   a.EventCount,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Events != out[j].Events {
			return out[i].Events > out[j].Events
		}
		return out[i].EntityID < out[j].EntityID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (e *Engine) actorWinners(tallies map[string]*aggregate.Aggregate, limit int) []ActorWinner {
	var out []ActorWinner
	for _, a := range tallies {
		votes := a.Count(model.EventVote)
		likes := a.Count(model.EventLike)
		shares := a.Count(model.EventShare)
		if votes < e.powerVoteMin || likes < e.powerLikeMin || shares < e.powerShareMin {
			continue
		}
		out = append(out, ActorWinner{
			ActorID: a.ID,
			Medal:   MedalPowerVoter,
			Votes:   votes,
			Likes:   likes,
			Shares:  shares,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Votes != out[j].Votes {
			return out[i].Votes > out[j].Votes
		}
		return out[i].ActorID < out[j].ActorID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
