// Package scoring converts engagement aggregates into scores.
//
// All functions here are pure: deterministic given their inputs, no
// clocks, no side effects. The same weighted base feeds two scores with
// deliberately different decay behavior: trending wants reactivity,
// medals want stability.
package scoring

import (
	"math"
	"time"

	"github.com/veloce/artrank/internal/domain/aggregate"
	"github.com/veloce/artrank/internal/domain/model"
)

// Default policy constants.
const (
	defaultWatchPointDivisor = 60_000 // one point per watched minute
	defaultHalfLifeHours     = 48
	defaultFreshnessFloor    = 0.05
	defaultMedalFloor        = 0.4
	defaultVelocityDivisor   = 10
	defaultVelocityCap       = 1.5
	defaultVelocityWindow    = 6 * time.Hour
)

// Policy carries every tunable of the scoring formulas as explicit
// fields. It is a plain value: copy it, adjust fields, pass it around.
type Policy struct {
	// Weights maps each event type to its engagement strength. Types
	// absent from the map contribute nothing.
	Weights map[model.EventType]float64

	// WatchPointDivisor converts accumulated watch milliseconds into
	// weighted points.
	WatchPointDivisor float64

	// HalfLifeHours tunes the exponential freshness decay.
	HalfLifeHours float64

	// FreshnessFloor keeps old-but-relevant entities from vanishing
	// out of the trending feed entirely.
	FreshnessFloor float64

	// MedalFloor dominates the medal decay so tiers do not flip
	// dramatically day to day.
	MedalFloor float64

	// VelocityDivisor and VelocityCap bound the recent-rate boost:
	// 1 + min(eventsPerHour/divisor, cap).
	VelocityDivisor float64
	VelocityCap     float64

	// VelocityWindow is the recent-sample window the rate is drawn from.
	VelocityWindow time.Duration
}

// DefaultPolicy returns the production weighting. A follow counts far
// more than a view; a skip counts nothing.
func DefaultPolicy() Policy {
	return Policy{
		Weights: map[model.EventType]float64{
			model.EventView:    1,
			model.EventSkip:    0,
			model.EventReplay:  2,
			model.EventLike:    3,
			model.EventSave:    4,
			model.EventComment: 5,
			model.EventVote:    5,
			model.EventShare:   6,
			model.EventFollow:  8,
		},
		WatchPointDivisor: defaultWatchPointDivisor,
		HalfLifeHours:     defaultHalfLifeHours,
		FreshnessFloor:    defaultFreshnessFloor,
		MedalFloor:        defaultMedalFloor,
		VelocityDivisor:   defaultVelocityDivisor,
		VelocityCap:       defaultVelocityCap,
		VelocityWindow:    defaultVelocityWindow,
	}
}

// Breakdown explains how a trending score was assembled.
type Breakdown struct {
	Weighted  float64 `json:"weighted"`
	Freshness float64 `json:"freshness"`
	Velocity  float64 `json:"velocity"`
	Score     float64 `json:"score"`
}

// Weighted is the linear combination of per-type counts plus the
// watch-time term. An aggregate with all-zero counters and zero watch
// time yields exactly 0.
func (p Policy) Weighted(a *aggregate.Aggregate) float64 {
	var sum float64
	for t, n := range a.Counters {
		sum += p.Weights[t] * float64(n)
	}
	if p.WatchPointDivisor > 0 {
		sum += float64(a.TotalWatchMs) / p.WatchPointDivisor
	}
	if sum < 0 || math.IsNaN(sum) {
		return 0
	}
	return sum
}

// rawFreshness is the unfloored exponential decay 0.5^(age/halfLife),
// clamped to [0, 1]. Future timestamps decay as age zero.
func (p Policy) rawFreshness(ageHours float64) float64 {
	if p.HalfLifeHours <= 0 {
		return 1
	}
	if ageHours < 0 {
		ageHours = 0
	}
	f := math.Pow(0.5, ageHours/p.HalfLifeHours)
	if f > 1 {
		return 1
	}
	return f
}

// Freshness is the trending decay: exponential with a low floor.
func (p Policy) Freshness(ageHours float64) float64 {
	return math.Max(p.FreshnessFloor, p.rawFreshness(ageHours))
}

// MedalFreshness is the floor-dominant decay used for medal scores.
func (p Policy) MedalFreshness(ageHours float64) float64 {
	return math.Max(p.MedalFloor, p.rawFreshness(ageHours))
}

// VelocityBoost rewards a high recent events-per-hour rate with a
// bounded multiplier.
func (p Policy) VelocityBoost(eventsPerHour float64) float64 {
	if p.VelocityDivisor <= 0 || eventsPerHour <= 0 {
		return 1
	}
	boost := eventsPerHour / p.VelocityDivisor
	if boost > p.VelocityCap {
		boost = p.VelocityCap
	}
	return 1 + boost
}

// ageHours computes the age of the aggregate's newest event at the
// reference instant.
func ageHours(a *aggregate.Aggregate, now time.Time) float64 {
	if a.LastEventAt.IsZero() {
		return 0
	}
	return now.Sub(a.LastEventAt).Hours()
}

// TrendingScore computes the feed-ordering score. The rate argument is
// the recent events-per-hour sample; hasRate false selects the
// degraded aggregate-only path where the boost is neutral.
func (p Policy) TrendingScore(a *aggregate.Aggregate, now time.Time, rate float64, hasRate bool) Breakdown {
	w := p.Weighted(a)
	f := p.Freshness(ageHours(a, now))
	v := 1.0
	if hasRate {
		v = p.VelocityBoost(rate)
	}
	return Breakdown{Weighted: w, Freshness: f, Velocity: v, Score: w * f * v}
}

// MedalScore computes the stability-oriented score medals derive from.
func (p Policy) MedalScore(a *aggregate.Aggregate, now time.Time) float64 {
	return p.Weighted(a) * p.MedalFreshness(ageHours(a, now))
}
