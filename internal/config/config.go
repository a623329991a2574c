// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) defaults and Load(ctx) for layered loading.
// - Keep koanf tags flat so env overrides stay predictable.
package config

import "context"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8090".
	Addr string `koanf:"addr"`

	// EventLogPath is the append-only event log file.
	EventLogPath string `koanf:"event_log_path"`

	// SnapshotPath is the aggregate snapshot file.
	SnapshotPath string `koanf:"snapshot_path"`

	// SnapshotIntervalMS is the persistence cadence.
	SnapshotIntervalMS int `koanf:"snapshot_interval_ms"`

	// JournalCapacity bounds the in-memory append journal.
	JournalCapacity int `koanf:"journal_capacity"`

	// TopK caps tracked aggregates; compaction after each snapshot
	// drops the lowest-activity tail beyond it.
	TopK int `koanf:"top_k"`

	// RingSize caps the per-entity recent-event sample.
	RingSize int `koanf:"ring_size"`

	// RankTTLMS is the rank index cache time-to-live.
	RankTTLMS int `koanf:"rank_ttl_ms"`

	// MaxTrendingLimit caps GET /trending?limit.
	MaxTrendingLimit int `koanf:"max_trending_limit"`

	// RateLimit and RateWindowMS bound per-submitter throughput.
	RateLimit    int `koanf:"rate_limit"`
	RateWindowMS int `koanf:"rate_window_ms"`

	// Scoring policy knobs.
	EventWeights      map[string]float64 `koanf:"event_weights"`
	WatchPointDivisor float64            `koanf:"watch_point_divisor"`
	HalfLifeHours     float64            `koanf:"half_life_hours"`
	FreshnessFloor    float64            `koanf:"freshness_floor"`
	MedalFloor        float64            `koanf:"medal_floor"`
	VelocityDivisor   float64            `koanf:"velocity_divisor"`
	VelocityCap       float64            `koanf:"velocity_cap"`
	VelocityWindowMS  int                `koanf:"velocity_window_ms"`

	// Tier percentile thresholds.
	TierGold   float64 `koanf:"tier_gold"`
	TierSilver float64 `koanf:"tier_silver"`
	TierBronze float64 `koanf:"tier_bronze"`

	// Flash-window engine knobs.
	FlashTailBytes      int64 `koanf:"flash_tail_bytes"`
	FlashMaxWindowHours int   `koanf:"flash_max_window_hours"`
	FlashViralShares    int64 `koanf:"flash_viral_shares"`
	FlashBreakoutVotes  int64 `koanf:"flash_breakout_votes"`
	FlashPowerVotes     int64 `koanf:"flash_power_votes"`
	FlashPowerLikes     int64 `koanf:"flash_power_likes"`
	FlashPowerShares    int64 `koanf:"flash_power_shares"`
}

// New creates a Config with production defaults. Context is accepted
// first to match the project-wide convention; it is reserved for
// future loading hooks.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":8090",
		EventLogPath:       "data/events.log",
		SnapshotPath:       "data/aggregates.json",
		SnapshotIntervalMS: 60_000,
		JournalCapacity:    65_536,
		TopK:               10_000,
		RingSize:           32,
		RankTTLMS:          30_000,
		MaxTrendingLimit:   100,
		RateLimit:          120,
		RateWindowMS:       60_000,

		WatchPointDivisor: 60_000,
		HalfLifeHours:     48,
		FreshnessFloor:    0.05,
		MedalFloor:        0.4,
		VelocityDivisor:   10,
		VelocityCap:       1.5,
		VelocityWindowMS:  int(6 * 60 * 60 * 1000),

		TierGold:   0.05,
		TierSilver: 0.20,
		TierBronze: 0.50,

		FlashTailBytes:      1 << 20,
		FlashMaxWindowHours: 168,
		FlashViralShares:    10,
		FlashBreakoutVotes:  15,
		FlashPowerVotes:     5,
		FlashPowerLikes:     5,
		FlashPowerShares:    2,
	}
}
