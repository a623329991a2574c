package service

import (
	"time"

	"github.com/veloce/artrank/internal/adapters/registry"
	"github.com/veloce/artrank/internal/domain/flash"
	"github.com/veloce/artrank/internal/domain/rank"
	"github.com/veloce/artrank/internal/domain/scoring"
	"github.com/veloce/artrank/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRegistry sets the profile registry used for decoration.
func WithRegistry(r registry.Registry) Option {
	return func(s *Service) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithPolicy sets the scoring policy.
func WithPolicy(p scoring.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithTierThresholds sets the medal percentile thresholds.
func WithTierThresholds(th rank.Thresholds) Option {
	return func(s *Service) {
		s.thresholds = th
	}
}

// WithEventLogPath sets the append-only event log file.
func WithEventLogPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.eventLogPath = path
		}
	}
}

// WithSnapshotPath sets the aggregate snapshot file.
func WithSnapshotPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.snapshotPath = path
		}
	}
}

// WithSnapshotInterval sets the persistence cadence.
func WithSnapshotInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.snapshotInterval = d
		}
	}
}

// WithJournalCapacity bounds the in-memory append journal.
func WithJournalCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.journalCapacity = n
		}
	}
}

// WithTopK caps how many aggregates survive compaction.
func WithTopK(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topK = n
		}
	}
}

// WithRingSize sets the per-entity recent-sample ring capacity.
func WithRingSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.ringSize = n
		}
	}
}

// WithRankTTL sets the rank index cache time-to-live.
func WithRankTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.rankTTL = d
		}
	}
}

// WithRateLimit bounds per-submitter throughput.
func WithRateLimit(limit int, window time.Duration) Option {
	return func(s *Service) {
		if limit > 0 {
			s.rateLimit = limit
		}
		if window > 0 {
			s.rateWindow = window
		}
	}
}

// WithFlashOptions forwards options to the flash-window engine.
func WithFlashOptions(opts ...flash.Option) Option {
	return func(s *Service) {
		s.flashOpts = append(s.flashOpts, opts...)
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
