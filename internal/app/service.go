// Package service wires the engagement engine together and implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/veloce/artrank/internal/adapters/eventlog"
	"github.com/veloce/artrank/internal/adapters/mq/journal"
	"github.com/veloce/artrank/internal/adapters/mq/worker"
	"github.com/veloce/artrank/internal/adapters/rankcache"
	"github.com/veloce/artrank/internal/adapters/ratelimit"
	"github.com/veloce/artrank/internal/adapters/registry"
	"github.com/veloce/artrank/internal/adapters/repository"
	"github.com/veloce/artrank/internal/domain/flash"
	"github.com/veloce/artrank/internal/domain/model"
	"github.com/veloce/artrank/internal/domain/rank"
	"github.com/veloce/artrank/internal/domain/scoring"
	"github.com/veloce/artrank/pkg/logger"
	"github.com/veloce/artrank/pkg/metrics"
)

// Ack is the successful outcome of a recorded event. Durability is
// Durable when the event reached the append journal, Degraded when the
// durable path was unavailable and the event lives only in memory.
type Ack struct {
	EventID    string              `json:"event_id"`
	Durability eventlog.Durability `json:"durability"`
}

// TrendingEntry is one row of the trending feed, decorated with the
// profile name when the registry knows the entity.
type TrendingEntry struct {
	EntityID string            `json:"entity_id"`
	Name     string            `json:"name,omitempty"`
	Rank     int               `json:"rank"`
	Score    float64           `json:"score"`
	Explain  scoring.Breakdown `json:"explain"`
}

// MedalInfo is the badge assigned to one entity.
type MedalInfo struct {
	EntityID string    `json:"entity_id"`
	Tier     rank.Tier `json:"tier"`
	Label    string    `json:"label"`
}

// Service implements the engine behind the API: ingestion, aggregate
// state, scoring, rank caches, and the flash-window engine.
type Service struct {
	mu sync.RWMutex

	store    *repository.MemStore
	log      *eventlog.Log
	journal  journal.Queue
	writer   *worker.LogWriter
	limiter  *ratelimit.Limiter
	trending *rankcache.Cache
	medals   *rankcache.Cache
	flash    *flash.Engine
	registry registry.Registry

	policy     scoring.Policy
	thresholds rank.Thresholds

	// Per-rebuild trending breakdowns, replaced wholesale by the
	// trending builder.
	explains map[string]scoring.Breakdown

	// Configuration
	eventLogPath     string
	snapshotPath     string
	snapshotInterval time.Duration
	journalCapacity  int
	topK             int
	ringSize         int
	rankTTL          time.Duration
	rateLimit        int
	rateWindow       time.Duration
	flashOpts        []flash.Option

	now func() time.Time

	started bool
	stopCh  chan struct{}

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		registry:         registry.NewInMemory(),
		policy:           scoring.DefaultPolicy(),
		thresholds:       rank.DefaultThresholds(),
		eventLogPath:     "data/events.log",
		snapshotPath:     "data/aggregates.json",
		snapshotInterval: time.Minute,
		journalCapacity:  65_536,
		topK:             10_000,
		ringSize:         32,
		rankTTL:          30 * time.Second,
		rateLimit:        120,
		rateWindow:       time.Minute,
		now:              time.Now,
		stopCh:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes components, restores the aggregate snapshot, and
// launches the log writer and snapshot loop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("engine")
	}

	s.store = repository.NewMemStore(repository.WithRingSize(s.ringSize))
	if err := s.store.RestoreSnapshot(ctx, s.snapshotPath); err != nil {
		if errors.Is(err, repository.ErrCorruptSnapshot) {
			// Degraded startup from an empty aggregate set; the event
			// log is untouched.
			s.logger.Warn(ctx, "snapshot restore failed, starting empty", logger.Error(err))
		} else {
			return err
		}
	}

	log, err := eventlog.Open(s.eventLogPath)
	if err != nil {
		return err
	}
	s.log = log

	s.journal = journal.NewInMemoryQueue(journal.WithCapacity(s.journalCapacity))
	s.writer = worker.NewLogWriter(s.journal, s.log, worker.WithLogger(s.logger.Named("log-writer")))
	go s.writer.Run(context.WithoutCancel(ctx))

	s.limiter = ratelimit.New(
		ratelimit.WithLimit(s.rateLimit),
		ratelimit.WithWindow(s.rateWindow),
	)
	s.limiter.StartPruning(s.rateWindow)

	s.trending = rankcache.New(s.buildTrending,
		rankcache.WithTTL(s.rankTTL),
		rankcache.WithLogger(s.logger.Named("trending-cache")),
	)
	s.medals = rankcache.New(s.buildMedals,
		rankcache.WithTTL(s.rankTTL),
		rankcache.WithLogger(s.logger.Named("medal-cache")),
	)

	flashOpts := append([]flash.Option{flash.WithLogger(s.logger.Named("flash"))}, s.flashOpts...)
	s.flash = flash.New(s.log, flashOpts...)

	go s.snapshotLoop(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "engagement engine started",
		logger.String("event_log", s.eventLogPath),
		logger.String("snapshot", s.snapshotPath),
		logger.Int("top_k", s.topK),
		logger.Duration("rank_ttl", s.rankTTL),
	)
	return nil
}

// Stop drains the journal, writes a final snapshot, and shuts down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping engagement engine...")

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	_ = s.journal.Close()
	if err := s.writer.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "log writer shutdown incomplete", logger.Error(err))
	}
	if err := s.store.WriteSnapshot(ctx, s.snapshotPath); err != nil {
		s.logger.Error(ctx, "final snapshot failed", logger.Error(err))
	}
	if err := s.log.Close(); err != nil {
		s.logger.Warn(ctx, "event log close failed", logger.Error(err))
	}
	s.limiter.Stop()

	s.started = false
	s.logger.Info(ctx, "engagement engine stopped")
}

// RecordEvent validates and ingests one submission. On success the
// matching aggregate has been updated and the event is journaled for
// append; a Degraded ack means the durable path was unavailable but
// the in-memory state still moved.
func (s *Service) RecordEvent(ctx context.Context, sub model.Submission, submitter string) (Ack, error) {
	now := s.now()

	if ok, retryAfter := s.limiter.Allow(submitter, now); !ok {
		metrics.RecordRateLimited()
		metrics.RecordEventRejected("rate_limited")
		return Ack{}, &RateLimitedError{RetryAfter: retryAfter}
	}

	ev, err := sub.Normalize(uuid.New().String(), now)
	if err != nil {
		metrics.RecordEventRejected("validation")
		return Ack{}, &ValidationError{Reason: err}
	}

	// The in-memory transition always happens, durable or not.
	s.store.Apply(ctx, ev)
	metrics.RecordEventAccepted()
	metrics.UpdateTrackedEntities(s.store.Count(ctx))

	durability := eventlog.Durable
	if !s.journal.Enqueue(ctx, ev) {
		durability = eventlog.Degraded
		metrics.RecordLogAppend(string(eventlog.Degraded))
		s.logger.Warn(ctx, "append journal unavailable, event is memory-only",
			logger.String("event_id", ev.ID),
		)
	}

	return Ack{EventID: ev.ID, Durability: durability}, nil
}

// RegisterProfile makes an entity known: it is decorated in feeds and
// scored (at zero) even before its first event.
func (s *Service) RegisterProfile(ctx context.Context, p registry.Profile) {
	if r, ok := s.registry.(*registry.InMemory); ok {
		r.Put(ctx, p)
	}
	s.store.Register(ctx, p.ID)
}

// TrendingRanking returns the top limit entities ordered by trending
// score, served from the TTL-cached index.
func (s *Service) TrendingRanking(ctx context.Context, limit int) ([]TrendingEntry, error) {
	snap, err := s.trending.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(snap) > limit {
		snap = snap[:limit]
	}

	s.mu.RLock()
	explains := s.explains
	s.mu.RUnlock()

	out := make([]TrendingEntry, len(snap))
	for i, sc := range snap {
		e := TrendingEntry{
			EntityID: sc.EntityID,
			Rank:     sc.Rank,
			Score:    sc.Score,
			Explain:  explains[sc.EntityID],
		}
		if p, ok := s.registry.GetEntityByID(ctx, sc.EntityID); ok {
			e.Name = p.Name
		}
		out[i] = e
	}
	return out, nil
}

// MedalForEntity returns the badge for one entity. Entities outside
// the scored set are unranked; known-but-inactive entities come back
// certified.
func (s *Service) MedalForEntity(ctx context.Context, entityID string) (MedalInfo, error) {
	sc, ok, err := s.medals.Lookup(ctx, entityID)
	if err != nil {
		return MedalInfo{}, err
	}
	tier := rank.TierUnranked
	if ok {
		tier = sc.Tier
	}
	return MedalInfo{EntityID: entityID, Tier: tier, Label: tier.Label()}, nil
}

// FlashWinners scans the bounded event log tail for in-window medal
// winners among entities and actors.
func (s *Service) FlashWinners(ctx context.Context, windowHours int, limit int) (flash.Winners, error) {
	start := time.Now()
	winners, err := s.flash.Winners(ctx, s.now(), time.Duration(windowHours)*time.Hour, limit)
	if err != nil {
		return flash.Winners{}, err
	}
	metrics.RecordFlashScan(float64(time.Since(start).Milliseconds()), winners.Skipped)
	return winners, nil
}

// ResetAggregates drops all aggregate state and invalidates the rank
// caches so no torn ranking is ever observable.
func (s *Service) ResetAggregates(ctx context.Context) {
	s.store.Reset(ctx)
	s.trending.Invalidate()
	s.medals.Invalidate()
	metrics.UpdateTrackedEntities(0)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":            s.started,
		"topK":               s.topK,
		"rankTTLMs":          s.rankTTL.Milliseconds(),
		"rateLimitPerWindow": s.rateLimit,
	}
	if s.started {
		stats["trackedEntities"] = s.store.Count(ctx)
		stats["journalDepth"] = s.journal.Len(ctx)
		stats["rateLimitKeys"] = s.limiter.Keys()
		metrics.UpdateRateLimitKeys(s.limiter.Keys())
	}
	return stats
}

// buildTrending is the trending cache builder: score every tracked
// entity with the reactive policy and rank the population.
func (s *Service) buildTrending(ctx context.Context) ([]rank.Scored, error) {
	now := s.now()
	aggs := s.store.All(ctx)

	scores := make([]rank.Score, 0, len(aggs))
	explains := make(map[string]scoring.Breakdown, len(aggs))
	for _, a := range aggs {
		rate, hasRate := s.store.RecentRate(ctx, a.ID, now, s.policy.VelocityWindow)
		bd := s.policy.TrendingScore(a, now, rate, hasRate)
		explains[a.ID] = bd
		scores = append(scores, rank.Score{EntityID: a.ID, Score: bd.Score})
	}

	s.mu.Lock()
	s.explains = explains
	s.mu.Unlock()

	return rank.Build(scores, s.thresholds), nil
}

// buildMedals is the medal cache builder: same weighted base, but the
// floor-dominant decay keeps tiers stable day to day.
func (s *Service) buildMedals(ctx context.Context) ([]rank.Scored, error) {
	now := s.now()
	aggs := s.store.All(ctx)

	scores := make([]rank.Score, 0, len(aggs))
	for _, a := range aggs {
		scores = append(scores, rank.Score{EntityID: a.ID, Score: s.policy.MedalScore(a, now)})
	}
	return rank.Build(scores, s.thresholds), nil
}

// snapshotLoop periodically persists the aggregate map and compacts it
// to the top-K most active entities.
func (s *Service) snapshotLoop(ctx context.Context) {
	ticker := time.NewTicker(s.snapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			start := time.Now()
			if err := s.store.WriteSnapshot(ctx, s.snapshotPath); err != nil {
				s.logger.Error(ctx, "snapshot write failed", logger.Error(err))
				continue
			}
			metrics.RecordSnapshot(float64(time.Since(start).Milliseconds()), time.Now().Unix())
			if dropped := s.store.Compact(ctx, s.topK); dropped > 0 {
				metrics.RecordCompactionDropped(dropped)
				s.logger.Info(ctx, "compacted aggregate store",
					logger.Int("dropped", dropped),
					logger.Int("kept", s.store.Count(ctx)),
				)
			}
			metrics.UpdateTrackedEntities(s.store.Count(ctx))
		}
	}
}
