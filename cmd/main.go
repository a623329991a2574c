package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/veloce/artrank/internal/adapters/http/api"
	app "github.com/veloce/artrank/internal/app"
	"github.com/veloce/artrank/internal/config"
	"github.com/veloce/artrank/internal/domain/flash"
	"github.com/veloce/artrank/internal/domain/model"
	"github.com/veloce/artrank/internal/domain/rank"
	"github.com/veloce/artrank/internal/domain/scoring"
	"github.com/veloce/artrank/pkg/logger"
	"github.com/veloce/artrank/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Our custom registry carries only engine metrics; the default Go
	// collectors would be duplicates.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	lg := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		lg.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := app.New(
		app.WithLogger(lg),
		app.WithPolicy(policyFromConfig(cfg)),
		app.WithTierThresholds(rank.Thresholds{Gold: cfg.TierGold, Silver: cfg.TierSilver, Bronze: cfg.TierBronze}),
		app.WithEventLogPath(cfg.EventLogPath),
		app.WithSnapshotPath(cfg.SnapshotPath),
		app.WithSnapshotInterval(time.Duration(cfg.SnapshotIntervalMS)*time.Millisecond),
		app.WithJournalCapacity(cfg.JournalCapacity),
		app.WithTopK(cfg.TopK),
		app.WithRingSize(cfg.RingSize),
		app.WithRankTTL(time.Duration(cfg.RankTTLMS)*time.Millisecond),
		app.WithRateLimit(cfg.RateLimit, time.Duration(cfg.RateWindowMS)*time.Millisecond),
		app.WithFlashOptions(
			flash.WithTailBytes(cfg.FlashTailBytes),
			flash.WithMaxWindow(time.Duration(cfg.FlashMaxWindowHours)*time.Hour),
			flash.WithEntityThresholds(cfg.FlashViralShares, cfg.FlashBreakoutVotes),
			flash.WithActorThresholds(cfg.FlashPowerVotes, cfg.FlashPowerLikes, cfg.FlashPowerShares),
		),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc, cfg.MaxTrendingLimit)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		lg.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	lg.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	lg.Info(ctx, "server stopped")
}

// policyFromConfig maps the flat config knobs onto a scoring policy.
func policyFromConfig(cfg *config.Config) scoring.Policy {
	p := scoring.DefaultPolicy()
	if len(cfg.EventWeights) > 0 {
		weights := make(map[model.EventType]float64, len(cfg.EventWeights))
		for name, w := range cfg.EventWeights {
			t := model.EventType(name)
			if t.Valid() && w >= 0 {
				weights[t] = w
			}
		}
		p.Weights = weights
	}
	if cfg.WatchPointDivisor > 0 {
		p.WatchPointDivisor = cfg.WatchPointDivisor
	}
	if cfg.HalfLifeHours > 0 {
		p.HalfLifeHours = cfg.HalfLifeHours
	}
	if cfg.FreshnessFloor > 0 {
		p.FreshnessFloor = cfg.FreshnessFloor
	}
	if cfg.MedalFloor > 0 {
		p.MedalFloor = cfg.MedalFloor
	}
	if cfg.VelocityDivisor > 0 {
		p.VelocityDivisor = cfg.VelocityDivisor
	}
	if cfg.VelocityCap > 0 {
		p.VelocityCap = cfg.VelocityCap
	}
	if cfg.VelocityWindowMS > 0 {
		p.VelocityWindow = time.Duration(cfg.VelocityWindowMS) * time.Millisecond
	}
	return p
}

// startSystemMetricsUpdater refreshes system gauges on a fixed cadence.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		}
	}
}
