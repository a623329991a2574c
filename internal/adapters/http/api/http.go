// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	service "github.com/veloce/artrank/internal/app"
	"github.com/veloce/artrank/internal/domain/flash"
	"github.com/veloce/artrank/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle
// keeps the handler layer loosely coupled to the engine wiring.
type Dependencies interface {
	RecordEvent(ctx context.Context, sub model.Submission, submitter string) (service.Ack, error)
	TrendingRanking(ctx context.Context, limit int) ([]service.TrendingEntry, error)
	MedalForEntity(ctx context.Context, entityID string) (service.MedalInfo, error)
	FlashWinners(ctx context.Context, windowHours, limit int) (flash.Winners, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	eventsHandler   *EventsHandler
	trendingHandler *TrendingHandler
	medalHandler    *MedalHandler
	flashHandler    *FlashHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxTrendingLimit int) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		eventsHandler:   NewEventsHandler(deps),
		trendingHandler: NewTrendingHandler(deps, maxTrendingLimit),
		medalHandler:    NewMedalHandler(deps),
		flashHandler:    NewFlashHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.healthHandler.HandleHealth)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandlePostEvent, "events"))
	mux.HandleFunc("/trending", MetricsMiddleware(s.trendingHandler.HandleGetTrending, "trending"))
	mux.HandleFunc("/medal/", MetricsMiddleware(s.medalHandler.HandleGetMedal, "medal"))
	mux.HandleFunc("/flash", MetricsMiddleware(s.flashHandler.HandleGetFlash, "flash"))
}

type errorResponse struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	RetryAfter int64  `json:"retry_after_seconds,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// clientIdentity extracts the submitter's network identity for rate
// limiting: the first forwarded address when present, otherwise the
// peer host.
func clientIdentity(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
