package loadgen

import "time"

// Config holds configuration for a load run.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumEvents  int           // Number of events to generate
	NumArtists int           // Size of the artist pool events are spread over
	NumActors  int           // Size of the fan pool submitting events
	TopN       int           // Number of trending entries to fetch afterwards
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	Verbose    bool          // Enable verbose logging
}

// Submission mirrors the POST /events request body.
type Submission struct {
	Type            string `json:"type"`
	EntityID        string `json:"entity_id"`
	ActorID         string `json:"actor_id,omitempty"`
	WatchDurationMS int64  `json:"watch_duration_ms,omitempty"`
}

// AckResponse mirrors the POST /events response body.
type AckResponse struct {
	Accepted   bool   `json:"accepted"`
	EventID    string `json:"event_id"`
	Durability string `json:"durability"`
}

// TrendingEntry mirrors a GET /trending list element.
type TrendingEntry struct {
	EntityID string  `json:"entity_id"`
	Name     string  `json:"name,omitempty"`
	Rank     int     `json:"rank"`
	Score    float64 `json:"score"`
}

// Stats holds run statistics.
type Stats struct {
	EventsGenerated int
	EventsSubmitted int
	EventsAccepted  int
	EventsDegraded  int
	EventsLimited   int
	EventsFailed    int
	TrendingEntries int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
