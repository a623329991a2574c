package loadgen

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

// Run executes a full load run: generate submissions, post them to the
// service, then fetch the resulting trending list.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	if err := checkHealth(ctx, config); err != nil {
		return fmt.Errorf("service not reachable at %s: %w", config.BaseURL, err)
	}

	subs := generateSubmissions(config, stats)
	log.Printf("generated %d submissions over %d artists and %d fans",
		len(subs), config.NumArtists, config.NumActors)

	submitEvents(ctx, config, subs, stats)

	entries, err := fetchTrending(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to fetch trending: %w", err)
	}
	stats.TrendingEntries = len(entries)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	printSummary(config, stats, entries)
	return nil
}

func checkHealth(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

func fetchTrending(ctx context.Context, config *Config) ([]TrendingEntry, error) {
	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/trending?limit=" + strconv.Itoa(config.TopN)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trending returned status %d", resp.StatusCode)
	}

	var entries []TrendingEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode trending response: %w", err)
	}
	return entries, nil
}

func printSummary(config *Config, stats *Stats, entries []TrendingEntry) {
	log.Printf(`run complete in %s:
   generated: %d
   submitted: %d
   accepted:  %d
   degraded:  %d
   limited:   %d
   failed:    %d
   trending:  %d entries`,
		stats.Duration.Round(time.Millisecond),
		stats.EventsGenerated, stats.EventsSubmitted, stats.EventsAccepted,
		stats.EventsDegraded, stats.EventsLimited, stats.EventsFailed,
		stats.TrendingEntries)

	if stats.Duration > 0 {
		rate := float64(stats.EventsSubmitted) / stats.Duration.Seconds()
		log.Printf("throughput: %.0f events/sec", rate)
	}

	top := entries
	if len(top) > config.TopN {
		top = top[:config.TopN]
	}
	for _, e := range top {
		log.Printf("  #%d %s score=%.3f", e.Rank, e.EntityID, e.Score)
	}
}
