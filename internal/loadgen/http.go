package loadgen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

const reportInterval = 1 * time.Second

// HTTPClient wraps http.Client with a request timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitEvents submits submissions concurrently using a worker pool.
func submitEvents(ctx context.Context, config *Config, subs []Submission, stats *Stats) {
	log.Printf("submitting %d events with %d workers", len(subs), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/events"

	var (
		submitted int64
		accepted  int64
		degraded  int64
		limited   int64
		failed    int64
	)

	subChan := make(chan Submission, config.Workers*2)
	var wg sync.WaitGroup

	lastReport := time.Now()
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range subChan {
				select {
				case <-ctx.Done():
					return
				default:
				}

				switch submitSingle(ctx, client, url, sub) {
				case outcomeAccepted:
					atomic.AddInt64(&accepted, 1)
				case outcomeDegraded:
					atomic.AddInt64(&degraded, 1)
				case outcomeLimited:
					atomic.AddInt64(&limited, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
				total := atomic.AddInt64(&submitted, 1)

				if config.Verbose && time.Since(lastReport) >= reportInterval {
					lastReport = time.Now()
					log.Printf("progress: %d/%d submitted (accepted: %d, degraded: %d, limited: %d, failed: %d)",
						total, len(subs),
						atomic.LoadInt64(&accepted), atomic.LoadInt64(&degraded),
						atomic.LoadInt64(&limited), atomic.LoadInt64(&failed))
				}
			}
		}()
	}

	go func() {
		defer close(subChan)
		for _, sub := range subs {
			select {
			case <-ctx.Done():
				return
			case subChan <- sub:
			}
		}
	}()

	wg.Wait()

	stats.EventsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.EventsAccepted = int(atomic.LoadInt64(&accepted))
	stats.EventsDegraded = int(atomic.LoadInt64(&degraded))
	stats.EventsLimited = int(atomic.LoadInt64(&limited))
	stats.EventsFailed = int(atomic.LoadInt64(&failed))

	log.Printf("submission complete: accepted=%d degraded=%d limited=%d failed=%d",
		stats.EventsAccepted, stats.EventsDegraded, stats.EventsLimited, stats.EventsFailed)
}

type submitOutcome int

const (
	outcomeAccepted submitOutcome = iota
	outcomeDegraded
	outcomeLimited
	outcomeFailed
)

func submitSingle(ctx context.Context, client *HTTPClient, url string, sub Submission) submitOutcome {
	resp, err := client.Post(ctx, url, sub)
	if err != nil {
		return outcomeFailed
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return outcomeFailed
	}

	switch resp.StatusCode {
	case http.StatusAccepted:
		var ack AckResponse
		if err := json.Unmarshal(body, &ack); err == nil && ack.Durability == "degraded" {
			return outcomeDegraded
		}
		return outcomeAccepted
	case http.StatusTooManyRequests:
		return outcomeLimited
	default:
		return outcomeFailed
	}
}
