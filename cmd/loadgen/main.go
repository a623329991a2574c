package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/veloce/artrank/internal/loadgen"
)

// Default configuration constants.
const (
	defaultNumEvents        = 10000
	defaultNumArtists       = 200
	defaultNumActors        = 500
	defaultTopN             = 20
	defaultWorkerMultiplier = 2
	defaultTimeout          = 30 * time.Second
	defaultRunTimeout       = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:8090", "Base URL of the service")
		numEvents  = flag.Int("events", defaultNumEvents, "Number of events to generate and submit")
		numArtists = flag.Int("artists", defaultNumArtists, "Size of the artist pool")
		numActors  = flag.Int("fans", defaultNumActors, "Size of the fan pool")
		topN       = flag.Int("top", defaultTopN, "Number of trending entries to fetch")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkerMultiplier, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &loadgen.Config{
		BaseURL:    *baseURL,
		NumEvents:  *numEvents,
		NumArtists: *numArtists,
		NumActors:  *numActors,
		TopN:       *topN,
		Workers:    *workers,
		Timeout:    *timeout,
		Verbose:    *verbose,
	}

	if err := loadgen.Run(ctx, config); err != nil {
		os.Stderr.WriteString("load run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
