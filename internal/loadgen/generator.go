package loadgen

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

// Engagement mix weights. Views dominate real traffic; strong signals
// like votes and shares are comparatively rare.
const (
	mixViews    = 55
	mixSkips    = 12
	mixReplays  = 8
	mixLikes    = 10
	mixSaves    = 4
	mixComments = 4
	mixVotes    = 3
	mixShares   = 2
	mixFollows  = 2
	mixTotal    = mixViews + mixSkips + mixReplays + mixLikes + mixSaves +
		mixComments + mixVotes + mixShares + mixFollows
)

// Watch duration ranges in milliseconds for view/skip/replay events.
const (
	viewWatchMin   = 5_000
	viewWatchRange = 115_000
	skipWatchMax   = 3_000
	replayWatchMin = 30_000
)

// randomInt returns a random int in [0, n) using crypto/rand.
func randomInt(n int64) int64 {
	v, _ := rand.Int(rand.Reader, big.NewInt(n))
	return v.Int64()
}

// generateSubmissions creates the configured number of submissions,
// spreading them over a fixed pool of artist and fan IDs so the same
// entities accumulate engagement the way live traffic does.
func generateSubmissions(config *Config, stats *Stats) []Submission {
	artistIDs := make([]string, config.NumArtists)
	for i := range artistIDs {
		artistIDs[i] = uuid.New().String()
	}
	actorIDs := make([]string, config.NumActors)
	for i := range actorIDs {
		actorIDs[i] = uuid.New().String()
	}

	subs := make([]Submission, config.NumEvents)
	for i := range subs {
		subs[i] = generateSingleSubmission(artistIDs, actorIDs)
	}
	stats.EventsGenerated = len(subs)
	return subs
}

func generateSingleSubmission(artistIDs, actorIDs []string) Submission {
	sub := Submission{
		EntityID: artistIDs[randomInt(int64(len(artistIDs)))],
		ActorID:  actorIDs[randomInt(int64(len(actorIDs)))],
	}

	roll := randomInt(mixTotal)
	switch {
	case roll < mixViews:
		sub.Type = "view"
		sub.WatchDurationMS = viewWatchMin + randomInt(viewWatchRange)
	case roll < mixViews+mixSkips:
		sub.Type = "skip"
		sub.WatchDurationMS = randomInt(skipWatchMax)
	case roll < mixViews+mixSkips+mixReplays:
		sub.Type = "replay"
		sub.WatchDurationMS = replayWatchMin + randomInt(viewWatchRange)
	case roll < mixViews+mixSkips+mixReplays+mixLikes:
		sub.Type = "like"
	case roll < mixViews+mixSkips+mixReplays+mixLikes+mixSaves:
		sub.Type = "save"
	case roll < mixViews+mixSkips+mixReplays+mixLikes+mixSaves+mixComments:
		sub.Type = "comment"
	case roll < mixViews+mixSkips+mixReplays+mixLikes+mixSaves+mixComments+mixVotes:
		sub.Type = "vote"
	case roll < mixViews+mixSkips+mixReplays+mixLikes+mixSaves+mixComments+mixVotes+mixShares:
		sub.Type = "share"
	default:
		sub.Type = "follow"
	}
	return sub
}
