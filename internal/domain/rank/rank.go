// Package rank builds a total order and percentile positions over a
// scored population and maps positions to medal tiers.
package rank

import "sort"

// Tier is the discrete badge derived from percentile plus a positivity
// gate.
type Tier string

// Medal tiers. Certified is the baseline for known-but-inactive
// entities; Unranked means the entity is not in the scored set at all.
const (
	TierGold      Tier = "gold"
	TierSilver    Tier = "silver"
	TierBronze    Tier = "bronze"
	TierCertified Tier = "certified"
	TierUnranked  Tier = "unranked"
)

// Label returns the human badge label for a tier.
func (t Tier) Label() string {
	switch t {
	case TierGold:
		return "Gold Artist"
	case TierSilver:
		return "Silver Artist"
	case TierBronze:
		return "Bronze Artist"
	case TierCertified:
		return "Certified Artist"
	default:
		return "Unranked"
	}
}

// Thresholds are the percentile cut-offs for the positive-score tiers.
// A percentile strictly below Gold is gold, below Silver is silver,
// below Bronze is bronze, anything else certified.
type Thresholds struct {
	Gold   float64 `json:"gold"`
	Silver float64 `json:"silver"`
	Bronze float64 `json:"bronze"`
}

// DefaultThresholds places the top 5% at gold, the next 15% at silver
// and the next 30% at bronze.
func DefaultThresholds() Thresholds {
	return Thresholds{Gold: 0.05, Silver: 0.20, Bronze: 0.50}
}

// Score is one input to a ranking build.
type Score struct {
	EntityID string
	Score    float64
}

// Scored is one entity's position within a built ranking.
type Scored struct {
	EntityID    string  `json:"entity_id"`
	Score       float64 `json:"score"`
	Rank        int     `json:"rank"`
	TotalRanked int     `json:"total_ranked"`
	Percentile  float64 `json:"percentile"`
	Tier        Tier    `json:"tier"`
}

// TierFor maps a percentile to a tier, gated on score positivity:
// zero-score entities are never gold, silver or bronze regardless of
// their percentile position.
func TierFor(percentile, score float64, th Thresholds) Tier {
	if score <= 0 {
		return TierCertified
	}
	switch {
	case percentile < th.Gold:
		return TierGold
	case percentile < th.Silver:
		return TierSilver
	case percentile < th.Bronze:
		return TierBronze
	default:
		return TierCertified
	}
}

// Build sorts the population by score descending, tie-broken by entity
// id ascending so re-computation with unchanged scores is stable, and
// assigns 1-based ranks and percentiles. The percentile of the i-th
// (0-indexed) entity among N is i/(N-1), 0 when N <= 1.
func Build(scores []Score, th Thresholds) []Scored {
	ordered := make([]Score, len(scores))
	copy(ordered, scores)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score > ordered[j].Score
		}
		return ordered[i].EntityID < ordered[j].EntityID
	})

	n := len(ordered)
	out := make([]Scored, n)
	for i, s := range ordered {
		var pct float64
		if n > 1 {
			pct = float64(i) / float64(n-1)
		}
		out[i] = Scored{
			EntityID:    s.EntityID,
			Score:       s.Score,
			Rank:        i + 1,
			TotalRanked: n,
			Percentile:  pct,
			Tier:        TierFor(pct, s.Score, th),
		}
	}
	return out
}
