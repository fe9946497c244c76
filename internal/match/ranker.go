package match

import (
	"sort"

	"github.com/cineshazam/cineshazam/internal/config"
	"github.com/cineshazam/cineshazam/pkg/models"
)

// Ranker orders match scores into the final identification list. Ranking is
// deterministic and idempotent: equal inputs always produce the same order
// regardless of input iteration order.
type Ranker struct {
	cfg config.RankerConfig
}

// NewRanker creates a ranker with the given configuration
func NewRanker(cfg config.RankerConfig) *Ranker {
	return &Ranker{cfg: cfg}
}

// Rank sorts scores by similarity descending, breaking ties by evidence
// count and then by movie ID. Scores below the confidence cutoff are
// excluded entirely; when nothing survives the cutoff, the single best
// score is returned flagged LowConfidence so callers can decide whether to
// surface a tentative guess.
func (r *Ranker) Rank(scores []models.MatchScore) []models.IdentificationResult {
	if len(scores) == 0 {
		return []models.IdentificationResult{}
	}

	ordered := make([]models.MatchScore, len(scores))
	copy(ordered, scores)

	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Similarity != ordered[j].Similarity {
			return ordered[i].Similarity > ordered[j].Similarity
		}
		if ordered[i].EvidenceCount != ordered[j].EvidenceCount {
			return ordered[i].EvidenceCount > ordered[j].EvidenceCount
		}
		return ordered[i].MovieID < ordered[j].MovieID
	})

	results := make([]models.IdentificationResult, 0, len(ordered))
	for _, s := range ordered {
		if s.Similarity < r.cfg.MinConfidence {
			break
		}
		results = append(results, models.IdentificationResult{
			MovieID:     s.MovieID,
			Confidence:  s.Similarity,
			MatchedSpan: s.MatchedSpan,
		})
		if r.cfg.MaxResults > 0 && len(results) >= r.cfg.MaxResults {
			break
		}
	}

	if len(results) == 0 {
		best := ordered[0]
		results = append(results, models.IdentificationResult{
			MovieID:       best.MovieID,
			Confidence:    best.Similarity,
			MatchedSpan:   best.MatchedSpan,
			LowConfidence: true,
		})
	}

	return results
}
