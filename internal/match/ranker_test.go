package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineshazam/cineshazam/internal/config"
	"github.com/cineshazam/cineshazam/pkg/models"
)

func testRankerConfig() config.RankerConfig {
	return config.RankerConfig{MinConfidence: 0.35, MaxResults: 10}
}

func span(startSec, endSec int) models.TimeSpan {
	return models.TimeSpan{
		Start: time.Duration(startSec) * time.Second,
		End:   time.Duration(endSec) * time.Second,
	}
}

func TestRankOrdering(t *testing.T) {
	r := NewRanker(testRankerConfig())

	scores := []models.MatchScore{
		{MovieID: "tt0002", Similarity: 0.6, EvidenceCount: 3, MatchedSpan: span(10, 40)},
		{MovieID: "tt0001", Similarity: 0.9, EvidenceCount: 5, MatchedSpan: span(100, 130)},
		{MovieID: "tt0003", Similarity: 0.6, EvidenceCount: 4, MatchedSpan: span(50, 80)},
	}

	results := r.Rank(scores)

	require.Len(t, results, 3)
	assert.Equal(t, "tt0001", results[0].MovieID)
	assert.Equal(t, "tt0003", results[1].MovieID) // higher evidence wins the tie
	assert.Equal(t, "tt0002", results[2].MovieID)
	for _, res := range results {
		assert.False(t, res.LowConfidence)
	}
}

func TestRankDeterministicTieBreak(t *testing.T) {
	r := NewRanker(testRankerConfig())

	forward := []models.MatchScore{
		{MovieID: "tt0002", Similarity: 0.5, EvidenceCount: 2},
		{MovieID: "tt0001", Similarity: 0.5, EvidenceCount: 2},
	}
	reversed := []models.MatchScore{
		{MovieID: "tt0001", Similarity: 0.5, EvidenceCount: 2},
		{MovieID: "tt0002", Similarity: 0.5, EvidenceCount: 2},
	}

	a := r.Rank(forward)
	b := r.Rank(reversed)

	require.Equal(t, a, b)
	assert.Equal(t, "tt0001", a[0].MovieID) // lexicographically smaller ID first
}

func TestRankIdempotent(t *testing.T) {
	r := NewRanker(testRankerConfig())

	scores := []models.MatchScore{
		{MovieID: "tt0001", Similarity: 0.7, EvidenceCount: 2},
		{MovieID: "tt0002", Similarity: 0.4, EvidenceCount: 1},
	}

	first := r.Rank(scores)
	second := r.Rank(scores)

	assert.Equal(t, first, second)
}

func TestRankCutoffExcludesLowScores(t *testing.T) {
	r := NewRanker(testRankerConfig())

	scores := []models.MatchScore{
		{MovieID: "tt0001", Similarity: 0.8, EvidenceCount: 3},
		{MovieID: "tt0002", Similarity: 0.2, EvidenceCount: 1},
	}

	results := r.Rank(scores)

	require.Len(t, results, 1)
	assert.Equal(t, "tt0001", results[0].MovieID)
}

func TestRankAllBelowCutoffFlagsBest(t *testing.T) {
	r := NewRanker(testRankerConfig())

	scores := []models.MatchScore{
		{MovieID: "tt0002", Similarity: 0.1, EvidenceCount: 1},
		{MovieID: "tt0001", Similarity: 0.3, EvidenceCount: 2},
	}

	results := r.Rank(scores)

	require.Len(t, results, 1)
	assert.Equal(t, "tt0001", results[0].MovieID)
	assert.True(t, results[0].LowConfidence)
	assert.Equal(t, 0.3, results[0].Confidence)
}

func TestRankEmptyInput(t *testing.T) {
	r := NewRanker(testRankerConfig())
	assert.Empty(t, r.Rank(nil))
}

func TestRankMaxResults(t *testing.T) {
	r := NewRanker(config.RankerConfig{MinConfidence: 0.35, MaxResults: 2})

	scores := []models.MatchScore{
		{MovieID: "tt0001", Similarity: 0.9},
		{MovieID: "tt0002", Similarity: 0.8},
		{MovieID: "tt0003", Similarity: 0.7},
	}

	assert.Len(t, r.Rank(scores), 2)
}
