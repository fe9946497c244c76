package match

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cineshazam/cineshazam/internal/config"
	"github.com/cineshazam/cineshazam/internal/corpus"
	"github.com/cineshazam/cineshazam/internal/metrics"
	"github.com/cineshazam/cineshazam/pkg/models"
)

// lowEvidencePenalty discounts windows carried by fewer overlapping lines
// than the configured minimum, so a single short phrase ("no") cannot
// produce a confident identification
const lowEvidencePenalty = 0.3

// minStrongContent is the smallest number of non-stop-word query tokens for
// which a single fully-covering subtitle line counts as sufficient evidence
// on its own. Shorter queries always need the evidence minimum.
const minStrongContent = 3

// Matcher aligns a transcript against candidate movies using a windowed
// scan over each movie's subtitle timeline. Per-movie scoring is pure, so
// candidates fan out across a bounded worker pool.
type Matcher struct {
	corpus corpus.Accessor
	cfg    config.MatcherConfig
}

// NewMatcher creates a matcher over the given corpus
func NewMatcher(accessor corpus.Accessor, cfg config.MatcherConfig) *Matcher {
	return &Matcher{corpus: accessor, cfg: cfg}
}

// Score produces exactly one MatchScore per candidate movie, in the order
// the candidates were given. Candidates are evaluated concurrently;
// cancellation between candidates aborts remaining work without corrupting
// already-computed scores.
func (m *Matcher) Score(ctx context.Context, transcript *models.Transcript, movieIDs []string) ([]models.MatchScore, error) {
	start := time.Now()
	defer func() {
		metrics.MatchDuration.Observe(time.Since(start).Seconds())
		metrics.CandidatesScored.Observe(float64(len(movieIDs)))
	}()

	if len(movieIDs) == 0 {
		return []models.MatchScore{}, nil
	}

	query := newBag(tokenize(transcript.Text()))
	windowSpan := m.windowSpan(transcript.Span())

	scores := make([]models.MatchScore, len(movieIDs))

	g, gctx := errgroup.WithContext(ctx)
	workers := m.cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)

	for i, movieID := range movieIDs {
		i, movieID := i, movieID
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			lines, err := m.corpus.LinesFor(gctx, movieID)
			if err != nil {
				return err
			}

			scores[i] = m.scoreMovie(movieID, lines, query, windowSpan)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return scores, nil
}

// windowSpan sizes the sliding window from the transcript's wall-clock
// span, a slack factor absorbing speech-rate drift, and a floor/ceiling
// bounding cost on long subtitle tracks
func (m *Matcher) windowSpan(transcriptSpan time.Duration) time.Duration {
	slack := m.cfg.WindowSlack
	if slack <= 0 {
		slack = 1.3
	}

	span := time.Duration(float64(transcriptSpan) * slack)
	if span < m.cfg.WindowFloor {
		span = m.cfg.WindowFloor
	}
	if m.cfg.WindowCeiling > 0 && span > m.cfg.WindowCeiling {
		span = m.cfg.WindowCeiling
	}
	return span
}

func (m *Matcher) scoreMovie(movieID string, lines []models.SubtitleLine, query bag, windowSpan time.Duration) models.MatchScore {
	score := models.MatchScore{MovieID: movieID}
	if len(lines) == 0 || query.content == 0 {
		return score
	}

	lineBags := make([]bag, len(lines))
	lineOverlaps := make([]bool, len(lines))
	lineStrong := make([]bool, len(lines))
	for i, line := range lines {
		lineBags[i] = newBag(tokenize(line.Text))
		lineOverlaps[i] = overlapsContent(query, lineBags[i])
		lineStrong[i] = query.content >= minStrongContent && coverage(query, lineBags[i]) >= 0.9
	}

	// Slide the window one line at a time, maintaining an incremental
	// token accumulator instead of re-concatenating each window
	window := bag{weights: make(map[string]float64)}
	evidence := 0
	strong := 0
	end := 0

	bestSim := -1.0
	for start := range lines {
		if end < start {
			end = start
		}
		for end < len(lines) && (end == start || lines[end].StartTime < lines[start].StartTime+windowSpan) {
			window.add(lineBags[end])
			if lineOverlaps[end] {
				evidence++
			}
			if lineStrong[end] {
				strong++
			}
			end++
		}

		sim := coverage(query, window)
		if evidence < m.cfg.MinEvidence && strong == 0 {
			sim *= lowEvidencePenalty
		}

		if sim > bestSim {
			bestSim = sim
			score.Similarity = sim
			score.EvidenceCount = evidence
			score.MatchedSpan = models.TimeSpan{
				Start: lines[start].StartTime,
				End:   maxEndTime(lines[start:end]),
			}
		}

		window.remove(lineBags[start])
		if lineOverlaps[start] {
			evidence--
		}
		if lineStrong[start] {
			strong--
		}
	}

	return score
}

// maxEndTime returns the latest cue end within the window. Cues can overlap,
// so the last line is not necessarily the one that ends last.
func maxEndTime(lines []models.SubtitleLine) time.Duration {
	end := lines[0].EndTime
	for _, line := range lines[1:] {
		if line.EndTime > end {
			end = line.EndTime
		}
	}
	return end
}
