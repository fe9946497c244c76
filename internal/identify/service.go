package identify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cineshazam/cineshazam/internal/corpus"
	"github.com/cineshazam/cineshazam/internal/logging"
	"github.com/cineshazam/cineshazam/internal/match"
	"github.com/cineshazam/cineshazam/internal/metrics"
	"github.com/cineshazam/cineshazam/internal/tracing"
	"github.com/cineshazam/cineshazam/pkg/models"
)

// Scorer scores a transcript against a set of candidate movies
type Scorer interface {
	Score(ctx context.Context, transcript *models.Transcript, movieIDs []string) ([]models.MatchScore, error)
}

// Outcome is the full result of one identification request
type Outcome struct {
	Results    []models.IdentificationResult
	Transcript *models.Transcript
	Attempts   []models.ExtractionAttempt
}

// Service runs the end-to-end identification pipeline: normalize the input
// into a transcript, score it against the candidate corpus, and rank the
// scores into an ordered answer.
type Service struct {
	adapter *Adapter
	scorer  Scorer
	ranker  *match.Ranker
	corpus  corpus.Accessor
	logger  *logging.Logger
}

// NewService wires the pipeline stages together
func NewService(adapter *Adapter, scorer Scorer, ranker *match.Ranker, accessor corpus.Accessor, logger *logging.Logger) *Service {
	return &Service{
		adapter: adapter,
		scorer:  scorer,
		ranker:  ranker,
		corpus:  accessor,
		logger:  logger,
	}
}

// Identify resolves an input to an ordered list of candidate movies. When
// restrict is non-empty only those movie IDs are considered; otherwise the
// whole corpus is the candidate pool. An empty candidate pool yields empty
// results, not an error.
func (s *Service) Identify(ctx context.Context, requestID string, input Input, restrict []string) (*Outcome, error) {
	start := time.Now()
	span, ctx := tracing.StartSpan(ctx, "identify")
	defer span.Finish()
	tracing.SetTag(span, "source_kind", string(input.Kind))

	transcript, attempts, err := s.adapter.Produce(ctx, requestID, input)
	if err != nil {
		tracing.LogError(span, err)
		s.recordFailure(input.Kind, err)
		return nil, err
	}

	candidates := restrict
	if len(candidates) == 0 {
		candidates, err = s.corpus.AllMovieIDs(ctx)
		if err != nil {
			metrics.RecordIdentification(string(input.Kind), "error")
			return nil, fmt.Errorf("listing candidates: %w", err)
		}
	}

	scores, err := s.scorer.Score(ctx, transcript, candidates)
	if err != nil {
		metrics.RecordIdentification(string(input.Kind), "error")
		return nil, fmt.Errorf("scoring candidates: %w", err)
	}

	results := s.ranker.Rank(scores)
	metrics.RecordIdentification(string(input.Kind), resultKind(results))

	s.logger.LogIdentification(requestID, len(candidates), len(results), time.Since(start))

	return &Outcome{
		Results:    results,
		Transcript: transcript,
		Attempts:   attempts,
	}, nil
}

func (s *Service) recordFailure(kind models.SourceKind, err error) {
	switch {
	case errors.Is(err, ErrNoSignal):
		metrics.RecordIdentification(string(kind), "no_signal")
	case errors.Is(err, ErrExtractionExhausted):
		metrics.RecordIdentification(string(kind), "exhausted")
	default:
		metrics.RecordIdentification(string(kind), "error")
	}
}

func resultKind(results []models.IdentificationResult) string {
	switch {
	case len(results) == 0:
		return "no_match"
	case results[0].LowConfidence:
		return "low_confidence"
	default:
		return "matched"
	}
}
