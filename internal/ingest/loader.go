package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/cineshazam/cineshazam/internal/logging"
	"github.com/cineshazam/cineshazam/internal/metrics"
	"github.com/cineshazam/cineshazam/pkg/models"
)

// SubtitleSource resolves a title to raw subtitle bytes. The OpenSubtitles
// client is the production implementation.
type SubtitleSource interface {
	SearchByImdbID(ctx context.Context, imdbID, language string) (int64, error)
	Download(ctx context.Context, fileID int64) ([]byte, error)
}

// CorpusWriter persists parsed lines and tracks ingest state
type CorpusWriter interface {
	InsertLines(ctx context.Context, movieID string, lines []models.SubtitleLine) error
	UpdateMovieStatus(ctx context.Context, id, status string, lineCount int) error
}

// RawStore archives the original subtitle file so a corpus rebuild never
// hits the provider again
type RawStore interface {
	UploadSubtitles(ctx context.Context, movieID string, data []byte) (string, error)
}

// Invalidator drops cached corpus entries after a movie's lines or status
// change
type Invalidator interface {
	DeleteLines(ctx context.Context, movieID string) error
	DeleteMovie(ctx context.Context, movieID string) error
	DeleteMovieIDs(ctx context.Context) error
}

// Loader executes one ingest job: fetch subtitles, archive the raw file,
// parse, and index the lines
type Loader struct {
	source   SubtitleSource
	writer   CorpusWriter
	store    RawStore
	cache    Invalidator
	language string
	logger   *logging.Logger
}

// NewLoader wires an ingest loader. store and cache may be nil; archival
// and invalidation are then skipped.
func NewLoader(source SubtitleSource, writer CorpusWriter, store RawStore, cache Invalidator, language string, logger *logging.Logger) *Loader {
	if language == "" {
		language = "en"
	}
	return &Loader{
		source:   source,
		writer:   writer,
		store:    store,
		cache:    cache,
		language: language,
		logger:   logger,
	}
}

// Process runs one ingest job end to end. The movie ends in ready state
// with its line count recorded, or in failed state with the error returned
// for the queue to retry.
func (l *Loader) Process(ctx context.Context, job *models.IngestJob) error {
	start := time.Now()

	lines, err := l.ingest(ctx, job)
	l.logger.LogIngest(job.MovieID, len(lines), time.Since(start), err)

	if err != nil {
		metrics.IngestJobsTotal.WithLabelValues("failed").Inc()
		// Best effort: the job error is the one worth surfacing
		_ = l.writer.UpdateMovieStatus(ctx, job.MovieID, models.MovieStatusFailed, 0)
		return err
	}

	metrics.IngestJobsTotal.WithLabelValues("completed").Inc()
	metrics.IngestedLinesTotal.Add(float64(len(lines)))
	return nil
}

func (l *Loader) ingest(ctx context.Context, job *models.IngestJob) ([]models.SubtitleLine, error) {
	language := job.Language
	if language == "" {
		language = l.language
	}

	if err := l.writer.UpdateMovieStatus(ctx, job.MovieID, models.MovieStatusLoading, 0); err != nil {
		return nil, fmt.Errorf("failed to mark movie loading: %w", err)
	}

	fileID, err := l.source.SearchByImdbID(ctx, job.ImdbID, language)
	if err != nil {
		return nil, fmt.Errorf("subtitle search failed: %w", err)
	}

	data, err := l.source.Download(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("subtitle download failed: %w", err)
	}

	if l.store != nil {
		if _, err := l.store.UploadSubtitles(ctx, job.MovieID, data); err != nil {
			return nil, fmt.Errorf("failed to archive subtitle file: %w", err)
		}
	}

	lines, err := ParseSRT(job.MovieID, data)
	if err != nil {
		return nil, fmt.Errorf("subtitle parse failed: %w", err)
	}

	if err := l.writer.InsertLines(ctx, job.MovieID, lines); err != nil {
		return nil, fmt.Errorf("failed to index lines: %w", err)
	}

	if err := l.writer.UpdateMovieStatus(ctx, job.MovieID, models.MovieStatusReady, len(lines)); err != nil {
		return nil, fmt.Errorf("failed to mark movie ready: %w", err)
	}

	if l.cache != nil {
		_ = l.cache.DeleteLines(ctx, job.MovieID)
		_ = l.cache.DeleteMovie(ctx, job.MovieID)
		_ = l.cache.DeleteMovieIDs(ctx)
	}

	return lines, nil
}
