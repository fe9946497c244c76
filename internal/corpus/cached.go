package corpus

import (
	"context"
	"time"

	"github.com/cineshazam/cineshazam/internal/metrics"
	"github.com/cineshazam/cineshazam/pkg/models"
)

// LineCache is the subset of the cache layer the corpus needs. A nil slice
// with no error signals a miss on reads.
type LineCache interface {
	GetLines(ctx context.Context, movieID string) ([]models.SubtitleLine, error)
	SetLines(ctx context.Context, movieID string, lines []models.SubtitleLine, ttl time.Duration) error
	GetMovieIDs(ctx context.Context) ([]string, error)
	SetMovieIDs(ctx context.Context, ids []string, ttl time.Duration) error
}

// Cached is a read-through accessor: hits are served from the cache, misses
// fall back to the source and populate the cache on the way out. Cache
// failures degrade to source reads rather than failing the call.
type Cached struct {
	source Accessor
	cache  LineCache
	ttl    time.Duration
}

// NewCached wraps source with a read-through cache
func NewCached(source Accessor, cache LineCache, ttl time.Duration) *Cached {
	return &Cached{source: source, cache: cache, ttl: ttl}
}

// LinesFor implements the Accessor interface
func (c *Cached) LinesFor(ctx context.Context, movieID string) ([]models.SubtitleLine, error) {
	if lines, err := c.cache.GetLines(ctx, movieID); err == nil && lines != nil {
		metrics.RecordCacheAccess("lines", true)
		return lines, nil
	}
	metrics.RecordCacheAccess("lines", false)

	lines, err := c.source.LinesFor(ctx, movieID)
	if err != nil {
		return nil, err
	}

	if len(lines) > 0 {
		// Best effort: a failed cache write only costs the next read
		_ = c.cache.SetLines(ctx, movieID, lines, c.ttl)
	}

	return lines, nil
}

// AllMovieIDs implements the Accessor interface
func (c *Cached) AllMovieIDs(ctx context.Context) ([]string, error) {
	if ids, err := c.cache.GetMovieIDs(ctx); err == nil && ids != nil {
		metrics.RecordCacheAccess("movie_ids", true)
		return ids, nil
	}
	metrics.RecordCacheAccess("movie_ids", false)

	ids, err := c.source.AllMovieIDs(ctx)
	if err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		_ = c.cache.SetMovieIDs(ctx, ids, c.ttl)
	}

	return ids, nil
}
