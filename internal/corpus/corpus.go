// Package corpus exposes a read-only view over the time-indexed subtitle
// corpus. The matcher consumes it; ingestion writes through the database
// layer and never through this package.
package corpus

import (
	"context"

	"github.com/cineshazam/cineshazam/pkg/models"
)

// Accessor reads the subtitle corpus. LinesFor returns a movie's lines
// ordered non-decreasing by start time; overlapping lines are permitted and
// must not be assumed disjoint.
type Accessor interface {
	LinesFor(ctx context.Context, movieID string) ([]models.SubtitleLine, error)
	AllMovieIDs(ctx context.Context) ([]string, error)
}
