package corpus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineshazam/cineshazam/pkg/models"
)

type stubSource struct {
	lines     map[string][]models.SubtitleLine
	ids       []string
	err       error
	lineCalls int
	idCalls   int
}

func (s *stubSource) LinesFor(ctx context.Context, movieID string) ([]models.SubtitleLine, error) {
	s.lineCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.lines[movieID], nil
}

func (s *stubSource) AllMovieIDs(ctx context.Context) ([]string, error) {
	s.idCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.ids, nil
}

type memoryLineCache struct {
	lines  map[string][]models.SubtitleLine
	ids    []string
	getErr error
	setErr error
}

func newMemoryLineCache() *memoryLineCache {
	return &memoryLineCache{lines: make(map[string][]models.SubtitleLine)}
}

func (m *memoryLineCache) GetLines(ctx context.Context, movieID string) ([]models.SubtitleLine, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.lines[movieID], nil
}

func (m *memoryLineCache) SetLines(ctx context.Context, movieID string, lines []models.SubtitleLine, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.lines[movieID] = lines
	return nil
}

func (m *memoryLineCache) GetMovieIDs(ctx context.Context) ([]string, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.ids, nil
}

func (m *memoryLineCache) SetMovieIDs(ctx context.Context, ids []string, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.ids = ids
	return nil
}

func someLines(movieID string) []models.SubtitleLine {
	return []models.SubtitleLine{
		{MovieID: movieID, StartTime: time.Second, EndTime: 3 * time.Second, Text: "hello there"},
	}
}

func TestCachedLinesReadThrough(t *testing.T) {
	source := &stubSource{lines: map[string][]models.SubtitleLine{"tt1": someLines("tt1")}}
	cache := newMemoryLineCache()

	cached := NewCached(source, cache, 30*time.Minute)

	// First read misses and populates
	lines, err := cached.LinesFor(context.Background(), "tt1")
	require.NoError(t, err)
	assert.Len(t, lines, 1)
	assert.Equal(t, 1, source.lineCalls)

	// Second read is served from cache
	lines, err = cached.LinesFor(context.Background(), "tt1")
	require.NoError(t, err)
	assert.Len(t, lines, 1)
	assert.Equal(t, 1, source.lineCalls)
}

func TestCachedLinesCacheFailureFallsBack(t *testing.T) {
	source := &stubSource{lines: map[string][]models.SubtitleLine{"tt1": someLines("tt1")}}
	cache := newMemoryLineCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")

	cached := NewCached(source, cache, 30*time.Minute)

	lines, err := cached.LinesFor(context.Background(), "tt1")
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestCachedLinesSourceErrorPropagates(t *testing.T) {
	source := &stubSource{err: errors.New("db down")}
	cached := NewCached(source, newMemoryLineCache(), 30*time.Minute)

	_, err := cached.LinesFor(context.Background(), "tt1")
	assert.Error(t, err)
}

func TestCachedMovieIDsReadThrough(t *testing.T) {
	source := &stubSource{ids: []string{"tt1", "tt2"}}
	cache := newMemoryLineCache()

	cached := NewCached(source, cache, 30*time.Minute)

	ids, err := cached.AllMovieIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"tt1", "tt2"}, ids)
	assert.Equal(t, 1, source.idCalls)

	ids, err = cached.AllMovieIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"tt1", "tt2"}, ids)
	assert.Equal(t, 1, source.idCalls)
}

func TestCachedEmptyResultsNotCached(t *testing.T) {
	source := &stubSource{lines: map[string][]models.SubtitleLine{}}
	cache := newMemoryLineCache()

	cached := NewCached(source, cache, 30*time.Minute)

	// A movie with no lines yet should not pin an empty entry
	lines, err := cached.LinesFor(context.Background(), "tt-empty")
	require.NoError(t, err)
	assert.Empty(t, lines)

	_, err = cached.LinesFor(context.Background(), "tt-empty")
	require.NoError(t, err)
	assert.Equal(t, 2, source.lineCalls)
}
