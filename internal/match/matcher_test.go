package match

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineshazam/cineshazam/internal/config"
	"github.com/cineshazam/cineshazam/pkg/models"
)

type fakeCorpus struct {
	lines map[string][]models.SubtitleLine
	err   error
}

func (f *fakeCorpus) LinesFor(ctx context.Context, movieID string) ([]models.SubtitleLine, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.lines[movieID], nil
}

func (f *fakeCorpus) AllMovieIDs(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(f.lines))
	for id := range f.lines {
		ids = append(ids, id)
	}
	return ids, nil
}

func testMatcherConfig() config.MatcherConfig {
	return config.MatcherConfig{
		WindowSlack:   1.3,
		WindowFloor:   20 * time.Second,
		WindowCeiling: 10 * time.Minute,
		MinEvidence:   2,
		Workers:       4,
	}
}

func rawTextTranscript(text string) *models.Transcript {
	return &models.Transcript{
		Tokens: []models.TranscriptToken{
			{Text: text, StartOffset: 0, EndOffset: 3 * time.Second},
		},
		SourceKind:     models.SourceRawText,
		ConfidenceHint: 1.0,
	}
}

func subtitleLine(movieID string, startSec, endSec int, text string) models.SubtitleLine {
	return models.SubtitleLine{
		MovieID:   movieID,
		StartTime: time.Duration(startSec) * time.Second,
		EndTime:   time.Duration(endSec) * time.Second,
		Text:      text,
	}
}

func TestScoreOneScorePerCandidate(t *testing.T) {
	corpus := &fakeCorpus{lines: map[string][]models.SubtitleLine{
		"tt0001": {subtitleLine("tt0001", 0, 2, "hello there"), subtitleLine("tt0001", 3, 5, "general greeting")},
		"tt0002": {subtitleLine("tt0002", 0, 2, "completely unrelated")},
		"tt0003": {},
	}}

	m := NewMatcher(corpus, testMatcherConfig())
	scores, err := m.Score(context.Background(), rawTextTranscript("hello there general"), []string{"tt0001", "tt0002", "tt0003"})

	require.NoError(t, err)
	require.Len(t, scores, 3)

	for i, id := range []string{"tt0001", "tt0002", "tt0003"} {
		assert.Equal(t, id, scores[i].MovieID)
		assert.GreaterOrEqual(t, scores[i].Similarity, 0.0)
		assert.LessOrEqual(t, scores[i].Similarity, 1.0)
	}
}

func TestScoreIdenticalLine(t *testing.T) {
	corpus := &fakeCorpus{lines: map[string][]models.SubtitleLine{
		"tt0076759": {
			subtitleLine("tt0076759", 0, 3, "a long time ago in a galaxy far away"),
			subtitleLine("tt0076759", 10, 13, "hello world this is a test"),
			subtitleLine("tt0076759", 20, 23, "some other dialogue entirely"),
		},
	}}

	m := NewMatcher(corpus, testMatcherConfig())
	scores, err := m.Score(context.Background(), rawTextTranscript("hello world this is a test"), []string{"tt0076759"})

	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.GreaterOrEqual(t, scores[0].Similarity, 0.9)
	assert.GreaterOrEqual(t, scores[0].EvidenceCount, 1)

	// The winning span must cover the identical line's timestamps
	assert.LessOrEqual(t, scores[0].MatchedSpan.Start, 13*time.Second)
	assert.GreaterOrEqual(t, scores[0].MatchedSpan.End, 13*time.Second)
}

func TestScoreOverlappingCueSpan(t *testing.T) {
	// A long cue overlapping later lines ends after them, so the reported
	// span must take the latest end in the window, not the last line's
	corpus := &fakeCorpus{lines: map[string][]models.SubtitleLine{
		"tt0034583": {
			subtitleLine("tt0034583", 0, 19, "the longest monologue keeps going"),
			subtitleLine("tt0034583", 2, 4, "looking at you kid"),
			subtitleLine("tt0034583", 5, 7, "play it again sam"),
		},
	}}

	m := NewMatcher(corpus, testMatcherConfig())
	scores, err := m.Score(context.Background(), rawTextTranscript("looking at you kid play it again sam"), []string{"tt0034583"})

	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, time.Duration(0), scores[0].MatchedSpan.Start)
	assert.Equal(t, 19*time.Second, scores[0].MatchedSpan.End)
}

func TestScoreEmptyCandidateSet(t *testing.T) {
	m := NewMatcher(&fakeCorpus{}, testMatcherConfig())
	scores, err := m.Score(context.Background(), rawTextTranscript("hello world"), nil)

	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestScoreZeroLineMovie(t *testing.T) {
	corpus := &fakeCorpus{lines: map[string][]models.SubtitleLine{"tt0000": {}}}

	m := NewMatcher(corpus, testMatcherConfig())
	scores, err := m.Score(context.Background(), rawTextTranscript("hello world this is a test"), []string{"tt0000"})

	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 0.0, scores[0].Similarity)
}

func TestScoreNoiseTranscript(t *testing.T) {
	corpus := &fakeCorpus{lines: map[string][]models.SubtitleLine{
		"tt0001": {subtitleLine("tt0001", 0, 2, "this is the one")},
		"tt0002": {subtitleLine("tt0002", 0, 2, "and that was it")},
	}}

	m := NewMatcher(corpus, testMatcherConfig())
	scores, err := m.Score(context.Background(), rawTextTranscript("this is the and a of it"), []string{"tt0001", "tt0002"})

	require.NoError(t, err)
	require.Len(t, scores, 2)
	for _, s := range scores {
		assert.Equal(t, 0.0, s.Similarity)
	}
}

func TestScoreShortPhraseDiscounted(t *testing.T) {
	// One coincidentally overlapping line must not produce a confident match
	corpus := &fakeCorpus{lines: map[string][]models.SubtitleLine{
		"tt0001": {
			subtitleLine("tt0001", 0, 2, "the weather is nice"),
			subtitleLine("tt0001", 100, 102, "pudding again"),
			subtitleLine("tt0001", 200, 202, "goodnight"),
		},
	}}

	m := NewMatcher(corpus, testMatcherConfig())
	scores, err := m.Score(context.Background(), rawTextTranscript("pudding today"), []string{"tt0001"})

	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Less(t, scores[0].Similarity, 0.35)
}

func TestScoreCancellation(t *testing.T) {
	corpus := &fakeCorpus{lines: map[string][]models.SubtitleLine{
		"tt0001": {subtitleLine("tt0001", 0, 2, "hello")},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMatcher(corpus, testMatcherConfig())
	_, err := m.Score(ctx, rawTextTranscript("hello world this is a test"), []string{"tt0001"})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestScoreCorpusError(t *testing.T) {
	corpusErr := errors.New("connection lost")
	m := NewMatcher(&fakeCorpus{err: corpusErr}, testMatcherConfig())

	_, err := m.Score(context.Background(), rawTextTranscript("hello world this is a test"), []string{"tt0001"})
	assert.ErrorIs(t, err, corpusErr)
}

func TestWindowSpanBounds(t *testing.T) {
	m := NewMatcher(&fakeCorpus{}, testMatcherConfig())

	// Short transcripts hit the floor
	assert.Equal(t, 20*time.Second, m.windowSpan(3*time.Second))

	// Long transcripts hit the ceiling
	assert.Equal(t, 10*time.Minute, m.windowSpan(2*time.Hour))

	// In between, slack applies
	assert.Equal(t, 65*time.Second, m.windowSpan(50*time.Second))
}
