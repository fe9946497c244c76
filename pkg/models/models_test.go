package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTranscriptSpan(t *testing.T) {
	tr := &Transcript{
		Tokens: []TranscriptToken{
			{Text: "hello", StartOffset: 2 * time.Second, EndOffset: 3 * time.Second},
			{Text: "world", StartOffset: 3 * time.Second, EndOffset: 5 * time.Second},
		},
		SourceKind:     SourceRawText,
		ConfidenceHint: 1.0,
	}

	assert.Equal(t, 3*time.Second, tr.Span())
	assert.Equal(t, "hello world", tr.Text())
	assert.False(t, tr.Empty())
}

func TestTranscriptEmpty(t *testing.T) {
	tr := &Transcript{SourceKind: SourceUpload}

	assert.True(t, tr.Empty())
	assert.Equal(t, time.Duration(0), tr.Span())
	assert.Equal(t, "", tr.Text())
}

func TestMetadataValueScan(t *testing.T) {
	m := Metadata{"genres": []interface{}{"drama"}, "vote_count": float64(42)}

	val, err := m.Value()
	assert.NoError(t, err)

	var got Metadata
	assert.NoError(t, got.Scan(val))
	assert.Equal(t, m, got)
}
