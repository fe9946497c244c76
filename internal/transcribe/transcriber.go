// Package transcribe wraps the external speech-to-text collaborator behind
// a capability interface so the identification core can run against
// deterministic fakes in tests.
package transcribe

import (
	"context"
	"errors"
	"time"
)

// Collaborator errors. Both are treated as permanent failures by the
// transcript source adapter.
var (
	ErrUnsupportedFormat = errors.New("unsupported media format")
	ErrModelUnavailable  = errors.New("speech-to-text model unavailable")
)

// Segment is one timestamped piece of recognized speech
type Segment struct {
	Text        string        `json:"text"`
	StartOffset time.Duration `json:"start_offset"`
	EndOffset   time.Duration `json:"end_offset"`
}

// Result holds a full transcription. Confidence is the model-reported
// quality in [0,1]; zero means the model reported none.
type Result struct {
	Segments   []Segment `json:"segments"`
	Language   string    `json:"language"`
	Confidence float64   `json:"confidence"`
}

// Transcriber converts a local media file into timestamped text
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath string) (*Result, error)
}
