package identify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cineshazam/cineshazam/internal/extract"
	"github.com/cineshazam/cineshazam/internal/transcribe"
	"github.com/cineshazam/cineshazam/pkg/models"
)

// defaultUploadConfidence is used when the speech-to-text collaborator
// reports no confidence of its own
const defaultUploadConfidence = 0.9

// AudioExtractor stages a speech-to-text-ready audio file from arbitrary
// media. transcribe.FFmpeg is the production implementation.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, mediaPath string) (string, error)
	Cleanup(path string)
}

// Input describes one identification request before normalization
type Input struct {
	Kind      models.SourceKind
	MediaPath string // upload: staged local media file
	URL       string // stream: remote reference
	Text      string // raw-text: caller-provided transcript
}

// Adapter normalizes any supported input into a Transcript. It owns none of
// the heavy lifting: speech-to-text and remote fetching are delegated to
// collaborators.
type Adapter struct {
	transcriber    transcribe.Transcriber
	audio          AudioExtractor
	chain          *extract.Chain
	wordsPerSecond float64
}

// NewAdapter creates an adapter over the given collaborators
func NewAdapter(transcriber transcribe.Transcriber, audio AudioExtractor, chain *extract.Chain, wordsPerSecond float64) *Adapter {
	if wordsPerSecond <= 0 {
		wordsPerSecond = 2.5
	}
	return &Adapter{
		transcriber:    transcriber,
		audio:          audio,
		chain:          chain,
		wordsPerSecond: wordsPerSecond,
	}
}

// Produce turns an input into an immutable Transcript. It fails with
// ErrNoSignal when the resulting token sequence is empty and with
// ErrExtractionExhausted when no extraction strategy could reach a stream
// source. The returned attempts describe the extraction chain run for
// diagnostics; they are nil for non-stream inputs.
func (a *Adapter) Produce(ctx context.Context, requestID string, input Input) (*models.Transcript, []models.ExtractionAttempt, error) {
	switch input.Kind {
	case models.SourceUpload:
		transcript, err := a.fromMedia(ctx, input.MediaPath, models.SourceUpload, defaultUploadConfidence)
		return transcript, nil, err

	case models.SourceStream:
		return a.fromStream(ctx, requestID, input.URL)

	case models.SourceRawText:
		transcript := a.fromText(input.Text, models.SourceRawText, 1.0)
		if transcript.Empty() {
			return nil, nil, ErrNoSignal
		}
		return transcript, nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown source kind %q", input.Kind)
	}
}

func (a *Adapter) fromMedia(ctx context.Context, mediaPath string, kind models.SourceKind, fallbackConfidence float64) (*models.Transcript, error) {
	audioPath, err := a.audio.ExtractAudio(ctx, mediaPath)
	if err != nil {
		return nil, fmt.Errorf("audio extraction failed: %w", err)
	}
	defer a.audio.Cleanup(audioPath)

	result, err := a.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	confidence := result.Confidence
	if confidence <= 0 {
		confidence = fallbackConfidence
	}

	tokens := make([]models.TranscriptToken, 0, len(result.Segments))
	for _, seg := range result.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		tokens = append(tokens, models.TranscriptToken{
			Text:        text,
			StartOffset: seg.StartOffset,
			EndOffset:   seg.EndOffset,
		})
	}

	transcript := &models.Transcript{
		Tokens:         tokens,
		SourceKind:     kind,
		ConfidenceHint: confidence,
	}
	if transcript.Empty() {
		return nil, ErrNoSignal
	}

	return transcript, nil
}

func (a *Adapter) fromStream(ctx context.Context, requestID, url string) (*models.Transcript, []models.ExtractionAttempt, error) {
	result, attempts, err := a.chain.Run(ctx, requestID, url)
	if err != nil {
		return nil, attempts, err
	}

	if result.MediaPath != "" {
		defer a.audio.Cleanup(result.MediaPath)
		transcript, err := a.fromMedia(ctx, result.MediaPath, models.SourceStream, result.Confidence)
		return transcript, attempts, err
	}

	// Metadata-only strategies yield text directly, at the strategy's
	// reduced confidence
	transcript := a.fromText(result.Text, models.SourceStream, result.Confidence)
	if transcript.Empty() {
		return nil, attempts, ErrNoSignal
	}
	return transcript, attempts, nil
}

// fromText tokenizes caller-provided text into one token per sentence with
// synthetic offsets derived from a reading-speed constant
func (a *Adapter) fromText(text string, kind models.SourceKind, confidence float64) *models.Transcript {
	sentences := splitSentences(text)

	tokens := make([]models.TranscriptToken, 0, len(sentences))
	offset := time.Duration(0)
	for _, sentence := range sentences {
		words := len(strings.Fields(sentence))
		if words == 0 {
			continue
		}

		span := time.Duration(float64(words) / a.wordsPerSecond * float64(time.Second))
		tokens = append(tokens, models.TranscriptToken{
			Text:        sentence,
			StartOffset: offset,
			EndOffset:   offset + span,
		})
		offset += span
	}

	return &models.Transcript{
		Tokens:         tokens,
		SourceKind:     kind,
		ConfidenceHint: confidence,
	}
}

// splitSentences breaks text on terminal punctuation, keeping interior
// punctuation intact
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder

	flush := func() {
		s := strings.TrimSpace(b.String())
		if s != "" {
			sentences = append(sentences, s)
		}
		b.Reset()
	}

	for _, r := range text {
		switch r {
		case '.', '!', '?', '\n':
			flush()
		default:
			b.WriteRune(r)
		}
	}
	flush()

	return sentences
}
