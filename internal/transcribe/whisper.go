package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cineshazam/cineshazam/internal/config"
	"github.com/cineshazam/cineshazam/internal/metrics"
)

// WhisperClient talks to a whisper-server transcription endpoint. The model
// itself is a black box to this core: audio in, timestamped text out.
type WhisperClient struct {
	endpoint string
	model    string
	client   *http.Client
}

// NewWhisperClient creates a client from transcriber configuration
func NewWhisperClient(cfg config.TranscriberConfig) *WhisperClient {
	return &WhisperClient{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		client:   &http.Client{Timeout: cfg.Deadline},
	}
}

type whisperResponse struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
	Segments   []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe implements the Transcriber interface
func (w *WhisperClient) Transcribe(ctx context.Context, mediaPath string) (*Result, error) {
	start := time.Now()

	result, err := w.transcribe(ctx, mediaPath)
	if err != nil {
		metrics.RecordTranscription("error", time.Since(start).Seconds())
		return nil, err
	}

	metrics.RecordTranscription("ok", time.Since(start).Seconds())
	return result, nil
}

func (w *WhisperClient) transcribe(ctx context.Context, mediaPath string) (*Result, error) {
	file, err := os.Open(mediaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open media file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(mediaPath))
	if err != nil {
		return nil, fmt.Errorf("failed to build request body: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read media file: %w", err)
	}
	if w.model != "" {
		writer.WriteField("model", w.model)
	}
	writer.WriteField("response_format", "verbose_json")
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint+"/inference", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnsupportedMediaType:
		return nil, ErrUnsupportedFormat
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrModelUnavailable, resp.StatusCode)
	default:
		return nil, fmt.Errorf("transcription failed with status %d", resp.StatusCode)
	}

	var payload whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode transcription response: %w", err)
	}

	result := &Result{
		Language:   payload.Language,
		Confidence: payload.Confidence,
		Segments:   make([]Segment, 0, len(payload.Segments)),
	}
	for _, seg := range payload.Segments {
		result.Segments = append(result.Segments, Segment{
			Text:        seg.Text,
			StartOffset: time.Duration(seg.Start * float64(time.Second)),
			EndOffset:   time.Duration(seg.End * float64(time.Second)),
		})
	}

	return result, nil
}
