package extract

import (
	"context"
	"strings"
	"time"
)

// Result is what one strategy produced: either a local media file to hand
// to speech-to-text, or already-textual content (metadata-only strategies).
type Result struct {
	MediaPath  string
	Text       string
	Confidence float64
}

// Usable reports whether the result carries anything the adapter can turn
// into a transcript. Partial results (metadata only) count as usable at a
// reduced confidence.
func (r *Result) Usable() bool {
	if r == nil {
		return false
	}
	return r.MediaPath != "" || strings.TrimSpace(r.Text) != ""
}

// Fetcher obtains raw media or text for one strategy
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (*Result, error)
}

// Strategy is one declarative entry in the fallback table. The chain
// executor owns all control flow; strategies only describe themselves.
type Strategy struct {
	Name               string
	Timeout            time.Duration
	RequiresCredential bool
	CredentialPresent  bool
	Classify           func(error) FailureClass
	Fetcher            Fetcher
	Gate               *Gate
}
