package identify

import (
	"errors"

	"github.com/cineshazam/cineshazam/internal/extract"
)

// Terminal errors returned to the caller. Every identify call ends with a
// ranked result list or exactly one of these.
var (
	// ErrNoSignal means a transcript was produced but contains no tokens
	ErrNoSignal = errors.New("no usable signal extracted from input")

	// ErrExtractionExhausted means every strategy failed or the deadline
	// elapsed before any strategy produced a usable transcript
	ErrExtractionExhausted = extract.ErrExhausted
)
