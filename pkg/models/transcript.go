package models

import "time"

// SourceKind identifies how a transcript was obtained
type SourceKind string

// SourceKind constants
const (
	SourceUpload  SourceKind = "upload"
	SourceStream  SourceKind = "stream"
	SourceRawText SourceKind = "raw-text"
)

// TranscriptToken is a single timestamped unit of recognized text
type TranscriptToken struct {
	Text        string        `json:"text"`
	StartOffset time.Duration `json:"start_offset"`
	EndOffset   time.Duration `json:"end_offset"`
}

// Transcript is the normalized, timestamped text derived from an input
// source. It is immutable once produced.
type Transcript struct {
	Tokens         []TranscriptToken `json:"tokens"`
	SourceKind     SourceKind        `json:"source_kind"`
	ConfidenceHint float64           `json:"confidence_hint"`
}

// Empty reports whether no tokens were extracted
func (t *Transcript) Empty() bool {
	return len(t.Tokens) == 0
}

// Span returns the wall-clock duration covered by the transcript, from the
// first token's start to the last token's end
func (t *Transcript) Span() time.Duration {
	if len(t.Tokens) == 0 {
		return 0
	}
	return t.Tokens[len(t.Tokens)-1].EndOffset - t.Tokens[0].StartOffset
}

// Text returns the concatenated token text separated by single spaces
func (t *Transcript) Text() string {
	switch len(t.Tokens) {
	case 0:
		return ""
	case 1:
		return t.Tokens[0].Text
	}

	n := 0
	for _, tok := range t.Tokens {
		n += len(tok.Text) + 1
	}

	buf := make([]byte, 0, n)
	for i, tok := range t.Tokens {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, tok.Text...)
	}
	return string(buf)
}
