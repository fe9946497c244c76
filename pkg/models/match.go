package models

// MatchScore is the best window a single candidate movie achieved against a
// transcript. Created per matcher invocation and consumed once by the ranker.
type MatchScore struct {
	MovieID       string   `json:"movie_id"`
	Similarity    float64  `json:"similarity"`
	MatchedSpan   TimeSpan `json:"matched_span"`
	EvidenceCount int      `json:"evidence_count"`
}

// IdentificationResult is one ranked candidate identification
type IdentificationResult struct {
	MovieID       string   `json:"movie_id"`
	Confidence    float64  `json:"confidence"`
	MatchedSpan   TimeSpan `json:"matched_span"`
	LowConfidence bool     `json:"low_confidence,omitempty"`
}
