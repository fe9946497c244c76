package models

import "time"

// AttemptOutcome classifies the result of one extraction strategy attempt
type AttemptOutcome string

// AttemptOutcome constants
const (
	OutcomeSuccess          AttemptOutcome = "success"
	OutcomeTransientFailure AttemptOutcome = "transient_failure"
	OutcomePermanentFailure AttemptOutcome = "permanent_failure"
	OutcomeBlocked          AttemptOutcome = "blocked"
)

// ExtractionAttempt records one strategy tried during a single extraction
// call. Attempts exist only for diagnostics; they are never persisted.
type ExtractionAttempt struct {
	StrategyName string         `json:"strategy_name"`
	StartedAt    time.Time      `json:"started_at"`
	Outcome      AttemptOutcome `json:"outcome"`
	ErrorDetail  string         `json:"error_detail,omitempty"`
}
