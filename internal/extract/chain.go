package extract

import (
	"context"
	"errors"
	"time"

	"github.com/cineshazam/cineshazam/internal/logging"
	"github.com/cineshazam/cineshazam/internal/metrics"
	"github.com/cineshazam/cineshazam/pkg/models"
)

// Chain executes an ordered strategy table against a remote reference.
// Strategies run strictly in declared order, each at most once per call;
// every failure class advances to the next entry. The chain succeeds at the
// first usable result and fails terminally once every strategy has been
// tried or the caller's deadline has elapsed.
type Chain struct {
	strategies []Strategy
	logger     *logging.Logger
}

// NewChain creates a chain over the given strategy table
func NewChain(strategies []Strategy, logger *logging.Logger) *Chain {
	return &Chain{strategies: strategies, logger: logger}
}

// Run tries each strategy until one yields a usable result. It returns the
// result, the ordered attempt records for diagnostics, and a terminal error
// when the chain is exhausted. On deadline expiry mid-strategy the in-flight
// partial data is discarded and the chain reports failure, never a degraded
// success.
func (c *Chain) Run(ctx context.Context, requestID, ref string) (*Result, []models.ExtractionAttempt, error) {
	start := time.Now()
	attempts := make([]models.ExtractionAttempt, 0, len(c.strategies))

	defer func() {
		metrics.ExtractionChainDuration.Observe(time.Since(start).Seconds())
	}()

	for _, strat := range c.strategies {
		if strat.RequiresCredential && !strat.CredentialPresent {
			// Skipped, not attempted: no attempt record
			continue
		}

		if ctx.Err() != nil {
			metrics.ExtractionChainsTotal.WithLabelValues("deadline").Inc()
			return nil, attempts, ErrExhausted
		}

		if strat.Gate != nil && !strat.Gate.Allow() {
			attempts = append(attempts, c.record(requestID, strat.Name, time.Now(),
				models.OutcomeTransientFailure, "rate bucket empty"))
			continue
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		if strat.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, strat.Timeout)
		}

		attemptStart := time.Now()
		res, err := strat.Fetcher.Fetch(attemptCtx, ref)
		if cancel != nil {
			cancel()
		}

		if err == nil && res.Usable() {
			attempts = append(attempts, c.record(requestID, strat.Name, attemptStart,
				models.OutcomeSuccess, ""))
			metrics.ExtractionChainsTotal.WithLabelValues("success").Inc()
			return res, attempts, nil
		}

		if err == nil {
			err = errors.New("strategy returned empty result")
			err = Classify(FailurePermanent, err)
		}

		// Overall deadline expiry mid-strategy: the abandoned attempt is
		// recorded as transient and the chain fails terminally
		if ctx.Err() != nil {
			attempts = append(attempts, c.record(requestID, strat.Name, attemptStart,
				models.OutcomeTransientFailure, ctx.Err().Error()))
			metrics.ExtractionChainsTotal.WithLabelValues("deadline").Inc()
			return nil, attempts, ErrExhausted
		}

		class := FailureTransient
		if strat.Classify != nil {
			class = strat.Classify(err)
		} else {
			class = ClassOf(err)
		}

		attempts = append(attempts, c.record(requestID, strat.Name, attemptStart,
			outcomeFor(class), err.Error()))
	}

	metrics.ExtractionChainsTotal.WithLabelValues("exhausted").Inc()
	return nil, attempts, ErrExhausted
}

func (c *Chain) record(requestID, name string, startedAt time.Time, outcome models.AttemptOutcome, detail string) models.ExtractionAttempt {
	attempt := models.ExtractionAttempt{
		StrategyName: name,
		StartedAt:    startedAt,
		Outcome:      outcome,
		ErrorDetail:  detail,
	}

	metrics.ExtractionAttemptsTotal.WithLabelValues(name, string(outcome)).Inc()
	if c.logger != nil {
		c.logger.LogExtractionAttempt(requestID, attempt)
	}

	return attempt
}

func outcomeFor(class FailureClass) models.AttemptOutcome {
	switch class {
	case FailurePermanent:
		return models.OutcomePermanentFailure
	case FailureBlocked:
		return models.OutcomeBlocked
	default:
		return models.OutcomeTransientFailure
	}
}
