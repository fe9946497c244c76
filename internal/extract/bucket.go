package extract

import "golang.org/x/time/rate"

// Gate is a token-bucket guard shared by all concurrent invocations of one
// strategy. Exhaustion is reported immediately, never as a queued wait, so
// an empty bucket cannot stall the fallback chain.
type Gate struct {
	limiter *rate.Limiter
}

// NewGate creates a gate refilling at perSecond tokens with the given burst
func NewGate(perSecond float64, burst int) *Gate {
	return &Gate{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Allow consumes one token if available. It never blocks.
func (g *Gate) Allow() bool {
	return g.limiter.Allow()
}
