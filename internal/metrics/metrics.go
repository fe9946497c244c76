package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cineshazam_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cineshazam_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Extraction Metrics
	ExtractionAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cineshazam_extraction_attempts_total",
			Help: "Total number of extraction strategy attempts",
		},
		[]string{"strategy", "outcome"},
	)

	ExtractionChainsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cineshazam_extraction_chains_total",
			Help: "Total number of extraction chain executions",
		},
		[]string{"result"},
	)

	ExtractionChainDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cineshazam_extraction_chain_duration_seconds",
			Help:    "Extraction chain execution time in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~50s
		},
	)

	// Transcription Metrics
	TranscriptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cineshazam_transcriptions_total",
			Help: "Total number of speech-to-text invocations",
		},
		[]string{"status"},
	)

	TranscriptionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cineshazam_transcription_duration_seconds",
			Help:    "Speech-to-text invocation time in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 8), // 500ms to ~1 min
		},
	)

	// Matching Metrics
	CandidatesScored = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cineshazam_candidates_scored",
			Help:    "Number of candidate movies scored per identify call",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8), // 1 to ~16k
		},
	)

	MatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cineshazam_match_duration_seconds",
			Help:    "Matcher execution time in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Identification Metrics
	IdentificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cineshazam_identifications_total",
			Help: "Total number of identify calls by result kind",
		},
		[]string{"source", "result"},
	)

	// Ingest Metrics
	IngestJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cineshazam_ingest_jobs_total",
			Help: "Total number of subtitle ingest jobs",
		},
		[]string{"status"},
	)

	IngestedLinesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cineshazam_ingested_lines_total",
			Help: "Total number of subtitle lines loaded into the corpus",
		},
	)

	// Cache Metrics
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cineshazam_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"kind"},
	)

	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cineshazam_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"kind"},
	)
)

// RecordHTTPRequest records an HTTP request with its duration
func RecordHTTPRequest(method, endpoint, status string, durationSeconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordIdentification records the outcome of one identify call
func RecordIdentification(source, result string) {
	IdentificationsTotal.WithLabelValues(source, result).Inc()
}

// RecordTranscription records one speech-to-text invocation
func RecordTranscription(status string, durationSeconds float64) {
	TranscriptionsTotal.WithLabelValues(status).Inc()
	TranscriptionDuration.Observe(durationSeconds)
}

// RecordCacheAccess records a cache hit or miss for the given value kind
func RecordCacheAccess(kind string, hit bool) {
	if hit {
		CacheHitsTotal.WithLabelValues(kind).Inc()
		return
	}
	CacheMissesTotal.WithLabelValues(kind).Inc()
}
