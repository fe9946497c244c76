package extract

import (
	"net/http"
	"time"

	"github.com/cineshazam/cineshazam/internal/config"
)

// Strategy names, in declared fallback order
const (
	StrategyDirectDownload      = "direct-download"
	StrategyAuthenticatedCookie = "authenticated-cookie"
	StrategyPublicMetadataOnly  = "public-metadata-only"
	StrategyMinimalHeaders      = "minimal-headers"
	StrategyAlternateUserAgent  = "alternate-user-agent"
)

// DefaultOEmbedEndpoint resolves metadata for references whose full content
// is blocked
const DefaultOEmbedEndpoint = "https://www.youtube.com/oembed"

// DefaultStrategies builds the standard fallback table from configuration.
// The authenticated-cookie entry is marked credential-absent (and therefore
// skipped by the chain) when no cookie file is configured or it fails to
// parse. Each externally rate-limited strategy shares one gate across all
// concurrent requests.
func DefaultStrategies(cfg config.ExtractorConfig) []Strategy {
	transport := &http.Transport{
		MaxIdleConns:        32,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	plainClient := &http.Client{Transport: transport}

	var cookieClient *http.Client
	cookiePresent := false
	if cfg.CookieFile != "" {
		if jar, err := LoadCookieJar(cfg.CookieFile, "https://www.youtube.com"); err == nil {
			cookieClient = &http.Client{Transport: transport, Jar: jar}
			cookiePresent = true
		}
	}

	directGate := NewGate(cfg.RatePerSecond, cfg.Burst)
	cookieGate := NewGate(cfg.RatePerSecond, cfg.Burst)
	metadataGate := NewGate(cfg.RatePerSecond*2, cfg.Burst*2)

	strategies := []Strategy{
		{
			Name:     StrategyDirectDownload,
			Timeout:  cfg.StrategyTimeout,
			Classify: ClassifyHTTP,
			Gate:     directGate,
			Fetcher: &HTTPFetcher{
				Client:     plainClient,
				UserAgent:  cfg.UserAgent,
				MaxBody:    cfg.MaxBodyBytes,
				Confidence: 0.9,
			},
		},
		{
			Name:               StrategyAuthenticatedCookie,
			Timeout:            cfg.StrategyTimeout,
			RequiresCredential: true,
			CredentialPresent:  cookiePresent,
			Classify:           ClassifyHTTP,
			Gate:               cookieGate,
			Fetcher: &HTTPFetcher{
				Client:     cookieClient,
				UserAgent:  cfg.UserAgent,
				MaxBody:    cfg.MaxBodyBytes,
				Confidence: 0.9,
			},
		},
		{
			Name:     StrategyPublicMetadataOnly,
			Timeout:  cfg.MetadataTimeout,
			Classify: ClassifyHTTP,
			Gate:     metadataGate,
			Fetcher: &OEmbedFetcher{
				Client:     plainClient,
				Endpoint:   DefaultOEmbedEndpoint,
				UserAgent:  cfg.UserAgent,
				Confidence: 0.4,
			},
		},
		{
			Name:     StrategyMinimalHeaders,
			Timeout:  cfg.StrategyTimeout,
			Classify: ClassifyHTTP,
			Fetcher: &HTTPFetcher{
				Client:     plainClient,
				MaxBody:    cfg.MaxBodyBytes,
				Confidence: 0.85,
			},
		},
		{
			Name:     StrategyAlternateUserAgent,
			Timeout:  cfg.StrategyTimeout,
			Classify: ClassifyHTTP,
			Fetcher: &HTTPFetcher{
				Client:     plainClient,
				UserAgent:  cfg.FallbackAgent,
				Headers:    map[string]string{"Accept-Language": "en-US,en;q=0.9"},
				MaxBody:    cfg.MaxBodyBytes,
				Confidence: 0.85,
			},
		},
	}

	return strategies
}
