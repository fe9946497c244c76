package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cineshazam/cineshazam/internal/config"
)

// ErrNoSubtitlesFound means the provider has no subtitle file for the
// requested title and language
var ErrNoSubtitlesFound = errors.New("no subtitles found")

// OpenSubtitlesClient talks to the OpenSubtitles REST API
type OpenSubtitlesClient struct {
	baseURL   string
	apiKey    string
	username  string
	password  string
	userAgent string
	client    *http.Client

	token string
}

// NewOpenSubtitlesClient creates a client from ingest configuration
func NewOpenSubtitlesClient(cfg config.IngestConfig) *OpenSubtitlesClient {
	return &OpenSubtitlesClient{
		baseURL:   cfg.APIBaseURL,
		apiKey:    cfg.APIKey,
		username:  cfg.Username,
		password:  cfg.Password,
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *OpenSubtitlesClient) setHeaders(req *http.Request) {
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// Login authenticates and stores the session token for later downloads
func (c *OpenSubtitlesClient) Login(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build login request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login rejected with status %d", resp.StatusCode)
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("failed to decode login response: %w", err)
	}
	if payload.Token == "" {
		return errors.New("login response carried no token")
	}

	c.token = payload.Token
	return nil
}

// SearchByImdbID finds the best subtitle file ID for a title in the given
// language. Results come back ordered by the provider's own ranking; the
// first file of the first result wins.
func (c *OpenSubtitlesClient) SearchByImdbID(ctx context.Context, imdbID, language string) (int64, error) {
	params := url.Values{}
	params.Set("imdb_id", imdbID)
	params.Set("languages", language)
	params.Set("order_by", "download_count")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/subtitles?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build search request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("search rejected with status %d", resp.StatusCode)
	}

	var payload struct {
		Data []struct {
			Attributes struct {
				Files []struct {
					FileID int64 `json:"file_id"`
				} `json:"files"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("failed to decode search response: %w", err)
	}

	for _, entry := range payload.Data {
		if len(entry.Attributes.Files) > 0 {
			return entry.Attributes.Files[0].FileID, nil
		}
	}

	return 0, ErrNoSubtitlesFound
}

// Download resolves a file ID to a download link and fetches the raw
// subtitle bytes
func (c *OpenSubtitlesClient) Download(ctx context.Context, fileID int64) ([]byte, error) {
	body, err := json.Marshal(map[string]int64{"file_id": fileID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal download request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/download", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download rejected with status %d", resp.StatusCode)
	}

	var payload struct {
		Link string `json:"link"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode download response: %w", err)
	}
	if payload.Link == "" {
		return nil, errors.New("download response carried no link")
	}

	fileReq, err := http.NewRequestWithContext(ctx, http.MethodGet, payload.Link, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build file request: %w", err)
	}
	fileReq.Header.Set("User-Agent", c.userAgent)

	fileResp, err := c.client.Do(fileReq)
	if err != nil {
		return nil, fmt.Errorf("file fetch failed: %w", err)
	}
	defer fileResp.Body.Close()

	if fileResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file fetch rejected with status %d", fileResp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(fileResp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read subtitle file: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("subtitle file was empty")
	}

	return data, nil
}
