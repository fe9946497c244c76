package extract

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
)

// StatusError is an HTTP response with a non-success status code
type StatusError struct {
	Code   int
	Status string
}

// Error implements the error interface
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %s", e.Status)
}

// ClassifyHTTP maps fetch errors onto failure classes. Rate-limit and
// access-denied statuses are blocked, gone-for-good statuses are permanent,
// everything else (network errors, 5xx) is transient.
func ClassifyHTTP(err error) FailureClass {
	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
			return FailureBlocked
		case http.StatusNotFound, http.StatusGone, http.StatusUnavailableForLegalReasons:
			return FailurePermanent
		default:
			return FailureTransient
		}
	}
	return ClassOf(err)
}

// HTTPFetcher downloads the referenced media over plain HTTP and stages it
// in a temp file for speech-to-text
type HTTPFetcher struct {
	Client     *http.Client
	UserAgent  string
	Headers    map[string]string
	MaxBody    int64
	TempDir    string
	Confidence float64
}

// Fetch implements the Fetcher interface
func (f *HTTPFetcher) Fetch(ctx context.Context, ref string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, Classify(FailurePermanent, fmt.Errorf("invalid reference: %w", err))
	}

	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	for k, v := range f.Headers {
		req.Header.Set(k, v)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	tmp, err := os.CreateTemp(f.TempDir, "clip-*.media")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	body := io.Reader(resp.Body)
	if f.MaxBody > 0 {
		body = io.LimitReader(resp.Body, f.MaxBody)
	}

	written, err := io.Copy(tmp, body)
	closeErr := tmp.Close()
	if err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to stage media: %w", err)
	}
	if closeErr != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to stage media: %w", closeErr)
	}
	if written == 0 {
		os.Remove(tmp.Name())
		return nil, Classify(FailurePermanent, errors.New("empty response body"))
	}

	return &Result{MediaPath: tmp.Name(), Confidence: f.Confidence}, nil
}

// OEmbedFetcher resolves public metadata for a reference through an
// oEmbed-style endpoint. Full content access may be denied while metadata
// remains reachable, so this is a useful late fallback at reduced
// confidence.
type OEmbedFetcher struct {
	Client     *http.Client
	Endpoint   string
	UserAgent  string
	Confidence float64
}

// Fetch implements the Fetcher interface
func (f *OEmbedFetcher) Fetch(ctx context.Context, ref string) (*Result, error) {
	endpoint := fmt.Sprintf("%s?url=%s&format=json", f.Endpoint, url.QueryEscape(ref))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, Classify(FailurePermanent, fmt.Errorf("invalid reference: %w", err))
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oembed fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	var payload struct {
		Title      string `json:"title"`
		AuthorName string `json:"author_name"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode oembed payload: %w", err)
	}

	text := strings.TrimSpace(strings.TrimSpace(payload.Title) + " " + strings.TrimSpace(payload.AuthorName))
	if text == "" {
		return nil, Classify(FailurePermanent, errors.New("oembed payload carried no text"))
	}

	return &Result{Text: text, Confidence: f.Confidence}, nil
}

// LoadCookieJar parses a Netscape-format cookies.txt export into a cookie
// jar scoped to the given site
func LoadCookieJar(path, site string) (http.CookieJar, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cookie file: %w", err)
	}
	defer file.Close()

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	siteURL, err := url.Parse(site)
	if err != nil {
		return nil, fmt.Errorf("invalid cookie site: %w", err)
	}

	var cookies []*http.Cookie
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// domain, include-subdomains, path, secure, expiry, name, value
		fields := strings.Split(line, "\t")
		if len(fields) < 7 {
			continue
		}

		cookies = append(cookies, &http.Cookie{
			Name:   fields[5],
			Value:  fields[6],
			Path:   fields[2],
			Domain: strings.TrimPrefix(fields[0], "."),
			Secure: fields[3] == "TRUE",
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cookie file: %w", err)
	}

	jar.SetCookies(siteURL, cookies)
	return jar, nil
}
