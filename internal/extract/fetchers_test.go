package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyHTTP(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureClass
	}{
		{"unauthorized", &StatusError{Code: 401}, FailureBlocked},
		{"forbidden", &StatusError{Code: 403}, FailureBlocked},
		{"rate limited", &StatusError{Code: 429}, FailureBlocked},
		{"not found", &StatusError{Code: 404}, FailurePermanent},
		{"gone", &StatusError{Code: 410}, FailurePermanent},
		{"legal takedown", &StatusError{Code: 451}, FailurePermanent},
		{"server error", &StatusError{Code: 502}, FailureTransient},
		{"network error", errors.New("connection reset"), FailureTransient},
		{"wrapped classified", Classify(FailureBlocked, errors.New("denied")), FailureBlocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyHTTP(tt.err))
		})
	}
}

func TestHTTPFetcherStagesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "CineShazam/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte("fake media bytes"))
	}))
	defer server.Close()

	fetcher := &HTTPFetcher{
		UserAgent:  "CineShazam/1.0",
		TempDir:    t.TempDir(),
		Confidence: 0.9,
	}

	res, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Usable())
	assert.Equal(t, 0.9, res.Confidence)

	data, err := os.ReadFile(res.MediaPath)
	require.NoError(t, err)
	assert.Equal(t, "fake media bytes", string(data))
	os.Remove(res.MediaPath)
}

func TestHTTPFetcherNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	fetcher := &HTTPFetcher{TempDir: t.TempDir()}

	res, err := fetcher.Fetch(context.Background(), server.URL)
	assert.Nil(t, res)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.Code)
	assert.Equal(t, FailureBlocked, ClassifyHTTP(err))
}

func TestHTTPFetcherEmptyBodyIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	fetcher := &HTTPFetcher{TempDir: t.TempDir()}

	res, err := fetcher.Fetch(context.Background(), server.URL)
	assert.Nil(t, res)
	assert.Equal(t, FailurePermanent, ClassOf(err))
}

func TestHTTPFetcherHonorsMaxBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 4096))
	}))
	defer server.Close()

	fetcher := &HTTPFetcher{TempDir: t.TempDir(), MaxBody: 1024}

	res, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	info, err := os.Stat(res.MediaPath)
	require.NoError(t, err)
	assert.Equal(t, int64(1024), info.Size())
	os.Remove(res.MediaPath)
}

func TestOEmbedFetcherDecodesMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://example.com/v/1", r.URL.Query().Get("url"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Write([]byte(`{"title":"Blade Runner Final Cut","author_name":"WB"}`))
	}))
	defer server.Close()

	fetcher := &OEmbedFetcher{Endpoint: server.URL, Confidence: 0.4}

	res, err := fetcher.Fetch(context.Background(), "https://example.com/v/1")
	require.NoError(t, err)
	assert.Equal(t, "Blade Runner Final Cut WB", res.Text)
	assert.Equal(t, 0.4, res.Confidence)
	assert.Empty(t, res.MediaPath)
}

func TestOEmbedFetcherEmptyPayloadIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	fetcher := &OEmbedFetcher{Endpoint: server.URL}

	res, err := fetcher.Fetch(context.Background(), "https://example.com/v/1")
	assert.Nil(t, res)
	assert.Equal(t, FailurePermanent, ClassOf(err))
}

func TestLoadCookieJar(t *testing.T) {
	content := "# Netscape HTTP Cookie File\n" +
		"\n" +
		".example.com\tTRUE\t/\tTRUE\t1735689600\tsession\tabc123\n" +
		".example.com\tTRUE\t/\tFALSE\t1735689600\tprefs\tdark\n" +
		"malformed line without tabs\n"

	path := filepath.Join(t.TempDir(), "cookies.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	jar, err := LoadCookieJar(path, "https://example.com")
	require.NoError(t, err)

	u, _ := url.Parse("https://example.com")
	cookies := jar.Cookies(u)
	require.Len(t, cookies, 2)

	names := map[string]string{}
	for _, c := range cookies {
		names[c.Name] = c.Value
	}
	assert.Equal(t, "abc123", names["session"])
	assert.Equal(t, "dark", names["prefs"])
}

func TestLoadCookieJarMissingFile(t *testing.T) {
	_, err := LoadCookieJar("/nonexistent/cookies.txt", "https://example.com")
	assert.Error(t, err)
}
