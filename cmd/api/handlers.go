package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cineshazam/cineshazam/internal/identify"
	"github.com/cineshazam/cineshazam/internal/metrics"
	"github.com/cineshazam/cineshazam/internal/middleware"
	"github.com/cineshazam/cineshazam/internal/transcribe"
	"github.com/cineshazam/cineshazam/pkg/models"
)

type identifyURLRequest struct {
	URL        string   `json:"url" binding:"required"`
	Candidates []string `json:"candidates"`
}

type identifyTextRequest struct {
	Text       string   `json:"text" binding:"required"`
	Candidates []string `json:"candidates"`
}

type matchResponse struct {
	MovieID       string  `json:"movie_id"`
	Confidence    float64 `json:"confidence"`
	MatchStartMs  int64   `json:"match_start_ms"`
	MatchEndMs    int64   `json:"match_end_ms"`
	LowConfidence bool    `json:"low_confidence"`
}

type identifyResponse struct {
	RequestID  string                     `json:"request_id"`
	Results    []matchResponse            `json:"results"`
	Transcript string                     `json:"transcript"`
	Attempts   []models.ExtractionAttempt `json:"extraction_attempts,omitempty"`
}

// Identify from an uploaded clip
func (api *API) identifyUpload(c *gin.Context) {
	file, err := c.FormFile("clip")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No clip file provided"})
		return
	}
	if file.Size > api.cfg.Server.MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Clip exceeds upload size limit"})
		return
	}

	requestID := middleware.GetRequestID(c)

	tempPath := filepath.Join(os.TempDir(), fmt.Sprintf("upload-%s%s", uuid.New().String(), filepath.Ext(file.Filename)))
	if err := c.SaveUploadedFile(file, tempPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}
	defer os.Remove(tempPath)

	// Archive the clip for replay; identification proceeds even if this
	// fails
	if _, err := api.storage.UploadClip(c.Request.Context(), requestID, tempPath); err != nil {
		api.logger.Warnf("Failed to archive clip for request %s: %v", requestID, err)
	}

	api.runIdentify(c, requestID, identify.Input{
		Kind:      models.SourceUpload,
		MediaPath: tempPath,
	}, c.PostFormArray("candidates"))
}

// Identify from a remote stream URL
func (api *API) identifyURL(c *gin.Context) {
	var req identifyURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	api.runIdentify(c, middleware.GetRequestID(c), identify.Input{
		Kind: models.SourceStream,
		URL:  req.URL,
	}, req.Candidates)
}

// Identify from caller-provided transcript text
func (api *API) identifyText(c *gin.Context) {
	var req identifyTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	api.runIdentify(c, middleware.GetRequestID(c), identify.Input{
		Kind: models.SourceRawText,
		Text: req.Text,
	}, req.Candidates)
}

func (api *API) runIdentify(c *gin.Context, requestID string, input identify.Input, candidates []string) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), api.cfg.Server.RequestDeadline)
	defer cancel()

	outcome, err := api.identify.Identify(ctx, requestID, input, candidates)
	if err != nil {
		status, message := identifyErrorStatus(err)
		c.JSON(status, gin.H{"error": message, "request_id": requestID})
		return
	}

	resp := identifyResponse{
		RequestID:  requestID,
		Results:    make([]matchResponse, 0, len(outcome.Results)),
		Transcript: outcome.Transcript.Text(),
		Attempts:   outcome.Attempts,
	}
	for _, r := range outcome.Results {
		resp.Results = append(resp.Results, matchResponse{
			MovieID:       r.MovieID,
			Confidence:    r.Confidence,
			MatchStartMs:  r.MatchedSpan.Start.Milliseconds(),
			MatchEndMs:    r.MatchedSpan.End.Milliseconds(),
			LowConfidence: r.LowConfidence,
		})
	}

	c.JSON(http.StatusOK, resp)
}

func identifyErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, identify.ErrNoSignal):
		return http.StatusUnprocessableEntity, "No usable speech or text in the input"
	case errors.Is(err, identify.ErrExtractionExhausted):
		return http.StatusBadGateway, "Could not extract content from the source"
	case errors.Is(err, transcribe.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, "Unsupported media format"
	case errors.Is(err, transcribe.ErrModelUnavailable):
		return http.StatusServiceUnavailable, "Transcription backend unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Identification timed out"
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

type createMovieRequest struct {
	Title    string                 `json:"title" binding:"required"`
	Year     int                    `json:"year"`
	ImdbID   string                 `json:"imdb_id" binding:"required"`
	Language string                 `json:"language"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Create movie endpoint: registers the title and queues a subtitle ingest
// job for the worker
func (api *API) createMovie(c *gin.Context) {
	var req createMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	movie := &models.Movie{
		Title:    req.Title,
		Year:     req.Year,
		ImdbID:   req.ImdbID,
		Language: req.Language,
		Metadata: req.Metadata,
		Status:   models.MovieStatusPending,
	}

	if err := api.repo.CreateMovie(c.Request.Context(), movie); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to create movie: %v", err)})
		return
	}

	job := &models.IngestJob{
		ID:        uuid.New().String(),
		MovieID:   movie.ID,
		ImdbID:    movie.ImdbID,
		Title:     movie.Title,
		Language:  movie.Language,
		CreatedAt: time.Now(),
	}
	if err := api.queue.PublishIngestJob(c.Request.Context(), job); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to queue ingest job: %v", err)})
		return
	}

	c.JSON(http.StatusCreated, movie)
}

type movieGetter interface {
	GetMovie(ctx context.Context, movieID string) (*models.Movie, error)
}

type movieCache interface {
	GetMovie(ctx context.Context, movieID string) (*models.Movie, error)
	SetMovie(ctx context.Context, movie *models.Movie, ttl time.Duration) error
}

// fetchMovie reads movie metadata cache-aside: a cache failure degrades to a
// database read, and populating the cache is best-effort
func fetchMovie(ctx context.Context, repo movieGetter, cache movieCache, ttl time.Duration, movieID string) (*models.Movie, error) {
	if movie, err := cache.GetMovie(ctx, movieID); err == nil && movie != nil {
		metrics.RecordCacheAccess("movie", true)
		return movie, nil
	}
	metrics.RecordCacheAccess("movie", false)

	movie, err := repo.GetMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}
	_ = cache.SetMovie(ctx, movie, ttl)
	return movie, nil
}

// Get movie endpoint
func (api *API) getMovie(c *gin.Context) {
	movieID := c.Param("id")

	movie, err := fetchMovie(c.Request.Context(), api.repo, api.cache, api.cfg.Redis.MovieTTL, movieID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Movie not found"})
		return
	}

	c.JSON(http.StatusOK, movie)
}

// List movies endpoint
func (api *API) listMovies(c *gin.Context) {
	limit := 50
	offset := 0

	movies, err := api.repo.ListMovies(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"movies": movies,
		"limit":  limit,
		"offset": offset,
	})
}
