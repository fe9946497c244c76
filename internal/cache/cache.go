package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cineshazam/cineshazam/pkg/models"
)

// Cache provides caching functionality using Redis
type Cache struct {
	client *redis.Client
}

// NewCache creates a new cache instance
func NewCache(host string, port int, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// Subtitle Line Cache Operations

// SetLines caches a movie's full subtitle line sequence. Line sequences are
// read on every identify call, so keeping warm movies out of Postgres is the
// main latency win.
func (c *Cache) SetLines(ctx context.Context, movieID string, lines []models.SubtitleLine, ttl time.Duration) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to marshal lines: %w", err)
	}

	key := fmt.Sprintf("lines:%s", movieID)
	return c.client.Set(ctx, key, data, ttl).Err()
}

// GetLines retrieves a movie's subtitle lines from cache. A nil slice with
// no error means cache miss.
func (c *Cache) GetLines(ctx context.Context, movieID string) ([]models.SubtitleLine, error) {
	key := fmt.Sprintf("lines:%s", movieID)
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get lines from cache: %w", err)
	}

	var lines []models.SubtitleLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("failed to unmarshal lines: %w", err)
	}

	return lines, nil
}

// DeleteLines removes a movie's cached lines, forcing the next read back to
// the database. Called after re-ingestion.
func (c *Cache) DeleteLines(ctx context.Context, movieID string) error {
	key := fmt.Sprintf("lines:%s", movieID)
	return c.client.Del(ctx, key).Err()
}

// Movie Cache Operations

// SetMovie caches movie metadata
func (c *Cache) SetMovie(ctx context.Context, movie *models.Movie, ttl time.Duration) error {
	data, err := json.Marshal(movie)
	if err != nil {
		return fmt.Errorf("failed to marshal movie: %w", err)
	}

	key := fmt.Sprintf("movie:%s", movie.ID)
	return c.client.Set(ctx, key, data, ttl).Err()
}

// GetMovie retrieves movie metadata from cache
func (c *Cache) GetMovie(ctx context.Context, movieID string) (*models.Movie, error) {
	key := fmt.Sprintf("movie:%s", movieID)
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get movie from cache: %w", err)
	}

	var movie models.Movie
	if err := json.Unmarshal(data, &movie); err != nil {
		return nil, fmt.Errorf("failed to unmarshal movie: %w", err)
	}

	return &movie, nil
}

// DeleteMovie removes movie metadata from cache
func (c *Cache) DeleteMovie(ctx context.Context, movieID string) error {
	key := fmt.Sprintf("movie:%s", movieID)
	return c.client.Del(ctx, key).Err()
}

// Movie ID List Cache

// SetMovieIDs caches the list of ready movie IDs
func (c *Cache) SetMovieIDs(ctx context.Context, ids []string, ttl time.Duration) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal movie ids: %w", err)
	}
	return c.client.Set(ctx, "movies:ready", data, ttl).Err()
}

// GetMovieIDs retrieves the cached list of ready movie IDs. A nil slice with
// no error means cache miss.
func (c *Cache) GetMovieIDs(ctx context.Context) ([]string, error) {
	data, err := c.client.Get(ctx, "movies:ready").Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get movie ids from cache: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to unmarshal movie ids: %w", err)
	}

	return ids, nil
}

// DeleteMovieIDs invalidates the ready-movie list, forcing a re-read after
// an ingest completes
func (c *Cache) DeleteMovieIDs(ctx context.Context) error {
	return c.client.Del(ctx, "movies:ready").Err()
}

// Health check
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
