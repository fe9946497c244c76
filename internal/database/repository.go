package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cineshazam/cineshazam/pkg/models"
)

// Repository provides database operations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Health checks if the underlying database is healthy
func (r *Repository) Health(ctx context.Context) error {
	return r.db.Health(ctx)
}

// Movies

// CreateMovie creates a new movie record
func (r *Repository) CreateMovie(ctx context.Context, movie *models.Movie) error {
	if movie.ID == "" {
		movie.ID = uuid.New().String()
	}
	if movie.Status == "" {
		movie.Status = models.MovieStatusPending
	}

	query := `
		INSERT INTO movies (id, title, year, imdb_id, language, line_count, metadata, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		movie.ID, movie.Title, movie.Year, movie.ImdbID, movie.Language,
		movie.LineCount, movie.Metadata, movie.Status,
	).Scan(&movie.CreatedAt, &movie.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create movie: %w", err)
	}

	return nil
}

// GetMovie retrieves a movie by ID
func (r *Repository) GetMovie(ctx context.Context, id string) (*models.Movie, error) {
	var movie models.Movie

	query := `
		SELECT id, title, year, imdb_id, language, line_count, metadata, status, created_at, updated_at
		FROM movies
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&movie.ID, &movie.Title, &movie.Year, &movie.ImdbID, &movie.Language,
		&movie.LineCount, &movie.Metadata, &movie.Status, &movie.CreatedAt, &movie.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("movie not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}

	return &movie, nil
}

// ListMovies retrieves all movies with pagination
func (r *Repository) ListMovies(ctx context.Context, limit, offset int) ([]*models.Movie, error) {
	query := `
		SELECT id, title, year, imdb_id, language, line_count, metadata, status, created_at, updated_at
		FROM movies
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	defer rows.Close()

	var movies []*models.Movie
	for rows.Next() {
		var movie models.Movie
		err := rows.Scan(
			&movie.ID, &movie.Title, &movie.Year, &movie.ImdbID, &movie.Language,
			&movie.LineCount, &movie.Metadata, &movie.Status, &movie.CreatedAt, &movie.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		movies = append(movies, &movie)
	}

	return movies, rows.Err()
}

// UpdateMovieStatus updates a movie's ingest status and line count
func (r *Repository) UpdateMovieStatus(ctx context.Context, id, status string, lineCount int) error {
	query := `
		UPDATE movies
		SET status = $2, line_count = $3, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query, id, status, lineCount)
	if err != nil {
		return fmt.Errorf("failed to update movie status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("movie not found")
	}

	return nil
}

// Subtitle lines

// InsertLines replaces a movie's subtitle lines in one transaction. Offsets
// are stored as milliseconds from the start of the film.
func (r *Repository) InsertLines(ctx context.Context, movieID string, lines []models.SubtitleLine) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM subtitle_lines WHERE movie_id = $1`, movieID); err != nil {
		return fmt.Errorf("failed to clear existing lines: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"subtitle_lines"},
		[]string{"movie_id", "start_ms", "end_ms", "text"},
		pgx.CopyFromSlice(len(lines), func(i int) ([]interface{}, error) {
			line := lines[i]
			return []interface{}{
				movieID,
				line.StartTime.Milliseconds(),
				line.EndTime.Milliseconds(),
				line.Text,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to insert lines: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit lines: %w", err)
	}

	return nil
}

// LinesFor retrieves a movie's subtitle lines ordered by start time. It
// implements the corpus accessor interface.
func (r *Repository) LinesFor(ctx context.Context, movieID string) ([]models.SubtitleLine, error) {
	query := `
		SELECT movie_id, start_ms, end_ms, text
		FROM subtitle_lines
		WHERE movie_id = $1
		ORDER BY start_ms ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, movieID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines: %w", err)
	}
	defer rows.Close()

	var lines []models.SubtitleLine
	for rows.Next() {
		var line models.SubtitleLine
		var startMs, endMs int64
		if err := rows.Scan(&line.MovieID, &startMs, &endMs, &line.Text); err != nil {
			return nil, fmt.Errorf("failed to scan line: %w", err)
		}
		line.StartTime = time.Duration(startMs) * time.Millisecond
		line.EndTime = time.Duration(endMs) * time.Millisecond
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

// AllMovieIDs lists the IDs of every movie whose subtitles are indexed. It
// implements the corpus accessor interface.
func (r *Repository) AllMovieIDs(ctx context.Context) ([]string, error) {
	query := `SELECT id FROM movies WHERE status = $1 ORDER BY id`

	rows, err := r.db.Pool.Query(ctx, query, models.MovieStatusReady)
	if err != nil {
		return nil, fmt.Errorf("failed to list movie ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan movie id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
