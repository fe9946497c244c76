package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Movie represents one title known to the subtitle corpus
type Movie struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Year      int       `json:"year" db:"year"`
	ImdbID    string    `json:"imdb_id" db:"imdb_id"`
	Language  string    `json:"language" db:"language"`
	LineCount int       `json:"line_count" db:"line_count"`
	Metadata  Metadata  `json:"metadata" db:"metadata"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Metadata holds additional movie metadata (genres, overview, votes)
type Metadata map[string]interface{}

// Value implements driver.Valuer for database storage
func (m Metadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements sql.Scanner for database retrieval
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = make(Metadata)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// Movie ingest status constants
const (
	MovieStatusPending = "pending"
	MovieStatusLoading = "loading"
	MovieStatusReady   = "ready"
	MovieStatusFailed  = "failed"
)

// IngestJob asks the worker to fetch and index subtitles for one title
type IngestJob struct {
	ID        string    `json:"id"`
	MovieID   string    `json:"movie_id"`
	ImdbID    string    `json:"imdb_id"`
	Title     string    `json:"title"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
}
