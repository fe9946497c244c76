package models

import "time"

// SubtitleLine is a single timed line from a movie's subtitle track.
// Within one movie's sequence lines are ordered non-decreasing by StartTime;
// overlaps are permitted (multi-speaker lines).
type SubtitleLine struct {
	MovieID   string        `json:"movie_id" db:"movie_id"`
	StartTime time.Duration `json:"start_time" db:"start_time"`
	EndTime   time.Duration `json:"end_time" db:"end_time"`
	Text      string        `json:"text" db:"text"`
}

// TimeSpan is a time range within a movie's own subtitle timeline
type TimeSpan struct {
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
}
