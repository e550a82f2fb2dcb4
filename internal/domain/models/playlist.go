package models

import (
	"time"
)

type Playlist struct {
	ID           string    `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	YouTubeID    string    `json:"youtube_id" db:"youtube_id"`
	Title        string    `json:"title" db:"title"`
	ChannelTitle string    `json:"channel_title" db:"channel_title"`
	VideoCount   int       `json:"video_count" db:"video_count"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	// Relationships (not in DB)
	Videos []*Video `json:"videos,omitempty"`
}

type Video struct {
	ID              string    `json:"id" db:"id"`
	PlaylistID      string    `json:"playlist_id" db:"playlist_id"`
	YouTubeID       string    `json:"youtube_id" db:"youtube_id"`
	Title           string    `json:"title" db:"title"`
	Description     string    `json:"description" db:"description"`
	DurationSeconds int       `json:"duration_seconds" db:"duration_seconds"`
	Position        int       `json:"position" db:"position"`
	WatchedSeconds  int       `json:"watched_seconds" db:"watched_seconds"`
	Completed       bool      `json:"completed" db:"completed"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
