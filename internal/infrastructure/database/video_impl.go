package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/Dhiren507/skillsync/internal/domain/models"
	"github.com/Dhiren507/skillsync/internal/domain/repositories"
)

type videoRepository struct {
	db *PostgresDB
}

func NewVideoRepository(db *PostgresDB) repositories.VideoRepository {
	return &videoRepository{db: db}
}

func (r *videoRepository) CreateVideo(ctx context.Context, video *models.Video) error {
	if video.ID == "" {
		video.ID = uuid.New().String()
	}

	query := `INSERT INTO videos (id, playlist_id, youtube_id, title, description, duration_seconds, position)
              VALUES ($1, $2, $3, $4, $5, $6, $7)
              RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		video.ID,
		video.PlaylistID,
		video.YouTubeID,
		video.Title,
		video.Description,
		video.DurationSeconds,
		video.Position,
	).Scan(&video.CreatedAt, &video.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create video: %w", err)
	}
	return nil
}

func (r *videoRepository) GetVideoByID(ctx context.Context, id string) (*models.Video, error) {
	var video models.Video
	query := `SELECT id, playlist_id, youtube_id, title, description, duration_seconds,
              position, watched_seconds, completed, created_at, updated_at
              FROM videos WHERE id = $1`

	err := r.db.GetContext(ctx, &video, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("video %s not found", id)
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return &video, nil
}

func (r *videoRepository) GetVideosByPlaylistID(ctx context.Context, playlistID string) ([]*models.Video, error) {
	query := `SELECT id, playlist_id, youtube_id, title, description, duration_seconds,
              position, watched_seconds, completed, created_at, updated_at
              FROM videos
              WHERE playlist_id = $1
              ORDER BY position ASC`

	var videos []*models.Video
	if err := r.db.SelectContext(ctx, &videos, query, playlistID); err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	return videos, nil
}

func (r *videoRepository) UpdateWatchProgress(ctx context.Context, id string, watchedSeconds int, completed bool) error {
	query := `UPDATE videos SET watched_seconds = $2, completed = $3, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, watchedSeconds, completed)
	if err != nil {
		return fmt.Errorf("failed to update watch progress: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("video %s not found", id)
	}
	return nil
}

func (r *videoRepository) SaveTranscript(ctx context.Context, videoID string, transcript *models.Transcript) error {
	segmentsJSON, err := json.Marshal(transcript.Segments)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript segments: %w", err)
	}

	query := `INSERT INTO transcripts (video_id, available, full_text, segments, error, fetched_at)
              VALUES ($1, $2, $3, $4, $5, NOW())
              ON CONFLICT (video_id) DO UPDATE SET
                  available = EXCLUDED.available,
                  full_text = EXCLUDED.full_text,
                  segments = EXCLUDED.segments,
                  error = EXCLUDED.error,
                  fetched_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, videoID, transcript.Available, transcript.FullText, segmentsJSON, transcript.Error); err != nil {
		return fmt.Errorf("failed to save transcript: %w", err)
	}
	return nil
}

func (r *videoRepository) GetTranscript(ctx context.Context, videoID string) (*models.Transcript, error) {
	query := `SELECT available, full_text, segments, error FROM transcripts WHERE video_id = $1`

	var (
		available    bool
		fullText     string
		segmentsJSON []byte
		errReason    sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, videoID).Scan(&available, &fullText, &segmentsJSON, &errReason)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no transcript stored for video %s", videoID)
		}
		return nil, fmt.Errorf("failed to get transcript: %w", err)
	}

	transcript := &models.Transcript{
		VideoID:   videoID,
		Available: available,
		FullText:  fullText,
		Error:     errReason.String,
	}
	if len(segmentsJSON) > 0 {
		if err := json.Unmarshal(segmentsJSON, &transcript.Segments); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transcript segments: %w", err)
		}
	}
	return transcript, nil
}
