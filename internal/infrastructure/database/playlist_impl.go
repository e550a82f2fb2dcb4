package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/Dhiren507/skillsync/internal/domain/models"
	"github.com/Dhiren507/skillsync/internal/domain/repositories"
)

type playlistRepository struct {
	db *PostgresDB
}

func NewPlaylistRepository(db *PostgresDB) repositories.PlaylistRepository {
	return &playlistRepository{db: db}
}

func (r *playlistRepository) CreatePlaylist(ctx context.Context, playlist *models.Playlist) error {
	if playlist.ID == "" {
		playlist.ID = uuid.New().String()
	}

	query := `INSERT INTO playlists (id, user_id, youtube_id, title, channel_title, video_count)
              VALUES ($1, $2, $3, $4, $5, $6)
              RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		playlist.ID,
		playlist.UserID,
		playlist.YouTubeID,
		playlist.Title,
		playlist.ChannelTitle,
		playlist.VideoCount,
	).Scan(&playlist.CreatedAt, &playlist.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}
	return nil
}

func (r *playlistRepository) GetPlaylistByID(ctx context.Context, id string) (*models.Playlist, error) {
	var playlist models.Playlist
	query := `SELECT id, user_id, youtube_id, title, channel_title, video_count, created_at, updated_at
              FROM playlists WHERE id = $1`

	err := r.db.GetContext(ctx, &playlist, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("playlist %s not found", id)
		}
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}
	return &playlist, nil
}

func (r *playlistRepository) GetPlaylistsByUserID(ctx context.Context, userID int64, limit, offset int) ([]*models.Playlist, error) {
	query := `SELECT id, user_id, youtube_id, title, channel_title, video_count, created_at, updated_at
              FROM playlists
              WHERE user_id = $1
              ORDER BY created_at DESC
              LIMIT $2 OFFSET $3`

	var playlists []*models.Playlist
	if err := r.db.SelectContext(ctx, &playlists, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	return playlists, nil
}

func (r *playlistRepository) DeletePlaylist(ctx context.Context, id string, userID int64) error {
	query := `DELETE FROM playlists WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("playlist %s not found", id)
	}
	return nil
}
