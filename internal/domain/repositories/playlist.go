package repositories

import (
	"context"

	"github.com/Dhiren507/skillsync/internal/domain/models"
)

type PlaylistRepository interface {
	CreatePlaylist(ctx context.Context, playlist *models.Playlist) error
	GetPlaylistByID(ctx context.Context, id string) (*models.Playlist, error)
	GetPlaylistsByUserID(ctx context.Context, userID int64, limit, offset int) ([]*models.Playlist, error)
	DeletePlaylist(ctx context.Context, id string, userID int64) error
}

type VideoRepository interface {
	CreateVideo(ctx context.Context, video *models.Video) error
	GetVideoByID(ctx context.Context, id string) (*models.Video, error)
	GetVideosByPlaylistID(ctx context.Context, playlistID string) ([]*models.Video, error)
	UpdateWatchProgress(ctx context.Context, id string, watchedSeconds int, completed bool) error

	// Transcript persistence: the prefetch worker stores fetched transcripts
	// so generation calls don't refetch them.
	SaveTranscript(ctx context.Context, videoID string, transcript *models.Transcript) error
	GetTranscript(ctx context.Context, videoID string) (*models.Transcript, error)
}
