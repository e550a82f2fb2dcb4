package services

import (
	"context"
	"fmt"
	"regexp"

	"github.com/sirupsen/logrus"

	"github.com/Dhiren507/skillsync/internal/domain/models"
	"github.com/Dhiren507/skillsync/internal/domain/repositories"
	"github.com/Dhiren507/skillsync/internal/infrastructure/queue"
)

type PlaylistService interface {
	ImportPlaylist(ctx context.Context, userID int64, req *ImportPlaylistRequest) (*models.Playlist, error)
	GetPlaylist(ctx context.Context, playlistID string, userID int64) (*models.Playlist, error)
	ListPlaylists(ctx context.Context, userID int64, limit, offset int) ([]*models.Playlist, error)
	DeletePlaylist(ctx context.Context, playlistID string, userID int64) error
	UpdateWatchProgress(ctx context.Context, videoID string, userID int64, watchedSeconds int, completed bool) (*models.Video, error)
}

// ImportPlaylistRequest carries playlist metadata resolved client-side (the
// metadata API lives outside this service); the server owns transcript
// prefetch and everything downstream.
type ImportPlaylistRequest struct {
	YouTubeID    string               `json:"youtube_id" binding:"required"`
	Title        string               `json:"title" binding:"required"`
	ChannelTitle string               `json:"channel_title"`
	Videos       []ImportVideoRequest `json:"videos" binding:"required,min=1,dive"`
}

type ImportVideoRequest struct {
	YouTubeID       string `json:"youtube_id" binding:"required,videoid"`
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	DurationSeconds int    `json:"duration_seconds" binding:"min=0"`
}

var youtubeIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// IsValidVideoID reports whether s looks like an 11-character YouTube video
// token. Registered as the "videoid" binding rule.
func IsValidVideoID(s string) bool {
	return youtubeIDRe.MatchString(s)
}

type playlistService struct {
	playlistRepo repositories.PlaylistRepository
	videoRepo    repositories.VideoRepository
	prefetch     *queue.RedisQueue
	log          *logrus.Logger
}

func NewPlaylistService(playlistRepo repositories.PlaylistRepository, videoRepo repositories.VideoRepository, prefetch *queue.RedisQueue, log *logrus.Logger) PlaylistService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &playlistService{
		playlistRepo: playlistRepo,
		videoRepo:    videoRepo,
		prefetch:     prefetch,
		log:          log,
	}
}

func (s *playlistService) ImportPlaylist(ctx context.Context, userID int64, req *ImportPlaylistRequest) (*models.Playlist, error) {
	playlist := &models.Playlist{
		UserID:       userID,
		YouTubeID:    req.YouTubeID,
		Title:        req.Title,
		ChannelTitle: req.ChannelTitle,
		VideoCount:   len(req.Videos),
	}

	if err := s.playlistRepo.CreatePlaylist(ctx, playlist); err != nil {
		return nil, fmt.Errorf("failed to import playlist: %w", err)
	}

	for i, v := range req.Videos {
		video := &models.Video{
			PlaylistID:      playlist.ID,
			YouTubeID:       v.YouTubeID,
			Title:           v.Title,
			Description:     v.Description,
			DurationSeconds: v.DurationSeconds,
			Position:        i,
		}
		if err := s.videoRepo.CreateVideo(ctx, video); err != nil {
			return nil, fmt.Errorf("failed to import video %s: %w", v.YouTubeID, err)
		}
		playlist.Videos = append(playlist.Videos, video)

		if s.prefetch != nil {
			job := queue.TranscriptPrefetchJob{
				PlaylistID: playlist.ID,
				VideoID:    video.ID,
				YouTubeID:  video.YouTubeID,
				UserID:     userID,
			}
			if err := s.prefetch.EnqueuePrefetch(ctx, job); err != nil {
				// Prefetch is an optimization; generation fetches on demand.
				s.log.WithError(err).WithField("video_id", video.ID).Warn("failed to enqueue transcript prefetch")
			}
		}
	}

	s.log.WithFields(logrus.Fields{
		"playlist_id": playlist.ID,
		"videos":      len(playlist.Videos),
	}).Info("playlist imported")

	return playlist, nil
}

func (s *playlistService) GetPlaylist(ctx context.Context, playlistID string, userID int64) (*models.Playlist, error) {
	playlist, err := s.playlistRepo.GetPlaylistByID(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if playlist.UserID != userID {
		return nil, fmt.Errorf("playlist %s not found", playlistID)
	}

	videos, err := s.videoRepo.GetVideosByPlaylistID(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	playlist.Videos = videos

	return playlist, nil
}

func (s *playlistService) ListPlaylists(ctx context.Context, userID int64, limit, offset int) ([]*models.Playlist, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.playlistRepo.GetPlaylistsByUserID(ctx, userID, limit, offset)
}

func (s *playlistService) DeletePlaylist(ctx context.Context, playlistID string, userID int64) error {
	return s.playlistRepo.DeletePlaylist(ctx, playlistID, userID)
}

func (s *playlistService) UpdateWatchProgress(ctx context.Context, videoID string, userID int64, watchedSeconds int, completed bool) (*models.Video, error) {
	video, err := s.videoRepo.GetVideoByID(ctx, videoID)
	if err != nil {
		return nil, err
	}

	playlist, err := s.playlistRepo.GetPlaylistByID(ctx, video.PlaylistID)
	if err != nil {
		return nil, err
	}
	if playlist.UserID != userID {
		return nil, fmt.Errorf("video %s not found", videoID)
	}

	if watchedSeconds < 0 {
		watchedSeconds = 0
	}
	if video.DurationSeconds > 0 && watchedSeconds > video.DurationSeconds {
		watchedSeconds = video.DurationSeconds
	}

	if err := s.videoRepo.UpdateWatchProgress(ctx, videoID, watchedSeconds, completed); err != nil {
		return nil, err
	}

	video.WatchedSeconds = watchedSeconds
	video.Completed = completed
	return video, nil
}
