package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dhiren507/skillsync/internal/ai"
	"github.com/Dhiren507/skillsync/internal/domain/models"
	"github.com/Dhiren507/skillsync/internal/domain/repositories"
)

// ErrGenerationInFlight means another request is already generating the same
// content; callers should retry shortly rather than double-spend provider
// tokens.
var ErrGenerationInFlight = errors.New("generation already in progress for this content")

// ErrProviderNotAllowed means the user's plan does not include the requested
// provider.
var ErrProviderNotAllowed = errors.New("AI provider not available on this plan")

// GenerationLocker is the single-flight hook around the orchestrator,
// implemented by cache.RedisClient with SETNX.
type GenerationLocker interface {
	AcquireGenerationLock(ctx context.Context, videoID string, contentType models.ContentType, variant string, ttl time.Duration) (bool, error)
	ReleaseGenerationLock(ctx context.Context, videoID string, contentType models.ContentType, variant string) error
}

const generationLockTTL = 2 * time.Minute

type StudyService interface {
	GenerateSummary(ctx context.Context, userID int64, videoID string, provider models.AIProvider, force bool) (*models.SummaryResult, error)
	GenerateQuiz(ctx context.Context, userID int64, videoID string, provider models.AIProvider, questionCount int, force bool) (*models.QuizResult, error)
	GenerateNotes(ctx context.Context, userID int64, videoID string, provider models.AIProvider, format models.NotesFormat, force bool) (*models.NotesResult, error)
	AskTutor(ctx context.Context, userID int64, videoID string, provider models.AIProvider, question string) (string, error)
	ListContent(ctx context.Context, userID int64, videoID string) ([]*models.StudyContent, error)
}

type studyService struct {
	orchestrator *ai.Orchestrator
	userRepo     repositories.UserRepository
	videoRepo    repositories.VideoRepository
	playlistRepo repositories.PlaylistRepository
	contentRepo  repositories.ContentRepository
	locker       GenerationLocker
	progress     ai.ProgressSink
	log          *logrus.Logger
}

func NewStudyService(
	orchestrator *ai.Orchestrator,
	userRepo repositories.UserRepository,
	videoRepo repositories.VideoRepository,
	playlistRepo repositories.PlaylistRepository,
	contentRepo repositories.ContentRepository,
	locker GenerationLocker,
	progress ai.ProgressSink,
	log *logrus.Logger,
) StudyService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &studyService{
		orchestrator: orchestrator,
		userRepo:     userRepo,
		videoRepo:    videoRepo,
		playlistRepo: playlistRepo,
		contentRepo:  contentRepo,
		locker:       locker,
		progress:     progress,
		log:          log,
	}
}

// providerAllowedForPlan gates the paid backends: free accounts use Gemini or
// Groq; premium and pro unlock everything.
func providerAllowedForPlan(plan models.UserPlan, provider models.AIProvider) bool {
	switch plan {
	case models.PlanPremium, models.PlanPro:
		return true
	default:
		return provider == models.AIProviderGemini || provider == models.AIProviderGroq
	}
}

func (s *studyService) GenerateSummary(ctx context.Context, userID int64, videoID string, provider models.AIProvider, force bool) (*models.SummaryResult, error) {
	req, unlock, err := s.prepare(ctx, userID, videoID, provider, models.ContentSummary, "", force)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return s.orchestrator.GenerateSummary(ctx, req)
}

func (s *studyService) GenerateQuiz(ctx context.Context, userID int64, videoID string, provider models.AIProvider, questionCount int, force bool) (*models.QuizResult, error) {
	if questionCount <= 0 {
		questionCount = 5
	}
	req, unlock, err := s.prepare(ctx, userID, videoID, provider, models.ContentQuiz, strconv.Itoa(questionCount), force)
	if err != nil {
		return nil, err
	}
	defer unlock()

	req.Options.QuestionCount = questionCount
	return s.orchestrator.GenerateQuiz(ctx, req)
}

func (s *studyService) GenerateNotes(ctx context.Context, userID int64, videoID string, provider models.AIProvider, format models.NotesFormat, force bool) (*models.NotesResult, error) {
	if format == "" {
		format = models.NotesBullet
	}
	req, unlock, err := s.prepare(ctx, userID, videoID, provider, models.ContentNotes, string(format), force)
	if err != nil {
		return nil, err
	}
	defer unlock()

	req.Options.NotesFormat = format
	return s.orchestrator.GenerateNotes(ctx, req)
}

func (s *studyService) AskTutor(ctx context.Context, userID int64, videoID string, provider models.AIProvider, question string) (string, error) {
	if question == "" {
		return "", fmt.Errorf("question is required")
	}

	// Tutor calls are conversational: no cache, no single-flight lock.
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if !providerAllowedForPlan(user.Plan, provider) {
		return "", fmt.Errorf("%w: %s requires a premium plan", ErrProviderNotAllowed, provider)
	}

	req := &models.GenerationRequest{
		ContentType: models.ContentTutor,
		Provider:    provider,
		Options:     models.GenerationOptions{Question: question},
	}

	if videoID != "" {
		video, err := s.authorizeVideo(ctx, userID, videoID)
		if err != nil {
			return "", err
		}
		s.fillVideoContext(ctx, req, video)

		// Ground the tutor in the cached summary when one exists.
		if cached, err := s.contentRepo.Get(ctx, video.ID, models.ContentSummary, ""); err == nil && cached != nil {
			var summary models.SummaryResult
			if err := json.Unmarshal(cached.Payload, &summary); err == nil {
				req.Options.SummaryRef = summary.Content
			}
		}
	}

	if err := s.userRepo.IncrementGenerationsUsed(ctx, userID); err != nil {
		s.log.WithError(err).Warn("failed to record generation usage")
	}

	return s.orchestrator.AskTutor(ctx, req)
}

func (s *studyService) ListContent(ctx context.Context, userID int64, videoID string) ([]*models.StudyContent, error) {
	if _, err := s.authorizeVideo(ctx, userID, videoID); err != nil {
		return nil, err
	}
	return s.contentRepo.ListByVideoID(ctx, videoID)
}

// prepare runs the shared front half of every generation: plan gating,
// ownership check, single-flight lock, usage accounting, and request
// assembly (including any persisted transcript).
func (s *studyService) prepare(ctx context.Context, userID int64, videoID string, provider models.AIProvider, contentType models.ContentType, variant string, force bool) (*models.GenerationRequest, func(), error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if !providerAllowedForPlan(user.Plan, provider) {
		return nil, nil, fmt.Errorf("%w: %s requires a premium plan", ErrProviderNotAllowed, provider)
	}

	video, err := s.authorizeVideo(ctx, userID, videoID)
	if err != nil {
		return nil, nil, err
	}

	unlock := func() {}
	if s.locker != nil {
		acquired, err := s.locker.AcquireGenerationLock(ctx, videoID, contentType, variant, generationLockTTL)
		if err != nil {
			s.log.WithError(err).Warn("generation lock unavailable, proceeding unlocked")
		} else if !acquired {
			return nil, nil, ErrGenerationInFlight
		} else {
			unlock = func() {
				if err := s.locker.ReleaseGenerationLock(context.Background(), videoID, contentType, variant); err != nil {
					s.log.WithError(err).Warn("failed to release generation lock")
				}
			}
		}
	}

	if err := s.userRepo.IncrementGenerationsUsed(ctx, userID); err != nil {
		s.log.WithError(err).Warn("failed to record generation usage")
	}

	req := &models.GenerationRequest{
		ContentType: contentType,
		Provider:    provider,
		Force:       force,
	}
	s.fillVideoContext(ctx, req, video)

	if s.progress != nil {
		s.progress.Publish(ctx, &models.StreamMessage{
			VideoID:     video.ID,
			ContentType: contentType,
			EventType:   models.EventGenerationStarted,
		})
	}

	return req, unlock, nil
}

func (s *studyService) authorizeVideo(ctx context.Context, userID int64, videoID string) (*models.Video, error) {
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
	return video, nil
}

// fillVideoContext copies video metadata onto the request and attaches the
// persisted transcript when the prefetch worker already stored one, saving
// the orchestrator a live fetch.
func (s *studyService) fillVideoContext(ctx context.Context, req *models.GenerationRequest, video *models.Video) {
	req.VideoID = video.ID
	req.Title = video.Title
	req.Description = video.Description
	req.VideoDurationSeconds = video.DurationSeconds

	if stored, err := s.videoRepo.GetTranscript(ctx, video.ID); err == nil && stored != nil {
		req.Transcript = stored
	}
}
