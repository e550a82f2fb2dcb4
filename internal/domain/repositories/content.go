package repositories

import (
	"context"

	"github.com/Dhiren507/skillsync/internal/domain/models"
)

// ContentRepository stores generated study content keyed by
// (video_id, content_type, variant). It backs the orchestrator's cache-check
// contract.
type ContentRepository interface {
	Upsert(ctx context.Context, content *models.StudyContent) error
	Get(ctx context.Context, videoID string, contentType models.ContentType, variant string) (*models.StudyContent, error)
	ListByVideoID(ctx context.Context, videoID string) ([]*models.StudyContent, error)
	Delete(ctx context.Context, videoID string, contentType models.ContentType, variant string) error
}
