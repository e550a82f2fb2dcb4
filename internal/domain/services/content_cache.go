package services

import (
	"context"

	"github.com/Dhiren507/skillsync/internal/domain/models"
	"github.com/Dhiren507/skillsync/internal/domain/repositories"
)

// RepositoryContentCache adapts ContentRepository to the orchestrator's cache
// contract, so generated content persists in postgres instead of an
// expiring store.
type RepositoryContentCache struct {
	repo repositories.ContentRepository
}

func NewRepositoryContentCache(repo repositories.ContentRepository) *RepositoryContentCache {
	return &RepositoryContentCache{repo: repo}
}

func (c *RepositoryContentCache) Get(ctx context.Context, videoID string, contentType models.ContentType, variant string) ([]byte, bool, error) {
	content, err := c.repo.Get(ctx, videoID, contentType, variant)
	if err != nil {
		return nil, false, err
	}
	if content == nil {
		return nil, false, nil
	}
	return content.Payload, true, nil
}

func (c *RepositoryContentCache) Put(ctx context.Context, videoID string, contentType models.ContentType, variant string, provider models.AIProvider, payload []byte) error {
	return c.repo.Upsert(ctx, &models.StudyContent{
		VideoID:     videoID,
		ContentType: contentType,
		Variant:     variant,
		Provider:    provider,
		Payload:     payload,
	})
}
