package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/Dhiren507/skillsync/internal/domain/models"
	"github.com/Dhiren507/skillsync/internal/domain/repositories"
)

type contentRepository struct {
	db *PostgresDB
}

func NewContentRepository(db *PostgresDB) repositories.ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) Upsert(ctx context.Context, content *models.StudyContent) error {
	if content.ID == "" {
		content.ID = uuid.New().String()
	}

	query := `INSERT INTO study_content (id, video_id, content_type, variant, provider, payload)
              VALUES ($1, $2, $3, $4, $5, $6)
              ON CONFLICT (video_id, content_type, variant) DO UPDATE SET
                  provider = EXCLUDED.provider,
                  payload = EXCLUDED.payload,
                  updated_at = NOW()
              RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		content.ID,
		content.VideoID,
		content.ContentType,
		content.Variant,
		content.Provider,
		content.Payload,
	).Scan(&content.CreatedAt, &content.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert study content: %w", err)
	}
	return nil
}

func (r *contentRepository) Get(ctx context.Context, videoID string, contentType models.ContentType, variant string) (*models.StudyContent, error) {
	var content models.StudyContent
	query := `SELECT id, video_id, content_type, variant, provider, payload, created_at, updated_at
              FROM study_content
              WHERE video_id = $1 AND content_type = $2 AND variant = $3`

	err := r.db.GetContext(ctx, &content, query, videoID, contentType, variant)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get study content: %w", err)
	}
	return &content, nil
}

func (r *contentRepository) ListByVideoID(ctx context.Context, videoID string) ([]*models.StudyContent, error) {
	query := `SELECT id, video_id, content_type, variant, provider, payload, created_at, updated_at
              FROM study_content
              WHERE video_id = $1
              ORDER BY created_at ASC`

	var contents []*models.StudyContent
	if err := r.db.SelectContext(ctx, &contents, query, videoID); err != nil {
		return nil, fmt.Errorf("failed to list study content: %w", err)
	}
	return contents, nil
}

func (r *contentRepository) Delete(ctx context.Context, videoID string, contentType models.ContentType, variant string) error {
	query := `DELETE FROM study_content WHERE video_id = $1 AND content_type = $2 AND variant = $3`

	if _, err := r.db.ExecContext(ctx, query, videoID, contentType, variant); err != nil {
		return fmt.Errorf("failed to delete study content: %w", err)
	}
	return nil
}
