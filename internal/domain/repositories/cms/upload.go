package cms

import (
	"context"

	models "inkstand/internal/domain/models/cms"
)

// UploadSessionRepository persists chunked upload progress keyed by (hash, name)
type UploadSessionRepository interface {
	// Get returns the session or domain.ErrNotFound
	Get(ctx context.Context, hash, name string) (*models.UploadSession, error)

	// Save inserts or replaces the session row
	Save(ctx context.Context, session *models.UploadSession) error
}
