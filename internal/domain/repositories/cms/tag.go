package cms

import (
	"context"

	models "inkstand/internal/domain/models/cms"
)

// TagRepository defines data access operations for tags
type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	GetByID(ctx context.Context, id string) (*models.Tag, error)
	// FindByName looks up a tag by (name, creator, site); domain.ErrNotFound if absent
	FindByName(ctx context.Context, name, creatorID string, siteID *string) (*models.Tag, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Tag, error)
	ListBySite(ctx context.Context, siteID *string, creatorID string) ([]models.Tag, error)
	Delete(ctx context.Context, id string) error
	// RemoveFromContent drops a deleted tag's ID from every article and diary referencing it
	RemoveFromContent(ctx context.Context, tagID string) error
}
