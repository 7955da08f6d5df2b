package cms

import (
	"context"

	models "inkstand/internal/domain/models/cms"
)

// SiteRepository defines data access operations for tenant sites
type SiteRepository interface {
	// Create inserts a site. Returns a *domain.ConflictError if the subdomain is taken.
	Create(ctx context.Context, site *models.Site) error
	GetByID(ctx context.Context, id string) (*models.Site, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*models.Site, error)
	ListByCreator(ctx context.Context, creatorID string) ([]models.Site, error)
	Update(ctx context.Context, site *models.Site) error
}
