package cms

import (
	"context"

	models "inkstand/internal/domain/models/cms"
)

// CarouselRepository defines data access operations for home page slides
type CarouselRepository interface {
	Create(ctx context.Context, carousel *models.Carousel) error
	GetByID(ctx context.Context, id string, siteID *string) (*models.Carousel, error)
	// List returns slides newest first, scoped like tags
	List(ctx context.Context, siteID *string, creatorID string) ([]models.Carousel, error)
	Update(ctx context.Context, id string, patch models.CarouselPatch) (*models.Carousel, error)
	Delete(ctx context.Context, id string) error
}

// ProjectRepository defines data access operations for project showcases
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id string, siteID *string) (*models.Project, error)
	// List returns projects newest first; an empty category matches all
	List(ctx context.Context, siteID *string, creatorID, category string) ([]models.Project, error)
	Update(ctx context.Context, id string, patch models.ProjectPatch) (*models.Project, error)
	Delete(ctx context.Context, id string) error
	// Like adds one like and returns the new count
	Like(ctx context.Context, id string, siteID *string) (int, error)
}
