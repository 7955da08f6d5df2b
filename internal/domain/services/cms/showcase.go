package cms

import (
	"context"
	"encoding/json"

	models "inkstand/internal/domain/models/cms"
)

// ShowcaseService manages a site's home page carousel and project showcase
type ShowcaseService interface {
	ListCarousels(ctx context.Context, siteID *string, viewerID string) ([]models.Carousel, error)
	CreateCarousel(ctx context.Context, req *CreateCarouselRequest) (*models.Carousel, error)
	UpdateCarousel(ctx context.Context, req *UpdateCarouselRequest) (*models.Carousel, error)
	DeleteCarousel(ctx context.Context, userID string, siteID *string, id string) error

	ListProjects(ctx context.Context, siteID *string, viewerID, category string) ([]models.Project, error)
	CreateProject(ctx context.Context, req *CreateProjectRequest) (*models.Project, error)
	UpdateProject(ctx context.Context, req *UpdateProjectRequest) (*models.Project, error)
	DeleteProject(ctx context.Context, userID string, siteID *string, id string) error
	// LikeProject adds one like; anyone may like a project
	LikeProject(ctx context.Context, siteID *string, id string) (int, error)
}

// CreateCarouselRequest creates a slide
type CreateCarouselRequest struct {
	UserID   string                  `json:"-"`
	SiteID   *string                 `json:"-"`
	Title    string                  `json:"title"`
	Subtitle string                  `json:"subtitle"`
	Desc     string                  `json:"desc"`
	ImageURL string                  `json:"img_url"`
	Buttons  []models.CarouselButton `json:"buttons"`
}

// UpdateCarouselRequest changes the slide fields that are present
type UpdateCarouselRequest struct {
	UserID   string                   `json:"-"`
	SiteID   *string                  `json:"-"`
	ID       string                   `json:"id"`
	Title    *string                  `json:"title"`
	Subtitle *string                  `json:"subtitle"`
	Desc     *string                  `json:"desc"`
	ImageURL *string                  `json:"img_url"`
	Buttons  *[]models.CarouselButton `json:"buttons"`
}

// CreateProjectRequest creates a project
type CreateProjectRequest struct {
	UserID    string          `json:"-"`
	SiteID    *string         `json:"-"`
	Title     string          `json:"title"`
	ImageURL  string          `json:"img_url"`
	Category  string          `json:"category"`
	ButtonURL string          `json:"button_url"`
	Content   json.RawMessage `json:"content"`
}

// UpdateProjectRequest changes the project fields that are present
type UpdateProjectRequest struct {
	UserID    string          `json:"-"`
	SiteID    *string         `json:"-"`
	ID        string          `json:"id"`
	Title     *string         `json:"title"`
	ImageURL  *string         `json:"img_url"`
	Category  *string         `json:"category"`
	ButtonURL *string         `json:"button_url"`
	Content   json.RawMessage `json:"content"`
}
