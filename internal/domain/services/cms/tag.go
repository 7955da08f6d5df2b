package cms

import (
	"context"

	models "inkstand/internal/domain/models/cms"
)

// TagService manages article tags
type TagService interface {
	ListTags(ctx context.Context, siteID *string, viewerID string) ([]models.Tag, error)
	CreateTag(ctx context.Context, req *CreateTagRequest) (*models.Tag, error)
	DeleteTag(ctx context.Context, userID, id string) error

	// ResolveTags finds or creates each referenced tag and returns their IDs in request order
	ResolveTags(ctx context.Context, userID string, siteID *string, refs []models.TagRef) ([]string, error)
}

// CreateTagRequest represents a tag creation request
type CreateTagRequest struct {
	UserID string  `json:"-"`
	SiteID *string `json:"-"`
	Name   string  `json:"name"`
	Color  string  `json:"color,omitempty"`
}
