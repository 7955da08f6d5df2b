package cms

import (
	"context"
	"encoding/json"

	models "inkstand/internal/domain/models/cms"
)

// ArticleService handles article content, tags and listings
type ArticleService interface {
	GetArticle(ctx context.Context, id string, siteID *string) (*models.Article, error)
	UpdateContent(ctx context.Context, req *UpdateContentRequest) (*models.Article, error)
	UpdateTags(ctx context.Context, req *UpdateTagsRequest) (*models.Article, error)
	ListArticles(ctx context.Context, req *ListArticlesRequest) (*models.ArticlePage, error)
}

// UpdateContentRequest replaces an article body (editor block array)
type UpdateContentRequest struct {
	UserID  string          `json:"-"`
	SiteID  *string         `json:"-"`
	ID      string          `json:"id"`
	Content json.RawMessage `json:"content"`
}

// UpdateTagsRequest replaces an article's tags
type UpdateTagsRequest struct {
	UserID string          `json:"-"`
	SiteID *string         `json:"-"`
	ID     string          `json:"id"`
	Tags   []models.TagRef `json:"tags"`
}

// ListArticlesRequest selects one page of a tenant's articles
type ListArticlesRequest struct {
	SiteID   *string
	ViewerID string
	Page     int // 1-based
	PageSize int
}
