package cms

import (
	"context"

	models "inkstand/internal/domain/models/cms"
)

// SiteService manages tenant sites
type SiteService interface {
	CreateSite(ctx context.Context, req *CreateSiteRequest) (*models.Site, error)
	// CheckSubdomain reports whether a subdomain is well-formed and free
	CheckSubdomain(ctx context.Context, subdomain string) (bool, error)
	GetSite(ctx context.Context, id string) (*models.Site, error)
	// ResolveSubdomain returns the site for a subdomain (cached)
	ResolveSubdomain(ctx context.Context, subdomain string) (*models.Site, error)
	UpdateSite(ctx context.Context, req *UpdateSiteRequest) (*models.Site, error)
	ListSites(ctx context.Context, userID string) ([]models.Site, error)
}

// SiteCache caches subdomain lookups
type SiteCache interface {
	Get(ctx context.Context, subdomain string) (*models.Site, bool, error)
	Set(ctx context.Context, site *models.Site) error
	Invalidate(ctx context.Context, subdomain string) error
}

// CreateSiteRequest represents a site creation request
type CreateSiteRequest struct {
	UserID     string `json:"-"`
	Subdomain  string `json:"subdomain"`
	SiteName   string `json:"siteName"`
	OwnerName  string `json:"name"`
	Profession string `json:"job,omitempty"`
}

// UpdateSiteRequest edits a site. Nil fields are left unchanged; the
// subdomain, creator and review flags cannot be changed here.
type UpdateSiteRequest struct {
	UserID     string  `json:"-"`
	ID         string  `json:"-"`
	SiteName   *string `json:"siteName,omitempty"`
	OwnerName  *string `json:"name,omitempty"`
	Profession *string `json:"job,omitempty"`
	IsOff      *bool   `json:"isOff,omitempty"`
}
