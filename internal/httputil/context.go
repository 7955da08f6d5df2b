package httputil

import (
	"context"
	"net/http"

	models "inkstand/internal/domain/models/cms"
)

// Context key type to avoid collisions
type contextKey string

const (
	userIDKey contextKey = "userID"
	siteKey   contextKey = "site"
)

// WithUserID adds userID to the request context
func WithUserID(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	return r.WithContext(ctx)
}

// GetUserID retrieves userID from context, returns empty string if not found
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}

// WithSite adds the resolved tenant site to the request context
func WithSite(r *http.Request, site *models.Site) *http.Request {
	ctx := context.WithValue(r.Context(), siteKey, site)
	return r.WithContext(ctx)
}

// GetSite returns the tenant site, or nil on the primary host
func GetSite(r *http.Request) *models.Site {
	site, _ := r.Context().Value(siteKey).(*models.Site)
	return site
}

// GetSiteID returns the tenant site ID, or nil on the primary host
func GetSiteID(r *http.Request) *string {
	if site := GetSite(r); site != nil {
		id := site.ID
		return &id
	}
	return nil
}
