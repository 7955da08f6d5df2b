package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"inkstand/internal/domain"
	models "inkstand/internal/domain/models/cms"
	"inkstand/internal/httputil"
)

// SiteResolver looks a site up by subdomain
type SiteResolver interface {
	ResolveSubdomain(ctx context.Context, subdomain string) (*models.Site, error)
}

// Tenant resolves the request's site from its Host header.
//
// The bare base domain (and any host outside it) is the primary host: no site.
// <sub>.<base> is scoped to the site with that subdomain; an unknown subdomain
// is a 404 and a site its owner switched off is a 403.
func Tenant(resolver SiteResolver, baseDomain string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sub := SubdomainOf(r.Host, baseDomain)
			if sub == "" {
				next.ServeHTTP(w, r)
				return
			}

			site, err := resolver.ResolveSubdomain(r.Context(), sub)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					httputil.RespondError(w, http.StatusNotFound, "site not found")
					return
				}
				logger.Error("tenant lookup failed", "subdomain", sub, "error", err)
				httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if site.IsOff {
				httputil.RespondError(w, http.StatusForbidden, "site is offline")
				return
			}

			next.ServeHTTP(w, httputil.WithSite(r, site))
		})
	}
}

// SubdomainOf returns the single label before baseDomain in host, or "" for
// the primary host. "www" counts as the primary host.
func SubdomainOf(host, baseDomain string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	baseDomain = strings.ToLower(baseDomain)

	if host == baseDomain || !strings.HasSuffix(host, "."+baseDomain) {
		return ""
	}
	sub := strings.TrimSuffix(host, "."+baseDomain)
	if sub == "" || sub == "www" || strings.Contains(sub, ".") {
		return ""
	}
	return sub
}
