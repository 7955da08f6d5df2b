package handler

import (
	"log/slog"
	"net/http"

	"inkstand/internal/domain"
	cmsSvc "inkstand/internal/domain/services/cms"
	"inkstand/internal/httputil"
)

// SiteHandler handles tenant site endpoints
type SiteHandler struct {
	siteService cmsSvc.SiteService
	logger      *slog.Logger
}

// NewSiteHandler creates a new site handler
func NewSiteHandler(siteService cmsSvc.SiteService, logger *slog.Logger) *SiteHandler {
	return &SiteHandler{
		siteService: siteService,
		logger:      logger,
	}
}

// InitSite creates the caller's site
// POST /api/site/init
func (h *SiteHandler) InitSite(w http.ResponseWriter, r *http.Request) {
	var req cmsSvc.CreateSiteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	req.UserID = httputil.GetUserID(r)

	site, err := h.siteService.CreateSite(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusCreated, "site created", site)
}

type checkSubdomainBody struct {
	Subdomain string `json:"subdomain"`
}

// CheckSubdomain reports whether a subdomain can be claimed
// POST /api/site/check
func (h *SiteHandler) CheckSubdomain(w http.ResponseWriter, r *http.Request) {
	var body checkSubdomainBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		handleError(w, h.logger, err)
		return
	}

	available, err := h.siteService.CheckSubdomain(r.Context(), body.Subdomain)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	message := "subdomain available"
	if !available {
		message = "subdomain is already taken"
	}
	httputil.RespondOK(w, http.StatusOK, message, map[string]bool{"available": available})
}

// GetSite returns the current tenant's site, or ?id= on the primary host
// GET /api/site
func (h *SiteHandler) GetSite(w http.ResponseWriter, r *http.Request) {
	if site := httputil.GetSite(r); site != nil {
		httputil.RespondOK(w, http.StatusOK, "ok", site)
		return
	}

	id := queryParam(r, "id")
	if id == "" {
		handleError(w, h.logger, &domain.NotFoundError{Message: "no site on this host"})
		return
	}
	site, err := h.siteService.GetSite(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "ok", site)
}

// UpdateSite edits the current tenant's site (or ?id= on the primary host)
// PUT /api/site
func (h *SiteHandler) UpdateSite(w http.ResponseWriter, r *http.Request) {
	var req cmsSvc.UpdateSiteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	req.UserID = httputil.GetUserID(r)
	if site := httputil.GetSite(r); site != nil {
		req.ID = site.ID
	} else {
		req.ID = queryParam(r, "id")
	}

	site, err := h.siteService.UpdateSite(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "site updated", site)
}

// ListSites lists the caller's sites
// GET /api/site/list
func (h *SiteHandler) ListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := h.siteService.ListSites(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "ok", sites)
}
