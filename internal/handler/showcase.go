package handler

import (
	"log/slog"
	"net/http"

	cmsSvc "inkstand/internal/domain/services/cms"
	"inkstand/internal/httputil"
)

// ShowcaseHandler handles the home page carousel and project endpoints
type ShowcaseHandler struct {
	showcaseService cmsSvc.ShowcaseService
	logger          *slog.Logger
}

// NewShowcaseHandler creates a new showcase handler
func NewShowcaseHandler(showcaseService cmsSvc.ShowcaseService, logger *slog.Logger) *ShowcaseHandler {
	return &ShowcaseHandler{
		showcaseService: showcaseService,
		logger:          logger,
	}
}

// ListCarousels GET /api/base/carousel
func (h *ShowcaseHandler) ListCarousels(w http.ResponseWriter, r *http.Request) {
	carousels, err := h.showcaseService.ListCarousels(r.Context(), httputil.GetSiteID(r), httputil.GetUserID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "ok", carousels)
}

// CreateCarousel POST /api/base/carousel
func (h *ShowcaseHandler) CreateCarousel(w http.ResponseWriter, r *http.Request) {
	var req cmsSvc.CreateCarouselRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	req.UserID = httputil.GetUserID(r)
	req.SiteID = httputil.GetSiteID(r)

	carousel, err := h.showcaseService.CreateCarousel(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusCreated, "carousel created", carousel)
}

// UpdateCarousel PUT /api/base/carousel
func (h *ShowcaseHandler) UpdateCarousel(w http.ResponseWriter, r *http.Request) {
	var req cmsSvc.UpdateCarouselRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	req.UserID = httputil.GetUserID(r)
	req.SiteID = httputil.GetSiteID(r)

	carousel, err := h.showcaseService.UpdateCarousel(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "carousel updated", carousel)
}

// DeleteCarousel DELETE /api/base/carousel?id=
func (h *ShowcaseHandler) DeleteCarousel(w http.ResponseWriter, r *http.Request) {
	err := h.showcaseService.DeleteCarousel(r.Context(), httputil.GetUserID(r), httputil.GetSiteID(r), queryParam(r, "id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "carousel deleted", nil)
}

// ListProjects GET /api/base/project?category=
func (h *ShowcaseHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.showcaseService.ListProjects(r.Context(), httputil.GetSiteID(r), httputil.GetUserID(r), queryParam(r, "category"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "ok", projects)
}

// CreateProject POST /api/base/project
func (h *ShowcaseHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req cmsSvc.CreateProjectRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	req.UserID = httputil.GetUserID(r)
	req.SiteID = httputil.GetSiteID(r)

	project, err := h.showcaseService.CreateProject(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusCreated, "project created", project)
}

// UpdateProject PUT /api/base/project
func (h *ShowcaseHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var req cmsSvc.UpdateProjectRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	req.UserID = httputil.GetUserID(r)
	req.SiteID = httputil.GetSiteID(r)

	project, err := h.showcaseService.UpdateProject(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "project updated", project)
}

// DeleteProject DELETE /api/base/project?id=
func (h *ShowcaseHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	err := h.showcaseService.DeleteProject(r.Context(), httputil.GetUserID(r), httputil.GetSiteID(r), queryParam(r, "id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "project deleted", nil)
}

// LikeProject POST /api/base/project/like?id=
func (h *ShowcaseHandler) LikeProject(w http.ResponseWriter, r *http.Request) {
	likes, err := h.showcaseService.LikeProject(r.Context(), httputil.GetSiteID(r), queryParam(r, "id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "ok", map[string]int{"likes": likes})
}
