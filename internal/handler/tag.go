package handler

import (
	"log/slog"
	"net/http"

	cmsSvc "inkstand/internal/domain/services/cms"
	"inkstand/internal/httputil"
)

// TagHandler handles tag endpoints
type TagHandler struct {
	tagService cmsSvc.TagService
	logger     *slog.Logger
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tagService cmsSvc.TagService, logger *slog.Logger) *TagHandler {
	return &TagHandler{
		tagService: tagService,
		logger:     logger,
	}
}

// ListTags GET /api/tag
func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tagService.ListTags(r.Context(), httputil.GetSiteID(r), httputil.GetUserID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "ok", tags)
}

// CreateTag POST /api/tag
func (h *TagHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req cmsSvc.CreateTagRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	req.UserID = httputil.GetUserID(r)
	req.SiteID = httputil.GetSiteID(r)

	tag, err := h.tagService.CreateTag(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusCreated, "tag created", tag)
}

// DeleteTag DELETE /api/tag?id=
func (h *TagHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := h.tagService.DeleteTag(r.Context(), httputil.GetUserID(r), queryParam(r, "id")); err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "tag deleted", nil)
}
