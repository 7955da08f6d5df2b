package handler

import (
	"log/slog"
	"net/http"

	cmsSvc "inkstand/internal/domain/services/cms"
	"inkstand/internal/httputil"
)

// VisitHandler records page views and serves the owner's statistics
type VisitHandler struct {
	visitService cmsSvc.VisitService
	logger       *slog.Logger
}

// NewVisitHandler creates a new visit handler
func NewVisitHandler(visitService cmsSvc.VisitService, logger *slog.Logger) *VisitHandler {
	return &VisitHandler{
		visitService: visitService,
		logger:       logger,
	}
}

// RecordVisit POST /api/site/visit
// An empty body records a view of "/".
func (h *VisitHandler) RecordVisit(w http.ResponseWriter, r *http.Request) {
	var req cmsSvc.RecordVisitRequest
	if r.ContentLength != 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			handleError(w, h.logger, err)
			return
		}
	}
	req.SiteID = httputil.GetSiteID(r)
	req.IP = httputil.ClientIP(r)
	req.UserAgent = r.UserAgent()
	req.Referer = r.Referer()

	if err := h.visitService.RecordVisit(r.Context(), &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "visit recorded", nil)
}

// GetStats GET /api/site/visit/stats?startDate=&endDate=
func (h *VisitHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.visitService.GetStats(r.Context(), &cmsSvc.VisitStatsRequest{
		UserID:    httputil.GetUserID(r),
		SiteID:    httputil.GetSiteID(r),
		StartDate: queryParam(r, "startDate"),
		EndDate:   queryParam(r, "endDate"),
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "ok", stats)
}

// GetRealtime GET /api/site/visit/realtime
func (h *VisitHandler) GetRealtime(w http.ResponseWriter, r *http.Request) {
	realtime, err := h.visitService.GetRealtime(r.Context(), httputil.GetUserID(r), httputil.GetSiteID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "ok", realtime)
}
