package handler

import (
	"log/slog"
	"net/http"

	"inkstand/internal/config"
	cmsSvc "inkstand/internal/domain/services/cms"
	"inkstand/internal/httputil"
)

// DiaryHandler handles journal endpoints
type DiaryHandler struct {
	diaryService cmsSvc.DiaryService
	logger       *slog.Logger
}

// NewDiaryHandler creates a new diary handler
func NewDiaryHandler(diaryService cmsSvc.DiaryService, logger *slog.Logger) *DiaryHandler {
	return &DiaryHandler{
		diaryService: diaryService,
		logger:       logger,
	}
}

// CreateDiary POST /api/diary
func (h *DiaryHandler) CreateDiary(w http.ResponseWriter, r *http.Request) {
	var req cmsSvc.CreateDiaryRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	req.UserID = httputil.GetUserID(r)
	req.SiteID = httputil.GetSiteID(r)

	diary, err := h.diaryService.CreateDiary(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusCreated, "diary created", diary)
}

// UpdateDiary PUT /api/diary
func (h *DiaryHandler) UpdateDiary(w http.ResponseWriter, r *http.Request) {
	var req cmsSvc.UpdateDiaryRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	req.UserID = httputil.GetUserID(r)
	req.SiteID = httputil.GetSiteID(r)

	diary, err := h.diaryService.UpdateDiary(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "diary updated", diary)
}

// GetDiary GET /api/diary/content?id=
func (h *DiaryHandler) GetDiary(w http.ResponseWriter, r *http.Request) {
	diary, err := h.diaryService.GetDiary(r.Context(), queryParam(r, "id"), httputil.GetSiteID(r), httputil.GetUserID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "ok", diary)
}

// ListDiaries GET /api/diary/list?pageNumber=&pageSize=
func (h *DiaryHandler) ListDiaries(w http.ResponseWriter, r *http.Request) {
	page, err := httputil.QueryInt(r, "pageNumber", 1)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	size, err := httputil.QueryInt(r, "pageSize", config.DefaultPageSize)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	result, err := h.diaryService.ListDiaries(r.Context(), &cmsSvc.ListDiariesRequest{
		SiteID:   httputil.GetSiteID(r),
		ViewerID: httputil.GetUserID(r),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "ok", result)
}

// ListDates GET /api/diary/date
func (h *DiaryHandler) ListDates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.diaryService.ListDates(r.Context(), httputil.GetSiteID(r), httputil.GetUserID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "ok", dates)
}

// ListByDate GET /api/diary?date=YYYY-MM-DD
func (h *DiaryHandler) ListByDate(w http.ResponseWriter, r *http.Request) {
	diaries, err := h.diaryService.ListByDate(r.Context(), httputil.GetSiteID(r), httputil.GetUserID(r), queryParam(r, "date"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "ok", diaries)
}

// Timeline GET /api/diary/timeline
func (h *DiaryHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	months, err := h.diaryService.Timeline(r.Context(), httputil.GetSiteID(r), httputil.GetUserID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "ok", months)
}
