package handler

import (
	"log/slog"
	"net/http"

	"inkstand/internal/config"
	cmsSvc "inkstand/internal/domain/services/cms"
	"inkstand/internal/httputil"
)

// ArticleHandler handles article content, tags and listings
type ArticleHandler struct {
	articleService cmsSvc.ArticleService
	logger         *slog.Logger
}

// NewArticleHandler creates a new article handler
func NewArticleHandler(articleService cmsSvc.ArticleService, logger *slog.Logger) *ArticleHandler {
	return &ArticleHandler{
		articleService: articleService,
		logger:         logger,
	}
}

// GetArticle returns one article with content and tags
// GET /api/article?id=
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	article, err := h.articleService.GetArticle(r.Context(), queryParam(r, "id"), httputil.GetSiteID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "ok", article)
}

// ListArticles returns a page of articles, newest first
// GET /api/article/list?pageNumber=&limitNumber=
func (h *ArticleHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	page, err := httputil.QueryInt(r, "pageNumber", 1)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	size, err := httputil.QueryInt(r, "limitNumber", config.DefaultPageSize)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	result, err := h.articleService.ListArticles(r.Context(), &cmsSvc.ListArticlesRequest{
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

// UpdateContent replaces an article body
// PUT /api/article/content
func (h *ArticleHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	var req cmsSvc.UpdateContentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	req.UserID = httputil.GetUserID(r)
	req.SiteID = httputil.GetSiteID(r)

	article, err := h.articleService.UpdateContent(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "content saved", article)
}

// UpdateTags replaces an article's tags
// PUT /api/article/tags
func (h *ArticleHandler) UpdateTags(w http.ResponseWriter, r *http.Request) {
	var req cmsSvc.UpdateTagsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	req.UserID = httputil.GetUserID(r)
	req.SiteID = httputil.GetSiteID(r)

	article, err := h.articleService.UpdateTags(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "tags updated", article)
}
