package handler

import (
	"log/slog"
	"net/http"

	"inkstand/internal/domain"
	models "inkstand/internal/domain/models/cms"
	cmsSvc "inkstand/internal/domain/services/cms"
	"inkstand/internal/httputil"
)

// FolderHandler handles the folder/article tree endpoints
type FolderHandler struct {
	itemService cmsSvc.ItemService
	logger      *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(itemService cmsSvc.ItemService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		itemService: itemService,
		logger:      logger,
	}
}

// GetFolders returns the tenant's tree, or one folder when ?id= is given
// GET /api/folder
func (h *FolderHandler) GetFolders(w http.ResponseWriter, r *http.Request) {
	if id := queryParam(r, "id"); id != "" {
		node, err := h.itemService.GetItem(r.Context(), id, httputil.GetSiteID(r), httputil.GetUserID(r))
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
		httputil.RespondOK(w, http.StatusOK, "ok", node)
		return
	}

	tree, err := h.itemService.GetTree(r.Context(), httputil.GetSiteID(r), httputil.GetUserID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "ok", tree)
}

// AddItem creates a folder or article at the top of its parent
// POST /api/folder
func (h *FolderHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req cmsSvc.AddItemRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	req.UserID = httputil.GetUserID(r)
	req.SiteID = httputil.GetSiteID(r)

	node, err := h.itemService.AddItem(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusCreated, string(node.Kind)+" created", node)
}

// DeleteItem deletes a folder (with its subtree) or an article
// DELETE /api/folder?itemId=&type=
func (h *FolderHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	req := cmsSvc.DeleteItemRequest{
		UserID: httputil.GetUserID(r),
		SiteID: httputil.GetSiteID(r),
		ID:     queryParam(r, "itemId"),
		Kind:   models.NodeKind(queryParam(r, "type")),
	}

	if err := h.itemService.Delete(r.Context(), &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, string(req.Kind)+" deleted", nil)
}

// Rename renames a folder or retitles an article
// PATCH /api/folder/name
func (h *FolderHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req cmsSvc.RenameRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	req.UserID = httputil.GetUserID(r)
	req.SiteID = httputil.GetSiteID(r)

	node, err := h.itemService.Rename(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "renamed", node)
}

type updateDescBody struct {
	FolderID string                  `json:"folderId"`
	NewDesc  httputil.OptionalString `json:"newDesc"`
}

// UpdateDescription sets (or, with null, clears) a folder's description
// PATCH /api/folder/desc
func (h *FolderHandler) UpdateDescription(w http.ResponseWriter, r *http.Request) {
	var body updateDescBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		handleError(w, h.logger, err)
		return
	}
	if !body.NewDesc.Present {
		handleError(w, h.logger, &domain.ValidationError{Message: "newDesc is required"})
		return
	}

	req := cmsSvc.UpdateDescriptionRequest{
		UserID: httputil.GetUserID(r),
		SiteID: httputil.GetSiteID(r),
		ID:     body.FolderID,
	}
	if body.NewDesc.Value != nil {
		req.Description = *body.NewDesc.Value
	}

	node, err := h.itemService.UpdateDescription(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "description updated", node)
}

type reorderBody struct {
	ItemID            string                  `json:"itemId"`
	Type              models.NodeKind         `json:"type"`
	DropOrder         *int                    `json:"dropOrder"`
	NewParentFolderID httputil.OptionalString `json:"newParentFolderId"`
}

// Reorder moves an item to a new parent and rank
// PATCH /api/folder/order
func (h *FolderHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var body reorderBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		handleError(w, h.logger, err)
		return
	}
	if body.DropOrder == nil {
		handleError(w, h.logger, &domain.ValidationError{Message: "dropOrder is required"})
		return
	}
	if !body.NewParentFolderID.Present {
		handleError(w, h.logger, &domain.ValidationError{Message: "newParentFolderId is required (null for the root)"})
		return
	}

	req := cmsSvc.ReorderRequest{
		UserID:      httputil.GetUserID(r),
		SiteID:      httputil.GetSiteID(r),
		ID:          body.ItemID,
		Kind:        body.Type,
		NewParentID: body.NewParentFolderID.Value,
		DropRank:    *body.DropOrder,
	}

	siblings, err := h.itemService.Reorder(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, "order updated", siblings)
}
