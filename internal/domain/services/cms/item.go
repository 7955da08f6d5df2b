package cms

import (
	"context"

	models "inkstand/internal/domain/models/cms"
)

// ItemService maintains the folder/article tree of a tenant
type ItemService interface {
	// AddItem inserts a folder or article at rank 0 of its sibling group
	AddItem(ctx context.Context, req *AddItemRequest) (*models.Node, error)

	// GetTree returns the tenant's forest with every sibling group in order
	GetTree(ctx context.Context, siteID *string, viewerID string) ([]*models.TreeNode, error)

	// GetItem returns one folder without tree assembly
	GetItem(ctx context.Context, id string, siteID *string, viewerID string) (*models.Node, error)

	// Rename changes a folder's name or an article's title
	Rename(ctx context.Context, req *RenameRequest) (*models.Node, error)

	// UpdateDescription sets a folder's description
	UpdateDescription(ctx context.Context, req *UpdateDescriptionRequest) (*models.Node, error)

	// Delete removes a node; folders take their whole subtree with them
	Delete(ctx context.Context, req *DeleteItemRequest) error

	// Reorder moves a node under NewParentID at DropRank
	Reorder(ctx context.Context, req *ReorderRequest) ([]models.Node, error)
}

// AddItemRequest represents an item creation request
type AddItemRequest struct {
	UserID   string          `json:"-"`
	SiteID   *string         `json:"-"`
	Name     string          `json:"name"`
	Kind     models.NodeKind `json:"type"`
	ParentID *string         `json:"parentFolderId,omitempty"` // null for root (folders only)
	Tags     []models.TagRef `json:"tags,omitempty"`           // articles only
}

// RenameRequest represents a rename request
type RenameRequest struct {
	UserID string          `json:"-"`
	SiteID *string         `json:"-"`
	ID     string          `json:"folderId"`
	Kind   models.NodeKind `json:"type"`
	Name   string          `json:"newName"`
}

// UpdateDescriptionRequest represents a folder description update
type UpdateDescriptionRequest struct {
	UserID      string  `json:"-"`
	SiteID      *string `json:"-"`
	ID          string  `json:"folderId"`
	Description string  `json:"newDesc"`
}

// DeleteItemRequest represents a delete request
type DeleteItemRequest struct {
	UserID string
	SiteID *string
	ID     string
	Kind   models.NodeKind
}

// ReorderRequest represents a drag-and-drop move
type ReorderRequest struct {
	UserID      string          `json:"-"`
	SiteID      *string         `json:"-"`
	ID          string          `json:"itemId"`
	Kind        models.NodeKind `json:"type"`
	NewParentID *string         `json:"newParentFolderId"` // null for root
	DropRank    int             `json:"dropOrder"`
}
