package cms

import (
	"context"

	models "inkstand/internal/domain/models/cms"
)

// NodeRepository defines data access operations for folders and articles
type NodeRepository interface {
	// Create inserts a node and fills in ID and timestamps
	Create(ctx context.Context, node *models.Node) error

	// GetByID returns a node inside the given tenant (nil siteID = primary host).
	// Returns domain.ErrNotFound if the node is absent or belongs to another tenant.
	GetByID(ctx context.Context, id string, siteID *string) (*models.Node, error)

	// Update writes the patched content fields of a node and returns the stored
	// row. It never touches parent or order.
	Update(ctx context.Context, id string, patch models.NodePatch) (*models.Node, error)

	// Move sets a node's parent and order. Callers hold the locks of both the
	// old and the new sibling group.
	Move(ctx context.Context, id string, parentID *string, order int) error

	// DeleteMany removes the given nodes
	DeleteMany(ctx context.Context, ids []string) error

	// ListSiblings returns one sibling group ordered by sort_order, folders first on ties
	ListSiblings(ctx context.Context, scope models.SiblingScope) ([]models.Node, error)

	// ShiftSiblings adds delta to the order of every node in scope
	ShiftSiblings(ctx context.Context, scope models.SiblingScope, delta int) error

	// SetOrders writes order values by node ID
	SetOrders(ctx context.Context, orders map[string]int) error

	// LockSiblings serializes writers of one sibling group until the current
	// transaction ends. Must be called inside TransactionManager.ExecTx.
	LockSiblings(ctx context.Context, scope models.SiblingScope) error

	// FindSiblingByName returns a node of the given kind named name in scope,
	// or domain.ErrNotFound.
	FindSiblingByName(ctx context.Context, scope models.SiblingScope, kind models.NodeKind, name string) (*models.Node, error)

	// ListChildIDs returns the IDs of all direct children of parentID
	ListChildIDs(ctx context.Context, parentID string) ([]string, error)

	// ListTenant returns every node of a tenant. On the primary host (nil
	// siteID) the listing is restricted to creatorID.
	ListTenant(ctx context.Context, siteID *string, creatorID string) ([]models.Node, error)

	// ListArticles returns a page of a tenant's articles, newest first, and the total count
	ListArticles(ctx context.Context, siteID *string, creatorID string, offset, limit int) ([]models.Node, int, error)
}
