package cms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"inkstand/internal/config"
	"inkstand/internal/domain"
	models "inkstand/internal/domain/models/cms"
	"inkstand/internal/domain/repositories"
	cmsRepo "inkstand/internal/domain/repositories/cms"
	"inkstand/internal/domain/services"
	cmsSvc "inkstand/internal/domain/services/cms"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// maxRelockAttempts bounds lockCurrent when a node keeps moving under it
const maxRelockAttempts = 3

type itemService struct {
	nodeRepo   cmsRepo.NodeRepository
	tagService cmsSvc.TagService
	txManager  repositories.TransactionManager
	authorizer services.ResourceAuthorizer
	logger     *slog.Logger
}

// NewItemService creates a new item service
func NewItemService(
	nodeRepo cmsRepo.NodeRepository,
	tagService cmsSvc.TagService,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) cmsSvc.ItemService {
	return &itemService{
		nodeRepo:   nodeRepo,
		tagService: tagService,
		txManager:  txManager,
		authorizer: authorizer,
		logger:     logger,
	}
}

// AddItem creates a folder or article at rank 0 of its sibling group,
// shifting every existing sibling down by one.
func (s *itemService) AddItem(ctx context.Context, req *cmsSvc.AddItemRequest) (*models.Node, error) {
	req.ParentID = normalizeParent(req.ParentID)
	if err := s.validateAddRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	name := strings.TrimSpace(req.Name)

	if err := s.authorizer.CanManageSite(ctx, req.UserID, req.SiteID); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := s.nodeRepo.GetByID(ctx, *req.ParentID, req.SiteID)
		if err != nil {
			return nil, err
		}
		if !parent.IsFolder() {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", *req.ParentID)}
		}
		if err := s.authorizer.CanModifyNode(ctx, req.UserID, parent); err != nil {
			return nil, err
		}
	}

	node := &models.Node{
		Kind:      req.Kind,
		SiteID:    req.SiteID,
		CreatorID: req.UserID,
		ParentID:  req.ParentID,
		Name:      name,
		Order:     0,
	}
	if node.Kind == models.KindArticle {
		summary, err := models.Summarize(models.PlaceholderContent, config.SummaryBlockCount)
		if err != nil {
			return nil, fmt.Errorf("summarize placeholder: %w", err)
		}
		node.Content = models.PlaceholderContent
		node.Summary = summary
	}

	scope := models.ScopeOf(node)
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.nodeRepo.LockSiblings(ctx, scope); err != nil {
			return err
		}
		if err := s.checkNameFree(ctx, scope, node.Kind, name, ""); err != nil {
			return err
		}

		if node.Kind == models.KindArticle {
			tagIDs, err := s.tagService.ResolveTags(ctx, req.UserID, req.SiteID, req.Tags)
			if err != nil {
				return err
			}
			node.TagIDs = tagIDs
		}

		if err := s.nodeRepo.ShiftSiblings(ctx, scope, 1); err != nil {
			return err
		}
		return s.nodeRepo.Create(ctx, node)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("item created",
		"id", node.ID,
		"type", node.Kind,
		"name", node.Name,
		"site_id", node.SiteID,
		"parent_id", node.ParentID,
	)

	return node, nil
}

// GetItem returns one folder's detail record. On the primary host only the
// viewer's own folders are visible, matching GetTree.
func (s *itemService) GetItem(ctx context.Context, id string, siteID *string, viewerID string) (*models.Node, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &domain.ValidationError{Message: "id is required"}
	}
	node, err := s.nodeRepo.GetByID(ctx, id, siteID)
	if err != nil {
		return nil, err
	}
	if !node.IsFolder() || (siteID == nil && node.CreatorID != viewerID) {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", id)}
	}
	return node, nil
}

// Rename changes a node's name. Renaming to the current name is a no-op.
func (s *itemService) Rename(ctx context.Context, req *cmsSvc.RenameRequest) (*models.Node, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.ID, validation.Required),
		validation.Field(&req.Kind, validation.Required, kindRule),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxNodeNameLength),
			notBlank,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	name := strings.TrimSpace(req.Name)

	node, err := s.loadOwned(ctx, req.UserID, req.ID, req.Kind, req.SiteID)
	if err != nil {
		return nil, err
	}
	if node.Name == name {
		return node, nil
	}

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		current, err := s.lockCurrent(ctx, node)
		if err != nil {
			return err
		}
		if err := s.checkNameFree(ctx, models.ScopeOf(current), current.Kind, name, current.ID); err != nil {
			return err
		}
		node, err = s.nodeRepo.Update(ctx, current.ID, models.NodePatch{Name: &name})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("item renamed", "id", node.ID, "type", node.Kind, "name", node.Name)
	return node, nil
}

// UpdateDescription sets a folder's description
func (s *itemService) UpdateDescription(ctx context.Context, req *cmsSvc.UpdateDescriptionRequest) (*models.Node, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.ID, validation.Required),
		validation.Field(&req.Description, validation.Length(0, config.MaxFolderDescriptionLength)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	node, err := s.loadOwned(ctx, req.UserID, req.ID, models.KindFolder, req.SiteID)
	if err != nil {
		return nil, err
	}

	node, err = s.nodeRepo.Update(ctx, node.ID, models.NodePatch{Description: &req.Description})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("folder description updated", "id", node.ID)
	return node, nil
}

// Delete removes a node. A folder takes every descendant folder and article
// with it. The deleted node's former sibling group is renumbered 0..n-1.
func (s *itemService) Delete(ctx context.Context, req *cmsSvc.DeleteItemRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.ID, validation.Required),
		validation.Field(&req.Kind, validation.Required, kindRule),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	node, err := s.loadOwned(ctx, req.UserID, req.ID, req.Kind, req.SiteID)
	if err != nil {
		return err
	}

	var deleted []string
	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		current, err := s.lockCurrent(ctx, node)
		if err != nil {
			return err
		}
		node = current

		deleted = []string{node.ID}
		if node.IsFolder() {
			ids, err := s.collectSubtree(ctx, node.ID)
			if err != nil {
				return err
			}
			deleted = ids
		}

		if err := s.nodeRepo.DeleteMany(ctx, deleted); err != nil {
			return err
		}
		return s.compact(ctx, models.ScopeOf(node))
	})
	if err != nil {
		return err
	}

	s.logger.Info("item deleted",
		"id", node.ID,
		"type", node.Kind,
		"removed", len(deleted),
	)
	return nil
}

// Reorder moves a node to NewParentID and places it at DropRank.
//
// The node is first reparented (entering a new group at its tail), then removed
// from and reinserted into the sorted sibling list. A drop rank past the node's
// current position is reduced by one, since removing the node shifts later
// entries up. Ranks past the end append. Every sibling is then renumbered.
func (s *itemService) Reorder(ctx context.Context, req *cmsSvc.ReorderRequest) ([]models.Node, error) {
	req.NewParentID = normalizeParent(req.NewParentID)
	err := validation.ValidateStruct(req,
		validation.Field(&req.ID, validation.Required),
		validation.Field(&req.Kind, validation.Required, kindRule),
		validation.Field(&req.DropRank, validation.Min(0)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	node, err := s.loadOwned(ctx, req.UserID, req.ID, req.Kind, req.SiteID)
	if err != nil {
		return nil, err
	}

	if req.NewParentID == nil && node.Kind == models.KindArticle {
		return nil, &domain.ValidationError{Message: "articles must stay inside a folder"}
	}
	if req.NewParentID != nil {
		parent, err := s.nodeRepo.GetByID(ctx, *req.NewParentID, req.SiteID)
		if err != nil {
			return nil, err
		}
		if !parent.IsFolder() {
			return nil, &domain.ValidationError{Message: "items can only be moved into a folder"}
		}
		if err := s.authorizer.CanModifyNode(ctx, req.UserID, parent); err != nil {
			return nil, err
		}
	}

	newScope := models.ScopeOf(node)
	newScope.ParentID = req.NewParentID

	var ordered []models.Node
	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		current, err := s.lockCurrent(ctx, node, newScope)
		if err != nil {
			return err
		}
		node = current
		oldScope := models.ScopeOf(node)
		parentChanged := !sameParent(node.ParentID, req.NewParentID)

		if parentChanged {
			if node.IsFolder() && req.NewParentID != nil {
				if err := s.validateNoCircularReference(ctx, node.ID, *req.NewParentID, req.SiteID); err != nil {
					return err
				}
			}
			if err := s.checkNameFree(ctx, newScope, node.Kind, node.Name, node.ID); err != nil {
				return err
			}
			group, err := s.nodeRepo.ListSiblings(ctx, newScope)
			if err != nil {
				return err
			}
			if err := s.nodeRepo.Move(ctx, node.ID, req.NewParentID, len(group)); err != nil {
				return err
			}
		}

		siblings, err := s.nodeRepo.ListSiblings(ctx, newScope)
		if err != nil {
			return err
		}
		ordered = placeAt(siblings, node.ID, req.DropRank)
		if err := s.nodeRepo.SetOrders(ctx, orderMap(ordered)); err != nil {
			return err
		}

		if parentChanged {
			return s.compact(ctx, oldScope)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("item moved",
		"id", node.ID,
		"type", node.Kind,
		"parent_id", req.NewParentID,
		"drop_rank", req.DropRank,
	)
	return ordered, nil
}

func (s *itemService) validateAddRequest(req *cmsSvc.AddItemRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxNodeNameLength),
			notBlank,
		),
		validation.Field(&req.Kind, validation.Required, kindRule),
		validation.Field(&req.ParentID,
			validation.When(req.Kind == models.KindArticle,
				validation.Required.Error("articles must be created inside a folder")),
		),
	)
}

// loadOwned fetches a node of the expected kind and checks the caller created it
func (s *itemService) loadOwned(ctx context.Context, userID, id string, kind models.NodeKind, siteID *string) (*models.Node, error) {
	node, err := s.nodeRepo.GetByID(ctx, id, siteID)
	if err != nil {
		return nil, err
	}
	if node.Kind != kind {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("%s %s not found", kind, id)}
	}
	if err := s.authorizer.CanModifyNode(ctx, userID, node); err != nil {
		return nil, err
	}
	return node, nil
}

// checkNameFree returns a ConflictError if a same-kind sibling other than selfID has name
func (s *itemService) checkNameFree(ctx context.Context, scope models.SiblingScope, kind models.NodeKind, name, selfID string) error {
	existing, err := s.nodeRepo.FindSiblingByName(ctx, scope, kind, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID == selfID {
		return nil
	}
	return &domain.ConflictError{
		Message:      fmt.Sprintf("a %s named %q already exists in this location", kind, name),
		ResourceType: string(kind),
		ResourceID:   existing.ID,
	}
}

// lockCurrent locks the sibling group node is in, plus any extra groups, and
// rereads node under those locks. If a concurrent move changed its parent
// since node was read, the new group is locked and the read repeated.
func (s *itemService) lockCurrent(ctx context.Context, node *models.Node, extra ...models.SiblingScope) (*models.Node, error) {
	seen := node
	for attempt := 0; attempt < maxRelockAttempts; attempt++ {
		scopes := append([]models.SiblingScope{models.ScopeOf(seen)}, extra...)
		if err := s.lockScopes(ctx, scopes...); err != nil {
			return nil, err
		}
		fresh, err := s.nodeRepo.GetByID(ctx, seen.ID, seen.SiteID)
		if err != nil {
			return nil, err
		}
		if sameParent(fresh.ParentID, seen.ParentID) {
			return fresh, nil
		}
		seen = fresh
	}
	return nil, &domain.ConflictError{
		Message:      fmt.Sprintf("%s %s is being moved, try again", node.Kind, node.ID),
		ResourceType: string(node.Kind),
		ResourceID:   node.ID,
	}
}

// lockScopes locks sibling groups in key order so concurrent moves cannot deadlock
func (s *itemService) lockScopes(ctx context.Context, scopes ...models.SiblingScope) error {
	sort.Slice(scopes, func(i, j int) bool { return scopes[i].Key() < scopes[j].Key() })
	var last string
	for i, scope := range scopes {
		key := scope.Key()
		if i > 0 && key == last {
			continue
		}
		if err := s.nodeRepo.LockSiblings(ctx, scope); err != nil {
			return err
		}
		last = key
	}
	return nil
}

// compact renumbers a sibling group to 0..n-1, keeping its current order
func (s *itemService) compact(ctx context.Context, scope models.SiblingScope) error {
	siblings, err := s.nodeRepo.ListSiblings(ctx, scope)
	if err != nil {
		return err
	}
	changed := make(map[string]int)
	for i, sib := range siblings {
		if sib.Order != i {
			changed[sib.ID] = i
		}
	}
	return s.nodeRepo.SetOrders(ctx, changed)
}

// collectSubtree returns rootID and every descendant, deepest first.
// Uses an explicit worklist and a visited set so a corrupted parent chain
// cannot loop.
func (s *itemService) collectSubtree(ctx context.Context, rootID string) ([]string, error) {
	visited := map[string]bool{rootID: true}
	order := []string{rootID}
	queue := []string{rootID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		children, err := s.nodeRepo.ListChildIDs(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("list descendants of %s: %w", current, err)
		}
		for _, id := range children {
			if visited[id] {
				continue
			}
			visited[id] = true
			order = append(order, id)
			queue = append(queue, id)
		}
	}

	// breadth-first order reversed: children always precede their parent
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order, nil
}

// validateNoCircularReference ensures moving a folder won't create circular references
func (s *itemService) validateNoCircularReference(ctx context.Context, folderID, newParentID string, siteID *string) error {
	if folderID == newParentID {
		return &domain.ValidationError{Message: "cannot move folder into itself"}
	}

	seen := map[string]bool{}
	currentID := newParentID
	for !seen[currentID] {
		seen[currentID] = true

		parent, err := s.nodeRepo.GetByID(ctx, currentID, siteID)
		if err != nil {
			return err
		}
		if parent.ParentID == nil {
			return nil
		}
		if *parent.ParentID == folderID {
			return &domain.ValidationError{Message: "cannot move folder into its own subfolder"}
		}
		currentID = *parent.ParentID
	}

	return &domain.ValidationError{Message: "folder hierarchy contains a cycle"}
}

// placeAt removes id from siblings and reinserts it at dropRank, adjusted for
// the removal, then renumbers every entry to its index.
func placeAt(siblings []models.Node, id string, dropRank int) []models.Node {
	original := -1
	for i := range siblings {
		if siblings[i].ID == id {
			original = i
			break
		}
	}
	if original < 0 {
		return renumber(append([]models.Node(nil), siblings...))
	}

	adjusted := dropRank
	if dropRank > original {
		adjusted = dropRank - 1
	}

	moved := siblings[original]
	rest := make([]models.Node, 0, len(siblings))
	rest = append(rest, siblings[:original]...)
	rest = append(rest, siblings[original+1:]...)
	if adjusted > len(rest) {
		adjusted = len(rest)
	}

	result := make([]models.Node, 0, len(siblings))
	result = append(result, rest[:adjusted]...)
	result = append(result, moved)
	result = append(result, rest[adjusted:]...)
	return renumber(result)
}

func renumber(nodes []models.Node) []models.Node {
	for i := range nodes {
		nodes[i].Order = i
	}
	return nodes
}

func orderMap(nodes []models.Node) map[string]int {
	orders := make(map[string]int, len(nodes))
	for _, n := range nodes {
		orders[n.ID] = n.Order
	}
	return orders
}
