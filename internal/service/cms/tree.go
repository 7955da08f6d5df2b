package cms

import (
	"context"
	"sort"

	models "inkstand/internal/domain/models/cms"
)

// GetTree builds the nested folder/article forest of a tenant.
// On the primary host the forest is the viewer's own; anonymous viewers get
// an empty forest there.
func (s *itemService) GetTree(ctx context.Context, siteID *string, viewerID string) ([]*models.TreeNode, error) {
	if siteID == nil && viewerID == "" {
		return []*models.TreeNode{}, nil
	}

	nodes, err := s.nodeRepo.ListTenant(ctx, siteID, viewerID)
	if err != nil {
		return nil, err
	}

	forest := BuildForest(nodes)
	s.logger.Debug("tree built", "site_id", siteID, "nodes", len(nodes), "roots", len(forest))
	return forest, nil
}

// BuildForest assembles nodes into a forest using a 3-pass algorithm:
// create every tree node, attach each to its parent folder (or the root list
// when the parent is missing or not a folder), then sort every sibling group by
// order. Sorting is stable; on equal order folders come first.
func BuildForest(nodes []models.Node) []*models.TreeNode {
	byID := make(map[string]*models.TreeNode, len(nodes))

	// First pass: create all tree nodes
	for _, n := range nodes {
		tn := &models.TreeNode{
			ID:       n.ID,
			Kind:     n.Kind,
			Name:     n.Name,
			ParentID: n.ParentID,
			Order:    n.Order,
		}
		if n.Kind == models.KindFolder {
			tn.Children = []*models.TreeNode{}
		}
		byID[n.ID] = tn
	}

	// Second pass: attach children in input order
	roots := []*models.TreeNode{}
	for _, n := range nodes {
		tn := byID[n.ID]
		if n.ParentID != nil && *n.ParentID != n.ID {
			if parent, ok := byID[*n.ParentID]; ok && parent.Kind == models.KindFolder {
				parent.Children = append(parent.Children, tn)
				continue
			}
		}
		roots = append(roots, tn)
	}

	// Third pass: sort every sibling group, iteratively
	stack := [][]*models.TreeNode{roots}
	for len(stack) > 0 {
		group := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		sortSiblings(group)
		for _, tn := range group {
			if len(tn.Children) > 0 {
				stack = append(stack, tn.Children)
			}
		}
	}

	return roots
}

func sortSiblings(group []*models.TreeNode) {
	sort.SliceStable(group, func(i, j int) bool {
		if group[i].Order != group[j].Order {
			return group[i].Order < group[j].Order
		}
		return group[i].Kind == models.KindFolder && group[j].Kind != models.KindFolder
	})
}
