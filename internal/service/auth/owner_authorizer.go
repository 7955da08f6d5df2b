package auth

import (
	"context"
	"errors"
	"fmt"

	"inkstand/internal/domain"
	models "inkstand/internal/domain/models/cms"
	cmsRepo "inkstand/internal/domain/repositories/cms"
)

// OwnerBasedAuthorizer implements ResourceAuthorizer using ownership checks.
// A user can change a site they created and the nodes and tags they created.
type OwnerBasedAuthorizer struct {
	siteRepo cmsRepo.SiteRepository
}

// NewOwnerBasedAuthorizer creates a new ownership-based authorizer
func NewOwnerBasedAuthorizer(siteRepo cmsRepo.SiteRepository) *OwnerBasedAuthorizer {
	return &OwnerBasedAuthorizer{siteRepo: siteRepo}
}

// CanManageSite checks if user owns the site
func (a *OwnerBasedAuthorizer) CanManageSite(ctx context.Context, userID string, siteID *string) error {
	if siteID == nil {
		return nil
	}
	site, err := a.siteRepo.GetByID(ctx, *siteID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("site %s: %w", *siteID, domain.ErrNotFound)
		}
		return fmt.Errorf("check site access: %w", err)
	}
	if site.CreatorID != userID {
		return &domain.ForbiddenError{Message: "only the site owner can change this site"}
	}
	return nil
}

// CanModifyNode checks if user created the node
func (a *OwnerBasedAuthorizer) CanModifyNode(_ context.Context, userID string, node *models.Node) error {
	if node.CreatorID != userID {
		return &domain.ForbiddenError{Message: fmt.Sprintf("access denied to %s %s", node.Kind, node.ID)}
	}
	return nil
}

// CanModifyTag checks if user created the tag
func (a *OwnerBasedAuthorizer) CanModifyTag(_ context.Context, userID string, tag *models.Tag) error {
	if tag.CreatorID != userID {
		return &domain.ForbiddenError{Message: fmt.Sprintf("access denied to tag %s", tag.ID)}
	}
	return nil
}

// CanModifyDiary checks if user wrote the diary
func (a *OwnerBasedAuthorizer) CanModifyDiary(_ context.Context, userID string, diary *models.Diary) error {
	if diary.CreatorID != userID {
		return &domain.ForbiddenError{Message: fmt.Sprintf("access denied to diary %s", diary.ID)}
	}
	return nil
}

// CanModifyShowcase checks if user created the carousel slide or project
func (a *OwnerBasedAuthorizer) CanModifyShowcase(_ context.Context, userID, creatorID, what, id string) error {
	if creatorID != userID {
		return &domain.ForbiddenError{Message: fmt.Sprintf("access denied to %s %s", what, id)}
	}
	return nil
}
