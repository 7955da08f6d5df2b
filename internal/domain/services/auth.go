package services

import (
	"context"

	models "inkstand/internal/domain/models/cms"
)

// ResourceAuthorizer checks whether a user may change a resource.
// Current implementation: ownership-based (the user created it).
//
// Services call the authorizer after loading the resource and before mutating it.
type ResourceAuthorizer interface {
	// CanManageSite checks the user owns the site. A nil siteID (primary host) always passes.
	CanManageSite(ctx context.Context, userID string, siteID *string) error

	// CanModifyNode checks the user created the folder or article
	CanModifyNode(ctx context.Context, userID string, node *models.Node) error

	// CanModifyTag checks the user created the tag
	CanModifyTag(ctx context.Context, userID string, tag *models.Tag) error

	// CanModifyDiary checks the user wrote the diary
	CanModifyDiary(ctx context.Context, userID string, diary *models.Diary) error

	// CanModifyShowcase checks the user created a carousel slide or project
	CanModifyShowcase(ctx context.Context, userID, creatorID, what, id string) error
}
