package cms

import (
	"context"
	"time"

	models "inkstand/internal/domain/models/cms"
)

// DiaryRepository defines data access operations for diaries.
//
// Listings are scoped like articles: a non-nil siteID selects that site's
// diaries, a nil siteID selects creatorID's primary-host diaries. Listings
// omit content and are ordered newest day first.
type DiaryRepository interface {
	Create(ctx context.Context, diary *models.Diary) error
	// GetByID returns domain.ErrNotFound when the diary is missing or belongs to another site
	GetByID(ctx context.Context, id string, siteID *string) (*models.Diary, error)
	// Update writes the patched fields and returns the stored row
	Update(ctx context.Context, id string, patch models.DiaryPatch) (*models.Diary, error)
	List(ctx context.Context, siteID *string, creatorID string, offset, limit int) ([]models.Diary, int, error)
	ListByDay(ctx context.Context, siteID *string, creatorID string, day time.Time) ([]models.Diary, error)
	// ListDays returns each day holding at least one diary
	ListDays(ctx context.Context, siteID *string, creatorID string) ([]time.Time, error)
	ListAll(ctx context.Context, siteID *string, creatorID string) ([]models.Diary, error)
}
