package cms

import (
	"context"
	"time"

	models "inkstand/internal/domain/models/cms"
)

// VisitRepository records page views and aggregates them per site.
// Day ranges are inclusive on both ends.
type VisitRepository interface {
	Create(ctx context.Context, visit *models.Visit) error
	// Daily returns one row per day that has visits, oldest first
	Daily(ctx context.Context, siteID string, from, to time.Time) ([]models.DailyVisits, error)
	TopPaths(ctx context.Context, siteID string, from, to time.Time, limit int) ([]models.PathCount, error)
	TopReferers(ctx context.Context, siteID string, from, to time.Time, limit int) ([]models.RefererCount, error)
	Counts(ctx context.Context, siteID string, day time.Time) (models.VisitCounts, error)
	Recent(ctx context.Context, siteID string, limit int) ([]models.RecentVisit, error)
}
