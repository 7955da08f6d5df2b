package cms

import (
	"context"

	models "inkstand/internal/domain/models/cms"
)

// VisitService records page views on tenant sites and reports them to the owner
type VisitService interface {
	RecordVisit(ctx context.Context, req *RecordVisitRequest) error
	GetStats(ctx context.Context, req *VisitStatsRequest) (*models.VisitStats, error)
	GetRealtime(ctx context.Context, userID string, siteID *string) (*models.RealtimeVisits, error)
}

// RecordVisitRequest is one page view; the handler fills the client fields
type RecordVisitRequest struct {
	SiteID    *string `json:"-"`
	IP        string  `json:"-"`
	UserAgent string  `json:"-"`
	Referer   string  `json:"-"`
	Path      string  `json:"path"`
}

// VisitStatsRequest selects an inclusive YYYY-MM-DD range; empty bounds
// default to the last seven days.
type VisitStatsRequest struct {
	UserID    string
	SiteID    *string
	StartDate string
	EndDate   string
}
