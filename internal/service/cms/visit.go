package cms

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"inkstand/internal/config"
	"inkstand/internal/domain"
	models "inkstand/internal/domain/models/cms"
	cmsRepo "inkstand/internal/domain/repositories/cms"
	"inkstand/internal/domain/services"
	cmsSvc "inkstand/internal/domain/services/cms"
)

const (
	maxVisitPathLength      = 1024
	maxVisitUserAgentLength = 512
)

type visitService struct {
	visitRepo  cmsRepo.VisitRepository
	authorizer services.ResourceAuthorizer
	now        func() time.Time
	logger     *slog.Logger
}

// NewVisitService creates a new visit statistics service
func NewVisitService(
	visitRepo cmsRepo.VisitRepository,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) cmsSvc.VisitService {
	return &visitService{
		visitRepo:  visitRepo,
		authorizer: authorizer,
		now:        time.Now,
		logger:     logger,
	}
}

// RecordVisit stores one page view. Only tenant sites are counted.
func (s *visitService) RecordVisit(ctx context.Context, req *cmsSvc.RecordVisitRequest) error {
	if req.SiteID == nil {
		return &domain.ValidationError{Message: "visits are only recorded on a tenant site"}
	}

	path := strings.TrimSpace(req.Path)
	if path == "" {
		path = "/"
	}
	visit := &models.Visit{
		SiteID:    *req.SiteID,
		IP:        orUnknown(req.IP),
		UserAgent: orUnknown(truncate(req.UserAgent, maxVisitUserAgentLength)),
		Path:      truncate(path, maxVisitPathLength),
		Referer:   truncate(strings.TrimSpace(req.Referer), maxVisitPathLength),
		Day:       startOfDay(s.now()),
	}
	if err := s.visitRepo.Create(ctx, visit); err != nil {
		return err
	}

	s.logger.Debug("visit recorded", "site_id", visit.SiteID, "path", visit.Path)
	return nil
}

// GetStats reports daily counts with empty days filled in, plus the top
// paths and referers of the range. Only the site owner may read them.
func (s *visitService) GetStats(ctx context.Context, req *cmsSvc.VisitStatsRequest) (*models.VisitStats, error) {
	siteID, err := s.ownedSite(ctx, req.UserID, req.SiteID)
	if err != nil {
		return nil, err
	}
	from, to, err := s.statsRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	daily, err := s.visitRepo.Daily(ctx, siteID, from, to)
	if err != nil {
		return nil, err
	}
	paths, err := s.visitRepo.TopPaths(ctx, siteID, from, to, config.VisitTopN)
	if err != nil {
		return nil, err
	}
	referers, err := s.visitRepo.TopReferers(ctx, siteID, from, to, config.VisitTopN)
	if err != nil {
		return nil, err
	}

	return &models.VisitStats{
		DailyStats:  fillDays(daily, from, to),
		TopPaths:    paths,
		TopReferers: referers,
	}, nil
}

// GetRealtime reports today's counts and the latest views
func (s *visitService) GetRealtime(ctx context.Context, userID string, siteID *string) (*models.RealtimeVisits, error) {
	id, err := s.ownedSite(ctx, userID, siteID)
	if err != nil {
		return nil, err
	}
	today, err := s.visitRepo.Counts(ctx, id, startOfDay(s.now()))
	if err != nil {
		return nil, err
	}
	recent, err := s.visitRepo.Recent(ctx, id, config.RecentVisitCount)
	if err != nil {
		return nil, err
	}
	return &models.RealtimeVisits{Today: today, RecentVisits: recent}, nil
}

func (s *visitService) ownedSite(ctx context.Context, userID string, siteID *string) (string, error) {
	if siteID == nil {
		return "", &domain.ValidationError{Message: "visit statistics are only kept for tenant sites"}
	}
	if err := s.authorizer.CanManageSite(ctx, userID, siteID); err != nil {
		return "", err
	}
	return *siteID, nil
}

// statsRange parses the optional bounds. The default range is the last
// VisitStatsDefaultDays days up to today.
func (s *visitService) statsRange(start, end string) (time.Time, time.Time, error) {
	today := startOfDay(s.now())
	to := today
	if end = strings.TrimSpace(end); end != "" {
		t, err := time.ParseInLocation(models.DateLayout, end, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, &domain.ValidationError{Message: "endDate must be YYYY-MM-DD"}
		}
		to = t
	}
	from := to.AddDate(0, 0, -config.VisitStatsDefaultDays)
	if start = strings.TrimSpace(start); start != "" {
		t, err := time.ParseInLocation(models.DateLayout, start, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, &domain.ValidationError{Message: "startDate must be YYYY-MM-DD"}
		}
		from = t
	}

	if from.After(to) {
		return time.Time{}, time.Time{}, &domain.ValidationError{Message: "startDate is after endDate"}
	}
	if to.Sub(from) > time.Duration(config.VisitStatsMaxDays)*24*time.Hour {
		return time.Time{}, time.Time{}, &domain.ValidationError{
			Message: fmt.Sprintf("date range is limited to %d days", config.VisitStatsMaxDays),
		}
	}
	return from, to, nil
}

// fillDays returns one entry per day of [from, to], zero where daily has none
func fillDays(daily []models.DailyVisits, from, to time.Time) []models.DailyVisits {
	byDate := make(map[string]models.VisitCounts, len(daily))
	for _, d := range daily {
		byDate[d.Date] = d.VisitCounts
	}
	out := []models.DailyVisits{}
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		date := day.Format(models.DateLayout)
		out = append(out, models.DailyVisits{Date: date, VisitCounts: byDate[date]})
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}

// truncate cuts s to at most n bytes on a rune boundary
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
