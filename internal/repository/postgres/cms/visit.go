package cms

import (
	"context"
	"fmt"
	"time"

	"inkstand/internal/domain"
	models "inkstand/internal/domain/models/cms"
	cmsRepo "inkstand/internal/domain/repositories/cms"
	"inkstand/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresVisitRepository implements the VisitRepository interface
type PostgresVisitRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewVisitRepository creates a new visit repository
func NewVisitRepository(config *postgres.RepositoryConfig) cmsRepo.VisitRepository {
	return &PostgresVisitRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// dayArg renders a day for a DATE parameter
func dayArg(t time.Time) string {
	return t.UTC().Format(models.DateLayout)
}

// nullIfEmpty maps "" to SQL NULL
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Create records one page view
func (r *PostgresVisitRepository) Create(ctx context.Context, v *models.Visit) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (site_id, ip, user_agent, path, referer, day)
		VALUES ($1, $2, $3, $4, $5, $6::date)
		RETURNING id, created_at
	`, r.tables.Visits)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		v.SiteID, v.IP, v.UserAgent, v.Path, nullIfEmpty(v.Referer), dayArg(v.Day),
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("site %s: %w", v.SiteID, domain.ErrNotFound)
		}
		return fmt.Errorf("record visit: %w", err)
	}
	return nil
}

// Daily counts page views and distinct IPs per day
func (r *PostgresVisitRepository) Daily(ctx context.Context, siteID string, from, to time.Time) ([]models.DailyVisits, error) {
	query := fmt.Sprintf(`
		SELECT to_char(day, 'YYYY-MM-DD'), COUNT(*), COUNT(DISTINCT ip)
		FROM %s
		WHERE site_id = $1 AND day BETWEEN $2::date AND $3::date
		GROUP BY day
		ORDER BY day
	`, r.tables.Visits)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, siteID, dayArg(from), dayArg(to))
	if err != nil {
		return nil, fmt.Errorf("daily visits: %w", err)
	}
	defer rows.Close()

	days := []models.DailyVisits{}
	for rows.Next() {
		var d models.DailyVisits
		if err := rows.Scan(&d.Date, &d.PV, &d.UV); err != nil {
			return nil, fmt.Errorf("scan daily visits: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily visits: %w", err)
	}
	return days, nil
}

// TopPaths returns the most viewed paths, most views first
func (r *PostgresVisitRepository) TopPaths(ctx context.Context, siteID string, from, to time.Time, limit int) ([]models.PathCount, error) {
	query := fmt.Sprintf(`
		SELECT path, COUNT(*) AS n
		FROM %s
		WHERE site_id = $1 AND day BETWEEN $2::date AND $3::date
		GROUP BY path
		ORDER BY n DESC, path
		LIMIT $4
	`, r.tables.Visits)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, siteID, dayArg(from), dayArg(to), limit)
	if err != nil {
		return nil, fmt.Errorf("top paths: %w", err)
	}
	defer rows.Close()

	paths := []models.PathCount{}
	for rows.Next() {
		var p models.PathCount
		if err := rows.Scan(&p.Path, &p.Count); err != nil {
			return nil, fmt.Errorf("scan path count: %w", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate path counts: %w", err)
	}
	return paths, nil
}

// TopReferers returns the referring pages that sent the most views
func (r *PostgresVisitRepository) TopReferers(ctx context.Context, siteID string, from, to time.Time, limit int) ([]models.RefererCount, error) {
	query := fmt.Sprintf(`
		SELECT referer, COUNT(*) AS n
		FROM %s
		WHERE site_id = $1 AND day BETWEEN $2::date AND $3::date AND referer IS NOT NULL
		GROUP BY referer
		ORDER BY n DESC, referer
		LIMIT $4
	`, r.tables.Visits)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, siteID, dayArg(from), dayArg(to), limit)
	if err != nil {
		return nil, fmt.Errorf("top referers: %w", err)
	}
	defer rows.Close()

	referers := []models.RefererCount{}
	for rows.Next() {
		var c models.RefererCount
		if err := rows.Scan(&c.Referer, &c.Count); err != nil {
			return nil, fmt.Errorf("scan referer count: %w", err)
		}
		referers = append(referers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate referer counts: %w", err)
	}
	return referers, nil
}

// Counts returns the page views and distinct IPs of one day
func (r *PostgresVisitRepository) Counts(ctx context.Context, siteID string, day time.Time) (models.VisitCounts, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*), COUNT(DISTINCT ip) FROM %s WHERE site_id = $1 AND day = $2::date
	`, r.tables.Visits)

	var c models.VisitCounts
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, siteID, dayArg(day)).Scan(&c.PV, &c.UV); err != nil {
		return models.VisitCounts{}, fmt.Errorf("count visits: %w", err)
	}
	return c, nil
}

// Recent returns the latest views, newest first
func (r *PostgresVisitRepository) Recent(ctx context.Context, siteID string, limit int) ([]models.RecentVisit, error) {
	query := fmt.Sprintf(`
		SELECT ip, path, user_agent, created_at
		FROM %s
		WHERE site_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, r.tables.Visits)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, siteID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent visits: %w", err)
	}
	defer rows.Close()

	visits := []models.RecentVisit{}
	for rows.Next() {
		var v models.RecentVisit
		if err := rows.Scan(&v.IP, &v.Path, &v.UserAgent, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate visits: %w", err)
	}
	return visits, nil
}
