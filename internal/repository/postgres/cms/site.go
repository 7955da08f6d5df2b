package cms

import (
	"context"
	"fmt"

	"inkstand/internal/domain"
	models "inkstand/internal/domain/models/cms"
	cmsRepo "inkstand/internal/domain/repositories/cms"
	"inkstand/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

const siteColumns = `id, creator_id, subdomain, site_name, owner_name, profession,
	is_core, is_pass, is_off, created_at, updated_at`

// PostgresSiteRepository implements the SiteRepository interface
type PostgresSiteRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewSiteRepository creates a new site repository
func NewSiteRepository(config *postgres.RepositoryConfig) cmsRepo.SiteRepository {
	return &PostgresSiteRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func scanSite(row rowScanner) (*models.Site, error) {
	var site models.Site
	err := row.Scan(
		&site.ID,
		&site.CreatorID,
		&site.Subdomain,
		&site.SiteName,
		&site.OwnerName,
		&site.Profession,
		&site.IsCore,
		&site.IsPass,
		&site.IsOff,
		&site.CreatedAt,
		&site.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &site, nil
}

// Create creates a new site
func (r *PostgresSiteRepository) Create(ctx context.Context, site *models.Site) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (creator_id, subdomain, site_name, owner_name, profession,
			is_core, is_pass, is_off)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, r.tables.Sites)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		site.CreatorID,
		site.Subdomain,
		site.SiteName,
		site.OwnerName,
		site.Profession,
		site.IsCore,
		site.IsPass,
		site.IsOff,
	).Scan(&site.ID, &site.CreatedAt, &site.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			conflict := &domain.ConflictError{
				Message:      fmt.Sprintf("subdomain '%s' is already taken", site.Subdomain),
				ResourceType: "site",
			}
			if existing, findErr := r.GetBySubdomain(ctx, site.Subdomain); findErr == nil {
				conflict.ResourceID = existing.ID
			}
			return conflict
		}
		return fmt.Errorf("create site: %w", err)
	}

	return nil
}

// GetByID retrieves a site by ID
func (r *PostgresSiteRepository) GetByID(ctx context.Context, id string) (*models.Site, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, siteColumns, r.tables.Sites)

	executor := postgres.GetExecutor(ctx, r.pool)
	site, err := scanSite(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsMissingRow(err) {
			return nil, fmt.Errorf("site %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get site: %w", err)
	}
	return site, nil
}

// GetBySubdomain retrieves a site by its subdomain
func (r *PostgresSiteRepository) GetBySubdomain(ctx context.Context, subdomain string) (*models.Site, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE subdomain = $1`, siteColumns, r.tables.Sites)

	executor := postgres.GetExecutor(ctx, r.pool)
	site, err := scanSite(executor.QueryRow(ctx, query, subdomain))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("site %q: %w", subdomain, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get site: %w", err)
	}
	return site, nil
}

// ListByCreator lists a user's sites, newest first
func (r *PostgresSiteRepository) ListByCreator(ctx context.Context, creatorID string) ([]models.Site, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE creator_id = $1 ORDER BY created_at DESC
	`, siteColumns, r.tables.Sites)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, creatorID)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	defer rows.Close()

	sites := []models.Site{}
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		sites = append(sites, *site)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sites: %w", err)
	}
	return sites, nil
}

// Update persists a site's editable fields
func (r *PostgresSiteRepository) Update(ctx context.Context, site *models.Site) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET site_name = $1, owner_name = $2, profession = $3, is_off = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`, r.tables.Sites)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		site.SiteName,
		site.OwnerName,
		site.Profession,
		site.IsOff,
		site.ID,
	).Scan(&site.UpdatedAt)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return fmt.Errorf("site %s: %w", site.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update site: %w", err)
	}
	return nil
}
