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

const tagColumns = `id, site_id, creator_id, name, color, created_at`

// PostgresTagRepository implements the TagRepository interface
type PostgresTagRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewTagRepository creates a new tag repository
func NewTagRepository(config *postgres.RepositoryConfig) cmsRepo.TagRepository {
	return &PostgresTagRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func scanTag(row rowScanner) (*models.Tag, error) {
	var tag models.Tag
	err := row.Scan(
		&tag.ID,
		&tag.SiteID,
		&tag.CreatorID,
		&tag.Name,
		&tag.Color,
		&tag.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// Create creates a new tag
func (r *PostgresTagRepository) Create(ctx context.Context, tag *models.Tag) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (site_id, creator_id, name, color)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, r.tables.Tags)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, tag.SiteID, tag.CreatorID, tag.Name, tag.Color).
		Scan(&tag.ID, &tag.CreatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			conflict := &domain.ConflictError{
				Message:      fmt.Sprintf("tag '%s' already exists", tag.Name),
				ResourceType: "tag",
			}
			if existing, findErr := r.FindByName(ctx, tag.Name, tag.CreatorID, tag.SiteID); findErr == nil {
				conflict.ResourceID = existing.ID
			}
			return conflict
		}
		return fmt.Errorf("create tag: %w", err)
	}

	return nil
}

// GetByID retrieves a tag by ID
func (r *PostgresTagRepository) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, tagColumns, r.tables.Tags)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := scanTag(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsMissingRow(err) {
			return nil, fmt.Errorf("tag %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return tag, nil
}

// FindByName looks up a tag by (name, creator, site)
func (r *PostgresTagRepository) FindByName(ctx context.Context, name, creatorID string, siteID *string) (*models.Tag, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE name = $1 AND creator_id = $2 AND site_id IS NOT DISTINCT FROM $3::uuid
	`, tagColumns, r.tables.Tags)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := scanTag(executor.QueryRow(ctx, query, name, creatorID, siteID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("tag %q: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find tag: %w", err)
	}
	return tag, nil
}

// GetByIDs returns the tags with the given IDs, ordered by name
func (r *PostgresTagRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Tag, error) {
	if len(ids) == 0 {
		return []models.Tag{}, nil
	}
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE id = ANY($1::uuid[]) ORDER BY name
	`, tagColumns, r.tables.Tags)
	return r.queryTags(ctx, query, ids)
}

// ListBySite returns a tenant's tags, ordered by name
func (r *PostgresTagRepository) ListBySite(ctx context.Context, siteID *string, creatorID string) ([]models.Tag, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE site_id IS NOT DISTINCT FROM $1::uuid
			AND ($1::uuid IS NOT NULL OR creator_id = $2)
		ORDER BY name
	`, tagColumns, r.tables.Tags)
	return r.queryTags(ctx, query, siteID, creatorID)
}

// Delete removes a tag
func (r *PostgresTagRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Tags)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("tag %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// RemoveFromContent strips a tag ID from every article and diary carrying it
func (r *PostgresTagRepository) RemoveFromContent(ctx context.Context, tagID string) error {
	executor := postgres.GetExecutor(ctx, r.pool)
	for _, table := range []string{r.tables.Nodes, r.tables.Diaries} {
		query := fmt.Sprintf(`
			UPDATE %s SET tag_ids = array_remove(tag_ids, $1), updated_at = NOW()
			WHERE $1 = ANY(tag_ids)
		`, table)
		if _, err := executor.Exec(ctx, query, tagID); err != nil {
			return fmt.Errorf("detach tag from %s: %w", table, err)
		}
	}
	return nil
}

func (r *PostgresTagRepository) queryTags(ctx context.Context, query string, args ...any) ([]models.Tag, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, *tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return tags, nil
}
