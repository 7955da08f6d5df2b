package cms

import (
	"context"
	"encoding/json"
	"fmt"

	"inkstand/internal/domain"
	models "inkstand/internal/domain/models/cms"
	"inkstand/internal/domain/repositories"
	cmsRepo "inkstand/internal/domain/repositories/cms"
	"inkstand/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

const carouselColumns = `id, site_id, creator_id, title, subtitle, description, img_url,
	buttons, created_at, updated_at`

const projectColumns = `id, site_id, creator_id, title, img_url, category, likes,
	button_url, content, created_at, updated_at`

// PostgresCarouselRepository implements the CarouselRepository interface
type PostgresCarouselRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewCarouselRepository creates a new carousel repository
func NewCarouselRepository(config *postgres.RepositoryConfig) cmsRepo.CarouselRepository {
	return &PostgresCarouselRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// encodeButtons renders buttons for the JSONB column; nil is stored as []
func encodeButtons(buttons []models.CarouselButton) ([]byte, error) {
	if buttons == nil {
		buttons = []models.CarouselButton{}
	}
	data, err := json.Marshal(buttons)
	if err != nil {
		return nil, fmt.Errorf("encode carousel buttons: %w", err)
	}
	return data, nil
}

func decodeButtons(data []byte) ([]models.CarouselButton, error) {
	buttons := []models.CarouselButton{}
	if len(data) == 0 {
		return buttons, nil
	}
	if err := json.Unmarshal(data, &buttons); err != nil {
		return nil, fmt.Errorf("decode carousel buttons: %w", err)
	}
	return buttons, nil
}

func scanCarousel(row rowScanner) (*models.Carousel, error) {
	var (
		c       models.Carousel
		buttons []byte
	)
	err := row.Scan(
		&c.ID,
		&c.SiteID,
		&c.CreatorID,
		&c.Title,
		&c.Subtitle,
		&c.Desc,
		&c.ImageURL,
		&buttons,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if c.Buttons, err = decodeButtons(buttons); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a slide
func (r *PostgresCarouselRepository) Create(ctx context.Context, c *models.Carousel) error {
	buttons, err := encodeButtons(c.Buttons)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (site_id, creator_id, title, subtitle, description, img_url, buttons)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, r.tables.Carousels)

	executor := postgres.GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query, c.SiteID, c.CreatorID, c.Title, c.Subtitle, c.Desc, c.ImageURL, buttons).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("site of carousel: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create carousel: %w", err)
	}
	return nil
}

// GetByID retrieves a slide within a site (nil = primary host)
func (r *PostgresCarouselRepository) GetByID(ctx context.Context, id string, siteID *string) (*models.Carousel, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE id = $1 AND site_id IS NOT DISTINCT FROM $2::uuid
	`, carouselColumns, r.tables.Carousels)

	executor := postgres.GetExecutor(ctx, r.pool)
	c, err := scanCarousel(executor.QueryRow(ctx, query, id, siteID))
	if err != nil {
		if postgres.IsMissingRow(err) {
			return nil, fmt.Errorf("carousel %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get carousel: %w", err)
	}
	return c, nil
}

// List returns a tenant's slides, newest first
func (r *PostgresCarouselRepository) List(ctx context.Context, siteID *string, creatorID string) ([]models.Carousel, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s ORDER BY created_at DESC
	`, carouselColumns, r.tables.Carousels, tenantWhere)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, siteID, creatorID)
	if err != nil {
		return nil, fmt.Errorf("list carousels: %w", err)
	}
	defer rows.Close()

	carousels := []models.Carousel{}
	for rows.Next() {
		c, err := scanCarousel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan carousel: %w", err)
		}
		carousels = append(carousels, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate carousels: %w", err)
	}
	return carousels, nil
}

// Update writes the patched fields of one slide
func (r *PostgresCarouselRepository) Update(ctx context.Context, id string, patch models.CarouselPatch) (*models.Carousel, error) {
	var buttons []byte
	if patch.Buttons != nil {
		var err error
		if buttons, err = encodeButtons(*patch.Buttons); err != nil {
			return nil, err
		}
	}
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = COALESCE($2::text, title),
			subtitle = COALESCE($3::text, subtitle),
			description = COALESCE($4::text, description),
			img_url = COALESCE($5::text, img_url),
			buttons = COALESCE($6::jsonb, buttons),
			updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, r.tables.Carousels, carouselColumns)

	executor := postgres.GetExecutor(ctx, r.pool)
	c, err := scanCarousel(executor.QueryRow(ctx, query,
		id, patch.Title, patch.Subtitle, patch.Desc, patch.ImageURL, buttons))
	if err != nil {
		if postgres.IsMissingRow(err) {
			return nil, fmt.Errorf("carousel %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("update carousel: %w", err)
	}
	return c, nil
}

// Delete removes a slide
func (r *PostgresCarouselRepository) Delete(ctx context.Context, id string) error {
	return deleteRow(ctx, postgres.GetExecutor(ctx, r.pool), r.tables.Carousels, "carousel", id)
}

// PostgresProjectRepository implements the ProjectRepository interface
type PostgresProjectRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(config *postgres.RepositoryConfig) cmsRepo.ProjectRepository {
	return &PostgresProjectRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func scanProject(row rowScanner) (*models.Project, error) {
	var (
		p       models.Project
		content []byte
	)
	err := row.Scan(
		&p.ID,
		&p.SiteID,
		&p.CreatorID,
		&p.Title,
		&p.ImageURL,
		&p.Category,
		&p.Likes,
		&p.ButtonURL,
		&content,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Content = content
	return &p, nil
}

// Create inserts a project
func (r *PostgresProjectRepository) Create(ctx context.Context, p *models.Project) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (site_id, creator_id, title, img_url, category, button_url, content)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, likes, created_at, updated_at
	`, r.tables.Projects)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		p.SiteID, p.CreatorID, p.Title, p.ImageURL, p.Category, p.ButtonURL, []byte(p.Content),
	).Scan(&p.ID, &p.Likes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("site of project: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

// GetByID retrieves a project within a site (nil = primary host)
func (r *PostgresProjectRepository) GetByID(ctx context.Context, id string, siteID *string) (*models.Project, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE id = $1 AND site_id IS NOT DISTINCT FROM $2::uuid
	`, projectColumns, r.tables.Projects)

	executor := postgres.GetExecutor(ctx, r.pool)
	p, err := scanProject(executor.QueryRow(ctx, query, id, siteID))
	if err != nil {
		if postgres.IsMissingRow(err) {
			return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// List returns a tenant's projects, newest first, optionally of one category
func (r *PostgresProjectRepository) List(ctx context.Context, siteID *string, creatorID, category string) ([]models.Project, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s AND ($3::text = '' OR category = $3::text)
		ORDER BY created_at DESC
	`, projectColumns, r.tables.Projects, tenantWhere)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, siteID, creatorID, category)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

// Update writes the patched fields of one project
func (r *PostgresProjectRepository) Update(ctx context.Context, id string, patch models.ProjectPatch) (*models.Project, error) {
	var content []byte
	if patch.Content != nil {
		content = []byte(patch.Content)
	}
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = COALESCE($2::text, title),
			img_url = COALESCE($3::text, img_url),
			category = COALESCE($4::text, category),
			button_url = COALESCE($5::text, button_url),
			content = COALESCE($6::jsonb, content),
			updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, r.tables.Projects, projectColumns)

	executor := postgres.GetExecutor(ctx, r.pool)
	p, err := scanProject(executor.QueryRow(ctx, query,
		id, patch.Title, patch.ImageURL, patch.Category, patch.ButtonURL, content))
	if err != nil {
		if postgres.IsMissingRow(err) {
			return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

// Delete removes a project
func (r *PostgresProjectRepository) Delete(ctx context.Context, id string) error {
	return deleteRow(ctx, postgres.GetExecutor(ctx, r.pool), r.tables.Projects, "project", id)
}

// Like increments the like counter in one statement
func (r *PostgresProjectRepository) Like(ctx context.Context, id string, siteID *string) (int, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET likes = likes + 1
		WHERE id = $1 AND site_id IS NOT DISTINCT FROM $2::uuid
		RETURNING likes
	`, r.tables.Projects)

	var likes int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id, siteID).Scan(&likes); err != nil {
		if postgres.IsMissingRow(err) {
			return 0, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("like project: %w", err)
	}
	return likes, nil
}

// deleteRow deletes one row by id, reporting a missing row as not found
func deleteRow(ctx context.Context, executor repositories.DBTX, table, what, id string) error {
	result, err := executor.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", what, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", what, id, domain.ErrNotFound)
	}
	return nil
}
