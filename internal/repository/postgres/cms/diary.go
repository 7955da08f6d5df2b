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

const diaryColumns = `id, site_id, creator_id, title, content, summary, cover_image,
	tag_ids, remedy_at, created_at, updated_at`

// listings leave the content out
const diaryListColumns = `id, site_id, creator_id, title, NULL::jsonb, summary, cover_image,
	tag_ids, remedy_at, created_at, updated_at`

// tenant predicate on $1 site, $2 creator
const tenantWhere = `site_id IS NOT DISTINCT FROM $1::uuid AND ($1::uuid IS NOT NULL OR creator_id = $2)`

// diaryDay is the UTC calendar day a diary belongs to
const diaryDay = `(COALESCE(remedy_at, created_at) AT TIME ZONE 'UTC')::date`

// PostgresDiaryRepository implements the DiaryRepository interface
type PostgresDiaryRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewDiaryRepository creates a new diary repository
func NewDiaryRepository(config *postgres.RepositoryConfig) cmsRepo.DiaryRepository {
	return &PostgresDiaryRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func scanDiary(row rowScanner) (*models.Diary, error) {
	var (
		d                models.Diary
		content, summary []byte
	)
	err := row.Scan(
		&d.ID,
		&d.SiteID,
		&d.CreatorID,
		&d.Title,
		&content,
		&summary,
		&d.CoverImage,
		&d.TagIDs,
		&d.RemedyAt,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Content = content
	d.Summary = summary
	d.IsRemedy = d.RemedyAt != nil
	return &d, nil
}

// diaryPatchArgs renders a patch as the $2..$6 arguments of Update
func diaryPatchArgs(patch models.DiaryPatch) []any {
	args := []any{nil, nil, nil, nil, nil}
	if patch.Title != nil {
		args[0] = *patch.Title
	}
	if patch.Content != nil {
		args[1] = []byte(patch.Content)
	}
	if patch.Summary != nil {
		args[2] = []byte(patch.Summary)
	}
	if patch.CoverImage != nil {
		args[3] = *patch.CoverImage
	}
	if patch.TagIDs != nil {
		args[4] = tagIDsOrEmpty(*patch.TagIDs)
	}
	return args
}

// Create inserts a diary
func (r *PostgresDiaryRepository) Create(ctx context.Context, d *models.Diary) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (site_id, creator_id, title, content, summary, cover_image, tag_ids, remedy_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, r.tables.Diaries)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		d.SiteID,
		d.CreatorID,
		d.Title,
		[]byte(d.Content),
		[]byte(d.Summary),
		d.CoverImage,
		tagIDsOrEmpty(d.TagIDs),
		d.RemedyAt,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("site of diary: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create diary: %w", err)
	}
	d.IsRemedy = d.RemedyAt != nil
	return nil
}

// GetByID retrieves a diary within a site (nil = primary host)
func (r *PostgresDiaryRepository) GetByID(ctx context.Context, id string, siteID *string) (*models.Diary, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = $1 AND site_id IS NOT DISTINCT FROM $2::uuid
	`, diaryColumns, r.tables.Diaries)

	executor := postgres.GetExecutor(ctx, r.pool)
	d, err := scanDiary(executor.QueryRow(ctx, query, id, siteID))
	if err != nil {
		if postgres.IsMissingRow(err) {
			return nil, fmt.Errorf("diary %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get diary: %w", err)
	}
	return d, nil
}

// Update writes the patched fields of one diary
func (r *PostgresDiaryRepository) Update(ctx context.Context, id string, patch models.DiaryPatch) (*models.Diary, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = COALESCE($2::text, title),
			content = COALESCE($3::jsonb, content),
			summary = COALESCE($4::jsonb, summary),
			cover_image = COALESCE($5::text, cover_image),
			tag_ids = COALESCE($6::text[], tag_ids),
			updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, r.tables.Diaries, diaryColumns)

	args := append([]any{id}, diaryPatchArgs(patch)...)
	executor := postgres.GetExecutor(ctx, r.pool)
	d, err := scanDiary(executor.QueryRow(ctx, query, args...))
	if err != nil {
		if postgres.IsMissingRow(err) {
			return nil, fmt.Errorf("diary %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("update diary: %w", err)
	}
	return d, nil
}

// List returns one page of a tenant's diaries and the tenant's total
func (r *PostgresDiaryRepository) List(ctx context.Context, siteID *string, creatorID string, offset, limit int) ([]models.Diary, int, error) {
	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, r.tables.Diaries, tenantWhere)
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, countQuery, siteID, creatorID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count diaries: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s
		ORDER BY %s DESC, created_at DESC
		OFFSET $3 LIMIT $4
	`, diaryListColumns, r.tables.Diaries, tenantWhere, diaryDay)

	diaries, err := r.queryDiaries(ctx, query, siteID, creatorID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return diaries, total, nil
}

// ListByDay returns the diaries of one UTC day
func (r *PostgresDiaryRepository) ListByDay(ctx context.Context, siteID *string, creatorID string, day time.Time) ([]models.Diary, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s AND %s = $3::date
		ORDER BY created_at DESC
	`, diaryListColumns, r.tables.Diaries, tenantWhere, diaryDay)
	return r.queryDiaries(ctx, query, siteID, creatorID, day.Format(models.DateLayout))
}

// ListDays returns the distinct diary days, newest first
func (r *PostgresDiaryRepository) ListDays(ctx context.Context, siteID *string, creatorID string) ([]time.Time, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT %s AS day FROM %s
		WHERE %s
		ORDER BY day DESC
	`, diaryDay, r.tables.Diaries, tenantWhere)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, siteID, creatorID)
	if err != nil {
		return nil, fmt.Errorf("list diary days: %w", err)
	}
	defer rows.Close()

	days := []time.Time{}
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("scan diary day: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diary days: %w", err)
	}
	return days, nil
}

// ListAll returns every diary of a tenant without content
func (r *PostgresDiaryRepository) ListAll(ctx context.Context, siteID *string, creatorID string) ([]models.Diary, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s
		ORDER BY %s DESC, created_at DESC
	`, diaryListColumns, r.tables.Diaries, tenantWhere, diaryDay)
	return r.queryDiaries(ctx, query, siteID, creatorID)
}

func (r *PostgresDiaryRepository) queryDiaries(ctx context.Context, query string, args ...any) ([]models.Diary, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list diaries: %w", err)
	}
	defer rows.Close()

	diaries := []models.Diary{}
	for rows.Next() {
		d, err := scanDiary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan diary: %w", err)
		}
		diaries = append(diaries, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diaries: %w", err)
	}
	return diaries, nil
}
