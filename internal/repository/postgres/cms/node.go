package cms

import (
	"context"
	"fmt"
	"sort"

	"inkstand/internal/domain"
	models "inkstand/internal/domain/models/cms"
	"inkstand/internal/domain/repositories"
	cmsRepo "inkstand/internal/domain/repositories/cms"
	"inkstand/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

const nodeColumns = `id, kind, site_id, creator_id, parent_id, name, description,
	sort_order, tag_ids, content, summary, created_at, updated_at`

// scope predicate on $1 site, $2 creator, $3 parent
const scopeWhere = `site_id IS NOT DISTINCT FROM $1::uuid AND creator_id = $2
	AND parent_id IS NOT DISTINCT FROM $3::uuid`

// PostgresNodeRepository implements the NodeRepository interface
type PostgresNodeRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewNodeRepository creates a new node repository
func NewNodeRepository(config *postgres.RepositoryConfig) cmsRepo.NodeRepository {
	return &PostgresNodeRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*models.Node, error) {
	var (
		node             models.Node
		kind             string
		content, summary []byte
	)
	err := row.Scan(
		&node.ID,
		&kind,
		&node.SiteID,
		&node.CreatorID,
		&node.ParentID,
		&node.Name,
		&node.Description,
		&node.Order,
		&node.TagIDs,
		&content,
		&summary,
		&node.CreatedAt,
		&node.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	node.Kind = models.NodeKind(kind)
	node.Content = content
	node.Summary = summary
	return &node, nil
}

// scopeArgs returns the $1..$3 arguments of scopeWhere
func scopeArgs(scope models.SiblingScope) []any {
	return []any{scope.SiteID, scope.CreatorID, scope.ParentID}
}

// lockKey names the advisory lock of one sibling group. The table name keeps
// environments sharing a database (dev_, test_ prefixes) apart.
func lockKey(table string, scope models.SiblingScope) string {
	return table + ":" + scope.Key()
}

// orderArrays splits an id->order map into the parallel arrays passed to
// unnest, sorted by id so concurrent bulk updates take row locks in one order.
func orderArrays(orders map[string]int) ([]string, []int32) {
	ids := make([]string, 0, len(orders))
	for id := range orders {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	ranks := make([]int32, len(ids))
	for i, id := range ids {
		ranks[i] = int32(orders[id])
	}
	return ids, ranks
}

func tagIDsOrEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// Create inserts a node
func (r *PostgresNodeRepository) Create(ctx context.Context, node *models.Node) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (kind, site_id, creator_id, parent_id, name, description,
			sort_order, tag_ids, content, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, r.tables.Nodes)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		string(node.Kind),
		node.SiteID,
		node.CreatorID,
		node.ParentID,
		node.Name,
		node.Description,
		node.Order,
		tagIDsOrEmpty(node.TagIDs),
		[]byte(node.Content),
		[]byte(node.Summary),
	).Scan(&node.ID, &node.CreatedAt, &node.UpdatedAt)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("parent folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create %s: %w", node.Kind, err)
	}

	return nil
}

// GetByID retrieves a node inside one tenant
func (r *PostgresNodeRepository) GetByID(ctx context.Context, id string, siteID *string) (*models.Node, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND site_id IS NOT DISTINCT FROM $2::uuid
	`, nodeColumns, r.tables.Nodes)

	executor := postgres.GetExecutor(ctx, r.pool)
	node, err := scanNode(executor.QueryRow(ctx, query, id, siteID))
	if err != nil {
		if postgres.IsMissingRow(err) {
			return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get item: %w", err)
	}

	return node, nil
}

// patchArgs renders a patch as the $2..$6 arguments of Update. A nil
// argument is SQL NULL, which COALESCE turns into "keep the stored value".
func patchArgs(patch models.NodePatch) []any {
	args := []any{nil, nil, nil, nil, nil}
	if patch.Name != nil {
		args[0] = *patch.Name
	}
	if patch.Description != nil {
		args[1] = *patch.Description
	}
	if patch.TagIDs != nil {
		args[2] = tagIDsOrEmpty(*patch.TagIDs)
	}
	if patch.Content != nil {
		args[3] = []byte(patch.Content)
	}
	if patch.Summary != nil {
		args[4] = []byte(patch.Summary)
	}
	return args
}

// Update writes the patched content fields of one node
func (r *PostgresNodeRepository) Update(ctx context.Context, id string, patch models.NodePatch) (*models.Node, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = COALESCE($2::text, name),
			description = COALESCE($3::text, description),
			tag_ids = COALESCE($4::text[], tag_ids),
			content = COALESCE($5::jsonb, content),
			summary = COALESCE($6::jsonb, summary),
			updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, r.tables.Nodes, nodeColumns)

	args := append([]any{id}, patchArgs(patch)...)
	executor := postgres.GetExecutor(ctx, r.pool)
	node, err := scanNode(executor.QueryRow(ctx, query, args...))
	if err != nil {
		if postgres.IsMissingRow(err) {
			return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("update item: %w", err)
	}

	return node, nil
}

// Move reparents a node and sets its order
func (r *PostgresNodeRepository) Move(ctx context.Context, id string, parentID *string, order int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $2, sort_order = $3, updated_at = NOW()
		WHERE id = $1
	`, r.tables.Nodes)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, parentID, order)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("parent folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("move item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// DeleteMany removes nodes by ID
func (r *PostgresNodeRepository) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1::uuid[])`, r.tables.Nodes)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, ids); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}
	return nil
}

// ListSiblings returns one sibling group in display order
func (r *PostgresNodeRepository) ListSiblings(ctx context.Context, scope models.SiblingScope) ([]models.Node, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY sort_order ASC, CASE kind WHEN 'folder' THEN 0 ELSE 1 END, created_at ASC
	`, nodeColumns, r.tables.Nodes, scopeWhere)

	return r.queryNodes(ctx, query, scopeArgs(scope)...)
}

// ShiftSiblings adds delta to the order of every node in scope
func (r *PostgresNodeRepository) ShiftSiblings(ctx context.Context, scope models.SiblingScope, delta int) error {
	query := fmt.Sprintf(`
		UPDATE %s SET sort_order = sort_order + $4
		WHERE %s
	`, r.tables.Nodes, scopeWhere)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, append(scopeArgs(scope), delta)...); err != nil {
		return fmt.Errorf("shift siblings: %w", err)
	}
	return nil
}

// SetOrders writes order values in one statement
func (r *PostgresNodeRepository) SetOrders(ctx context.Context, orders map[string]int) error {
	if len(orders) == 0 {
		return nil
	}

	ids, ranks := orderArrays(orders)

	query := fmt.Sprintf(`
		UPDATE %s AS n
		SET sort_order = v.ord, updated_at = NOW()
		FROM unnest($1::uuid[], $2::int[]) AS v(id, ord)
		WHERE n.id = v.id
	`, r.tables.Nodes)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, ids, ranks); err != nil {
		return fmt.Errorf("set orders: %w", err)
	}
	return nil
}

// LockSiblings takes a transaction-scoped advisory lock on the sibling group.
// Outside a transaction the lock would be released as soon as it is taken.
func (r *PostgresNodeRepository) LockSiblings(ctx context.Context, scope models.SiblingScope) error {
	if !repositories.InTx(ctx) {
		return fmt.Errorf("lock siblings %s: not in a transaction", scope.Key())
	}
	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, lockKey(r.tables.Nodes, scope)); err != nil {
		return fmt.Errorf("lock siblings: %w", err)
	}
	return nil
}

// FindSiblingByName looks up a same-kind sibling by name
func (r *PostgresNodeRepository) FindSiblingByName(ctx context.Context, scope models.SiblingScope, kind models.NodeKind, name string) (*models.Node, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s AND kind = $4 AND name = $5
		LIMIT 1
	`, nodeColumns, r.tables.Nodes, scopeWhere)

	executor := postgres.GetExecutor(ctx, r.pool)
	node, err := scanNode(executor.QueryRow(ctx, query, append(scopeArgs(scope), string(kind), name)...))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("%s %q: %w", kind, name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find sibling: %w", err)
	}
	return node, nil
}

// ListChildIDs returns direct children of a folder
func (r *PostgresNodeRepository) ListChildIDs(ctx context.Context, parentID string) ([]string, error) {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE parent_id = $1`, r.tables.Nodes)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan child id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate children: %w", err)
	}
	return ids, nil
}

// ListTenant returns every node of a tenant
func (r *PostgresNodeRepository) ListTenant(ctx context.Context, siteID *string, creatorID string) ([]models.Node, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE site_id IS NOT DISTINCT FROM $1::uuid
			AND ($1::uuid IS NOT NULL OR creator_id = $2)
		ORDER BY sort_order ASC
	`, nodeColumns, r.tables.Nodes)

	return r.queryNodes(ctx, query, siteID, creatorID)
}

// ListArticles returns a page of articles, newest first
func (r *PostgresNodeRepository) ListArticles(ctx context.Context, siteID *string, creatorID string, offset, limit int) ([]models.Node, int, error) {
	where := `kind = 'article' AND site_id IS NOT DISTINCT FROM $1::uuid
		AND ($1::uuid IS NOT NULL OR creator_id = $2)`

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, r.tables.Nodes, where)
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, countQuery, siteID, creatorID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count articles: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY created_at DESC
		OFFSET $3 LIMIT $4
	`, nodeColumns, r.tables.Nodes, where)

	nodes, err := r.queryNodes(ctx, query, siteID, creatorID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return nodes, total, nil
}

func (r *PostgresNodeRepository) queryNodes(ctx context.Context, query string, args ...any) ([]models.Node, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	nodes := []models.Node{}
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		nodes = append(nodes, *node)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	return nodes, nil
}
