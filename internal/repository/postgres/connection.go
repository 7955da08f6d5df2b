package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"inkstand/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Sites          string
	Nodes          string
	Tags           string
	UploadSessions string
	Diaries        string
	Carousels      string
	Projects       string
	Visits         string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Sites:          fmt.Sprintf("%ssites", prefix),
		Nodes:          fmt.Sprintf("%snodes", prefix),
		Tags:           fmt.Sprintf("%stags", prefix),
		UploadSessions: fmt.Sprintf("%supload_sessions", prefix),
		Diaries:        fmt.Sprintf("%sdiaries", prefix),
		Carousels:      fmt.Sprintf("%scarousels", prefix),
		Projects:       fmt.Sprintf("%sprojects", prefix),
		Visits:         fmt.Sprintf("%svisits", prefix),
	}
}

// All returns every table name, dependents first
func (t *TableNames) All() []string {
	return []string{t.Visits, t.Projects, t.Carousels, t.Diaries, t.UploadSessions, t.Tags, t.Nodes, t.Sites}
}

// CreateConnectionPool creates a new pgx connection pool.
//
// Port 6543 is the conventional PgBouncer transaction-pooler port, which does not
// support prepared statements. On that port the pool switches to
// QueryExecModeCacheDescribe (extended protocol, cached descriptions only) unless
// the connection string already sets default_query_exec_mode.
//
// Table prefixes are interpolated with fmt.Sprintf before the statement reaches
// the server, so each environment gets its own statement cache entries.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction stored in ctx, or the pool when there is none.
// Repositories call this so they join an enclosing ExecTx automatically.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}
