package cms

import (
	"context"
	"fmt"

	"inkstand/internal/domain"
	models "inkstand/internal/domain/models/cms"
	cmsRepo "inkstand/internal/domain/repositories/cms"
	"inkstand/internal/repository/postgres"

	"github.com/RoaringBitmap/roaring"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresUploadSessionRepository implements the UploadSessionRepository interface.
// The received-chunk set is stored as a serialized roaring bitmap.
type PostgresUploadSessionRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewUploadSessionRepository creates a new upload session repository
func NewUploadSessionRepository(config *postgres.RepositoryConfig) cmsRepo.UploadSessionRepository {
	return &PostgresUploadSessionRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Get retrieves a session by (hash, name)
func (r *PostgresUploadSessionRepository) Get(ctx context.Context, hash, name string) (*models.UploadSession, error) {
	query := fmt.Sprintf(`
		SELECT hash, name, size, mime_type, total_chunks, received_count, received_chunks,
			is_complete, final_path, url, created_at, updated_at
		FROM %s
		WHERE hash = $1 AND name = $2
	`, r.tables.UploadSessions)

	var (
		session  models.UploadSession
		received []byte
	)
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, hash, name).Scan(
		&session.Hash,
		&session.Name,
		&session.Size,
		&session.MimeType,
		&session.TotalChunks,
		&session.ReceivedCount,
		&received,
		&session.IsComplete,
		&session.FinalPath,
		&session.URL,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("upload %s/%s: %w", hash, name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get upload session: %w", err)
	}

	session.Received, err = decodeReceived(received)
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// Save upserts a session
func (r *PostgresUploadSessionRepository) Save(ctx context.Context, session *models.UploadSession) error {
	received, err := encodeReceived(session.Received)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (hash, name, size, mime_type, total_chunks, received_count,
			received_chunks, is_complete, final_path, url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (hash, name) DO UPDATE SET
			received_count = GREATEST(%s.received_count, EXCLUDED.received_count),
			received_chunks = EXCLUDED.received_chunks,
			is_complete = EXCLUDED.is_complete,
			final_path = EXCLUDED.final_path,
			url = EXCLUDED.url,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`, r.tables.UploadSessions, r.tables.UploadSessions)

	executor := postgres.GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		session.Hash,
		session.Name,
		session.Size,
		session.MimeType,
		session.TotalChunks,
		session.ReceivedCount,
		received,
		session.IsComplete,
		session.FinalPath,
		session.URL,
	).Scan(&session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save upload session: %w", err)
	}
	return nil
}

// encodeReceived serializes the received-chunk set for the BYTEA column.
// A nil set is stored as an empty bitmap.
func encodeReceived(b *roaring.Bitmap) ([]byte, error) {
	if b == nil {
		b = roaring.New()
	}
	data, err := b.ToBytes()
	if err != nil {
		return nil, fmt.Errorf("encode received chunks: %w", err)
	}
	return data, nil
}

// decodeReceived is the inverse of encodeReceived. Empty or NULL column
// values decode to an empty set.
func decodeReceived(data []byte) (*roaring.Bitmap, error) {
	b := roaring.New()
	if len(data) == 0 {
		return b, nil
	}
	if err := b.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("decode received chunks: %w", err)
	}
	return b, nil
}
