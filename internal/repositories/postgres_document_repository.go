package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const mainDocumentID = "main"

// PostgresDocumentRepository keeps the document in a single row of the documents table.
// The column type is json, not jsonb, so the stored text comes back unchanged.
type PostgresDocumentRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresDocumentRepository(pool *pgxpool.Pool) *PostgresDocumentRepository {
	return &PostgresDocumentRepository{pool: pool}
}

func (r *PostgresDocumentRepository) EnsureInitialized(ctx context.Context, initial []byte) error {
	query := `
		INSERT INTO documents (id, body, updated_at)
		VALUES ($1, $2::json, now())
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, mainDocumentID, string(initial))
	return err
}

func (r *PostgresDocumentRepository) Load(ctx context.Context) ([]byte, error) {
	query := `SELECT body::text FROM documents WHERE id = $1`

	var body string
	err := r.pool.QueryRow(ctx, query, mainDocumentID).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return []byte(body), nil
}

func (r *PostgresDocumentRepository) Save(ctx context.Context, body []byte) error {
	query := `
		INSERT INTO documents (id, body, updated_at)
		VALUES ($1, $2::json, now())
		ON CONFLICT (id) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query, mainDocumentID, string(body))
	return err
}

func (r *PostgresDocumentRepository) Snapshot(ctx context.Context, reason string) (string, error) {
	id := uuid.New()

	query := `
		INSERT INTO document_snapshots (id, reason, body, created_at)
		SELECT $1::uuid, $2::text, body, now() FROM documents WHERE id = $3
	`
	result, err := r.pool.Exec(ctx, query, id, reason, mainDocumentID)
	if err != nil {
		return "", err
	}
	if result.RowsAffected() == 0 {
		return "", ErrDocumentNotFound
	}
	return id.String(), nil
}

// LoadSnapshot returns the body of a snapshot taken by Snapshot. locator is the snapshot id.
func (r *PostgresDocumentRepository) LoadSnapshot(ctx context.Context, locator string) ([]byte, error) {
	id, err := uuid.Parse(locator)
	if err != nil {
		return nil, ErrSnapshotNotFound
	}

	query := `SELECT body::text FROM document_snapshots WHERE id = $1`

	var body string
	err = r.pool.QueryRow(ctx, query, id).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	return []byte(body), nil
}

func (r *PostgresDocumentRepository) Close() error {
	r.pool.Close()
	return nil
}
