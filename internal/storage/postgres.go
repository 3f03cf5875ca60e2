package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	_ "github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(connStr string) (*PostgresRepository, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	repo := &PostgresRepository{db: db}
	if err := repo.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

func (r *PostgresRepository) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		markdown TEXT NOT NULL,
		answers_json JSONB NOT NULL,
		saved_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_documents_saved_at ON documents(saved_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

func (r *PostgresRepository) SaveDocument(ctx context.Context, rec *DocumentRecord) (string, error) {
	answersJSON, err := json.Marshal(rec.Answers)
	if err != nil {
		return "", err
	}

	query := `
		INSERT INTO documents (id, timestamp, markdown, answers_json, saved_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			timestamp = EXCLUDED.timestamp,
			markdown = EXCLUDED.markdown,
			answers_json = EXCLUDED.answers_json,
			saved_at = EXCLUDED.saved_at
	`

	_, err = r.db.ExecContext(ctx, query,
		rec.ID,
		rec.Timestamp,
		rec.Markdown,
		answersJSON,
		rec.SavedAt,
	)
	if err != nil {
		return "", err
	}

	return rec.ID, nil
}

func (r *PostgresRepository) GetDocument(ctx context.Context, id string) (*DocumentRecord, error) {
	query := `
		SELECT id, timestamp, markdown, answers_json, saved_at
		FROM documents
		WHERE id = $1
	`

	var rec DocumentRecord
	var answersJSON []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID,
		&rec.Timestamp,
		&rec.Markdown,
		&answersJSON,
		&rec.SavedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(answersJSON, &rec.Answers); err != nil {
		return nil, err
	}

	return &rec, nil
}

func (r *PostgresRepository) ListDocuments(ctx context.Context, limit int) ([]DocumentRecord, error) {
	query := `
		SELECT id, timestamp, saved_at
		FROM documents
		ORDER BY saved_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSummaries(rows)
}

func (r *PostgresRepository) CountDocuments(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n)
	return n, err
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}
