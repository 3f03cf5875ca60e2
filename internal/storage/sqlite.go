package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	repo := &SQLiteRepository{db: db}
	if err := repo.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

func (r *SQLiteRepository) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		markdown TEXT NOT NULL,
		answers_json TEXT NOT NULL,
		saved_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_documents_saved_at ON documents(saved_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

func (r *SQLiteRepository) SaveDocument(ctx context.Context, rec *DocumentRecord) (string, error) {
	answersJSON, err := json.Marshal(rec.Answers)
	if err != nil {
		return "", err
	}

	query := `
		INSERT OR REPLACE INTO documents (id, timestamp, markdown, answers_json, saved_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		rec.ID,
		rec.Timestamp,
		rec.Markdown,
		string(answersJSON),
		rec.SavedAt.UTC(),
	)
	if err != nil {
		return "", err
	}

	return rec.ID, nil
}

func (r *SQLiteRepository) GetDocument(ctx context.Context, id string) (*DocumentRecord, error) {
	query := `
		SELECT id, timestamp, markdown, answers_json, saved_at
		FROM documents
		WHERE id = ?
	`

	var rec DocumentRecord
	var answersJSON string
	var savedAt time.Time

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID,
		&rec.Timestamp,
		&rec.Markdown,
		&answersJSON,
		&savedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(answersJSON), &rec.Answers); err != nil {
		return nil, err
	}
	rec.SavedAt = savedAt

	return &rec, nil
}

func (r *SQLiteRepository) ListDocuments(ctx context.Context, limit int) ([]DocumentRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	query := `
		SELECT id, timestamp, saved_at
		FROM documents
		ORDER BY saved_at DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSummaries(rows)
}

func (r *SQLiteRepository) CountDocuments(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n)
	return n, err
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func scanSummaries(rows *sql.Rows) ([]DocumentRecord, error) {
	var records []DocumentRecord

	for rows.Next() {
		var rec DocumentRecord
		if err := rows.Scan(&rec.ID, &rec.Timestamp, &rec.SavedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
