package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrDocumentNotFound = errors.New("document not found")

// Repository persists submitted documents together with their raw answers.
type Repository interface {
	// SaveDocument stores rec and returns its identifier, the markdown
	// filename. Saving the same timestamp again replaces the document.
	SaveDocument(ctx context.Context, rec *DocumentRecord) (string, error)

	GetDocument(ctx context.Context, id string) (*DocumentRecord, error)

	// ListDocuments returns up to limit documents, newest first.
	ListDocuments(ctx context.Context, limit int) ([]DocumentRecord, error)

	CountDocuments(ctx context.Context) (int, error)

	Close() error
}

const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open returns the repository for driver. dir is used by the file driver,
// dsn by the database drivers. SQLite without a dsn keeps its database in
// dir.
func Open(driver, dir, dsn string) (Repository, error) {
	switch driver {
	case DriverFile, "":
		return NewFileRepository(dir)
	case DriverSQLite:
		if dsn == "" {
			if dir == "" {
				dir = DefaultDir
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("creating documents directory: %w", err)
			}
			dsn = filepath.Join(dir, "documents.db")
		}
		return NewSQLiteRepository(dsn)
	case DriverPostgres:
		return NewPostgresRepository(dsn)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
