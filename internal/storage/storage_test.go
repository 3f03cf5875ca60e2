package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hperssn/genesis/internal/document"
)

func repositories(t *testing.T) map[string]Repository {
	t.Helper()

	repos := map[string]Repository{}

	fileRepo, err := NewFileRepository(filepath.Join(t.TempDir(), "generated_prds"))
	require.NoError(t, err)
	repos["file"] = fileRepo

	sqliteRepo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "documents.db"))
	require.NoError(t, err)
	repos["sqlite"] = sqliteRepo

	if dsn := os.Getenv("GENESIS_TEST_POSTGRES_DSN"); dsn != "" {
		pg, err := NewPostgresRepository(dsn)
		require.NoError(t, err)
		_, err = pg.db.Exec(`TRUNCATE documents`)
		require.NoError(t, err)
		repos["postgres"] = pg
	}

	for _, r := range repos {
		t.Cleanup(func() { r.Close() })
	}
	return repos
}

func TestRepositories(t *testing.T) {
	ctx := context.Background()
	saved := time.Date(2025, 1, 2, 3, 4, 6, 0, time.UTC)

	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			n, err := repo.CountDocuments(ctx)
			require.NoError(t, err)
			assert.Zero(t, n)

			rec := FromPayload(document.Payload{
				Markdown:  "# doc one",
				Answers:   map[string]string{"0": "A CLI tool for X"},
				Timestamp: "2025-01-02T03:04:05.678Z",
			}, saved)

			id, err := repo.SaveDocument(ctx, rec)
			require.NoError(t, err)
			assert.Equal(t, "PRD_2025-01-02T03-04-05-678Z.md", id)

			got, err := repo.GetDocument(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, "# doc one", got.Markdown)
			assert.Equal(t, "2025-01-02T03:04:05.678Z", got.Timestamp)
			assert.Equal(t, map[string]string{"0": "A CLI tool for X"}, got.Answers)

			later := FromPayload(document.Payload{Markdown: "# doc two", Timestamp: "2025-01-03T00:00:00.000Z"}, saved.Add(time.Hour))
			_, err = repo.SaveDocument(ctx, later)
			require.NoError(t, err)

			list, err := repo.ListDocuments(ctx, 10)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, later.ID, list[0].ID)

			list, err = repo.ListDocuments(ctx, 1)
			require.NoError(t, err)
			assert.Len(t, list, 1)

			n, err = repo.CountDocuments(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			_, err = repo.GetDocument(ctx, "PRD_missing.md")
			assert.ErrorIs(t, err, ErrDocumentNotFound)
		})
	}
}

func TestFileRepositoryWritesBothFiles(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileRepository(dir)
	require.NoError(t, err)

	rec := FromPayload(document.Payload{
		Markdown:  "# PRD",
		Answers:   map[string]string{"1": "joy"},
		Timestamp: "2025-01-02T03:04:05.678Z",
	}, time.Now())

	_, err = repo.SaveDocument(context.Background(), rec)
	require.NoError(t, err)

	md, err := os.ReadFile(filepath.Join(dir, "PRD_2025-01-02T03-04-05-678Z.md"))
	require.NoError(t, err)
	assert.Equal(t, "# PRD", string(md))

	raw, err := os.ReadFile(filepath.Join(dir, "answers_2025-01-02T03-04-05-678Z.json"))
	require.NoError(t, err)

	var af map[string]any
	require.NoError(t, json.Unmarshal(raw, &af))
	assert.Equal(t, "2025-01-02T03:04:05.678Z", af["timestamp"])
	assert.Equal(t, "PRD_2025-01-02T03-04-05-678Z.md", af["markdown_file"])
	assert.Equal(t, map[string]any{"1": "joy"}, af["answers"])
}

func TestFileRepositoryRejectsTraversal(t *testing.T) {
	repo, err := NewFileRepository(t.TempDir())
	require.NoError(t, err)

	_, err = repo.GetDocument(context.Background(), "../PRD_x.md")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestFilenames(t *testing.T) {
	tests := []struct {
		ts   string
		md   string
		json string
	}{
		{ts: "2025-01-02T03:04:05.678Z", md: "PRD_2025-01-02T03-04-05-678Z.md", json: "answers_2025-01-02T03-04-05-678Z.json"},
		{ts: "2025-01-02T03:04:05+02:00", md: "PRD_2025-01-02T03-04-05+02-00.md", json: "answers_2025-01-02T03-04-05+02-00.json"},
		{ts: "../../etc/passwd", md: "PRD_------etc-passwd.md", json: "answers_------etc-passwd.json"},
	}
	for _, tt := range tests {
		t.Run(tt.ts, func(t *testing.T) {
			assert.Equal(t, tt.md, MarkdownFilename(tt.ts))
			assert.Equal(t, tt.json, AnswersFilename(tt.ts))
		})
	}
}

func TestFromPayloadDefaults(t *testing.T) {
	now := time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC)
	rec := FromPayload(document.Payload{Markdown: "x"}, now)

	assert.Equal(t, "2025-05-06T07:08:09.000000", rec.Timestamp)
	assert.NotNil(t, rec.Answers)
	assert.Equal(t, now, rec.SavedAt)
}

func TestSubmitter(t *testing.T) {
	repo, err := NewFileRepository(t.TempDir())
	require.NoError(t, err)

	s := Submitter{Repo: repo}
	receipt, err := s.Submit(context.Background(), document.Payload{Markdown: "# x", Timestamp: "2025-01-02T03:04:05.678Z"})
	require.NoError(t, err)
	assert.Equal(t, "PRD_2025-01-02T03-04-05-678Z.md", receipt.Filename)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("mongo", "", "")
	assert.Error(t, err)
}
