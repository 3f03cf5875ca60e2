package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hperssn/genesis/internal/filelock"
)

// FileRepository writes every document as PRD_<ts>.md next to an
// answers_<ts>.json holding the raw answers.
type FileRepository struct {
	dir string
}

var _ Repository = (*FileRepository)(nil)

// answersFile is the on-disk shape of answers_<ts>.json.
type answersFile struct {
	Timestamp    string            `json:"timestamp"`
	Answers      map[string]string `json:"answers"`
	MarkdownFile string            `json:"markdown_file"`
}

// DefaultDir is where documents are written when no directory is given.
const DefaultDir = "generated_prds"

func NewFileRepository(dir string) (*FileRepository, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating documents directory: %w", err)
	}
	return &FileRepository{dir: dir}, nil
}

func (r *FileRepository) Dir() string {
	return r.dir
}

func (r *FileRepository) SaveDocument(ctx context.Context, rec *DocumentRecord) (string, error) {
	mdName := MarkdownFilename(rec.Timestamp)
	answers, err := json.MarshalIndent(answersFile{
		Timestamp:    rec.Timestamp,
		Answers:      rec.Answers,
		MarkdownFile: mdName,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding answers: %w", err)
	}

	err = filelock.With(filepath.Join(r.dir, ".documents"), func() error {
		if err := filelock.AtomicWrite(filepath.Join(r.dir, mdName), []byte(rec.Markdown), 0644); err != nil {
			return err
		}
		return filelock.AtomicWrite(filepath.Join(r.dir, AnswersFilename(rec.Timestamp)), answers, 0644)
	})
	if err != nil {
		return "", fmt.Errorf("saving document %s: %w", mdName, err)
	}

	return mdName, nil
}

func (r *FileRepository) GetDocument(ctx context.Context, id string) (*DocumentRecord, error) {
	if id != filepath.Base(id) || !strings.HasPrefix(id, "PRD_") || !strings.HasSuffix(id, ".md") {
		return nil, ErrDocumentNotFound
	}

	path := filepath.Join(r.dir, id)
	md, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	rec := &DocumentRecord{ID: id, Markdown: string(md)}
	if info, err := os.Stat(path); err == nil {
		rec.SavedAt = info.ModTime()
	}

	stem := strings.TrimSuffix(strings.TrimPrefix(id, "PRD_"), ".md")
	raw, err := os.ReadFile(filepath.Join(r.dir, "answers_"+stem+".json"))
	if err == nil {
		var af answersFile
		if err := json.Unmarshal(raw, &af); err == nil {
			rec.Timestamp = af.Timestamp
			rec.Answers = af.Answers
		}
	}

	return rec, nil
}

func (r *FileRepository) ListDocuments(ctx context.Context, limit int) ([]DocumentRecord, error) {
	names, err := filepath.Glob(filepath.Join(r.dir, "PRD_*.md"))
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}

	records := make([]DocumentRecord, 0, len(names))
	for _, name := range names {
		rec, err := r.GetDocument(ctx, filepath.Base(name))
		if err != nil {
			return nil, err
		}
		rec.Markdown = ""
		rec.Answers = nil
		records = append(records, *rec)
	}
	return records, nil
}

func (r *FileRepository) CountDocuments(ctx context.Context) (int, error) {
	names, err := filepath.Glob(filepath.Join(r.dir, "*.md"))
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

func (r *FileRepository) Close() error {
	return nil
}
