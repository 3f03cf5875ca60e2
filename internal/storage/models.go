package storage

import (
	"context"
	"strings"
	"time"

	"github.com/hperssn/genesis/internal/document"
)

type DocumentRecord struct {
	ID        string            `json:"id"`
	Timestamp string            `json:"timestamp"`
	Markdown  string            `json:"markdown,omitempty"`
	Answers   map[string]string `json:"answers,omitempty"`
	SavedAt   time.Time         `json:"savedAt"`
}

// FromPayload converts a submission into a record. A missing timestamp is
// replaced by now.
func FromPayload(p document.Payload, now time.Time) *DocumentRecord {
	ts := p.Timestamp
	if ts == "" {
		ts = now.Format("2006-01-02T15:04:05.000000")
	}

	answers := p.Answers
	if answers == nil {
		answers = map[string]string{}
	}

	return &DocumentRecord{
		ID:        MarkdownFilename(ts),
		Timestamp: ts,
		Markdown:  p.Markdown,
		Answers:   answers,
		SavedAt:   now,
	}
}

// MarkdownFilename is the stored name of the document submitted at ts,
// e.g. PRD_2025-01-02T03-04-05-678Z.md.
func MarkdownFilename(ts string) string {
	return "PRD_" + fileSafe(ts) + ".md"
}

// AnswersFilename is the stored name of the raw answers submitted at ts.
func AnswersFilename(ts string) string {
	return "answers_" + fileSafe(ts) + ".json"
}

// fileSafe replaces ':' and '.' with '-' and neutralizes anything that
// could act as a path separator.
func fileSafe(ts string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '+':
			return r
		default:
			return '-'
		}
	}, ts)
}

// Submitter hands documents straight to a repository in process.
type Submitter struct {
	Repo Repository
	Now  func() time.Time
}

func (s Submitter) Submit(ctx context.Context, p document.Payload) (document.Receipt, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	id, err := s.Repo.SaveDocument(ctx, FromPayload(p, now()))
	if err != nil {
		return document.Receipt{}, err
	}
	return document.Receipt{Filename: id}, nil
}
