// Package document assembles the product requirements document from the
// questionnaire and its answers and hands it to storage.
package document

import (
	"strconv"
	"strings"
	"time"

	"github.com/hperssn/genesis/internal/domain"
)

const (
	Title    = "Rapid Prototype Genesis - Product Requirements Document"
	NoAnswer = "(No answer provided)"
)

const commitment = `## The Rapid Prototype Commitment

- **NO additional features** beyond what's specified
- **NO perfect-seeking** that delays shipping
- **NO committees** - one vision, one decision-maker
- **YES to opinionated defaults**
- **YES to surprising delight**
- **YES to shipping TODAY**

*"Real artists ship."* - Steve Jobs
`

// Document is one generated PRD.
type Document struct {
	Markdown    string
	GeneratedAt time.Time
	Filename    string
}

// New assembles the document for answers as of now.
func New(questions []domain.Question, answers domain.AnswerSet, now time.Time) Document {
	return Document{
		Markdown:    Assemble(questions, answers, now),
		GeneratedAt: now,
		Filename:    DownloadFilename(now),
	}
}

// Assemble renders the markdown document. Every question contributes exactly
// one entry; a section heading precedes the first question of each
// contiguous run of the same section. The output depends only on its inputs.
func Assemble(questions []domain.Question, answers domain.AnswerSet, generatedAt time.Time) string {
	var sb strings.Builder

	sb.WriteString("# " + Title + "\n\n")
	sb.WriteString("*Generated: " + GeneratedStamp(generatedAt) + "*\n\n")
	sb.WriteString("---\n\n")

	section := ""
	for i, q := range questions {
		if i == 0 || q.Section != section {
			section = q.Section
			sb.WriteString("## " + section + "\n\n")
		}

		answer, _ := answers.Get(i)
		if answer == "" {
			answer = NoAnswer
		}

		sb.WriteString("### ")
		sb.WriteString(strconv.Itoa(q.Number))
		sb.WriteString(". " + q.Text + "\n")
		sb.WriteString("*" + q.Hint + "*\n\n")
		sb.WriteString("**Answer:** " + answer + "\n\n")
	}

	sb.WriteString("---\n\n")
	sb.WriteString(commitment)

	return sb.String()
}

// GeneratedStamp formats the human readable generation time.
func GeneratedStamp(t time.Time) string {
	return t.Format("1/2/2006, 3:04:05 PM")
}

// Timestamp formats t as ISO-8601 UTC with milliseconds, the form sent to
// the persistence endpoint.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// DownloadFilename is the name the document is offered under locally,
// e.g. PRD-2025-01-02T03-04-05.md.
func DownloadFilename(t time.Time) string {
	return "PRD-" + t.UTC().Format("2006-01-02T15-04-05") + ".md"
}
