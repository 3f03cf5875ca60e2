// Package tui runs the questionnaire in a terminal, either full screen or as
// a plain line-by-line prompt.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hperssn/genesis/internal/document"
	"github.com/hperssn/genesis/internal/domain"
	"github.com/hperssn/genesis/internal/filelock"
	"github.com/hperssn/genesis/internal/runner"
)

// Options configures both front ends.
type Options struct {
	Walker *runner.Walker

	// Publisher submits the generated document. Nil skips submission.
	Publisher *document.Publisher

	// OutputDir receives the document under its download filename. Empty
	// skips writing it.
	OutputDir string

	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// Result is what a finished walk produced.
type Result struct {
	Document document.Document
	// Path is where the document was written, empty when it was not.
	Path string
}

// finish assembles the document for the completed walk, writes it to the
// output directory and starts its submission. The notifier hears about the
// submission outcome later.
func finish(ctx context.Context, opts Options, n domain.Notifier) (Result, error) {
	s := opts.Walker.Session()
	doc := document.New(opts.Walker.Questions(), s.Answers, opts.now())
	res := Result{Document: doc}

	if opts.OutputDir != "" {
		path := filepath.Join(opts.OutputDir, doc.Filename)
		if err := filelock.LockAndWrite(path, []byte(doc.Markdown), 0644); err != nil {
			return res, fmt.Errorf("writing %s: %w", doc.Filename, err)
		}
		res.Path = path
	}

	if opts.Publisher != nil {
		opts.Publisher.Publish(ctx, doc, s.Answers, n)
	}
	return res, nil
}
