package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/hperssn/genesis/internal/document"
	"github.com/hperssn/genesis/internal/domain"
)

// NewRenderCommand creates the render command
func NewRenderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <answers.json>",
		Short: "Regenerate a document from saved answers",
		Long: `Regenerate a product requirements document from an answers file, either
one written by the server (answers_<timestamp>.json) or a bare object of
question index to answer.

Output is markdown, HTML with --html, or styled for the terminal when
stdout is one.`,
		Args: cobra.ExactArgs(1),
		RunE: runRender,
	}

	cmd.Flags().Bool("html", false, "Render HTML instead of markdown")
	cmd.Flags().Bool("plain", false, "Always print markdown, even on a terminal")

	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read answers: %w", err)
	}

	questions := domain.Questions()
	answers, generatedAt, err := parseAnswersFile(data, len(questions))
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	md := document.Assemble(questions, answers, generatedAt)
	out := cmd.OutOrStdout()

	if asHTML, _ := cmd.Flags().GetBool("html"); asHTML {
		html, err := document.RenderHTML(md)
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, html)
		return err
	}

	if plain, _ := cmd.Flags().GetBool("plain"); !plain && isTerminal(out) {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
		if err == nil {
			if styled, err := r.Render(md); err == nil {
				md = styled
			}
		}
	}

	_, err = io.WriteString(out, md)
	return err
}

// parseAnswersFile accepts the stored {timestamp, answers, markdown_file}
// record or a bare answer object. The generation time is the stored
// timestamp when it parses.
func parseAnswersFile(data []byte, n int) (domain.AnswerSet, time.Time, error) {
	var stored struct {
		Timestamp string          `json:"timestamp"`
		Answers   json.RawMessage `json:"answers"`
	}
	if err := json.Unmarshal(data, &stored); err == nil && len(stored.Answers) > 0 {
		answers, err := domain.DecodeAnswerSet(stored.Answers, n)
		if err != nil {
			return nil, time.Time{}, err
		}
		return answers, parseTimestamp(stored.Timestamp), nil
	}

	answers, err := domain.DecodeAnswerSet(data, n)
	if err != nil {
		return nil, time.Time{}, err
	}
	return answers, time.Time{}, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
