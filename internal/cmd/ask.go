package cmd

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hperssn/genesis/internal/client"
	"github.com/hperssn/genesis/internal/config"
	"github.com/hperssn/genesis/internal/dictation"
	"github.com/hperssn/genesis/internal/document"
	"github.com/hperssn/genesis/internal/domain"
	"github.com/hperssn/genesis/internal/kvstore"
	"github.com/hperssn/genesis/internal/logging"
	"github.com/hperssn/genesis/internal/runner"
	"github.com/hperssn/genesis/internal/storage"
	"github.com/hperssn/genesis/internal/tui"
)

// NewAskCommand creates the ask command
func NewAskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Answer the questionnaire in the terminal",
		Long: `Walk through the questionnaire in the terminal. Answers are kept in a
local store and restored the next time you run ask.

When the last question is answered the document is written to the output
directory and submitted to --server, or to the local document storage when
no server is given.

Keys:
  ctrl+n / ctrl+→   next question
  ctrl+p / ctrl+←   previous question
  ctrl+space        toggle voice input (needs dictation.command in the config)
  ctrl+r            start a new project
  esc / ctrl+c      quit

When input is not a terminal, each line answers one question.`,
		Args: cobra.NoArgs,
		RunE: runAsk,
	}

	cmd.Flags().String("server", "", "Submit documents to a running genesis server at this URL")
	cmd.Flags().String("output", "", "Directory for the generated document (default: current directory)")
	cmd.Flags().String("client", "", "Name of the local answers store (default: $USER)")
	addStorageFlags(cmd)

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	mergeStorageFlags(cmd, cfg, nil, changedString(cmd, "server"))
	if out := changedString(cmd, "output"); out != nil {
		cfg.OutputDir = *out
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	in, out := cmd.InOrStdin(), cmd.OutOrStdout()
	fullScreen := isTerminal(in) && isTerminal(out)

	// The full-screen walker owns the terminal; logs would tear it.
	log := zap.NewNop()
	if !fullScreen {
		if log, err = logging.New(cfg.LogLevel, cfg.LogFormat); err != nil {
			return err
		}
		defer log.Sync()
	}

	clientName, _ := cmd.Flags().GetString("client")
	if clientName == "" {
		clientName = os.Getenv("USER")
	}
	store, err := kvstore.NewFile(kvstore.Namespace(cfg.LocalStoreDir, clientName))
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}

	submitter, closeSubmitter, err := newSubmitter(cfg)
	if err != nil {
		return err
	}
	defer closeSubmitter()

	publisher := document.NewPublisher(submitter, log)
	defer publisher.Wait()

	walker := runner.NewWalker(domain.NewSession("", clientName), domain.Questions(), store, newDictation(cfg), log)
	walker.LoadSaved()
	defer walker.StopDictation()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := tui.Options{
		Walker:    walker,
		Publisher: publisher,
		OutputDir: cfg.OutputDir,
	}

	if !fullScreen {
		_, _, err := tui.LineMode(ctx, in, out, opts)
		return err
	}

	res, done, err := tui.Run(ctx, opts)
	if err != nil {
		return err
	}
	if done && res.Path != "" {
		color.New(color.FgGreen).Fprintf(out, "✓ PRD written to %s\n", res.Path)
	}
	return nil
}

// newSubmitter picks where generated documents go: a remote server when one
// is configured, the local repository otherwise.
func newSubmitter(cfg *config.Config) (document.Submitter, func(), error) {
	if cfg.ServerURL != "" {
		return client.New(cfg.ServerURL, &http.Client{Timeout: 30 * time.Second}), func() {}, nil
	}

	repo, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Dir, cfg.Storage.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}
	return storage.Submitter{Repo: repo}, func() { repo.Close() }, nil
}

func newDictation(cfg *config.Config) dictation.Provider {
	if cfg.Dictation.Command == "" {
		return dictation.Unavailable{}
	}
	return dictation.NewCommand(cfg.Dictation.Command, cfg.Dictation.Args...)
}

func isTerminal(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
