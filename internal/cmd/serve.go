package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hperssn/genesis/internal/config"
	"github.com/hperssn/genesis/internal/document"
	httpapi "github.com/hperssn/genesis/internal/http"
	"github.com/hperssn/genesis/internal/logging"
	"github.com/hperssn/genesis/internal/runner"
	"github.com/hperssn/genesis/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the questionnaire web app",
		Long: `Serve the installable web app, the session API it drives and the
endpoint that stores generated documents.

Examples:
  genesis serve
  genesis serve --listen :8080 --storage sqlite
  genesis serve --storage postgres --dsn postgres://localhost/genesis`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("listen", "", "Listen address (default: :5005)")
	addStorageFlags(cmd)

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	mergeStorageFlags(cmd, cfg, changedString(cmd, "listen"), nil)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer log.Sync()
	undo := zap.ReplaceGlobals(log)
	defer undo()

	repo, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Dir, cfg.Storage.DSN)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}
	defer repo.Close()

	publisher := document.NewPublisher(storage.Submitter{Repo: repo}, log)
	manager := runner.NewSessionManager(runner.Options{
		Stores:    runner.FileStores(cfg.LocalStoreDir),
		Publisher: publisher,
		Logger:    log,
		TTL:       cfg.SessionTTL,
	})
	defer manager.Close()
	defer publisher.Wait()

	srv := &http.Server{
		Addr: cfg.Listen,
		Handler: httpapi.NewRouter(httpapi.Options{
			Manager:     manager,
			Repo:        repo,
			Logger:      log,
			SaveLimiter: rate.NewLimiter(rate.Limit(cfg.SaveRate.PerSecond), cfg.SaveRate.Burst),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printBanner(cmd.OutOrStdout(), cfg, repo)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Listen))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Info("server stopped")
	return err
}

// accessURL turns a listen address into something a browser can open.
func accessURL(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return "http://" + listen
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// savedTo describes where repo keeps documents.
func savedTo(cfg *config.Config, repo storage.Repository) string {
	if fr, ok := repo.(*storage.FileRepository); ok {
		dir := fr.Dir()
		if !filepath.IsAbs(dir) {
			dir = "./" + dir
		}
		return dir + "/"
	}

	switch {
	case cfg.Storage.Driver == storage.DriverPostgres:
		return "postgres"
	case cfg.Storage.DSN != "":
		return "sqlite database " + cfg.Storage.DSN
	default:
		return "sqlite database in ./" + cfg.Storage.Dir + "/"
	}
}

func printBanner(w io.Writer, cfg *config.Config, repo storage.Repository) {
	bold := color.New(color.FgGreen, color.Bold)
	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)

	where := savedTo(cfg, repo)

	bold.Fprintln(w, "🚀 Rapid Prototype Genesis Server Starting...")
	fmt.Fprintf(w, "📱 Access at: %s\n", cyan.Sprint(accessURL(cfg.Listen)))
	fmt.Fprintln(w, "🎤 Voice input requires HTTPS in production")
	fmt.Fprintf(w, "💾 PRDs will be saved to: %s\n", where)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Keyboard shortcuts:")
	gray.Fprintln(w, "  Ctrl+Enter: Next question")
	gray.Fprintln(w, "  Ctrl+←/→: Navigate questions")
	gray.Fprintln(w, "  Ctrl+Space: Toggle voice input")
	fmt.Fprintln(w)
}
