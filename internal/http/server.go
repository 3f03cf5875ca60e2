// Package httpapi serves the questionnaire page, the session API the page
// drives and the document persistence endpoint.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hperssn/genesis/internal/logging"
	"github.com/hperssn/genesis/internal/runner"
	"github.com/hperssn/genesis/internal/storage"
)

type Options struct {
	Manager *runner.SessionManager
	Repo    storage.Repository
	Logger  *zap.Logger

	// SaveLimiter throttles /save-prd. Nil means unlimited.
	SaveLimiter *rate.Limiter

	Now func() time.Time
}

type server struct {
	manager *runner.SessionManager
	repo    storage.Repository
	log     *zap.Logger
	limiter *rate.Limiter
	now     func() time.Time
}

// NewRouter wires every route onto a chi router.
func NewRouter(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &server{
		manager: opts.Manager,
		repo:    opts.Repo,
		log:     opts.Logger,
		limiter: opts.SaveLimiter,
		now:     opts.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logging.Requests(s.log))
	r.Use(middleware.Recoverer)
	r.Use(allowCrossOrigin)

	r.Get("/", serveIndex)
	r.Get("/manifest.json", serveManifest)
	r.Get("/sw.js", serveServiceWorker)
	r.Get("/icon-{size}.png", serveIcon)

	r.Get("/health", s.health)
	r.With(s.throttle).Post("/save-prd", s.savePRD)
	r.Get("/documents", s.listDocuments)
	r.Get("/documents/{id}", s.getDocument)

	r.Route("/sessions", func(r chi.Router) {
		r.Use(IdentifyUser)

		r.Post("/", s.startSession)
		r.Get("/{id}", s.getSession)
		r.Delete("/{id}", s.stopSession)
		r.Put("/{id}/answer", s.saveAnswer)
		r.Post("/{id}/next", s.next)
		r.Post("/{id}/previous", s.previous)
		r.Post("/{id}/restart", s.restart)
		r.Post("/{id}/dictation/toggle", s.toggleDictation)
		r.Post("/{id}/dictation", s.pushDictation)
		r.Get("/{id}/document", s.downloadDocument)
		r.Get("/{id}/events", StreamSessionNotices(s.manager))
	})

	return r
}

// allowCrossOrigin lets pages served elsewhere submit documents.
func allowCrossOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			respondJSON(w, saveResponse{Error: "too many requests"}, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
