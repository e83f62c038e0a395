// Package server exposes Sunny's JSON API over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/abhisek/sunny/internal/auth"
	"github.com/abhisek/sunny/internal/chat"
	"github.com/abhisek/sunny/internal/dashboard"
	"github.com/abhisek/sunny/internal/notes"
	"github.com/abhisek/sunny/internal/progress"
	"github.com/abhisek/sunny/internal/quiz"
	"github.com/abhisek/sunny/internal/ratelimit"
	"github.com/abhisek/sunny/internal/session"
	"github.com/abhisek/sunny/internal/store"
	"github.com/abhisek/sunny/internal/telemetry"
)

// Deps are the services behind the API. Metrics and ChatLimiter are
// optional.
type Deps struct {
	Store     store.Store
	Auth      *auth.Service
	Progress  *progress.Service
	Quiz      *quiz.Service
	Sessions  *session.Service
	Chat      *chat.Service
	Notes     *notes.Service
	Dashboard *dashboard.Builder

	Limiter     *ratelimit.Limiter
	ChatLimiter *ratelimit.Limiter
	Metrics     *telemetry.Collector
	Logger      *zap.Logger

	CORSOrigins []string
	Demo        bool
	// TrustProxy takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable only behind a proxy that overwrites them.
	TrustProxy bool
}

// Server routes requests to the services.
type Server struct {
	Deps
	now func() time.Time
}

// New creates a Server.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Server{Deps: deps, now: time.Now}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	if s.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Recoverer)
	r.Use(accessLog(s.Logger))
	if s.Metrics != nil {
		r.Use(s.Metrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.health)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit(s.Limiter))
			r.Post("/auth/register", s.register)
			r.Post("/auth/login", s.login)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Use(s.rateLimit(s.Limiter))

			r.Get("/me", s.me)
			r.Get("/dashboard", s.dashboard)

			r.Post("/session/start", s.startSession)
			r.Post("/session/continue", s.continueSession)

			r.Route("/quiz", func(r chi.Router) {
				r.Get("/", s.listQuizzes)
				r.Post("/start", s.startQuiz)
				r.Post("/answer", s.answerQuiz)
				r.Get("/{id}", s.currentQuiz)
				r.Get("/{id}/summary", s.quizSummary)
			})

			r.Route("/notes", func(r chi.Router) {
				r.Get("/", s.listNotes)
				r.Post("/", s.createNote)
				r.Get("/{id}", s.getNote)
				r.Put("/{id}", s.updateNote)
				r.Delete("/{id}", s.deleteNote)
			})

			r.With(s.rateLimit(s.ChatLimiter)).Post("/chat", s.sendChat)
			r.Get("/chat/history", s.chatHistory)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if s.Store != nil {
		if err := s.Store.Ping(ctx); err != nil {
			s.Logger.Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "demo": s.Demo})
}

// ListenAndServe runs the HTTP server until ctx is cancelled, then drains
// in-flight requests for up to ten seconds.
func ListenAndServe(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
