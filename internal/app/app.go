// Package app assembles Sunny's services from configuration.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/sunny/internal/auth"
	"github.com/abhisek/sunny/internal/badges"
	"github.com/abhisek/sunny/internal/chat"
	"github.com/abhisek/sunny/internal/config"
	"github.com/abhisek/sunny/internal/dashboard"
	"github.com/abhisek/sunny/internal/llm"
	"github.com/abhisek/sunny/internal/notes"
	"github.com/abhisek/sunny/internal/progress"
	"github.com/abhisek/sunny/internal/quiz"
	"github.com/abhisek/sunny/internal/ratelimit"
	"github.com/abhisek/sunny/internal/server"
	"github.com/abhisek/sunny/internal/session"
	"github.com/abhisek/sunny/internal/store"
	"github.com/abhisek/sunny/internal/telemetry"
)

// App holds the wired services. Close releases the store.
type App struct {
	Config config.Config
	Logger *zap.Logger

	Store    store.Store
	Provider llm.Provider
	Metrics  *telemetry.Collector

	Badges    *badges.Service
	Progress  *progress.Service
	Quiz      *quiz.Service
	Sessions  *session.Service
	Chat      *chat.Service
	Notes     *notes.Service
	Dashboard *dashboard.Builder
	Auth      *auth.Service
}

// OpenStore opens the backend selected by cfg.
func OpenStore(cfg config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case "supabase":
		return store.OpenSupabase(cfg.Store.SupabaseURL, cfg.Store.SupabaseKey)
	default:
		path, err := cfg.DBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		if err := store.EnsureDir(path); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		return store.Open(path)
	}
}

// New opens the store and builds every service. Without an LLM provider,
// or in demo mode, the services fall back to canned content.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	st, err := OpenStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a, err := Build(ctx, cfg, st, logger)
	if err != nil {
		st.Close()
		return nil, err
	}
	return a, nil
}

// Build wires services on top of an open store.
func Build(ctx context.Context, cfg config.Config, st store.Store, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger, Store: st, Metrics: telemetry.NewCollector()}

	if !cfg.Server.Demo {
		a.Provider = newProvider(ctx, cfg, st, logger, a.Metrics)
	}

	a.Badges = badges.NewService(st.Badges(), logger)
	a.Progress = progress.NewService(st.Users(), a.Badges, cfg.ProgressConfig(), logger)
	a.Progress.SetObserver(a.Metrics)

	var primary quiz.Generator
	var planner session.Planner
	var coach session.Coach
	if a.Provider != nil {
		primary = quiz.NewLLMGenerator(a.Provider, quiz.DefaultGeneratorConfig())
		planner = session.NewLLMPlanner(a.Provider)
		coach = session.NewLLMCoach(a.Provider)
	}
	gen := quiz.WithFallback(primary, quiz.NewBank(uint64(time.Now().UnixNano())), logger)

	a.Quiz = quiz.NewService(st.Quizzes(), st.Users(), gen, a.Progress, a.Badges, cfg.QuizConfig(), logger)
	a.Quiz.SetObserver(a.Metrics)
	a.Sessions = session.NewService(st.Sessions(), st.Users(), planner, coach, a.Progress, a.Badges, quiz.DefaultTopic, logger)
	a.Chat = chat.NewService(st.Chats(), a.Provider, a.Progress, chat.DefaultConfig(), logger)
	a.Notes = notes.NewService(st.Notes(), logger)
	a.Dashboard = dashboard.NewBuilder(st.Users(), st.Notes(), a.Quiz, a.Progress, a.Badges, dashboard.DefaultConfig())

	authSvc, err := auth.NewService(st.Users(), cfg.AuthConfig(), logger)
	if err != nil {
		return nil, err
	}
	a.Auth = authSvc
	return a, nil
}

// newProvider returns the configured LLM provider, or nil when none is
// configured or it fails to initialize.
func newProvider(ctx context.Context, cfg config.Config, st store.Store, logger *zap.Logger, obs llm.CallObserver) llm.Provider {
	llmCfg, ok := cfg.LLMConfig()
	if !ok {
		logger.Warn("no LLM provider configured, serving canned content")
		return nil
	}
	if err := llmCfg.Validate(); err != nil {
		logger.Warn("LLM provider misconfigured, serving canned content", zap.Error(err))
		return nil
	}
	p, err := llm.NewProvider(ctx, llmCfg, llm.Deps{Events: st.Events(), Logger: logger, Observer: obs})
	if err != nil {
		logger.Warn("LLM provider unavailable, serving canned content", zap.Error(err))
		return nil
	}
	logger.Info("LLM provider ready", zap.String("provider", llmCfg.Provider), zap.String("model", p.ModelID()))
	return p
}

// HTTPServer returns the API server for the app.
func (a *App) HTTPServer() *http.Server {
	srv := server.New(server.Deps{
		Store:       a.Store,
		Auth:        a.Auth,
		Progress:    a.Progress,
		Quiz:        a.Quiz,
		Sessions:    a.Sessions,
		Chat:        a.Chat,
		Notes:       a.Notes,
		Dashboard:   a.Dashboard,
		Limiter:     ratelimit.New(a.Config.RateLimit.Requests, a.Config.RateLimit.Window),
		ChatLimiter: ratelimit.New(a.Config.RateLimit.Chat, a.Config.RateLimit.Window),
		Metrics:     a.Metrics,
		Logger:      a.Logger,
		CORSOrigins: a.Config.Server.CORSOrigins,
		Demo:        a.Provider == nil,
		TrustProxy:  a.Config.Server.TrustProxy,
	})
	return &http.Server{
		Addr:              a.Config.Server.Addr,
		Handler:           srv.Handler(),
		ReadTimeout:       a.Config.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      a.Config.Server.WriteTimeout,
	}
}

// UserByEmail looks up a learner for the CLI commands.
func (a *App) UserByEmail(ctx context.Context, email string) (*store.User, error) {
	u, err := a.Store.Users().GetByEmail(ctx, auth.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", email, err)
	}
	return u, nil
}

// ResetUser clears a learner's XP, streaks, topic progress and chat.
func (a *App) ResetUser(ctx context.Context, userID string) error {
	if err := a.Progress.Reset(ctx, userID); err != nil {
		return err
	}
	if err := a.Chat.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear chat: %w", err)
	}
	return nil
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}
