// Package server wires the router, handlers, and services together and owns
// the HTTP server lifecycle. It is the composition root: every dependency
// chain is assembled in New, and main.go stays minimal.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nhasan/codenest/internal/auth"
	"github.com/nhasan/codenest/internal/config"
	"github.com/nhasan/codenest/internal/generate"
	"github.com/nhasan/codenest/internal/handler"
	"github.com/nhasan/codenest/internal/middleware"
	sqliteRepo "github.com/nhasan/codenest/internal/repository/sqlite"
	"github.com/nhasan/codenest/internal/service"
)

// Server holds the router and the resources it owns. The database
// connection is closed during shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain: database, token service,
// services, handlers, routes. Optional integrations (webhook, generation)
// are only mounted when their secrets are configured.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	gate := service.NewGate(s.db.Users(), s.config.FreeLanguage)
	users := service.NewUserService(s.db.Users(), s.logger)
	executions := service.NewExecutionService(s.db.Executions(), gate, s.logger)
	stats := service.NewStatsService(s.db.Executions(), s.db.Stars(), s.db.Snippets(), s.logger)
	snippets := service.NewSnippetService(s.db.Snippets(), s.db.Stars(), s.db.Comments(), s.db.Users(), s.logger)

	executionHandler := handler.NewExecutionHandler(executions, stats, users, s.logger)
	snippetHandler := handler.NewSnippetHandler(snippets, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		// Execution log and per-user analytics. History and stats are
		// public read; recording a run requires a session.
		r.With(auth.RequireAuth(tokens)).Post("/executions", executionHandler.HandleSave)
		r.Get("/users/{userID}", executionHandler.HandleGetUser)
		r.Get("/users/{userID}/executions", executionHandler.HandleList)
		r.Get("/users/{userID}/stats", executionHandler.HandleStats)

		// Shared snippets, stars, comments.
		r.Get("/snippets", snippetHandler.HandleList)
		r.With(auth.OptionalAuth(tokens)).Get("/snippets/{id}", snippetHandler.HandleGet)
		r.With(auth.OptionalAuth(tokens)).Get("/snippets/{id}/star", snippetHandler.HandleStarState)
		r.Get("/snippets/{id}/comments", snippetHandler.HandleListComments)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Post("/snippets", snippetHandler.HandleCreate)
			r.Delete("/snippets/{id}", snippetHandler.HandleDelete)
			r.Post("/snippets/{id}/star", snippetHandler.HandleToggleStar)
			r.Post("/snippets/{id}/comments", snippetHandler.HandleAddComment)
		})

		// AI code generation, behind a session.
		if s.config.GeminiAPIKey != "" {
			generateHandler := handler.NewGenerateHandler(generate.NewClient(s.config.GeminiAPIKey), s.logger)
			r.With(auth.RequireAuth(tokens)).Post("/generate", generateHandler.HandleGenerate)
		}
	})

	// Identity provider events. Mounted only when a signing secret is
	// configured; an unverifiable webhook endpoint is worse than none.
	if s.config.ClerkWebhookSecret != "" {
		webhookHandler, err := handler.NewWebhookHandler(users, s.config.ClerkWebhookSecret, s.logger)
		if err != nil {
			return fmt.Errorf("creating webhook handler: %w", err)
		}
		s.router.Post("/webhooks/clerk", webhookHandler.HandleEvent)
	}

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.String("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
