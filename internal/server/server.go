// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: New opens the database and builds the
// nutrition client, the services and the handlers, then setupRoutes maps URLs
// onto them. Nothing else in the module constructs dependencies.
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

	"github.com/sakif/calorie-log/internal/config"
	"github.com/sakif/calorie-log/internal/handler"
	"github.com/sakif/calorie-log/internal/middleware"
	"github.com/sakif/calorie-log/internal/nutrition/usda"
	sqliteRepo "github.com/sakif/calorie-log/internal/repository/sqlite"
	"github.com/sakif/calorie-log/internal/service"
)

// Server represents the HTTP server and all its dependencies.
// It owns the database connection and closes it when Start returns.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server from cfg.
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

// Handler returns the router, for tests that drive the server through httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database. Start calls it on shutdown.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /             → today's entries + total (HTML)
// GET    /about        → about page
// GET    /add          → add form
// POST   /add          → log a food, redirect to /
// GET    /search?q=    → entries matching q
// GET    /day?date=    → one day's entries + total
// GET    /export       → .xlsx download
// GET    /api/day      → DaySummary JSON
// GET    /api/resolve  → calorie preview JSON
// GET    /healthz      → liveness + database check
// GET    /static/*     → CSS
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	// DEPENDENCY CHAIN:
	//   usda.Client → CalorieResolver ┐
	//   sqlite.DB ──────────────────── FoodService → handlers
	nutritionClient := usda.New(s.config.USDA(), s.logger)
	resolver := service.NewCalorieResolver(nutritionClient, s.config.FallbackCalories, s.logger)
	foodService := service.NewFoodService(s.db, resolver, service.FoodOptions{
		UserID:   s.config.UserID,
		Location: s.config.Location,
	}, s.logger)

	pages, err := handler.NewPageHandler(s.config.TemplateDir, foodService, s.config.Location, s.logger)
	if err != nil {
		return fmt.Errorf("creating page handler: %w", err)
	}
	api := handler.NewAPIHandler(foodService, resolver, s.db.Ping, s.logger)
	exports := handler.NewExportHandler(foodService, s.config.Location, s.logger)

	s.router.Get("/", pages.HandleHome)
	s.router.Get("/about", pages.HandleAbout)
	s.router.Get("/add", pages.HandleAddForm)
	s.router.Post("/add", pages.HandleAdd)
	s.router.Get("/search", pages.HandleSearch)
	s.router.Get("/day", pages.HandleDay)
	s.router.Get("/export", exports.HandleExport)
	s.router.Get("/healthz", api.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/day", api.HandleDay)
		r.Get("/resolve", api.HandleResolve)
	})

	s.router.NotFound(pages.HandleNotFound)

	return nil
}

// Start starts the HTTP server and blocks until SIGINT/SIGTERM or a listen
// error. On a signal it stops accepting connections, gives in-flight requests
// 30 seconds to finish, then closes the database.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second, // covers the nutrition lookup on POST /add
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
			slog.Int64("user_id", s.config.UserID),
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
