// Package server provides the HTTP server and routing for stockboard.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/stockboard/internal/config"
	"github.com/aristath/stockboard/internal/di"
	menuhandlers "github.com/aristath/stockboard/internal/modules/menu/handlers"
	portfoliohandlers "github.com/aristath/stockboard/internal/modules/portfolio/handlers"
	sessionhandlers "github.com/aristath/stockboard/internal/modules/session/handlers"
	settingshandlers "github.com/aristath/stockboard/internal/modules/settings/handlers"
	watchlisthandlers "github.com/aristath/stockboard/internal/modules/watchlist/handlers"
)

// statusMonitorInterval is how often the status monitor probes the database
const statusMonitorInterval = 60 * time.Second

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Config    *config.Config
	Container *di.Container    // DI container with all services
	Jobs      *di.JobInstances // Jobs exposed for manual triggering; may be nil
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	container      *di.Container
	systemHandlers *SystemHandlers
	eventsHandler  *EventsStreamHandler
	statusMonitor  *StatusMonitor
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		cfg:            cfg.Config,
		container:      cfg.Container,
		systemHandlers: NewSystemHandlers(cfg.Container, cfg.Jobs, cfg.Log),
		eventsHandler:  NewEventsStreamHandler(cfg.Container.EventBus, cfg.Log),
		statusMonitor:  NewStatusMonitor(cfg.Container.EventManager, cfg.Container.Settings, cfg.Container.StateDB, cfg.Log),
	}

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	// Event streams end when shutdown begins
	s.server.RegisterOnShutdown(s.eventsHandler.Close)

	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Long-lived event streams stay outside the request timeout
		r.Get("/events/stream", s.eventsHandler.ServeHTTP)
		r.Get("/events/ws", s.eventsHandler.ServeWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Route("/system", func(r chi.Router) {
				r.Get("/status", s.systemHandlers.HandleSystemStatus)
				r.Get("/database/stats", s.systemHandlers.HandleDatabaseStats)
				r.Get("/storage", s.systemHandlers.HandleStorageEntries)
				r.Get("/jobs", s.systemHandlers.HandleJobsStatus)
				r.Post("/jobs/{name}", s.systemHandlers.HandleTriggerJob)
				r.Get("/backups", s.systemHandlers.HandleListBackups)
			})

			menuhandlers.NewHandler(s.container.Menu, s.log).RegisterRoutes(r)
			portfoliohandlers.NewHandler(s.container.Ledger, s.log).RegisterRoutes(r)
			settingshandlers.NewHandler(s.container.Settings, s.log).RegisterRoutes(r)
			sessionhandlers.NewHandler(s.container.Session, s.log).RegisterRoutes(r)
			watchlisthandlers.NewHandler(s.container.Watchlist, s.log).RegisterRoutes(r)
		})
	})
}

// Start starts the status monitor and serves HTTP until ctx is cancelled
// or the listener fails. A clean shutdown returns nil.
func (s *Server) Start(ctx context.Context) error {
	go s.statusMonitor.Run(ctx, statusMonitorInterval)

	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
