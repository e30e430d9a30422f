package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/terra-clan/progress-engine/internal/config"
	"github.com/terra-clan/progress-engine/internal/leaderboard"
	"github.com/terra-clan/progress-engine/internal/storage"
	"github.com/terra-clan/progress-engine/internal/sync"
)

// Server represents the HTTP API server
type Server struct {
	config       config.ServerConfig
	router       *chi.Mux
	repo         storage.Repository
	orchestrator *sync.Orchestrator
	leaderboards *leaderboard.Service
}

// NewServer creates a new API server
func NewServer(
	cfg config.ServerConfig,
	repo storage.Repository,
	orchestrator *sync.Orchestrator,
	leaderboards *leaderboard.Service,
) *Server {
	s := &Server{
		config:       cfg,
		repo:         repo,
		orchestrator: orchestrator,
		leaderboards: leaderboards,
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", s.handleRegisterUser)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/dashboard", s.handleDashboard)
				r.Post("/sync", s.handleSyncUser)
				r.Post("/challenge-result", s.handleChallengeResult)
				r.Get("/xp-log", s.handleXPLog)
			})
		})

		r.Route("/competitions", func(r chi.Router) {
			r.Post("/", s.handleCreateCompetition)
			r.Route("/{id}", func(r chi.Router) {
				r.Post("/join", s.handleJoinCompetition)
				r.Get("/leaderboard", s.handleLeaderboard)
			})
		})
	})

	s.router = r
}
