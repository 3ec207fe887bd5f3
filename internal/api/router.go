package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/marquee-hq/marquee/internal/api/handlers"
	"github.com/marquee-hq/marquee/internal/api/middleware"
	"github.com/marquee-hq/marquee/internal/auth"
	"github.com/marquee-hq/marquee/internal/core"
)

// Per-endpoint permissions. Both read endpoints are gated behind get:movies.
const (
	PermReadMovies   = "get:movies"
	PermPostActors   = "post:actors"
	PermPostMovies   = "post:movies"
	PermPatchActors  = "patch:actors"
	PermPatchMovies  = "patch:movies"
	PermDeleteActors = "delete:actors"
	PermDeleteMovies = "delete:movies"
)

// Options tunes router behavior that differs between deployments.
type Options struct {
	RateLimitEnabled bool
	RateLimitPerMin  int
	RateLimitBurst   int
}

// Router sets up and configures the HTTP router.
type Router struct {
	engine       *core.Engine
	verifier     auth.TokenVerifier
	actorHandler *handlers.ActorHandler
	movieHandler *handlers.MovieHandler
	logger       zerolog.Logger
	opts         Options
}

func NewRouter(engine *core.Engine, verifier auth.TokenVerifier, logger zerolog.Logger, opts Options) *Router {
	return &Router{
		engine:       engine,
		verifier:     verifier,
		actorHandler: handlers.NewActorHandler(engine),
		movieHandler: handlers.NewMovieHandler(engine),
		logger:       logger,
		opts:         opts,
	}
}

// SetupRoutes configures all routes and middleware.
func (r *Router) SetupRoutes() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.Metrics())

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Use(chimiddleware.Timeout(60 * time.Second))
	if r.opts.RateLimitEnabled {
		router.Use(middleware.RateLimit(rate.Limit(float64(r.opts.RateLimitPerMin)/60.0), r.opts.RateLimitBurst))
	}

	router.Get("/health", r.healthCheck)
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Group(func(protected chi.Router) {
		protected.Use(auth.Authenticator(r.verifier))

		protected.With(auth.RequirePermission(PermReadMovies)).Get("/actors", r.actorHandler.List)
		protected.With(auth.RequirePermission(PermPostActors)).Post("/actors", r.actorHandler.Create)
		protected.With(auth.RequirePermission(PermPatchActors)).Patch("/actors/{actorID}", r.actorHandler.Update)
		protected.With(auth.RequirePermission(PermDeleteActors)).Delete("/actors/{actorID}", r.actorHandler.Delete)

		protected.With(auth.RequirePermission(PermReadMovies)).Get("/movies", r.movieHandler.List)
		protected.With(auth.RequirePermission(PermPostMovies)).Post("/movies", r.movieHandler.Create)
		protected.With(auth.RequirePermission(PermPatchMovies)).Patch("/movies/{movieID}", r.movieHandler.Update)
		protected.With(auth.RequirePermission(PermDeleteMovies)).Delete("/movies/{movieID}", r.movieHandler.Delete)
	})

	return router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	if err := r.engine.HealthCheck(req.Context()); err != nil {
		http.Error(w, "service unhealthy", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}
