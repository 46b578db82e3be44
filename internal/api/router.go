package api

import (
	"io"
	"net/http"

	"feeding-frenzy/internal/config"
	"feeding-frenzy/internal/game"
	"feeding-frenzy/internal/save"
	"feeding-frenzy/internal/tracking"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// EngineInterface defines the game engine methods used by the API.
// This interface enables mocking for tests without spinning up the full game loop.
// Keep this minimal - only include methods the API layer actually calls.
type EngineInterface interface {
	// GetSnapshot returns a copy of the latest tick's snapshot
	GetSnapshot() game.GameSnapshot
	// SetInput replaces the input the next tick applies
	SetInput(in game.Input)
	// RequestUltimate asks for the ultimate on the next tick
	RequestUltimate()
	// Reset starts a fresh session
	Reset()
	// Tuning returns the tuning of the running session
	Tuning() *config.Tuning
	// EventLogStats returns event log counters (nil without a log)
	EventLogStats() *game.EventLogStats
}

// StatsProvider exposes cumulative save data.
type StatsProvider interface {
	Data() save.Data
}

// FrameRenderer draws a snapshot as PNG.
type FrameRenderer interface {
	EncodePNG(w io.Writer, snap *game.GameSnapshot) error
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
//
// Example usage in tests:
//
//	cfg := api.RouterConfig{
//	    Engine: mockEngine,
//	    RateLimitConfig: &api.RateLimitConfig{
//	        RequestsPerSecond: 1000, // High limit for tests
//	        Burst:             1000,
//	    },
//	}
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Engine is the game engine (required)
	Engine EngineInterface

	// Tracker maps raw face metrics for /api/tracking. If nil, one is built
	// from the engine's tuning.
	Tracker *tracking.Mapper

	// Stats is the optional save store behind /api/stats.
	Stats StatsProvider

	// Renderer is the optional frame renderer behind /api/frame.png.
	Renderer FrameRenderer

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is optional configuration for the rate limiter.
	// Only used if RateLimiter is nil. If both are nil, uses DefaultRateLimitConfig.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional list of allowed CORS origins.
	// If nil, localhost origins are allowed.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

// routerHandlers holds the handler functions for the router.
type routerHandlers struct {
	engine   EngineInterface
	tracker  *tracking.Mapper
	stats    StatsProvider
	renderer FrameRenderer
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// IMPORTANT: This function is PURE apart from the rate limiter's cleanup
// goroutine when no RateLimiter is passed in:
//   - No network listeners are opened
//   - No broadcast workers are launched
//
// This makes it safe to use in tests with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - Order matters!
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	// Rate limiting (BEFORE CORS to reject early and save CPU)
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	tracker := cfg.Tracker
	if tracker == nil {
		tracker = tracking.NewMapper(cfg.Engine.Tuning())
	}

	h := &routerHandlers{
		engine:   cfg.Engine,
		tracker:  tracker,
		stats:    cfg.Stats,
		renderer: cfg.Renderer,
	}

	r.Route("/api", func(r chi.Router) {
		// Read side
		r.Get("/state", h.handleGetState)
		r.Get("/stats", h.handleGetStats)
		r.Get("/tuning", h.handleGetTuning)
		r.Get("/frame.png", h.handleGetFrame)

		// Input side
		r.Post("/input", h.handleInput)
		r.Post("/tracking", h.handleTracking)
		r.Post("/ultimate", h.handleUltimate)
		r.Post("/game/restart", h.handleRestart)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/state", http.StatusFound)
	})

	return r
}
