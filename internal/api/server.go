package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"feeding-frenzy/internal/game"
	"feeding-frenzy/internal/tracking"

	"github.com/go-chi/chi/v5"
)

// Server is the HTTP API server with WebSocket support.
// It combines the HTTP router with WebSocket hub for real-time updates.
type Server struct {
	engine      EngineInterface
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
	httpServer  *http.Server
}

// NewServer creates a new API server from the router dependencies.
//
// IMPORTANT: Background workers do NOT start until Start() is called.
// This enables testing by allowing the server to be constructed without
// starting goroutines or opening network listeners.
func NewServer(cfg RouterConfig) *Server {
	if cfg.Tracker == nil {
		cfg.Tracker = tracking.NewMapper(cfg.Engine.Tuning())
	}

	s := &Server{
		engine: cfg.Engine,
		wsHub:  NewWebSocketHub(cfg.Engine, cfg.Tracker),
	}

	s.rateLimiter = cfg.RateLimiter
	if s.rateLimiter == nil {
		rlCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rlCfg = *cfg.RateLimitConfig
		}
		s.rateLimiter = NewIPRateLimiter(rlCfg)
		cfg.RateLimiter = s.rateLimiter
	}

	s.router = NewRouter(cfg)
	s.router.Get("/ws", s.wsHub.HandleWebSocket)

	return s
}

// OnEvent counts ev and pushes it to WebSocket clients. Install it with
// Engine.SetEventHandler.
func (s *Server) OnEvent(ev game.Event) {
	RecordEvent(ev)
	s.wsHub.BroadcastEvent(ev)
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Start begins the HTTP server AND starts background workers. It blocks
// until the server stops; a Shutdown returns nil here.
func (s *Server) Start(addr string) error {
	go s.wsHub.Run()
	s.wsHub.StartBroadcastLoop(StateBroadcastInterval)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("🌐 API server starting on %s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Shutdown stops accepting requests, ends the hub and the rate limiter's
// cleanup, and waits for in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.wsHub.Stop()
	s.rateLimiter.Stop()
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	return nil
}
