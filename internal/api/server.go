package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"clockwork/internal/engine"
	"clockwork/internal/inputadapter"
	"clockwork/internal/recorder"
	"clockwork/internal/replay"
)

// Server is the HTTP API server with WebSocket support, combining the
// REST router with a hub broadcasting replay progress in real time.
type Server struct {
	engine      *engine.Engine
	replay      *replay.Controller
	recorder    *recorder.Recorder
	input       *inputadapter.Adapter
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
}

// NewServer builds an API server around the engine/replay/recorder/input
// collaborators.
//
// The rate limiter's cleanup goroutine starts here; the WebSocket hub
// and progress loop do not start until Start() is called, so Router()
// alone is safe to drive with httptest.
func NewServer(eng *engine.Engine, ctrl *replay.Controller, rec *recorder.Recorder, input *inputadapter.Adapter, notify RecordingPublisher) *Server {
	s := &Server{
		engine:   eng,
		replay:   ctrl,
		recorder: rec,
		input:    input,
		wsHub:    NewWebSocketHub(),
	}

	s.rateLimiter = NewIPRateLimiter(DefaultRateLimitConfig)
	s.router = NewRouter(RouterConfig{
		Engine:      eng,
		Replay:      ctrl,
		Recorder:    rec,
		Input:       input,
		Notify:      notify,
		RateLimiter: s.rateLimiter,
	})
	s.router.Get("/ws", s.wsHub.HandleWebSocket)

	return s
}

// Start runs the background workers and begins serving HTTP on addr.
func (s *Server) Start(addr string) error {
	go s.wsHub.Run()
	s.wsHub.StartProgressLoop(s.replay)

	log.Printf("api: server starting on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Router returns the HTTP handler, for use with httptest.
func (s *Server) Router() http.Handler { return s.router }

// Stop performs a best-effort shutdown of background workers.
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.input != nil {
		s.input.Stop()
	}
}
