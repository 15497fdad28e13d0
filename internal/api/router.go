package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"clockwork/internal/engine"
	"clockwork/internal/inputadapter"
	"clockwork/internal/recorder"
	"clockwork/internal/replay"
)

// RecordingPublisher is the subset of ipc.Publisher the router needs,
// declared locally so api does not depend on ipc just to notify it.
type RecordingPublisher interface {
	PublishRecording(rec recorder.Recording)
}

// RouterConfig contains all dependencies needed to construct the HTTP
// router. Designed for dependency injection and httptest-based testing.
type RouterConfig struct {
	Engine   *engine.Engine
	Replay   *replay.Controller
	Recorder *recorder.Recorder
	Input    *inputadapter.Adapter
	Notify   RecordingPublisher // optional

	RateLimiter     *IPRateLimiter
	RateLimitConfig *RateLimitConfig

	CORSOrigins []string

	DisableLogging bool
}

type routerHandlers struct {
	engine   *engine.Engine
	replay   *replay.Controller
	recorder *recorder.Recorder
	input    *inputadapter.Adapter
	notify   RecordingPublisher
}

// NewRouter constructs the HTTP router with all middleware and routes.
// It opens no listeners and is safe for httptest. When cfg.RateLimiter
// is nil it creates an IPRateLimiter, which starts that limiter's
// cleanup goroutine.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

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
		corsOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{
		engine:   cfg.Engine,
		replay:   cfg.Replay,
		recorder: cfg.Recorder,
		input:    cfg.Input,
		notify:   cfg.Notify,
	}

	// Engine lifecycle, named after the Engine's own public methods.
	r.Post("/reset", h.handleRecordingStart) // reset + begin recording in one call
	r.Post("/start", h.handleEngineStart)
	r.Post("/pause", h.handleEnginePause)
	r.Post("/resume", h.handleEngineResume)
	r.Post("/end", h.handleEngineEnd)
	r.Post("/update", h.handleEngineUpdate)
	r.Post("/replay", h.handleReplayStart)
	r.Get("/recording", h.handleRecordingCurrent)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.handleGetState)
		r.Post("/input", h.handlePostInput)

		r.Post("/recording/start", h.handleRecordingStart)
		r.Post("/recording/stop", h.handleRecordingStop)
		r.Get("/recording/current", h.handleRecordingCurrent)

		r.Post("/replay/start", h.handleReplayStart)
		r.Post("/replay/stop", h.handleReplayStop)
		r.Get("/replay/progress", h.handleReplayProgress)

		r.Post("/engine/start", h.handleEngineStart)
		r.Post("/engine/pause", h.handleEnginePause)
		r.Post("/engine/resume", h.handleEngineResume)
		r.Post("/engine/end", h.handleEngineEnd)
	})

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("clockwork inspector\n"))
	})

	return r
}
