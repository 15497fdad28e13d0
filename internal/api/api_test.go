package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clockwork/internal/engine"
	"clockwork/internal/event"
	"clockwork/internal/inputadapter"
	"clockwork/internal/recorder"
	"clockwork/internal/replay"
)

type noopGame struct{}

func (noopGame) Setup(eng *engine.Engine, cfg engine.GameConfig) error { return nil }

func newTestRouter(t *testing.T) *chiTestFixture {
	t.Helper()
	eng := engine.New(noopGame{}, nil)
	if err := eng.Reset(engine.GameConfig{PRNGSeed: "s"}); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	rec := recorder.New()
	ctrl := replay.New(eng)
	live := event.NewLiveInput(16)
	eng.GetEventManager().SetSource(live)
	input := inputadapter.New(live, inputadapter.Limits{EventsPerSecond: 1000, Burst: 1000})
	t.Cleanup(input.Stop)

	router := NewRouter(RouterConfig{
		Engine:         eng,
		Replay:         ctrl,
		Recorder:       rec,
		Input:          input,
		DisableLogging: true,
	})
	return &chiTestFixture{router: router, engine: eng, recorder: rec, replay: ctrl}
}

type chiTestFixture struct {
	router   http.Handler
	engine   *engine.Engine
	recorder *recorder.Recorder
	replay   *replay.Controller
}

func TestHandleGetStateReportsEngineSnapshot(t *testing.T) {
	fx := newTestRouter(t)
	srv := httptest.NewServer(fx.router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/state")
	if err != nil {
		t.Fatalf("GET /api/state: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d, want 200", resp.StatusCode)
	}
}

func TestHandlePostInputForwardsThroughAdapter(t *testing.T) {
	fx := newTestRouter(t)
	fx.engine.Start()
	srv := httptest.NewServer(fx.router)
	defer srv.Close()

	body := strings.NewReader(`{"sourceId":"t1","inputType":"chat","params":["hi"]}`)
	resp, err := http.Post(srv.URL+"/api/input", "application/json", body)
	if err != nil {
		t.Fatalf("POST /api/input: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d, want 200", resp.StatusCode)
	}
}

func TestHandleEngineLifecycleTransitions(t *testing.T) {
	fx := newTestRouter(t)
	srv := httptest.NewServer(fx.router)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/engine/start", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /api/engine/start: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status=%d, want 200", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/api/engine/pause", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /api/engine/pause: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pause status=%d, want 200", resp.StatusCode)
	}

	// Pausing again is an invalid transition and must be rejected, not panic.
	resp, err = http.Post(srv.URL+"/api/engine/pause", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /api/engine/pause (again): %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status=%d, want 409", resp.StatusCode)
	}
}

func TestHandleReplayStartRejectsInvalidRecording(t *testing.T) {
	fx := newTestRouter(t)
	srv := httptest.NewServer(fx.router)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/replay/start", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("POST /api/replay/start: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400 for a recording with no gameConfig", resp.StatusCode)
	}
}
