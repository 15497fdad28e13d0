package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"clockwork/internal/engine"
	"clockwork/internal/recorder"
)

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"state":       h.engine.GetState().String(),
		"totalTicks":  h.engine.GetTotalTicks(),
		"seed":        h.engine.GetSeed(),
		"types":       h.engine.GetRegisteredTypes(),
		"isRecording": h.recorder.IsRecording(),
		"isReplaying": h.replay.IsReplaying(),
	})
}

func (h *routerHandlers) handlePostInput(w http.ResponseWriter, r *http.Request) {
	if h.input == nil {
		writeError(w, "input adapter not configured", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		SourceID  string `json:"sourceId"`
		Timestamp int64  `json:"timestamp"`
		InputType string `json:"inputType"`
		Params    []any  `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.SourceID == "" {
		req.SourceID = GetClientIP(r)
	}

	accepted := h.input.Submit(req.SourceID, req.Timestamp, req.InputType, req.Params)
	if !accepted {
		IncrementInputDropped()
	}
	writeJSON(w, map[string]bool{"accepted": accepted})
}

func (h *routerHandlers) handleRecordingStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seed        string         `json:"seed"`
		Extra       map[string]any `json:"extra"`
		Description string         `json:"description"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	cfg := recorder.GameConfig{PRNGSeed: req.Seed, Extra: req.Extra}
	meta := recorder.Metadata{Description: req.Description}

	if err := h.engine.Reset(engine.GameConfig{PRNGSeed: req.Seed, Extra: req.Extra}); err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := h.engine.Start(); err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}

	h.recorder.StartRecording(h.engine.GetEventManager(), cfg, meta)
	h.engine.SetRecorder(h.recorder)

	log.Println("api: recording started")
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleRecordingStop(w http.ResponseWriter, r *http.Request) {
	if err := h.recorder.StopRecording(); err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.engine.SetRecorder(nil)
	if h.notify != nil {
		h.notify.PublishRecording(h.recorder.GetCurrentRecording())
	}
	log.Println("api: recording stopped")
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleRecordingCurrent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.recorder.GetCurrentRecording())
}

func (h *routerHandlers) handleReplayStart(w http.ResponseWriter, r *http.Request) {
	var rec recorder.Recording
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, "invalid recording payload", http.StatusBadRequest)
		return
	}
	if err := h.replay.Replay(rec); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleReplayStop(w http.ResponseWriter, r *http.Request) {
	h.replay.StopReplay()
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleReplayProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.replay.GetProgress())
}

func (h *routerHandlers) handleEngineStart(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Start(); err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleEnginePause(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Pause(); err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleEngineResume(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Resume(); err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleEngineUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeltaTicks float64 `json:"deltaTicks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	start := time.Now()
	h.engine.Update(req.DeltaTicks)
	RecordTick(time.Since(start))
	writeJSON(w, map[string]interface{}{"totalTicks": h.engine.GetTotalTicks()})
}

func (h *routerHandlers) handleEngineEnd(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.End(); err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
