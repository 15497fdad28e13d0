// Package recorder captures a live session's seed, per-tick deltas, and
// ordered event log into a Recording that ReplayController can later
// re-drive bit-identically.
package recorder

import (
	"io"

	"github.com/google/uuid"

	"clockwork/internal/event"
)

// GameConfig is the opaque configuration a recording was started with.
// PRNGSeed is the only field the engine reads; the rest round-trips
// through the serializer untouched. ConfigSet distinguishes "gameConfig
// was supplied, with a legitimately empty seed" from "gameConfig was
// never supplied at all" — both would otherwise decode to the same Go
// zero value, which StartRecording always stamps ConfigSet to true
// against.
type GameConfig struct {
	PRNGSeed  string
	Extra     map[string]any
	ConfigSet bool
}

// Metadata is free-form descriptive information attached to a
// recording at start time.
type Metadata struct {
	CreatedAt   int64
	Version     string
	Description string
	Extra       map[string]any
}

// Recording is the byte-serializable artifact: seed and gameConfig, the
// ordered event log, and the per-tick delta sequence sufficient to
// re-derive a session. ID is stamped once per recording for IPC and
// persistence correlation; it has no bearing on replay semantics.
type Recording struct {
	ID         string
	GameConfig GameConfig
	Events     []event.Event
	DeltaTicks []float64
	TotalTicks float64
	Metadata   Metadata
}

// Recorder owns the in-progress Recording while attached to an
// EventManager. It holds a non-owning reference to the EventManager
// only while recording.
type Recorder struct {
	recording   Recording
	isRecording bool
	manager     *event.Manager
	sink        io.Writer
}

// New creates an idle Recorder. Attach an io.Writer with SetSink to
// persist every stopped recording as gob-encoded bytes (see
// internal/ipc for the transport that carries those bytes onward).
func New() *Recorder {
	return &Recorder{}
}

// SetSink installs (or clears, with nil) the writer StopRecording
// persists the finished Recording to via gob. A nil sink means
// GetCurrentRecording is the only way to retrieve it.
func (r *Recorder) SetSink(w io.Writer) { r.sink = w }

// StartRecording initialises a fresh recording, attaches itself to
// manager so every subsequent dispatch is captured, and marks recording
// active. manager.SetRecorder(r) is called as part of attaching.
func (r *Recorder) StartRecording(manager *event.Manager, cfg GameConfig, meta Metadata) {
	cfg.ConfigSet = true
	r.recording = Recording{
		ID:         uuid.NewString(),
		GameConfig: cfg,
		Metadata:   meta,
	}
	r.isRecording = true
	r.manager = manager
	manager.SetRecorder(r)
}

// RecordEvent appends e to the event log in dispatch order. Satisfies
// event.RecordSink.
func (r *Recorder) RecordEvent(e Event) {
	if !r.isRecording {
		return
	}
	r.recording.Events = append(r.recording.Events, e)
}

// RecordTickAdvance appends delta to the delta log and stores total as
// the running totalTicks.
func (r *Recorder) RecordTickAdvance(delta, total float64) {
	if !r.isRecording {
		return
	}
	r.recording.DeltaTicks = append(r.recording.DeltaTicks, delta)
	r.recording.TotalTicks = total
}

// StopRecording freezes the recording, detaches from the event manager,
// and (if a sink is installed) persists it. The recording remains
// inspectable via GetCurrentRecording afterward.
func (r *Recorder) StopRecording() error {
	r.isRecording = false
	if r.manager != nil {
		r.manager.SetRecorder(nil)
		r.manager = nil
	}
	if r.sink == nil {
		return nil
	}
	return persist(r.sink, r.recording)
}

// GetCurrentRecording returns a shallow clone of the recording suitable
// for serialization. The Events and DeltaTicks slices are copied, so
// mutating them in the returned value does not affect the Recorder; the
// GameConfig/Metadata Extra maps and each event's Params are shared.
func (r *Recorder) GetCurrentRecording() Recording {
	rec := r.recording
	rec.Events = append([]event.Event(nil), r.recording.Events...)
	rec.DeltaTicks = append([]float64(nil), r.recording.DeltaTicks...)
	return rec
}

// IsRecording reports whether the recorder is currently attached to an
// event manager and capturing.
func (r *Recorder) IsRecording() bool { return r.isRecording }

// Reset clears all state back to a fresh idle Recorder.
func (r *Recorder) Reset() {
	r.recording = Recording{}
	r.isRecording = false
	r.manager = nil
}

// Event is an alias so callers outside this package (ipc, cmd/inspector)
// do not need to import clockwork/internal/event just to reference the
// type appearing in Recording.Events.
type Event = event.Event
