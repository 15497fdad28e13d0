package recorder

import (
	"bytes"
	"encoding/gob"
	"testing"

	"clockwork/internal/entity"
	"clockwork/internal/event"
)

func TestStartRecordingAttachesToManager(t *testing.T) {
	reg := entity.NewRegistry()
	m := event.NewManager(reg)
	r := New()

	r.StartRecording(m, GameConfig{PRNGSeed: "s"}, Metadata{Version: "v1"})

	if !r.IsRecording() {
		t.Fatal("expected IsRecording true after StartRecording")
	}
	if m.Source() != nil {
		t.Fatal("StartRecording should not install a source")
	}
}

func TestStartRecordingStampsConfigSetEvenForEmptySeed(t *testing.T) {
	reg := entity.NewRegistry()
	m := event.NewManager(reg)
	r := New()

	r.StartRecording(m, GameConfig{}, Metadata{})

	cfg := r.GetCurrentRecording().GameConfig
	if !cfg.ConfigSet {
		t.Fatal("expected ConfigSet true after StartRecording, even with an empty seed and no extra")
	}
	if cfg.PRNGSeed != "" {
		t.Fatalf("PRNGSeed=%q, want empty", cfg.PRNGSeed)
	}
}

func TestRecordEventIgnoredWhenNotRecording(t *testing.T) {
	r := New()
	r.RecordEvent(event.NewUserInput(1, 0, "a", nil))
	if len(r.GetCurrentRecording().Events) != 0 {
		t.Fatal("events should not accumulate while not recording")
	}
}

func TestRecordTickAdvanceAppendsDeltaAndTracksTotal(t *testing.T) {
	reg := entity.NewRegistry()
	m := event.NewManager(reg)
	r := New()
	r.StartRecording(m, GameConfig{PRNGSeed: "s"}, Metadata{})

	r.RecordTickAdvance(1, 1)
	r.RecordTickAdvance(2, 3)

	rec := r.GetCurrentRecording()
	if len(rec.DeltaTicks) != 2 || rec.DeltaTicks[0] != 1 || rec.DeltaTicks[1] != 2 {
		t.Fatalf("deltaTicks=%v, want [1 2]", rec.DeltaTicks)
	}
	if rec.TotalTicks != 3 {
		t.Fatalf("totalTicks=%v, want 3", rec.TotalTicks)
	}
}

func TestStopRecordingDetachesFromManager(t *testing.T) {
	reg := entity.NewRegistry()
	m := event.NewManager(reg)
	r := New()
	r.StartRecording(m, GameConfig{PRNGSeed: "s"}, Metadata{})

	if err := r.StopRecording(); err != nil {
		t.Fatalf("StopRecording returned error: %v", err)
	}
	if r.IsRecording() {
		t.Fatal("expected IsRecording false after StopRecording")
	}

	// A subsequently dispatched event must not reach the detached recorder.
	m.SetSource(event.NewRecorded([]event.Event{event.NewUserInput(1, 0, "a", nil)}))
	m.Update(1)
	if len(r.GetCurrentRecording().Events) != 0 {
		t.Fatal("detached recorder should not observe further events")
	}
}

func TestGetCurrentRecordingReturnsIndependentCopy(t *testing.T) {
	reg := entity.NewRegistry()
	m := event.NewManager(reg)
	r := New()
	r.StartRecording(m, GameConfig{PRNGSeed: "s"}, Metadata{})
	r.RecordTickAdvance(1, 1)

	snap := r.GetCurrentRecording()
	snap.DeltaTicks[0] = 999

	if r.GetCurrentRecording().DeltaTicks[0] == 999 {
		t.Fatal("mutating a snapshot leaked into the recorder's internal state")
	}
}

func TestResetClearsState(t *testing.T) {
	reg := entity.NewRegistry()
	m := event.NewManager(reg)
	r := New()
	r.StartRecording(m, GameConfig{PRNGSeed: "s"}, Metadata{})
	r.RecordTickAdvance(1, 1)

	r.Reset()

	if r.IsRecording() {
		t.Fatal("expected IsRecording false after Reset")
	}
	if len(r.GetCurrentRecording().DeltaTicks) != 0 {
		t.Fatal("expected empty recording after Reset")
	}
}

func TestStopRecordingPersistsToSink(t *testing.T) {
	reg := entity.NewRegistry()
	m := event.NewManager(reg)
	r := New()
	var buf bytes.Buffer
	r.SetSink(&buf)
	r.StartRecording(m, GameConfig{PRNGSeed: "seed-1"}, Metadata{Version: "v1"})
	r.RecordTickAdvance(1, 1)

	if err := r.StopRecording(); err != nil {
		t.Fatalf("StopRecording: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected bytes written to sink")
	}

	var decoded Recording
	if err := gob.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("decode persisted recording: %v", err)
	}
	if decoded.GameConfig.PRNGSeed != "seed-1" {
		t.Fatalf("decoded seed=%q, want seed-1", decoded.GameConfig.PRNGSeed)
	}
}
