package inputadapter

import (
	"testing"

	"clockwork/internal/event"
)

func TestSubmitForwardsIntoSink(t *testing.T) {
	sink := event.NewLiveInput(8)
	a := New(sink, Limits{EventsPerSecond: 100, Burst: 100})
	defer a.Stop()

	if !a.Submit("user-1", 0, "chat", []any{"hi"}) {
		t.Fatal("expected Submit to succeed under limits")
	}

	events := sink.GetEventsDueAt(1)
	if len(events) != 1 || events[0].InputType != "chat" {
		t.Fatalf("got %+v, want one chat event", events)
	}
}

func TestSubmitRateLimitsPerSource(t *testing.T) {
	sink := event.NewLiveInput(64)
	a := New(sink, Limits{EventsPerSecond: 1, Burst: 1})
	defer a.Stop()

	if !a.Submit("user-1", 0, "chat", nil) {
		t.Fatal("first submit should be allowed (burst=1)")
	}
	if a.Submit("user-1", 0, "chat", nil) {
		t.Fatal("second immediate submit should be rate limited")
	}
	if a.DroppedCount() != 1 {
		t.Fatalf("dropped=%d, want 1", a.DroppedCount())
	}
}

func TestSubmitDoesNotRateLimitDistinctSources(t *testing.T) {
	sink := event.NewLiveInput(64)
	a := New(sink, Limits{EventsPerSecond: 1, Burst: 1})
	defer a.Stop()

	if !a.Submit("user-1", 0, "chat", nil) {
		t.Fatal("user-1 first submit should succeed")
	}
	if !a.Submit("user-2", 0, "chat", nil) {
		t.Fatal("user-2 first submit should succeed independently of user-1's limiter")
	}
}
