package event

import (
	"testing"

	"clockwork/internal/entity"
)

func TestLiveInputDrainsInEnqueueOrder(t *testing.T) {
	li := NewLiveInput(4)
	li.Enqueue(100, "keydown", []any{"w"})
	li.Enqueue(101, "keyup", []any{"w"})

	events := li.GetEventsDueAt(7)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].InputType != "keydown" || events[1].InputType != "keyup" {
		t.Fatalf("drain order not preserved: %+v", events)
	}
	for _, e := range events {
		if e.Tick != 7 {
			t.Fatalf("event tick=%v, want 7", e.Tick)
		}
	}
	if li.HasMore() {
		t.Fatal("queue should be empty after drain")
	}
}

func TestLiveInputDropsPastCapacity(t *testing.T) {
	li := NewLiveInput(2)
	if !li.Enqueue(0, "a", nil) {
		t.Fatal("first enqueue should succeed")
	}
	if !li.Enqueue(0, "b", nil) {
		t.Fatal("second enqueue should succeed")
	}
	if li.Enqueue(0, "c", nil) {
		t.Fatal("enqueue past capacity should fail")
	}
}

func TestRecordedConsumesNonDecreasingPrefix(t *testing.T) {
	r := NewRecorded([]Event{
		NewObjectUpdate(1, 0, "Player", "p", "setPosition", nil),
		NewObjectUpdate(2, 0, "Player", "p", "setPosition", nil),
		NewObjectUpdate(5, 0, "Player", "p", "setPosition", nil),
	})

	at1 := r.GetEventsDueAt(1)
	if len(at1) != 1 {
		t.Fatalf("GetEventsDueAt(1)=%d events, want 1", len(at1))
	}
	at3 := r.GetEventsDueAt(3)
	if len(at3) != 1 {
		t.Fatalf("GetEventsDueAt(3)=%d events, want 1 (only tick 2 is due)", len(at3))
	}
	if !r.HasMore() {
		t.Fatal("expected tick-5 event still pending")
	}
	at10 := r.GetEventsDueAt(10)
	if len(at10) != 1 {
		t.Fatalf("GetEventsDueAt(10)=%d events, want 1", len(at10))
	}
	if r.HasMore() {
		t.Fatal("cursor should be exhausted")
	}
}

func TestRecordedResetRewindsCursor(t *testing.T) {
	r := NewRecorded([]Event{NewObjectUpdate(1, 0, "Player", "p", "setPosition", nil)})
	r.GetEventsDueAt(5)
	if r.HasMore() {
		t.Fatal("expected cursor exhausted before reset")
	}
	r.Reset()
	if !r.HasMore() {
		t.Fatal("expected cursor rewound after reset")
	}
}

func TestRecordedMutatingReturnedParamsDoesNotAffectSource(t *testing.T) {
	params := []any{map[string]any{"x": 10.0, "y": 20.0}}
	r := NewRecorded([]Event{NewObjectUpdate(1, 0, "Player", "p", "setPosition", params)})
	out := r.GetEventsDueAt(1)
	out[0].Params[0] = "tampered"

	r.Reset()
	again := r.GetEventsDueAt(1)
	if again[0].Params[0] == "tampered" {
		t.Fatal("mutating a returned event leaked into the source's clone")
	}
}

// player is a minimal entity.Entity used to exercise ObjectUpdate
// dispatch end to end (mirrors S6 from the testable-properties set).
type player struct {
	entity.Base
	x, y float64
}

func newPlayer(id string) *player {
	p := &player{}
	p.Base = entity.NewBase(id, "Player")
	return p
}

func (p *player) Update(deltaTicks, totalTicks float64) {}
func (p *player) Destroy()                               { p.Base.Destroy(p) }

func setPosition(e entity.Entity, params []any) error {
	p, ok := e.(*player)
	if !ok {
		return ErrUnknownCommand
	}
	coords, ok := params[0].(map[string]any)
	if !ok {
		return ErrUnknownCommand
	}
	p.x = coords["x"].(float64)
	p.y = coords["y"].(float64)
	return nil
}

func TestManagerDispatchesObjectUpdateToRegisteredEntity(t *testing.T) {
	reg := entity.NewRegistry()
	p := newPlayer("p")
	reg.Register(p, "Player")

	m := NewManager(reg)
	m.RegisterCommand("Player", "setPosition", setPosition)
	m.SetSource(NewRecorded([]Event{
		NewObjectUpdate(1, 0, "Player", "p", "setPosition", []any{map[string]any{"x": 10.0, "y": 20.0}}),
	}))

	m.Update(1)

	if p.x != 10 || p.y != 20 {
		t.Fatalf("player position=(%v,%v), want (10,20)", p.x, p.y)
	}
}

func TestManagerSkipsUnknownObjectTypeWithoutPanicking(t *testing.T) {
	reg := entity.NewRegistry()
	m := NewManager(reg)
	m.SetSource(NewRecorded([]Event{
		NewObjectUpdate(1, 0, "Ghost", "g", "vanish", nil),
	}))
	m.Update(1) // must not panic
}

func TestManagerInvokesUserInputHookInOrder(t *testing.T) {
	reg := entity.NewRegistry()
	m := NewManager(reg)
	var seen []string
	m.OnUserInput(func(e Event) { seen = append(seen, e.InputType) })

	li := NewLiveInput(4)
	li.Enqueue(0, "a", nil)
	li.Enqueue(0, "b", nil)
	m.SetSource(li)

	m.Update(3)

	if len(seen) != 2 || seen[0] != "a" || seen[1] != "b" {
		t.Fatalf("seen=%v, want [a b]", seen)
	}
}

func TestManagerRecordsEventsAfterDispatch(t *testing.T) {
	reg := entity.NewRegistry()
	p := newPlayer("p")
	reg.Register(p, "Player")

	m := NewManager(reg)
	m.RegisterCommand("Player", "setPosition", func(e entity.Entity, params []any) error {
		p.x = 999 // mutate before the sink observes it
		return nil
	})

	var recordedX float64
	m.SetRecorder(recordSinkFunc(func(e Event) { recordedX = p.x }))
	m.SetSource(NewRecorded([]Event{
		NewObjectUpdate(1, 0, "Player", "p", "setPosition", nil),
	}))

	m.Update(1)

	if recordedX != 999 {
		t.Fatalf("recorder observed x=%v before dispatch took effect, want 999", recordedX)
	}
}

type recordSinkFunc func(Event)

func (f recordSinkFunc) RecordEvent(e Event) { f(e) }
