// Package timer implements the engine's tick-accurate scheduled callbacks,
// both one-shot and repeating. Scheduling and firing are driven entirely by
// the tick counter the owning Engine supplies on Update — there is no
// wall-clock timer underneath.
package timer

import (
	"log"
	"sort"
)

// maxFireBatches bounds the fire loop inside a single Update call so a
// pathological configuration (e.g. many zero-interval timers) cannot spin
// forever.
const maxFireBatches = 1000

// Callback is invoked when a timer fires. Panics are recovered and logged
// by Timer.Update; a misbehaving callback must not stop the batch.
type Callback func()

// entry is one scheduled timer.
type entry struct {
	id         uint64
	callback   Callback
	targetTick float64
	interval   float64 // 0 for one-shot
	repeating  bool
	active     bool

	// createdGen is the Timer's generation counter at creation time. An
	// entry is never eligible to fire while t.generation still equals
	// createdGen, i.e. during the very Update call that created it — see
	// collectDue.
	createdGen uint64
}

// Info is a read-only snapshot of a timer entry, for introspection.
type Info struct {
	ID         uint64
	TargetTick float64
	Interval   float64
	Repeating  bool
	Active     bool
}

// Timer owns the set of scheduled callbacks for one Engine.
type Timer struct {
	entries map[uint64]*entry
	nextID  uint64

	currentTick     float64
	updateStartTick float64
	isUpdating      bool

	// generation counts completed-or-in-progress Update calls. It is
	// bumped once at the start of every Update and stamped onto each
	// entry created from then until the next Update begins, so
	// collectDue can exclude timers created mid-Update regardless of
	// how many fire batches that Update runs.
	generation uint64
}

// New creates an empty Timer.
func New() *Timer {
	return &Timer{
		entries: make(map[uint64]*entry),
	}
}

// base returns the tick new timers created right now should schedule
// relative to: the tick that started the in-flight Update, or the current
// tick if no Update is in flight. Same-Update firing is actually prevented
// by the createdGen stamp (see collectDue); base only keeps a timer's
// targetTick consistent with the tick the creating Update began at.
func (t *Timer) base() float64 {
	if t.isUpdating {
		return t.updateStartTick
	}
	return t.currentTick
}

// SetTimeout schedules cb to fire once, ticks after the current base tick.
func (t *Timer) SetTimeout(cb Callback, ticks float64) uint64 {
	t.nextID++
	id := t.nextID
	t.entries[id] = &entry{
		id:         id,
		callback:   cb,
		targetTick: t.base() + ticks,
		active:     true,
		createdGen: t.generation,
	}
	return id
}

// SetInterval schedules cb to fire repeatedly, every ticks ticks. An
// interval of exactly 0 is supported: it fires once per Update and
// reschedules to currentTick+1 afterwards, rather than looping forever
// within one Update.
func (t *Timer) SetInterval(cb Callback, ticks float64) uint64 {
	t.nextID++
	id := t.nextID
	t.entries[id] = &entry{
		id:         id,
		callback:   cb,
		targetTick: t.base() + ticks,
		interval:   ticks,
		repeating:  true,
		active:     true,
		createdGen: t.generation,
	}
	return id
}

// ClearTimer removes a timer. Returns false if no such timer exists.
func (t *Timer) ClearTimer(id uint64) bool {
	if _, ok := t.entries[id]; !ok {
		return false
	}
	delete(t.entries, id)
	return true
}

// PauseTimer marks a timer inactive; it will not fire until resumed.
func (t *Timer) PauseTimer(id uint64) {
	if e, ok := t.entries[id]; ok {
		e.active = false
	}
}

// ResumeTimer reactivates a paused timer.
func (t *Timer) ResumeTimer(id uint64) {
	if e, ok := t.entries[id]; ok {
		e.active = true
	}
}

// Update advances the timer's view of tick time and fires every due timer,
// in (targetTick asc, id asc) batches, per spec §4.5.
func (t *Timer) Update(deltaTicks, totalTicks float64) {
	_ = deltaTicks
	t.updateStartTick = t.currentTick
	t.currentTick = totalTicks
	t.generation++
	thisGen := t.generation
	t.isUpdating = true
	defer func() { t.isUpdating = false }()

	for batch := 0; batch < maxFireBatches; batch++ {
		due := t.collectDue(thisGen)
		if len(due) == 0 {
			return
		}

		stop := false
		for _, e := range due {
			t.fire(e)
			if !e.active {
				continue
			}
			if e.repeating {
				if e.interval > 0 {
					e.targetTick += e.interval
				} else {
					// Zero-interval repeater: fire at most once per Update.
					e.targetTick = t.currentTick + 1
					stop = true
				}
			} else {
				delete(t.entries, e.id)
			}
		}
		if stop {
			return
		}
	}
}

// collectDue returns every active entry with targetTick <= currentTick,
// excluding entries created during thisGen (the in-progress Update), sorted
// by (targetTick asc, id asc). Excluding same-generation entries is what
// guarantees a timer created inside a callback — even a zero-delay one —
// cannot fire again before the next Update call.
func (t *Timer) collectDue(thisGen uint64) []*entry {
	var due []*entry
	for _, e := range t.entries {
		if e.active && e.targetTick <= t.currentTick && e.createdGen != thisGen {
			due = append(due, e)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].targetTick != due[j].targetTick {
			return due[i].targetTick < due[j].targetTick
		}
		return due[i].id < due[j].id
	})
	return due
}

// fire invokes a timer's callback, recovering and logging any panic so one
// misbehaving callback cannot halt the batch or the simulation.
func (t *Timer) fire(e *entry) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("timer: callback %d panicked: %v", e.id, r)
		}
	}()
	e.callback()
}

// Reset drops every scheduled timer and rewinds currentTick to 0. The
// monotonic id counter is NOT reset, so ids stay unique across resets.
func (t *Timer) Reset() {
	t.entries = make(map[uint64]*entry)
	t.currentTick = 0
	t.updateStartTick = 0
	t.isUpdating = false
	t.generation = 0
}

// GetActiveTimerCount returns the number of active (non-paused) timers.
func (t *Timer) GetActiveTimerCount() int {
	n := 0
	for _, e := range t.entries {
		if e.active {
			n++
		}
	}
	return n
}

// GetTotalTimerCount returns the number of timers including paused ones.
func (t *Timer) GetTotalTimerCount() int {
	return len(t.entries)
}

// GetTimerInfo returns a snapshot of every scheduled timer, for dashboards
// and metrics exporters.
func (t *Timer) GetTimerInfo() []Info {
	info := make([]Info, 0, len(t.entries))
	for _, e := range t.entries {
		info = append(info, Info{
			ID:         e.id,
			TargetTick: e.targetTick,
			Interval:   e.interval,
			Repeating:  e.repeating,
			Active:     e.active,
		})
	}
	sort.Slice(info, func(i, j int) bool { return info[i].ID < info[j].ID })
	return info
}
