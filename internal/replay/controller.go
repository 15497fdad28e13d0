// Package replay implements ReplayController: a non-owning wrapper that
// re-drives an Engine from a recorder.Recording's delta stream and
// exposes an Engine-shaped proxy whose only divergent method is Update.
package replay

import (
	"math"

	"github.com/pkg/errors"

	"clockwork/internal/engine"
	"clockwork/internal/event"
	"clockwork/internal/recorder"
)

// Epsilon absorbs floating-point drift when comparing the replay
// accumulator against a recorded delta (documented per the open
// question on fractional deltaTicks).
const Epsilon = 1e-9

// Progress is the snapshot getProgress returns.
type Progress struct {
	IsReplaying  bool
	Progress     float64
	HasMoreTicks bool
}

// Controller owns a non-owning reference to an Engine and re-drives it
// from an installed recording.
type Controller struct {
	eng *engine.Engine

	replaying    bool
	recording    recorder.Recording
	deltaIndex   int
	accum        float64
	replayedTick float64
}

// New wraps eng. eng is not owned: Controller never constructs or
// resets it outside of what Replay itself performs.
func New(eng *engine.Engine) *Controller {
	return &Controller{eng: eng}
}

// Replay validates rec, resets the engine with its gameConfig, installs
// a Recorded event source over its events, transitions the engine to
// PLAYING, and begins replay bookkeeping from the start.
func (c *Controller) Replay(rec recorder.Recording) error {
	if err := validate(rec); err != nil {
		return err
	}
	if c.replaying {
		return errors.New("replay: a replay is already in progress")
	}

	if err := c.eng.Reset(engine.GameConfig{PRNGSeed: rec.GameConfig.PRNGSeed, Extra: rec.GameConfig.Extra}); err != nil {
		return errors.Wrap(err, "replay: engine reset failed")
	}
	c.eng.GetEventManager().SetSource(event.NewRecorded(rec.Events))
	if err := c.eng.Start(); err != nil {
		return errors.Wrap(err, "replay: engine start failed")
	}

	c.recording = rec
	c.deltaIndex = 0
	c.accum = 0
	c.replayedTick = 0
	c.replaying = true
	return nil
}

func validate(rec recorder.Recording) error {
	if !rec.GameConfig.ConfigSet {
		return errors.New("invalid recording: gameConfig must be present")
	}
	lastTick := -1.0
	for i, e := range rec.Events {
		if e.Kind != event.KindUserInput && e.Kind != event.KindObjectUpdate {
			return errors.Errorf("invalid recording: events[%d] must have a recognised type", i)
		}
		if e.Tick < 0 {
			return errors.Errorf("invalid recording: events[%d].tick must be non-negative", i)
		}
		if e.Tick < lastTick {
			return errors.Errorf("invalid recording: events[%d].tick is out of order (recordings must be tick-sorted)", i)
		}
		lastTick = e.Tick
	}
	for i, d := range rec.DeltaTicks {
		if math.IsNaN(d) || d <= 0 {
			return errors.Errorf("deltaTicks[%d] must be a positive number", i)
		}
	}
	if rec.TotalTicks < 0 {
		return errors.New("invalid recording: totalTicks must be non-negative")
	}
	return nil
}

// StopReplay transitions the engine to PAUSED (if currently PLAYING)
// and clears the replaying flag. replayedTick is preserved so
// GetCurrentTick still reports how much was consumed before stop.
func (c *Controller) StopReplay() {
	if c.eng.GetState() == engine.StatePlaying {
		c.eng.Pause()
	}
	c.replaying = false
}

// IsReplaying reports whether a replay is in progress.
func (c *Controller) IsReplaying() bool { return c.replaying }

// GetCurrentTick returns the cumulative ticks consumed from the
// recording's delta stream so far.
func (c *Controller) GetCurrentTick() float64 { return c.replayedTick }

// GetProgress reports the fraction of the recording consumed and
// whether more deltas remain.
func (c *Controller) GetProgress() Progress {
	progress := 1.0
	if c.recording.TotalTicks != 0 {
		progress = math.Min(1, c.replayedTick/c.recording.TotalTicks)
	}
	return Progress{
		IsReplaying:  c.replaying,
		Progress:     progress,
		HasMoreTicks: c.deltaIndex < len(c.recording.DeltaTicks),
	}
}

// GetReplayEngine returns an Engine-shaped proxy whose Update drives the
// recording; every other call delegates straight to the wrapped Engine.
func (c *Controller) GetReplayEngine() *Proxy {
	return &Proxy{Engine: c.eng, ctrl: c}
}

// Proxy embeds *engine.Engine so every method but Update passes through
// unchanged; Update is the sole divergent method.
type Proxy struct {
	*engine.Engine
	ctrl *Controller
}

// Update drives the wrapped controller's replay bookkeeping. If no
// replay is active it delegates straight to the embedded Engine. If the
// engine is not PLAYING (e.g. paused mid-replay) it returns without
// advancing, preserving pause semantics.
func (p *Proxy) Update(externalDelta float64) {
	c := p.ctrl
	if !c.replaying {
		p.Engine.Update(externalDelta)
		return
	}
	if p.Engine.GetState() != engine.StatePlaying {
		return
	}

	c.accum += externalDelta
	for c.replaying && c.deltaIndex < len(c.recording.DeltaTicks) && c.accum+Epsilon >= c.recording.DeltaTicks[c.deltaIndex] {
		d := c.recording.DeltaTicks[c.deltaIndex]
		c.deltaIndex++
		c.accum -= d
		c.replayedTick += d
		p.Engine.Update(d)
	}

	if c.deltaIndex == len(c.recording.DeltaTicks) {
		c.StopReplay()
	}
}
