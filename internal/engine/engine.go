// Package engine implements the simulation core: the tick-driven state
// machine that owns the PRNG, Timer, EntityRegistry, and EventManager,
// and orchestrates update in the fixed event-then-timer-then-entities
// order.
package engine

import (
	"github.com/pkg/errors"

	"clockwork/internal/entity"
	"clockwork/internal/event"
	"clockwork/internal/prng"
	"clockwork/internal/timer"
)

// State is one of the engine's four lifecycle states.
type State uint8

const (
	StateReady State = iota
	StatePlaying
	StatePaused
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "READY"
	case StatePlaying:
		return "PLAYING"
	case StatePaused:
		return "PAUSED"
	case StateEnded:
		return "ENDED"
	default:
		return "UNKNOWN"
	}
}

// GameConfig is the caller-supplied configuration passed to reset and
// forwarded verbatim to the Game's Setup hook.
type GameConfig struct {
	PRNGSeed string
	Extra    map[string]any
}

// AssetLoader is the optional, out-of-scope collaborator reset's step 6
// preloads through. The core never interprets what it loads.
type AssetLoader interface {
	Preload(cfg GameConfig) error
}

// Game is the subclass hook reset invokes after the engine's own state
// has been rewound: Setup is where the initial entities for cfg are
// created, and must be deterministic under cfg.PRNGSeed.
type Game interface {
	Setup(eng *Engine, cfg GameConfig) error
}

// Recorder is the subset of recorder.Recorder the engine calls directly
// on a tick advance. Declared here rather than importing the recorder
// package, so the engine depends only on the one method it calls.
type Recorder interface {
	RecordTickAdvance(delta, total float64)
}

// Engine owns the PRNG, Timer, EntityRegistry, and EventManager
// exclusively, and drives them through the fixed per-tick order: event
// dispatch, then timers, then entity updates.
type Engine struct {
	state State
	seed  string
	cfg   GameConfig

	totalTicks float64

	prng     *prng.RNG
	timer    *timer.Timer
	registry *entity.Registry
	events   *event.Manager

	game    Game
	assets  AssetLoader
	recorder Recorder

	onStateChange *entity.Emitter[stateChange]
}

type stateChange struct {
	New, Old State
}

// New constructs an Engine bound to game for its Setup hook and assets
// (may be nil) for optional preload. The engine starts in READY with an
// empty registry and no installed event source.
func New(game Game, assets AssetLoader) *Engine {
	registry := entity.NewRegistry()
	return &Engine{
		state:         StateReady,
		registry:      registry,
		events:        event.NewManager(registry),
		timer:         timer.New(),
		prng:          prng.New(""),
		game:          game,
		assets:        assets,
		onStateChange: &entity.Emitter[stateChange]{},
	}
}

// OnStateChange subscribes fn to every state transition, including the
// identity transition reset performs.
func (e *Engine) OnStateChange(fn func(newState, oldState State)) {
	e.onStateChange.Subscribe(func(c stateChange) { fn(c.New, c.Old) })
}

func (e *Engine) setState(s State) {
	old := e.state
	e.state = s
	e.onStateChange.Emit(stateChange{New: s, Old: old})
}

// Reset rewinds the engine to READY and invokes the game's Setup hook.
// Order: persist cfg, transition to READY, reset PRNG, zero totalTicks,
// clear registry/timer/event source, preload assets, call Setup.
func (e *Engine) Reset(cfg GameConfig) error {
	e.cfg = cfg
	if cfg.PRNGSeed != "" {
		e.seed = cfg.PRNGSeed
	}
	e.setState(StateReady)

	e.prng.Reset(e.seed)
	e.totalTicks = 0
	e.registry.Clear()
	e.timer.Reset()
	if src := e.events.Source(); src != nil {
		src.Reset()
	}

	if e.assets != nil {
		if err := e.assets.Preload(cfg); err != nil {
			return errors.Wrap(err, "engine: asset preload failed")
		}
	}

	if e.game != nil {
		if err := e.game.Setup(e, cfg); err != nil {
			return errors.Wrap(err, "engine: game setup failed")
		}
	}
	return nil
}

// Start transitions READY -> PLAYING.
func (e *Engine) Start() error { return e.transition(StateReady, StatePlaying) }

// Pause transitions PLAYING -> PAUSED.
func (e *Engine) Pause() error { return e.transition(StatePlaying, StatePaused) }

// Resume transitions PAUSED -> PLAYING.
func (e *Engine) Resume() error { return e.transition(StatePaused, StatePlaying) }

// End transitions PLAYING or PAUSED -> ENDED.
func (e *Engine) End() error {
	if e.state != StatePlaying && e.state != StatePaused {
		return errors.Errorf("engine: cannot end from state %s", e.state)
	}
	e.setState(StateEnded)
	return nil
}

func (e *Engine) transition(from, to State) error {
	if e.state != from {
		return errors.Errorf("engine: cannot transition to %s: expected state %s, got %s", to, from, e.state)
	}
	e.setState(to)
	return nil
}

// Update advances the simulation by deltaTicks. A no-op outside PLAYING.
// Order: totalTicks advances; tick advance is recorded; events dispatch;
// timers fire; every group updates in registry insertion order.
func (e *Engine) Update(deltaTicks float64) {
	if e.state != StatePlaying {
		return
	}
	e.totalTicks += deltaTicks
	if e.recorder != nil {
		e.recorder.RecordTickAdvance(deltaTicks, e.totalTicks)
	}
	e.events.Update(e.totalTicks)
	e.timer.Update(deltaTicks, e.totalTicks)
	e.registry.UpdateAll(deltaTicks, e.totalTicks)
}

// RegisterEntity adds e to the group named overrideType, or e.Type() if
// overrideType is empty, creating the group on first use.
func (e *Engine) RegisterEntity(ent entity.Entity, overrideType string) {
	e.registry.Register(ent, overrideType)
}

// GetGroup returns the group for t, if it has been created.
func (e *Engine) GetGroup(t string) (*entity.Group, bool) { return e.registry.GetGroup(t) }

// GetRegisteredTypes returns every group type name in creation order.
func (e *Engine) GetRegisteredTypes() []string { return e.registry.GetRegisteredTypes() }

// GetTotalTicks returns the cumulative sum of all applied deltaTicks
// since the last Reset.
func (e *Engine) GetTotalTicks() float64 { return e.totalTicks }

// GetPRNG returns the engine's owned PRNG.
func (e *Engine) GetPRNG() *prng.RNG { return e.prng }

// GetTimer returns the engine's owned Timer.
func (e *Engine) GetTimer() *timer.Timer { return e.timer }

// GetEventManager returns the engine's owned EventManager.
func (e *Engine) GetEventManager() *event.Manager { return e.events }

// GetState returns the current lifecycle state.
func (e *Engine) GetState() State { return e.state }

// GetSeed returns the PRNG seed currently in effect.
func (e *Engine) GetSeed() string { return e.seed }

// SetRecorder attaches (or, with nil, detaches) the sink notified of
// tick advances during Update.
func (e *Engine) SetRecorder(r Recorder) { e.recorder = r }

// ClearDestroyed sweeps destroyed members from every group.
func (e *Engine) ClearDestroyed() int { return e.registry.ClearDestroyed() }
