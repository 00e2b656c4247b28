package game

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/ironhull/scorched/internal/store"
)

// TestSim is a headless harness used exclusively by tests. It wraps a fully
// wired Engine with a deterministic seed, an in-memory store, a frozen
// clock, and direct shot injection that bypasses the pointer drag.
type TestSim struct {
	E      *Engine
	SimLog *SimLog
}

// SimOption is a builder function applied to a TestSim during construction.
type SimOption func(*testSimConfig)

type testSimConfig struct {
	seed    int64
	store   store.Store
	verbose bool
	started bool
}

// WithSimSeed sets the RNG seed for deterministic runs.
func WithSimSeed(seed int64) SimOption {
	return func(c *testSimConfig) { c.seed = seed }
}

// WithSimStore substitutes the persistence backend, e.g. one pre-loaded
// with pity or ownership state.
func WithSimStore(s store.Store) SimOption {
	return func(c *testSimConfig) { c.store = s }
}

// WithVerbose enables per-frame verbose logging.
func WithVerbose(v bool) SimOption {
	return func(c *testSimConfig) { c.verbose = v }
}

// WithRunStarted begins a run immediately, landing in playerAim.
func WithRunStarted() SimOption {
	return func(c *testSimConfig) { c.started = true }
}

// NewTestSim constructs a harness. Defaults: seed 1, fresh memory store,
// clock frozen at a fixed instant, no run started.
func NewTestSim(opts ...SimOption) *TestSim {
	cfg := testSimConfig{
		seed:  1,
		store: store.NewMemoryStore(),
	}
	for _, o := range opts {
		o(&cfg)
	}
	sl := NewSimLog(cfg.verbose)
	frozen := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e := New(
		WithSeed(cfg.seed),
		WithStore(cfg.store),
		WithLogger(zerolog.Nop()),
		WithClock(func() time.Time { return frozen }),
		WithSimLog(sl),
	)
	ts := &TestSim{E: e, SimLog: sl}
	if cfg.started {
		e.StartRun()
	}
	return ts
}

// RunFrames advances n fixed physics frames.
func (ts *TestSim) RunFrames(n int) {
	ts.E.StepFrames(n)
}

// RunUntil advances up to maxFrames, stopping early when predicate returns
// true. Returns the frame at which it was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*Engine) bool, maxFrames int) int {
	for i := 0; i < maxFrames; i++ {
		ts.E.stepFrame()
		if predicate(ts.E) {
			return ts.E.frame
		}
	}
	return -1
}

// RunUntilPhase advances until the engine reaches the phase, or -1.
func (ts *TestSim) RunUntilPhase(p Phase, maxFrames int) int {
	return ts.RunUntil(func(e *Engine) bool { return e.phase == p }, maxFrames)
}

// FirePlayer injects a player shot directly, bypassing the slingshot drag.
// The engine must be in playerAim; returns false otherwise.
func (ts *TestSim) FirePlayer(angleDeg, power float64) bool {
	e := ts.E
	if e.phase != PhasePlayerAim {
		return false
	}
	e.player.SetAngle(angleDeg)
	e.player.SetPower(power)
	e.setPhase(PhasePlayerFire, SidePlayer)
	e.fire(e.player)
	return e.phase == PhaseProjectileFlight
}

// DragAndRelease performs a full pointer gesture: press at the tank, drag to
// (x, y), release. Exercises the same path the host uses.
func (ts *TestSim) DragAndRelease(x, y float64) {
	e := ts.E
	e.OnPointerDown(e.player.X(), e.player.Y()-tankHalfHeight)
	e.OnPointerMove(x, y)
	e.OnPointerUp(x, y)
}

// ResolveShot fires a player shot and runs frames until the engine leaves
// flight and resolving, collecting the impact event. Returns nil when no
// impact was observed within the flight cap.
func (ts *TestSim) ResolveShot(angleDeg, power float64) *Impact {
	if !ts.FirePlayer(angleDeg, power) {
		return nil
	}
	var impact *Impact
	ts.RunUntil(func(e *Engine) bool {
		for _, ev := range e.events {
			if ie, ok := ev.(ImpactEvent); ok {
				imp := ie.Impact
				impact = &imp
			}
		}
		return e.phase != PhaseProjectileFlight && e.phase != PhaseResolving
	}, maxFlightFrames+16)
	return impact
}

// DrainEvents empties the engine queue for assertion.
func (ts *TestSim) DrainEvents() []Event {
	return ts.E.DrainEvents()
}

// EventsOf filters drained events by example type, keeping queue order.
func EventsOf[T Event](events []Event) []T {
	var out []T
	for _, ev := range events {
		if t, ok := ev.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// Snapshot captures a lightweight state summary for failure messages.
type SimSnapshot struct {
	Frame        int
	Phase        Phase
	Round        int
	PlayerHealth float64
	EnemyHealth  float64
	Wind         float64
}

// Snapshot returns the current engine state.
func (ts *TestSim) Snapshot() SimSnapshot {
	e := ts.E
	snap := SimSnapshot{Frame: e.frame, Phase: e.phase, Round: e.run.RoundNumber(), Wind: e.wind.Value()}
	if e.player != nil {
		snap.PlayerHealth = e.player.Health()
	}
	if e.enemy != nil {
		snap.EnemyHealth = e.enemy.Health()
	}
	return snap
}
