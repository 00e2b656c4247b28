package game

import (
	"encoding/json"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/ironhull/scorched/internal/drops"
	"github.com/ironhull/scorched/internal/store"
)

// Design-space field size. The host scales rendering; the simulation always
// runs at these dimensions.
const (
	DesignWidth  = 1200
	DesignHeight = 800
)

const (
	physicsFrameMs = 1000.0 / 60.0

	// A turn that sits idle this long is forced: the AI fires its current
	// solution, the player keeps aiming (the timeout is a no-op for them).
	turnTimeoutFrames = 30 * 60

	// Frames of banner/transition time after a round ends.
	roundEndFrames = 90

	// Frames the AI visibly "aims" before firing.
	aiAimFrames = 45
)

// Engine is the complete headless game core: terrain, tanks, the turn
// machine, combat resolution, the run, and the meta-progression systems.
// The host drives it with input callbacks plus Tick, and drains Events.
type Engine struct {
	width, height int

	layout  *LayoutStore
	terrain *Terrain
	wind    Wind
	tanks   []*Tank
	player  *Tank
	enemy   *Tank

	phase         Phase
	shooter       Side
	projectile    *Projectile
	pendingImpact *Impact
	phaseFrames   int // frames spent in the current phase
	turnFrames    int // frames since the current turn started

	run  *RunState
	perf *drops.PerformanceTracker
	pity *drops.PityTracker
	drop *drops.Engine

	owned      map[string]bool
	blobs      store.Store
	highScores *store.HighScores
	lifetime   *store.Lifetime

	rng    *rand.Rand
	log    zerolog.Logger
	simLog *SimLog

	events       []Event
	tickAccumMs  float64
	frame        int
	slotIndex    int
	nextTankID   int
	unlocked     map[string]bool // achievements already fired this install
	playerAlive  bool
	enemyAlive   bool

	// Slingshot drag state.
	dragging       bool
	dragAnchorX    float64
	dragAnchorY    float64
	preview        *TrajectoryPreview

	aiSolution AimSolution
	aiPlanned  bool

	now func() time.Time
}

// Option configures a new Engine.
type Option func(*Engine)

// WithSeed fixes the engine RNG for deterministic runs.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- game RNG
	}
}

// WithStore substitutes the persistence backend.
func WithStore(s store.Store) Option {
	return func(e *Engine) { e.blobs = s }
}

// WithLogger sets the engine logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithClock substitutes the wall clock, used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSimLog attaches a structured sim log for headless runs.
func WithSimLog(sl *SimLog) Option {
	return func(e *Engine) { e.simLog = sl }
}

// New builds an engine, hydrates persisted meta-state, and leaves it in the
// menu phase.
func New(opts ...Option) *Engine {
	e := &Engine{
		width:   DesignWidth,
		height:  DesignHeight,
		layout:  NewLayoutStore(),
		phase:   PhaseMenu,
		run:     NewRunState(),
		owned:   make(map[string]bool),
		unlocked: make(map[string]bool),
		blobs:   store.NewMemoryStore(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- game RNG
		log:     zerolog.Nop(),
		simLog:  NewSimLog(false),
		now:     time.Now,
	}
	for _, o := range opts {
		o(e)
	}

	e.perf = drops.NewPerformanceTracker()
	e.pity = drops.NewPityTracker()
	e.drop = drops.NewEngine(e.rng.Int63(), drops.DefaultCatalog(), e.pity, e.perf, e.log)
	e.highScores = store.NewHighScores(e.blobs, e.log)
	e.lifetime = store.NewLifetime(e.blobs, e.log)
	e.hydrate()
	return e
}

// --- Persistence ---

// hydrate loads pity counters, duplicate protection, and the owned set.
// Any corrupt blob falls back to defaults with a warning.
func (e *Engine) hydrate() {
	if data, ok := e.blobs.Get(store.KeyPityState); ok {
		var s drops.PityState
		if err := json.Unmarshal(data, &s); err != nil {
			e.log.Warn().Err(err).Msg("pity state corrupt, resetting")
		} else {
			e.pity.Restore(s)
		}
	}
	if data, ok := e.blobs.Get(store.KeyPerformanceState); ok {
		var s drops.DuplicateState
		if err := json.Unmarshal(data, &s); err != nil {
			e.log.Warn().Err(err).Msg("duplicate state corrupt, resetting")
		} else {
			e.drop.RestoreDuplicateState(s)
		}
	}
	if data, ok := e.blobs.Get(store.KeyOwnedTanks); ok {
		var ids []string
		if err := json.Unmarshal(data, &ids); err != nil {
			e.log.Warn().Err(err).Msg("owned tank list corrupt, resetting")
		} else {
			for _, id := range ids {
				e.owned[id] = true
			}
		}
	}
}

// persistMeta writes pity, duplicate protection, and ownership. Persistence
// failures are non-fatal: the store already warned.
func (e *Engine) persistMeta() {
	if data, err := json.Marshal(e.pity.Snapshot()); err == nil {
		e.blobs.Set(store.KeyPityState, data)
	}
	if data, err := json.Marshal(e.drop.DuplicateSnapshot()); err == nil {
		e.blobs.Set(store.KeyPerformanceState, data)
	}
	ids := make([]string, 0, len(e.owned))
	for id := range e.owned {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if data, err := json.Marshal(ids); err == nil {
		e.blobs.Set(store.KeyOwnedTanks, data)
	}
}

// --- Accessors for the host ---

func (e *Engine) Phase() Phase            { return e.phase }
func (e *Engine) Shooter() Side           { return e.shooter }
func (e *Engine) Terrain() *Terrain       { return e.terrain }
func (e *Engine) WindValue() float64      { return e.wind.Value() }
func (e *Engine) Player() *Tank           { return e.player }
func (e *Engine) Enemy() *Tank            { return e.enemy }
func (e *Engine) Run() *RunState          { return e.run }
func (e *Engine) Layout() *LayoutStore    { return e.layout }
func (e *Engine) HighScores() *store.HighScores { return e.highScores }
func (e *Engine) Lifetime() *store.Lifetime     { return e.lifetime }
func (e *Engine) OwnedTanks() map[string]bool   { return e.owned }

// Projectile returns the shell in flight, nil outside projectileFlight.
func (e *Engine) Projectile() *Projectile { return e.projectile }

// Preview returns the live aim preview, nil when not dragging.
func (e *Engine) Preview() *TrajectoryPreview { return e.preview }

// DrainEvents returns and clears the pending event queue.
func (e *Engine) DrainEvents() []Event {
	out := e.events
	e.events = nil
	return out
}

func (e *Engine) emit(ev Event) {
	e.events = append(e.events, ev)
}

// --- Run / round lifecycle ---

// StartRun begins a fresh roguelike run from the menu or game-over screen.
func (e *Engine) StartRun() {
	if e.run.Active() {
		e.log.Warn().Msg("StartRun ignored: run already active")
		return
	}
	e.run.StartNewRun(e.now())
	e.perf.ResetPerformanceOnNewRun()
	e.slotIndex = 0
	e.setupRound()
}

// setupRound rebuilds the world for the current round: slot terrain, tanks
// settled on the surface, fresh wind, player aims first.
func (e *Engine) setupRound() {
	ids := e.layout.SlotIDs()
	slotID := ids[e.slotIndex%len(ids)]
	e.slotIndex++

	terrain, err := e.layout.BuildTerrainFromSlot(slotID, e.width, e.height)
	if err != nil {
		e.log.Warn().Err(err).Str("slot", slotID).Msg("slot build failed, generating fallback terrain")
		terrain = GenerateTerrain(e.width, e.height, DefaultTerrainGenOptions(e.rng.Int63()))
	}
	e.terrain = terrain

	round := e.run.RoundNumber()
	e.player = NewTank(e.nextTankID, SidePlayer, float64(e.layout.PlayerAnchorX(e.width)), baseTankHealth)
	e.nextTankID++
	e.enemy = NewTank(e.nextTankID, SideEnemy, float64(e.layout.EnemyAnchorX(slotID, e.width)), EnemyHealthForRound(round))
	e.nextTankID++
	e.player.SettleOnTerrain(e.terrain)
	e.enemy.SettleOnTerrain(e.terrain)
	e.tanks = []*Tank{e.player, e.enemy}
	e.playerAlive = true
	e.enemyAlive = true

	e.wind.Resample(e.rng)
	e.projectile = nil
	e.pendingImpact = nil
	e.preview = nil
	e.dragging = false
	e.aiPlanned = false

	e.perf.OnRoundStart(round)
	e.simLog.Add(e.frame, "round", "setup", slotID, float64(round))
	e.setPhase(PhasePlayerAim, SidePlayer)
}

// setPhase performs a transition and emits the change event with its banner.
func (e *Engine) setPhase(to Phase, shooter Side) {
	from := e.phase
	e.phase = to
	e.shooter = shooter
	e.phaseFrames = 0
	if to == PhasePlayerAim || to == PhaseAIAim {
		e.turnFrames = 0
	}
	e.simLog.Add(e.frame, "phase", "change", from.String()+" → "+to.String(), 0)
	e.emit(PhaseChangedEvent{From: from, To: to, Shooter: shooter, Banner: BannerFor(to, shooter)})
}

// --- Input (host callbacks, design coords) ---

// OnPointerDown begins a slingshot drag during the player's aim phase.
func (e *Engine) OnPointerDown(x, y float64) {
	if e.phase != PhasePlayerAim {
		return
	}
	e.dragging = true
	e.dragAnchorX = e.player.X()
	e.dragAnchorY = e.player.Y() - tankHalfHeight
	e.updateAim(x, y)
}

// OnPointerMove updates the aim and preview while dragging.
func (e *Engine) OnPointerMove(x, y float64) {
	if !e.dragging || e.phase != PhasePlayerAim {
		return
	}
	e.updateAim(x, y)
}

// OnPointerUp releases the drag, firing when past the dead zone.
func (e *Engine) OnPointerUp(x, y float64) {
	if !e.dragging || e.phase != PhasePlayerAim {
		e.dragging = false
		return
	}
	e.dragging = false
	e.preview = nil
	if _, ok := AimFromDrag(e.dragAnchorX, e.dragAnchorY, x, y); !ok {
		return // too short — no shot
	}
	e.updateAim(x, y)
	e.setPhase(PhasePlayerFire, SidePlayer)
	e.fire(e.player)
}

// CancelDrag aborts the aim (pointer left the play area, focus lost). The
// preview clears and nothing fires.
func (e *Engine) CancelDrag() {
	e.dragging = false
	e.preview = nil
}

// OnKey handles discrete actions: weapon selection and menu confirm.
func (e *Engine) OnKey(code string) {
	switch code {
	case "Digit1":
		e.trySelectWeapon(WeaponStandard)
	case "Digit2":
		e.trySelectWeapon(WeaponHeavy)
	case "Digit3":
		e.trySelectWeapon(WeaponNuke)
	case "Enter", "Space":
		if e.phase == PhaseMenu || e.phase == PhaseGameOver {
			if e.phase == PhaseGameOver {
				e.phase = PhaseMenu
			}
			e.StartRun()
		}
	}
}

func (e *Engine) trySelectWeapon(id WeaponID) {
	if e.phase != PhasePlayerAim || e.player == nil {
		return
	}
	if err := e.player.SelectWeapon(id); err != nil {
		e.log.Debug().Err(err).Msg("weapon select rejected")
	}
}

// updateAim derives angle/power from the current drag and refreshes the
// trajectory preview.
func (e *Engine) updateAim(x, y float64) {
	sol, ok := AimFromDrag(e.dragAnchorX, e.dragAnchorY, x, y)
	if !ok {
		e.preview = nil
		return
	}
	e.player.SetAngle(sol.AngleDeg)
	e.player.SetPower(sol.Power)
	p := PredictTrajectory(e.player, e.terrain, &e.wind, e.tanks)
	e.preview = &p
}

// --- Simulation ---

// Tick advances the simulation by wall-clock milliseconds. Physics is
// locked to 60 Hz via an accumulator; rendering interpolation is the
// host's business.
func (e *Engine) Tick(deltaMs float64) {
	if deltaMs < 0 {
		return
	}
	// Clamp pathological deltas (tab suspended, debugger) to one second.
	if deltaMs > 1000 {
		deltaMs = 1000
	}
	e.tickAccumMs += deltaMs
	for e.tickAccumMs >= physicsFrameMs {
		e.tickAccumMs -= physicsFrameMs
		e.stepFrame()
	}
}

// StepFrames advances exactly n physics frames, used by headless tools.
func (e *Engine) StepFrames(n int) {
	for i := 0; i < n; i++ {
		e.stepFrame()
	}
}

// stepFrame runs one fixed 1/60s frame of the phase machine.
func (e *Engine) stepFrame() {
	e.frame++
	e.phaseFrames++

	switch e.phase {
	case PhasePlayerAim:
		e.turnFrames++
		// Turn timeout is a no-op for the player by design of the contract:
		// only the AI is forced.

	case PhaseAIAim:
		e.turnFrames++
		if !e.aiPlanned {
			e.aiSolution = e.planAIShot()
			e.aiPlanned = true
		}
		if e.phaseFrames >= aiAimFrames || e.turnFrames >= turnTimeoutFrames {
			e.enemy.SetAngle(e.aiSolution.AngleDeg)
			e.enemy.SetPower(e.aiSolution.Power)
			e.setPhase(PhaseAIFire, SideEnemy)
			e.fire(e.enemy)
		}

	case PhaseProjectileFlight:
		if e.projectile == nil {
			// Invariant violation: flight phase with no shell. Recover by
			// treating the shot as lost.
			e.log.Warn().Msg("projectileFlight with no projectile; resolving as lost shot")
			e.setPhase(PhaseResolving, e.shooter)
			return
		}
		impact := e.projectile.Step(e.terrain, &e.wind, e.tanks)
		if impact != nil {
			e.projectile = nil
			e.pendingImpact = impact
			e.simLog.Add(e.frame, "impact", impact.Kind.String(), impact.String(), impact.Damage)
			e.emit(ImpactEvent{Impact: *impact})
			e.setPhase(PhaseResolving, e.shooter)
		}

	case PhaseResolving:
		if e.pendingImpact != nil {
			e.resolveImpact(e.pendingImpact)
			e.pendingImpact = nil
		}
		e.playerAlive = e.player.Alive()
		e.enemyAlive = e.enemy.Alive()
		if !e.playerAlive || !e.enemyAlive {
			e.setPhase(PhaseRoundEnd, e.shooter)
			return
		}
		// Alternate turns.
		if e.shooter == SidePlayer {
			e.setPhase(PhaseAIAim, SideEnemy)
			e.aiPlanned = false
		} else {
			e.setPhase(PhasePlayerAim, SidePlayer)
		}

	case PhaseRoundEnd:
		if e.phaseFrames >= roundEndFrames {
			e.finishRound()
		}

	case PhaseMenu, PhaseGameOver:
		// Parked; host drives via OnKey/StartRun.
	}
}

// fire spawns the shooter's projectile and enters flight. Exactly one
// projectile exists during projectileFlight.
func (e *Engine) fire(t *Tank) {
	if e.projectile != nil {
		e.log.Warn().Msg("fire ignored: projectile already in flight")
		return
	}
	// Dry weapons fall back to the infinite standard shell.
	if t.AmmoFor(t.CurrentWeapon()) == 0 {
		_ = t.SelectWeapon(WeaponStandard)
	}
	p, ok := t.Fire()
	if !ok {
		e.log.Warn().Int("tank", t.ID()).Msg("fire failed: no ammo")
		return
	}
	e.projectile = p
	if t.Side() == SidePlayer {
		e.run.RecordShotFired(t.CurrentWeapon())
	}
	x, y := p.Position()
	e.simLog.Add(e.frame, "fire", t.Side().String(), string(t.CurrentWeapon()), t.Power())
	e.emit(ProjectileSpawnedEvent{X: x, Y: y, Owner: t.Side(), WeaponID: t.CurrentWeapon()})
	e.setPhase(PhaseProjectileFlight, t.Side())
}

// finishRound applies the victor rules and either advances the run or ends
// it. Mutual destruction is a draw — still a lost run.
func (e *Engine) finishRound() {
	switch {
	case !e.playerAlive:
		e.endRun(!e.enemyAlive)
	case !e.enemyAlive:
		e.perf.OnRoundEnd(true)
		e.run.AdvanceRound()
		e.emit(RoundWonEvent{Round: e.run.RoundNumber() - 1})
		e.checkAchievements()
		e.awardSupplyDrop()
		e.persistMeta()
		e.setupRound()
	default:
		// finishRound with both alive is unreachable from resolving; recover
		// by resuming the player's turn.
		e.log.Warn().Msg("round end with both tanks alive; resuming")
		e.setPhase(PhasePlayerAim, SidePlayer)
	}
}

// endRun finalises stats, persists the score, and parks the machine.
func (e *Engine) endRun(draw bool) {
	e.perf.OnRoundEnd(false)
	stats := e.run.Stats()
	e.run.EndRun(e.now())

	entry := store.HighScoreEntry{
		RoundsSurvived:   stats.RoundsSurvived,
		TotalDamage:      stats.TotalDamageDealt,
		EnemiesDestroyed: stats.EnemiesDestroyed,
		ShotsFired:       stats.ShotsFired,
		ShotsHit:         stats.ShotsHit,
		HitRate:          stats.HitRatePercent(),
		MoneyEarned:      stats.MoneyEarned,
		BiggestHit:       stats.BiggestHit,
		Timestamp:        e.now().UnixMilli(),
	}
	e.highScores.Save(entry)
	e.lifetime.RecordRun(entry, e.now())
	e.persistMeta()

	e.emit(RunEndedEvent{RoundsSurvived: stats.RoundsSurvived, Draw: draw})
	e.setPhase(PhaseGameOver, e.shooter)
}

// awardSupplyDrop rolls the post-victory crate and applies the result.
func (e *Engine) awardSupplyDrop() {
	res := e.drop.Roll(drops.DropStandard, e.owned)
	if !res.Success {
		return // no drop; already logged
	}
	if res.IsNew {
		e.owned[res.Tank.ID] = true
	}
	if res.ScrapAwarded > 0 {
		e.run.RecordMoneyEarned(res.ScrapAwarded)
	}
	e.simLog.Add(e.frame, "drop", res.Rarity.String(), res.Tank.ID, float64(res.ScrapAwarded))
	e.emit(DropResolvedEvent{
		Rarity:        res.Rarity.String(),
		TankID:        res.Tank.ID,
		IsNew:         res.IsNew,
		IsDuplicate:   res.IsDuplicate,
		ScrapAwarded:  res.ScrapAwarded,
		PityTriggered: res.PityTriggered,
	})
}

// checkAchievements fires one-shot run milestones. The UX layer renders
// them; here they only arm the drop-rate bonus.
func (e *Engine) checkAchievements() {
	stats := e.run.Stats()
	fire := func(id string) {
		if e.unlocked[id] {
			return
		}
		e.unlocked[id] = true
		e.perf.OnAchievementUnlocked()
		e.emit(AchievementUnlockedEvent{ID: id})
	}
	if stats.EnemiesDestroyed >= 1 {
		fire("first-blood")
	}
	if stats.BiggestHit >= 75 {
		fire("heavy-hitter")
	}
	if stats.NukesLaunched >= 1 {
		fire("going-nuclear")
	}
	if stats.RoundsSurvived >= 10 {
		fire("decath")
	}
}
