package drops

import (
	"math/rand"

	"github.com/rs/zerolog"
)

// Engine rolls supply drops: rarity first (base rates + performance + pity),
// then a tank within the tier under duplicate protection.

// Forcing a new tank kicks in after this many duplicates in a row.
const consecutiveDuplicateLimit = 3

// Result describes one resolved supply drop.
type Result struct {
	Success       bool
	Rarity        Rarity
	Tank          TankSkin
	IsNew         bool
	IsDuplicate   bool
	ScrapAwarded  int
	PityTriggered bool
}

// Engine owns the RNG and the duplicate-protection state.
type Engine struct {
	rng     *rand.Rand
	catalog []TankSkin
	pools   map[Rarity][]TankSkin
	pity    *PityTracker
	perf    *PerformanceTracker
	log     zerolog.Logger

	lastDropID            string
	consecutiveDuplicates int
}

// NewEngine builds a drop engine over the given catalog and trackers.
func NewEngine(seed int64, catalog []TankSkin, pity *PityTracker, perf *PerformanceTracker, log zerolog.Logger) *Engine {
	return &Engine{
		rng:     rand.New(rand.NewSource(seed)), // #nosec G404 -- game RNG
		catalog: catalog,
		pools:   poolByRarity(catalog),
		pity:    pity,
		perf:    perf,
		log:     log,
	}
}

// Pity exposes the tracker for persistence wiring.
func (e *Engine) Pity() *PityTracker { return e.pity }

// Performance exposes the tracker for gameplay wiring.
func (e *Engine) Performance() *PerformanceTracker { return e.perf }

// DuplicateState is the persisted duplicate-protection state.
type DuplicateState struct {
	LastDropID            string `json:"lastDropId"`
	ConsecutiveDuplicates int    `json:"consecutiveDuplicates"`
}

// DuplicateSnapshot returns the persistable duplicate-protection state.
func (e *Engine) DuplicateSnapshot() DuplicateState {
	return DuplicateState{
		LastDropID:            e.lastDropID,
		ConsecutiveDuplicates: e.consecutiveDuplicates,
	}
}

// RestoreDuplicateState loads persisted duplicate-protection state.
func (e *Engine) RestoreDuplicateState(s DuplicateState) {
	e.lastDropID = s.LastDropID
	e.consecutiveDuplicates = maxI(0, s.ConsecutiveDuplicates)
}

// Roll resolves one supply drop against the player's owned set.
//
// Order: rates → raw roll → pity guarantee promotion → candidate selection
// under duplicate protection → counter updates.
func (e *Engine) Roll(dropType DropType, owned map[string]bool) Result {
	perfBonus := e.perf.TotalBonus()
	rates := ComputeRates(dropType, perfBonus, e.pity.RareBonus(), e.pity.EpicBonus())

	u := e.rng.Float64() * 100
	rarity := RollRarity(rates, u)

	// Pity override: promote the rolled rarity up to any guaranteed floor.
	pityTriggered := false
	if minRarity, ok := e.pity.GuaranteedMinRarity(); ok && rarity < minRarity {
		rarity = minRarity
		pityTriggered = true
	}

	forceNew := e.consecutiveDuplicates >= consecutiveDuplicateLimit
	tank, ok := e.selectTank(rarity, owned, forceNew)
	if !ok {
		// Empty bucket: never expected with the shipped catalog.
		e.log.Error().Str("rarity", rarity.String()).Msg("drop roll hit an empty rarity pool")
		return Result{Success: false, Rarity: rarity}
	}

	isDup := owned[tank.ID]
	res := Result{
		Success:       true,
		Rarity:        rarity,
		Tank:          tank,
		IsNew:         !isDup,
		IsDuplicate:   isDup,
		PityTriggered: pityTriggered,
	}
	if isDup {
		res.ScrapAwarded = ScrapValue(rarity)
		e.consecutiveDuplicates++
	} else {
		e.consecutiveDuplicates = 0
	}
	e.lastDropID = tank.ID
	e.pity.OnDropResult(rarity)
	e.perf.ConsumeAchievementBonus()
	return res
}

// selectTank picks a tank of the rolled rarity. Duplicate protection:
// the immediately previous drop is excluded unless it is the only candidate;
// forceNew restricts to unowned tanks when any exist; an owned pick is
// rerolled once within the unowned subset.
func (e *Engine) selectTank(rarity Rarity, owned map[string]bool, forceNew bool) (TankSkin, bool) {
	pool := e.pools[rarity]
	if len(pool) == 0 {
		return TankSkin{}, false
	}

	candidates := pool
	if len(pool) > 1 && e.lastDropID != "" {
		trimmed := make([]TankSkin, 0, len(pool))
		for _, t := range pool {
			if t.ID != e.lastDropID {
				trimmed = append(trimmed, t)
			}
		}
		if len(trimmed) > 0 {
			candidates = trimmed
		}
	}

	unowned := make([]TankSkin, 0, len(candidates))
	for _, t := range candidates {
		if !owned[t.ID] {
			unowned = append(unowned, t)
		}
	}

	if forceNew {
		if len(unowned) > 0 {
			return unowned[e.rng.Intn(len(unowned))], true
		}
		// Everything in the tier is owned; keep the guarantee honest by
		// proceeding with any candidate.
		e.log.Warn().Str("rarity", rarity.String()).Msg("force-new requested but every candidate is owned")
	}

	pick := candidates[e.rng.Intn(len(candidates))]
	if owned[pick.ID] && !forceNew && len(unowned) > 0 {
		// One duplicate reroll within the same rarity.
		pick = unowned[e.rng.Intn(len(unowned))]
	}
	return pick, true
}
