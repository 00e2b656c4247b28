package game

import "time"

// RunStats is the per-run bookkeeping flushed into lifetime stats and high
// scores when the run ends.
type RunStats struct {
	RoundsSurvived   int            `json:"roundsSurvived"`
	TotalDamageDealt float64        `json:"totalDamageDealt"`
	TotalDamageTaken float64        `json:"totalDamageTaken"`
	EnemiesDestroyed int            `json:"enemiesDestroyed"`
	ShotsFired       int            `json:"shotsFired"`
	ShotsHit         int            `json:"shotsHit"`
	MoneyEarned      int            `json:"moneyEarned"`
	MoneySpent       int            `json:"moneySpent"`
	BiggestHit       float64        `json:"biggestHit"`
	WeaponsUsed      map[WeaponID]bool `json:"weaponsUsed"`
	NukesLaunched    int            `json:"nukesLaunched"`
}

// HitRatePercent returns shots hit over fired as a whole percent.
func (rs *RunStats) HitRatePercent() int {
	if rs.ShotsFired == 0 {
		return 0
	}
	return int(float64(rs.ShotsHit) / float64(rs.ShotsFired) * 100)
}

// RunState tracks one roguelike run. A run spans rounds and ends on player
// death; runs never overlap.
type RunState struct {
	active      bool
	roundNumber int
	startTime   time.Time
	endTime     time.Time
	stats       RunStats
}

// NewRunState returns an inactive run.
func NewRunState() *RunState {
	return &RunState{}
}

// StartNewRun resets all per-run state and activates the run.
func (r *RunState) StartNewRun(now time.Time) {
	r.active = true
	r.roundNumber = 1
	r.startTime = now
	r.endTime = time.Time{}
	r.stats = RunStats{WeaponsUsed: make(map[WeaponID]bool)}
}

// EndRun stamps the end time and deactivates. Ending an inactive run is a
// no-op.
func (r *RunState) EndRun(now time.Time) {
	if !r.active {
		return
	}
	r.active = false
	r.endTime = now
}

// AdvanceRound bumps the round counter and the survived count.
func (r *RunState) AdvanceRound() {
	if !r.active {
		return
	}
	r.roundNumber++
	r.stats.RoundsSurvived++
}

func (r *RunState) Active() bool       { return r.active }
func (r *RunState) RoundNumber() int   { return r.roundNumber }
func (r *RunState) StartTime() time.Time { return r.startTime }

// Stats returns a copy of the current run stats.
func (r *RunState) Stats() RunStats {
	out := r.stats
	out.WeaponsUsed = make(map[WeaponID]bool, len(r.stats.WeaponsUsed))
	for k, v := range r.stats.WeaponsUsed {
		out.WeaponsUsed[k] = v
	}
	return out
}

// Stat mutators. All of them silently count even when the run is inactive —
// recording never fails, it just doesn't persist past the next StartNewRun.

func (r *RunState) RecordDamageDealt(d float64) {
	r.stats.TotalDamageDealt += d
	if d > r.stats.BiggestHit {
		r.stats.BiggestHit = d
	}
}

func (r *RunState) RecordDamageTaken(d float64) {
	r.stats.TotalDamageTaken += d
}

func (r *RunState) RecordShotFired(w WeaponID) {
	r.stats.ShotsFired++
	if r.stats.WeaponsUsed == nil {
		r.stats.WeaponsUsed = make(map[WeaponID]bool)
	}
	r.stats.WeaponsUsed[w] = true
	if w == WeaponNuke {
		r.stats.NukesLaunched++
	}
}

func (r *RunState) RecordShotHit()        { r.stats.ShotsHit++ }
func (r *RunState) RecordEnemyDestroyed() { r.stats.EnemiesDestroyed++ }
func (r *RunState) RecordMoneyEarned(n int) { r.stats.MoneyEarned += n }
func (r *RunState) RecordMoneySpent(n int)  { r.stats.MoneySpent += n }

// EnemyHealthForRound returns the scaled enemy max health for a round.
// Stepwise: rounds 1–3 fight base enemies, then +20% every three rounds,
// capped at 1.8× from round 13 on.
func EnemyHealthForRound(round int) float64 {
	var mul float64
	switch {
	case round <= 3:
		mul = 1.0
	case round <= 6:
		mul = 1.2
	case round <= 9:
		mul = 1.4
	case round <= 12:
		mul = 1.6
	default:
		mul = 1.8
	}
	return baseTankHealth * mul
}
