package main

import (
	"flag"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/ironhull/scorched/internal/drops"
	"github.com/ironhull/scorched/internal/game"
)

type runStats struct {
	runIndex int
	seed     int64

	roundsSurvived int
	shotsFired     int
	shotsHit       int
	hitRatePercent int
	biggestHit     float64
	damageDealt    float64
	damageTaken    float64

	phaseChanges int
	impacts      int
	dropsByTier  map[string]int
	endFrame     int
}

func main() {
	var runs int
	var maxFrames int
	var seedBase int64
	var seedStep int64
	var dropRolls int

	flag.IntVar(&runs, "runs", 5, "number of autoplay runs")
	flag.IntVar(&maxFrames, "max-frames", 600000, "frame cap per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.IntVar(&dropRolls, "drop-rolls", 10000, "rolls per drop-type distribution sample")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if maxFrames <= 0 {
		fmt.Println("error: -max-frames must be > 0")
		return
	}

	fmt.Printf("=== Headless Balance Report ===\n")
	fmt.Printf("runs=%d max_frames=%d seed_base=%d seed_step=%d drop_rolls=%d\n\n",
		runs, maxFrames, seedBase, seedStep, dropRolls)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats := runAutoplay(i+1, seed, maxFrames)
		all = append(all, stats)
		printRun(stats)
	}
	printAggregate(all)

	if dropRolls > 0 {
		printDropDistributions(dropRolls, seedBase)
	}
}

// runAutoplay plays one full run with the player driven by the same grid
// search the enemy gunner uses, until permadeath or the frame cap.
func runAutoplay(runIndex int, seed int64, maxFrames int) runStats {
	ts := game.NewTestSim(
		game.WithSimSeed(seed),
		game.WithRunStarted(),
	)

	for ts.E.Phase() != game.PhaseGameOver && ts.Snapshot().Frame < maxFrames {
		if ts.E.Phase() == game.PhasePlayerAim {
			angle, power := planPlayerShot(ts.E)
			ts.FirePlayer(angle, power)
		}
		ts.RunFrames(1)
	}

	stats := ts.E.Run().Stats()
	dropsByTier := map[string]int{}
	for _, tier := range []string{"common", "uncommon", "rare", "epic", "legendary"} {
		if n := ts.SimLog.CountCategory("drop", tier); n > 0 {
			dropsByTier[tier] = n
		}
	}

	return runStats{
		runIndex:       runIndex,
		seed:           seed,
		roundsSurvived: stats.RoundsSurvived,
		shotsFired:     stats.ShotsFired,
		shotsHit:       stats.ShotsHit,
		hitRatePercent: stats.HitRatePercent(),
		biggestHit:     stats.BiggestHit,
		damageDealt:    stats.TotalDamageDealt,
		damageTaken:    stats.TotalDamageTaken,
		phaseChanges:   ts.SimLog.CountCategory("phase", "change"),
		impacts:        ts.SimLog.CountCategory("impact", ""),
		dropsByTier:    dropsByTier,
		endFrame:       ts.Snapshot().Frame,
	}
}

// planPlayerShot grid-searches angle/power with the shared predictor and
// returns the candidate landing closest to the enemy hull.
func planPlayerShot(e *game.Engine) (float64, float64) {
	target := e.Enemy()
	tanks := []*game.Tank{e.Player(), e.Enemy()}
	wind := &game.Wind{}
	wind.SetValue(e.WindValue())

	bestAngle, bestPower := 45.0, 60.0
	bestDist := math.Inf(1)
	for angle := 10.0; angle <= 85.0; angle += 5.0 {
		for power := 25.0; power <= 100.0; power += 7.5 {
			e.Player().SetAngle(angle)
			e.Player().SetPower(power)
			preview := game.PredictTrajectory(e.Player(), e.Terrain(), wind, tanks)
			if preview.Impact == nil {
				continue
			}
			d := math.Hypot(preview.Impact.X-target.X(), preview.Impact.Y-target.Y())
			if preview.Impact.Kind == game.ImpactTank && preview.Impact.TankID == target.ID() {
				d = 0
			}
			if d < bestDist {
				bestDist = d
				bestAngle, bestPower = angle, power
			}
		}
	}
	return bestAngle, bestPower
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("outcome: rounds_survived=%d end_frame=%d\n", rs.roundsSurvived, rs.endFrame)
	fmt.Printf("combat: fired=%d hit=%d hit_rate=%d%% biggest_hit=%.1f dealt=%.1f taken=%.1f\n",
		rs.shotsFired, rs.shotsHit, rs.hitRatePercent, rs.biggestHit, rs.damageDealt, rs.damageTaken)
	fmt.Printf("event_totals: phase_change=%d impacts=%d\n", rs.phaseChanges, rs.impacts)
	fmt.Printf("drops: %s\n\n", formatTierCounts(rs.dropsByTier))
}

func printAggregate(all []runStats) {
	totalRounds := 0
	totalFired := 0
	totalHit := 0
	bestRun := 0
	for _, rs := range all {
		totalRounds += rs.roundsSurvived
		totalFired += rs.shotsFired
		totalHit += rs.shotsHit
		if rs.roundsSurvived > bestRun {
			bestRun = rs.roundsSurvived
		}
	}
	hitRate := 0.0
	if totalFired > 0 {
		hitRate = float64(totalHit) / float64(totalFired) * 100
	}
	fmt.Printf("=== Aggregate (%d runs) ===\n", len(all))
	fmt.Printf("avg_rounds=%.1f best_rounds=%d overall_hit_rate=%.1f%%\n\n",
		float64(totalRounds)/float64(len(all)), bestRun, hitRate)
}

// printDropDistributions samples each drop type's empirical rarity
// distribution with pity and performance held at zero, then once more with
// pity live, so table drift shows up immediately.
func printDropDistributions(rolls int, seed int64) {
	fmt.Printf("=== Drop Distributions (%d rolls each) ===\n", rolls)

	for _, dt := range []drops.DropType{drops.DropStandard, drops.DropPremium, drops.DropGuaranteedRare} {
		rates := drops.ComputeRates(dt, 0, 0, 0)
		fmt.Printf("%-15s table: %s\n", dt.String(), formatRates(rates))
	}
	fmt.Println()

	for _, dt := range []drops.DropType{drops.DropStandard, drops.DropPremium} {
		eng := drops.NewEngine(seed, drops.DefaultCatalog(),
			drops.NewPityTracker(), drops.NewPerformanceTracker(), zerolog.Nop())
		owned := map[string]bool{}
		counts := map[drops.Rarity]int{}
		pityTriggers := 0
		for i := 0; i < rolls; i++ {
			res := eng.Roll(dt, owned)
			counts[res.Rarity]++
			if res.PityTriggered {
				pityTriggers++
			}
			if res.IsNew {
				owned[res.Tank.ID] = true
			}
		}
		fmt.Printf("%-15s empirical (pity live): %s  pity_triggers=%d\n",
			dt.String(), formatCounts(counts, rolls), pityTriggers)
	}
	fmt.Println()
}

func formatRates(r drops.Rates) string {
	return fmt.Sprintf("common=%.1f uncommon=%.1f rare=%.1f epic=%.1f legendary=%.1f",
		r[drops.Common], r[drops.Uncommon], r[drops.Rare], r[drops.Epic], r[drops.Legendary])
}

func formatCounts(counts map[drops.Rarity]int, total int) string {
	out := ""
	for _, r := range []drops.Rarity{drops.Common, drops.Uncommon, drops.Rare, drops.Epic, drops.Legendary} {
		pct := float64(counts[r]) / float64(total) * 100
		out += fmt.Sprintf("%s=%.1f%% ", r, pct)
	}
	return out
}

func formatTierCounts(m map[string]int) string {
	if len(m) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := ""
	for _, k := range keys {
		out += fmt.Sprintf("%s=%d ", k, m[k])
	}
	return out
}
