package game

import (
	"fmt"
	"math"
)

// AI gunner. The enemy picks its shot by running the same trajectory
// predictor the player's preview uses over a coarse angle/power grid, then
// smears the best solution with an error that shrinks as the run goes on.
// Early rounds miss often; by round ten the gunner is dangerous.

const (
	aiAngleMin  = 95.0
	aiAngleMax  = 170.0
	aiAngleStep = 5.0
	aiPowerMin  = 25.0
	aiPowerMax  = 100.0
	aiPowerStep = 7.5

	// Aim error at round 1, in degrees / power points. Decays per round.
	aiAngleErrBase = 9.0
	aiPowerErrBase = 14.0
	aiErrDecay     = 0.85
	aiAngleErrMin  = 1.0
	aiPowerErrMin  = 1.5
)

// planAIShot searches the grid for the candidate whose predicted impact
// lands closest to the player's hull, then applies the round-scaled error.
func (e *Engine) planAIShot() AimSolution {
	target := e.player
	best := AimSolution{AngleDeg: 135, Power: 60}
	bestDist := math.Inf(1)

	probe := *e.enemy // scratch copy so the search never mutates the live tank
	for angle := aiAngleMin; angle <= aiAngleMax; angle += aiAngleStep {
		for power := aiPowerMin; power <= aiPowerMax; power += aiPowerStep {
			probe.SetAngle(angle)
			probe.SetPower(power)
			preview := PredictTrajectory(&probe, e.terrain, &e.wind, e.tanks)
			if preview.Impact == nil {
				continue
			}
			d := math.Hypot(preview.Impact.X-target.X(), preview.Impact.Y-(target.Y()-tankHalfHeight))
			// Direct predicted hits trump everything.
			if preview.Impact.Kind == ImpactTank && preview.Impact.TankID == target.ID() {
				d = 0
			}
			if d < bestDist {
				bestDist = d
				best = AimSolution{AngleDeg: angle, Power: power}
			}
		}
	}

	round := e.run.RoundNumber()
	decay := math.Pow(aiErrDecay, float64(round-1))
	angleErr := math.Max(aiAngleErrMin, aiAngleErrBase*decay)
	powerErr := math.Max(aiPowerErrMin, aiPowerErrBase*decay)

	best.AngleDeg = clampF(best.AngleDeg+(e.rng.Float64()*2-1)*angleErr, 0, 180)
	best.Power = clampF(best.Power+(e.rng.Float64()*2-1)*powerErr, 0, 100)

	e.simLog.Add(e.frame, "ai", "plan",
		fmt.Sprintf("angle=%.1f power=%.1f", best.AngleDeg, best.Power), bestDist)
	return best
}
