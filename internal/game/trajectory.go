package game

// Trajectory prediction. The predictor dry-runs the exact same integrator as
// live flight, so a preview and a live shot with identical angle, power,
// wind, and terrain land on identical coordinates.

const (
	previewMaxPoints      = 900 // hard cap on recorded polyline points
	previewSampleInterval = 3   // record every Nth integration step
)

// TrajectoryPoint is one recorded sample of a predicted flight path.
type TrajectoryPoint struct {
	X, Y float64
}

// TrajectoryPreview is the dry-run result: a polyline plus the impact, when
// the shot lands within the step budget.
type TrajectoryPreview struct {
	Points []TrajectoryPoint
	Impact *Impact // nil when the step cap ran out first
}

// PredictTrajectory simulates a shot from the tank's current aim without
// touching world state. Tanks are collision targets exactly as in live
// flight (including the muzzle grace on the shooter's own hull).
func PredictTrajectory(shooter *Tank, terrain *Terrain, wind *Wind, tanks []*Tank) TrajectoryPreview {
	mx, my := shooter.MuzzlePosition()
	spec := WeaponSpecFor(shooter.CurrentWeapon())
	p := NewProjectile(mx, my, shooter.Angle(), shooter.Power(), shooter.Side(), spec)

	preview := TrajectoryPreview{
		Points: make([]TrajectoryPoint, 0, previewMaxPoints),
	}
	preview.Points = append(preview.Points, TrajectoryPoint{X: mx, Y: my})

	maxSteps := previewMaxPoints * previewSampleInterval
	for step := 1; step <= maxSteps; step++ {
		impact := p.Step(terrain, wind, tanks)
		if impact != nil {
			preview.Points = append(preview.Points, TrajectoryPoint{X: impact.X, Y: impact.Y})
			preview.Impact = impact
			return preview
		}
		if step%previewSampleInterval == 0 {
			x, y := p.Position()
			preview.Points = append(preview.Points, TrajectoryPoint{X: x, Y: y})
		}
	}
	return preview
}
