package game

import "sort"

// Combat resolution: terrain carving, blast damage, kill accounting, and the
// terrain support-collapse pass that follows every explosion.

const (
	// Columns whose drop to a neighbour exceeds this lose support.
	collapseThreshold = 18.0
	// Fraction of the overhang removed per collapse pass.
	collapseRate = 0.35
	// Upper bound on collapse passes per explosion.
	collapsePassCap = 48
)

// explosionDamage returns the damage dealt at distance d from an impact with
// the given blast radius, linear falloff to zero at the rim.
func explosionDamage(d, blastRadius, damage float64) float64 {
	if blastRadius <= 0 || d > blastRadius {
		return 0
	}
	dmg := damage * (1 - d/blastRadius)
	if dmg < 0 {
		return 0
	}
	return dmg
}

// resolveImpact applies an impact to the world: carve, damage, events, run
// stats, collapse. Damage events are emitted in tank-id order.
func (e *Engine) resolveImpact(imp *Impact) {
	carves := imp.Kind == ImpactTerrain || imp.Kind == ImpactTank
	if carves {
		e.terrain.DestroyCircle(imp.X, imp.Y, imp.BlastRadius)
	}

	targets := make([]*Tank, 0, len(e.tanks))
	for _, t := range e.tanks {
		if t != nil && t.Alive() {
			targets = append(targets, t)
		}
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].ID() < targets[j].ID() })

	shooterHit := false
	for _, t := range targets {
		var dmg float64
		if imp.Kind == ImpactTank && imp.TankID == t.ID() {
			dmg = imp.Damage // direct hit in the hull box: full damage
		} else if carves {
			dmg = explosionDamage(t.DistanceTo(imp.X, imp.Y), imp.BlastRadius, imp.Damage)
		}
		if dmg <= 0 {
			continue
		}
		newHealth := t.ApplyDamage(dmg)
		e.emit(DamageEvent{
			TargetID:  t.ID(),
			Amount:    dmg,
			NewHealth: newHealth,
			Shooter:   imp.OwnerSide,
			WeaponID:  imp.WeaponID,
		})
		if newHealth <= 0 {
			e.emit(KillEvent{TargetID: t.ID(), Shooter: imp.OwnerSide})
		}

		// Run-stat bookkeeping happens after the damage is applied.
		if t.Side() == SidePlayer {
			e.run.RecordDamageTaken(dmg)
			e.perf.OnDamageTaken(dmg, t.MaxHealth())
		}
		if imp.OwnerSide == SidePlayer && t.Side() == SideEnemy {
			e.run.RecordDamageDealt(dmg)
			shooterHit = true
			if newHealth <= 0 {
				e.run.RecordEnemyDestroyed()
			}
		}
	}

	if imp.OwnerSide == SidePlayer {
		if shooterHit {
			e.run.RecordShotHit()
		}
		e.perf.UpdateAccuracy(shooterHit)
	}

	if carves {
		e.terrain.CollapseUnsupported()
		// Ground may have dropped out from under a hull.
		for _, t := range e.tanks {
			if t != nil && t.Alive() {
				t.SettleOnTerrain(e.terrain)
			}
		}
	}
}

// CollapseUnsupported runs the support-collapse pass: columns standing too
// far proud of a neighbour slump toward it until the slope is stable or the
// pass cap is reached. Returns the number of passes run.
func (t *Terrain) CollapseUnsupported() int {
	passes := 0
	for ; passes < collapsePassCap; passes++ {
		changed := false
		for x := 0; x < t.width; x++ {
			lowest := t.heights[x]
			if x > 0 && t.heights[x-1] < lowest {
				lowest = t.heights[x-1]
			}
			if x < t.width-1 && t.heights[x+1] < lowest {
				lowest = t.heights[x+1]
			}
			drop := t.heights[x] - lowest
			if drop <= collapseThreshold {
				continue
			}
			t.heights[x] -= (drop - collapseThreshold) * collapseRate
			changed = true
		}
		if !changed {
			break
		}
	}
	return passes
}
